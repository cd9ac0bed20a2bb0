// Package library turns tag dictionaries into an ordered set of media
// records, estimates dates for the undated ones and plans their new names.
package library

import (
	"fmt"
	"path/filepath"
	"time"

	"photoname/internal/tags"
	"photoname/internal/timestamp"
)

// Record is one media file on disk.
type Record struct {
	Path         string    `json:"path"`
	Timestamp    string    `json:"timestamp,omitempty"`
	Source       string    `json:"source"`
	Sidecar      string    `json:"sidecar,omitempty"`
	Tags         tags.Dict `json:"tags"`
	ProposedName string    `json:"proposed_name,omitempty"`
}

// Dated reports whether the record has a resolved timestamp.
func (r *Record) Dated() bool {
	return r.Timestamp != ""
}

// Time parses the record timestamp. ok is false for undated records and for
// timestamps that are not canonical.
func (r *Record) Time() (t time.Time, ok bool) {
	if !r.Dated() {
		return time.Time{}, false
	}
	t, err := timestamp.Parse(r.Timestamp)
	return t, err == nil
}

// Date is the calendar date part of the timestamp, "" when undated.
func (r *Record) Date() string {
	if len(r.Timestamp) < 10 {
		return ""
	}
	return r.Timestamp[:10]
}

// Ext returns the extension of the original file, case preserved.
func (r *Record) Ext() string {
	return filepath.Ext(r.Path)
}

// SetTimestamp overwrites the timestamp with a canonical value.
func (r *Record) SetTimestamp(ts string) error {
	if !timestamp.Valid(ts) {
		return fmt.Errorf("%s: %w: %q", r.Path, timestamp.ErrInvalidDate, ts)
	}
	r.Timestamp = ts
	return nil
}

// Reclassify recomputes timestamp and source from the record tags with the
// default resolver and classifier.
func (r *Record) Reclassify() error {
	return (&Builder{}).Reclassify(r)
}

// Estimates returns the inferred dates attached by AttachEstimates.
func (r *Record) Estimates() (left, right string) {
	return r.Tags[tags.InferredLeftDate], r.Tags[tags.InferredRightDate]
}
