// Package timestamp picks the creation time of a media file out of its tag
// dictionary and settles the UTC offset it was taken in.
package timestamp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"photoname/internal/gps"
	"photoname/internal/tags"
)

// Layout is the canonical form of every resolved timestamp.
const Layout = "2006-01-02T15:04:05-07:00"

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrMalformedOffset = errors.New("malformed UTC offset")
)

// CandidateKeys are consulted in order; the first one present wins.
var CandidateKeys = []string{
	"ExifIFD:DateTimeOriginal",
	"QuickTime:DateTimeOriginal",
	"XMP:DateTimeOriginal",
	"ExifIFD:CreateDate",
	"QuickTime:CreateDate",
	"PNG:CreateDate",
	"XMP:CreateDate",
	"QuickTime:CreationDate",
	"XMP-photoshop:DateCreated",
}

// OffsetKeys maps a date tag to the tag holding its UTC offset.
var OffsetKeys = map[string]string{
	"ExifIFD:DateTimeOriginal": "ExifIFD:OffsetTimeOriginal",
	"ExifIFD:CreateDate":       "ExifIFD:OffsetTimeDigitized",
	"ExifIFD:ModifyDate":       "ExifIFD:OffsetTime",
}

// Layouts tried after normalization, most specific first. Values without an
// offset are read as UTC.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Resolver turns tag dictionaries into timestamps. Zone maps a coordinate to
// its time zone and defaults to gps.Zone.
type Resolver struct {
	Zone func(gps.Coordinates) (*time.Location, error)
}

// Default is the resolver used by the package-level functions.
var Default = &Resolver{Zone: gps.Zone}

// Resolve runs the default resolver.
func Resolve(d tags.Dict) (string, bool, error) {
	return Default.Resolve(d)
}

// Resolve returns the canonical timestamp of d. ok is false when no usable
// date tag exists.
func (r *Resolver) Resolve(d tags.Dict) (string, bool, error) {
	t, ok, err := r.ResolveTime(d)
	if err != nil || !ok {
		return "", false, err
	}
	return Format(t), true, nil
}

// ResolveTime is Resolve without the final formatting.
func (r *Resolver) ResolveTime(d tags.Dict) (time.Time, bool, error) {
	key, value, ok := pick(d)
	if !ok {
		return time.Time{}, false, nil
	}

	t, err := parseValue(value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s %q: %w", key, value, err)
	}

	coords, hasGPS, err := gps.FromTags(d)
	if err != nil {
		return time.Time{}, false, err
	}
	if hasGPS {
		loc, err := r.zone(coords)
		switch {
		case err == nil:
			return t.In(loc), true, nil
		case !errors.Is(err, gps.ErrNoZone):
			return time.Time{}, false, err
		}
	}

	if offsetKey, ok := OffsetKeys[key]; ok {
		if raw, ok := d[offsetKey]; ok {
			loc, err := ParseOffset(raw)
			if err != nil {
				return time.Time{}, false, fmt.Errorf("%s: %w", offsetKey, err)
			}
			return relabel(t, loc), true, nil
		}
	}

	return t, true, nil
}

func (r *Resolver) zone(c gps.Coordinates) (*time.Location, error) {
	if r.Zone == nil {
		return gps.Zone(c)
	}
	return r.Zone(c)
}

// pick returns the first candidate key carrying a real value. The all-zero
// placeholder some cameras write counts as absent.
func pick(d tags.Dict) (key, value string, ok bool) {
	for _, k := range CandidateKeys {
		v, present := d[k]
		if !present || isZeroDate(v) {
			continue
		}
		return k, v, true
	}
	return "", "", false
}

func isZeroDate(v string) bool {
	digits := 0
	for _, c := range v {
		if c >= '0' && c <= '9' {
			if c != '0' {
				return false
			}
			digits++
		}
	}
	return digits > 0
}

// parseValue accepts the exiftool forms "2013:12:03 12:01:02" and the ISO
// ones, with or without an offset and fractional seconds.
func parseValue(v string) (time.Time, error) {
	s := normalize(v)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Truncate(time.Second), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

func normalize(v string) string {
	b := []byte(strings.TrimSpace(v))
	if len(b) >= 10 && b[4] == ':' && b[7] == ':' {
		b[4], b[7] = '-', '-'
	}
	if len(b) > 10 && b[10] == ' ' {
		b[10] = 'T'
	}
	return string(b)
}

// ParseOffset reads "±HH:MM" or "Z".
func ParseOffset(s string) (*time.Location, error) {
	if s == "Z" {
		return time.FixedZone("", 0), nil
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return nil, fmt.Errorf("%w: %q", ErrMalformedOffset, s)
	}
	hh, ok1 := twoDigits(s[1:3])
	mm, ok2 := twoDigits(s[4:6])
	if !ok1 || !ok2 || mm >= 60 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedOffset, s)
	}

	secs := hh*3600 + mm*60
	if s[0] == '-' {
		secs = -secs
	}
	return time.FixedZone("", secs), nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// relabel keeps the wall clock of t and swaps its offset.
func relabel(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// Format renders t in the canonical layout. UTC prints as +00:00.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse reads a canonical timestamp, rejecting every other form.
func Parse(s string) (time.Time, error) {
	// parsing against UTC keeps any other offset as a fixed zone, never Local
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil || Format(t) != s {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DDTHH:MM:SS±HH:MM", ErrInvalidDate, s)
	}
	return t, nil
}

// Valid reports whether s is a canonical timestamp.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Shift moves a canonical timestamp by d, keeping its offset.
func Shift(s string, d time.Duration) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(t.Add(d)), nil
}
