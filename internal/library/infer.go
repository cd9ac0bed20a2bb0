package library

import (
	"time"

	"photoname/internal/tags"
	"photoname/internal/timestamp"
)

// Step is the time assumed between two neighboring files.
const Step = time.Minute

// Infer estimates the date of lib[index] from its nearest dated neighbors.
// left extrapolates forward from the previous dated record, right backward
// from the next one; either is "" when that side has no dated record.
// Offsets are kept as they are.
func Infer(index int, lib Library) (left, right string) {
	if index < 0 || index >= len(lib) {
		return "", ""
	}

	for i := index - 1; i >= 0; i-- {
		if ts, ok := shift(lib[i], time.Duration(index-i)*Step); ok {
			left = ts
			break
		}
	}
	for i := index + 1; i < len(lib); i++ {
		if ts, ok := shift(lib[i], -time.Duration(i-index)*Step); ok {
			right = ts
			break
		}
	}
	return left, right
}

// shift is ok only for dated records with a canonical timestamp.
func shift(r *Record, d time.Duration) (string, bool) {
	if !r.Dated() {
		return "", false
	}
	ts, err := timestamp.Shift(r.Timestamp, d)
	return ts, err == nil
}

// AttachEstimates stores the Infer results of every undated record in its
// Inferred tags. Stale estimates are removed first.
func (l Library) AttachEstimates() {
	for i, r := range l {
		delete(r.Tags, tags.InferredLeftDate)
		delete(r.Tags, tags.InferredRightDate)
		if r.Dated() {
			continue
		}

		left, right := Infer(i, l)
		if left == "" && right == "" {
			continue
		}
		if r.Tags == nil {
			r.Tags = make(tags.Dict)
		}
		if left != "" {
			r.Tags[tags.InferredLeftDate] = left
		}
		if right != "" {
			r.Tags[tags.InferredRightDate] = right
		}
	}
}
