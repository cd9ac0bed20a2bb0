// Package extract reads the embedded metadata of media files into tag
// dictionaries, either through exiftool or with pure Go decoders.
package extract

import (
	"context"
	"errors"

	"photoname/internal/tags"
)

// ErrNoExifTool is returned when the exiftool binary cannot be started.
var ErrNoExifTool = errors.New("exiftool is not available")

// Extractor produces one tag dictionary per readable file.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, paths []string) ([]tags.Dict, error)
	Close() error
}

// TimestampWriter stores a canonical timestamp back into a file.
type TimestampWriter interface {
	WriteTimestamp(path, ts string) error
}

// ErrorFunc receives the per-file failures an extractor skips over.
type ErrorFunc func(path string, err error)

func report(fn ErrorFunc, path string, err error) {
	if fn != nil {
		fn(path, err)
	}
}
