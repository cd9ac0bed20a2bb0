package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"

	"photoname/internal/tags"
	"photoname/internal/timestamp"
)

// Tag names kept besides the time tags and the GPS group.
var exifToolNames = map[string]bool{
	"UserComment": true,
	"Make":        true,
	"Model":       true,
	"Software":    true,
}

// wanted selects what `-time:all -UserComment -Make -Model -Software -GPS:all`
// would have printed. Keys carry their family 1 group.
func wanted(key string) bool {
	group, name := tags.SplitKey(key)
	return group == "GPS" || exifToolNames[name] || tags.IsTimeTag(key)
}

// Files handed to exiftool per request.
const batchSize = 64

// ExifTool extracts tags with a long running exiftool process.
type ExifTool struct {
	et      *exiftool.Exiftool
	binary  string
	OnError ErrorFunc

	mu     sync.Mutex
	writer *exiftool.Exiftool
}

// NewExifTool starts exiftool. An empty binary uses the one in PATH.
func NewExifTool(binary string) (*ExifTool, error) {
	et, err := exiftool.NewExiftool(exifToolOptions(binary, exiftool.PrintGroupNames("1"))...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExifTool, err)
	}
	return &ExifTool{et: et, binary: binary}, nil
}

func exifToolOptions(binary string, opts ...func(*exiftool.Exiftool) error) []func(*exiftool.Exiftool) error {
	if binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binary))
	}
	return opts
}

func (e *ExifTool) Name() string { return "exiftool" }

// Extract reads paths in batches, checking ctx between them.
func (e *ExifTool) Extract(ctx context.Context, paths []string) ([]tags.Dict, error) {
	dicts := make([]tags.Dict, 0, len(paths))
	for start := 0; start < len(paths); start += batchSize {
		if err := ctx.Err(); err != nil {
			return dicts, err
		}
		end := min(start+batchSize, len(paths))

		for _, fm := range e.et.ExtractMetadata(paths[start:end]...) {
			if fm.Err != nil {
				report(e.OnError, fm.File, fm.Err)
				continue
			}
			d := tags.FromFields(fm.Fields)
			for k := range d {
				if !wanted(k) {
					delete(d, k)
				}
			}
			d[tags.SourceFile] = fm.File
			dicts = append(dicts, d)
		}
	}
	return dicts, nil
}

// WriteTimestamp stores ts as DateTimeOriginal and CreateDate with their
// offset tags. The writer process is started on first use.
func (e *ExifTool) WriteTimestamp(path, ts string) error {
	t, err := timestamp.Parse(ts)
	if err != nil {
		return err
	}

	w, err := e.writerTool()
	if err != nil {
		return err
	}

	fm := exiftool.FileMetadata{File: path, Fields: map[string]interface{}{}}
	wall := t.Format("2006:01:02 15:04:05")
	offset := t.Format("-07:00")
	fm.SetString("DateTimeOriginal", wall)
	fm.SetString("CreateDate", wall)
	fm.SetString("OffsetTimeOriginal", offset)
	fm.SetString("OffsetTimeDigitized", offset)

	batch := []exiftool.FileMetadata{fm}
	w.WriteMetadata(batch)
	if batch[0].Err != nil {
		return fmt.Errorf("failed to write timestamp to %s: %w", path, batch[0].Err)
	}
	return nil
}

func (e *ExifTool) writerTool() (*exiftool.Exiftool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.writer != nil {
		return e.writer, nil
	}
	w, err := exiftool.NewExiftool(exifToolOptions(e.binary)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExifTool, err)
	}
	e.writer = w
	return w, nil
}

// Close stops the exiftool processes.
func (e *ExifTool) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.writer != nil {
		err = e.writer.Close()
		e.writer = nil
	}
	if cerr := e.et.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
