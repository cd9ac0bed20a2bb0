package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"photoname/internal/timestamp"
)

const storeVersion = 1

type document struct {
	Version int     `json:"version"`
	Records Library `json:"records"`
}

// Save writes lib to path as versioned JSON, replacing the file atomically.
func Save(path string, lib Library) error {
	if lib == nil {
		lib = Library{}
	}
	data, err := json.MarshalIndent(document{Version: storeVersion, Records: lib}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".library-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write library: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close library file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a library written by Save.
func Load(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse library %s: %w", path, err)
	}
	if doc.Version != storeVersion {
		return nil, fmt.Errorf("unsupported library version %d in %s", doc.Version, path)
	}

	seen := make(map[string]bool, len(doc.Records))
	for i, r := range doc.Records {
		if r == nil || r.Path == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingSourceFile)
		}
		if seen[r.Path] {
			return nil, fmt.Errorf("%s: %w", r.Path, ErrDuplicatePath)
		}
		seen[r.Path] = true
		if r.Dated() && !timestamp.Valid(r.Timestamp) {
			return nil, fmt.Errorf("%s: %w: %q", r.Path, timestamp.ErrInvalidDate, r.Timestamp)
		}
	}

	lib := doc.Records
	if lib == nil {
		lib = Library{}
	}
	lib.Sort()
	return lib, nil
}
