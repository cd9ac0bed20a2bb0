package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photoname/internal/library"
	"photoname/internal/sidecar"
)

// ScanFiles walks root for media files with one of the configured
// extensions. Hidden directories and ignored names are skipped.
func ScanFiles(root string, cfg *Config) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || library.Ignored(path) {
			return nil
		}
		if cfg.IsMediaFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning files: %w", err)
	}
	return files, nil
}

// WatchedFile reports whether a watch event on path concerns the library:
// a media file or a sidecar.
func (c *Config) WatchedFile(path string) bool {
	if strings.EqualFold(filepath.Ext(path), sidecar.Ext) {
		return true
	}
	return !library.Ignored(path) && c.IsMediaFile(path)
}
