package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photoname/internal/library"
)

// UndatedDir holds the preview links of records without a proposal.
const UndatedDir = "_undated"

type PreviewStats struct {
	Hardlinks int
	Symlinks  int
	Undated   int
}

// CreatePreview mirrors the plan of lib inside dir as hard links, falling
// back to symlinks across file systems, so the result can be browsed
// without touching the originals. Undated records go to dir/_undated.
func CreatePreview(lib library.Library, dir string) (PreviewStats, error) {
	var stats PreviewStats
	if err := os.MkdirAll(dir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create preview directory: %w", err)
	}

	// basename usage per undated link, for collision suffixes
	used := make(map[string]int)

	for _, r := range lib {
		var linkPath string
		if r.ProposedName != "" {
			proposed := r.ProposedName
			linkPath = filepath.Join(dir, filepath.Base(filepath.Dir(proposed)), filepath.Base(proposed))
		} else {
			base := filepath.Base(r.Path)
			count := used[base]
			used[base] = count + 1
			if count > 0 {
				ext := filepath.Ext(base)
				base = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), count+1, ext)
			}
			linkPath = filepath.Join(dir, UndatedDir, base)
			stats.Undated++
		}

		if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
			return stats, fmt.Errorf("failed to create %s: %w", filepath.Dir(linkPath), err)
		}
		hard, err := link(r.Path, linkPath)
		if err != nil {
			return stats, fmt.Errorf("failed to link %s: %w", r.Path, err)
		}
		if hard {
			stats.Hardlinks++
		} else {
			stats.Symlinks++
		}
	}

	readme := fmt.Sprintf(`photoname preview
=================

This directory contains links to the library files under their planned names.
Generated on: %s

Files without a date are in %s/.
Removing this directory does not touch the originals.
`, time.Now().Format(time.RFC3339), UndatedDir)
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte(readme), 0644); err != nil {
		return stats, fmt.Errorf("failed to create README: %w", err)
	}
	return stats, nil
}

// link hard links src at dest, or symlinks it when a hard link is not
// possible. Existing links are replaced.
func link(src, dest string) (hard bool, err error) {
	if _, err := os.Stat(src); err != nil {
		return false, err
	}
	if _, err := os.Lstat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return false, err
		}
	}
	if err := os.Link(src, dest); err == nil {
		return true, nil
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return false, err
	}
	return false, os.Symlink(abs, dest)
}
