// Package sidecar finds the .aae edit files Apple devices keep next to photos.
package sidecar

import (
	"os"
	"path/filepath"
	"strings"
)

// Ext is the sidecar extension.
const Ext = ".aae"

// Candidates lists the sidecar names tried for path, in order: "IMG_1.aae",
// then "IMG_1O.aae" as written by some export tools. Upper-case extensions
// follow for case-sensitive file systems.
func Candidates(path string) []string {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	upper := strings.ToUpper(Ext)
	return []string{
		stem + Ext,
		stem + "O" + Ext,
		stem + upper,
		stem + "O" + upper,
	}
}

// Find returns the sidecar of path, if one exists as a regular file.
func Find(path string) (string, bool) {
	for _, c := range Candidates(path) {
		if c == path {
			continue
		}
		if fi, err := os.Stat(c); err == nil && fi.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

// Target is where the sidecar goes once its media file is renamed to newPath.
func Target(newPath string) string {
	return strings.TrimSuffix(newPath, filepath.Ext(newPath)) + Ext
}
