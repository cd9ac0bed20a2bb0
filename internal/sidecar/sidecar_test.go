package sidecar

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		want    string
		wantHit bool
	}{
		{"same name", []string{"IMG_1.jpg", "IMG_1.aae"}, "IMG_1.aae", true},
		{"O suffix", []string{"IMG_1.jpg", "IMG_1O.aae"}, "IMG_1O.aae", true},
		{"same name preferred", []string{"IMG_1.jpg", "IMG_1.aae", "IMG_1O.aae"}, "IMG_1.aae", true},
		{"none", []string{"IMG_1.jpg", "IMG_2.aae"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(dir, f))
			}

			got, ok := Find(filepath.Join(dir, "IMG_1.jpg"))
			if ok != tt.wantHit {
				t.Fatalf("Expected found=%v, got %v (%s)", tt.wantHit, ok, got)
			}
			if ok && got != filepath.Join(dir, tt.want) {
				t.Errorf("Expected %s, got %s", filepath.Join(dir, tt.want), got)
			}
		})
	}
}

func TestFind_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "IMG_1.jpg"))
	if err := os.Mkdir(filepath.Join(dir, "IMG_1.aae"), 0755); err != nil {
		t.Fatal(err)
	}

	if got, ok := Find(filepath.Join(dir, "IMG_1.jpg")); ok {
		t.Errorf("Expected no sidecar, got %s", got)
	}
}

func TestTarget(t *testing.T) {
	got := Target(filepath.Join("dest", "iPhone 8", "2024-01-01 iPhone 8 01.heic"))
	want := filepath.Join("dest", "iPhone 8", "2024-01-01 iPhone 8 01.aae")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
