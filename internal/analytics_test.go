package internal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoname/internal/library"
	"photoname/internal/tags"
)

func sampleLibrary(t *testing.T) library.Library {
	t.Helper()
	dir := t.TempDir()
	a := filepath.Join(dir, "IMG_0001.JPG")
	writeFile(t, a, "12345")

	return library.Library{
		{Path: a, Timestamp: "2021-05-01T10:00:00+02:00", Source: "iPhone 8", Sidecar: filepath.Join(dir, "IMG_0001.AAE")},
		{Path: filepath.Join(dir, "IMG_0002.jpg"), Timestamp: "2019-01-01T00:00:00+00:00", Source: "iPhone 8"},
		{Path: filepath.Join(dir, "clip.MOV"), Source: "WhatsApp", Tags: tags.Dict{tags.InferredLeftDate: "2019-01-01T00:01:00+00:00"}},
		{Path: filepath.Join(dir, "x.png"), Source: "WhatsApp"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleLibrary(t))

	if s.Total != 4 || s.Dated != 2 || s.Dateless != 2 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.Sidecars != 1 {
		t.Errorf("Expected 1 sidecar, got %d", s.Sidecars)
	}
	if s.Estimated != 1 {
		t.Errorf("Expected 1 estimated record, got %d", s.Estimated)
	}
	if s.TotalSize != 5 || s.Missing != 3 {
		t.Errorf("Expected 5 bytes and 3 missing files, got %d and %d", s.TotalSize, s.Missing)
	}
	if s.Sources["iPhone 8"] != 2 || s.Sources["WhatsApp"] != 2 {
		t.Errorf("Unexpected sources: %v", s.Sources)
	}
	if s.Extensions[".jpg"] != 2 || s.Extensions[".mov"] != 1 {
		t.Errorf("Extensions should be counted case-insensitively: %v", s.Extensions)
	}
	if s.DateRange == nil || s.DateRange.Earliest != "2019-01-01T00:00:00+00:00" || s.DateRange.Latest != "2021-05-01T10:00:00+02:00" {
		t.Errorf("Unexpected date range: %+v", s.DateRange)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.DateRange != nil {
		t.Errorf("Expected empty summary, got %+v", s)
	}

	var buf bytes.Buffer
	if err := DisplaySummary(&buf, s, "empty", "table"); err != nil {
		t.Fatalf("DisplaySummary failed: %v", err)
	}
	if strings.Contains(buf.String(), "Date range") {
		t.Error("Empty library should not print a date range")
	}
}

func TestDisplaySummary(t *testing.T) {
	s := Summarize(sampleLibrary(t))

	var table bytes.Buffer
	if err := DisplaySummary(&table, s, "/photos", "table"); err != nil {
		t.Fatalf("DisplaySummary failed: %v", err)
	}
	for _, want := range []string{"photoname stats: /photos", "2 dated, 2 dateless (50%)", "Date range: 2019-01-01 to 2021-05-01", "- iPhone 8: 2", "photoname dateless"} {
		if !strings.Contains(table.String(), want) {
			t.Errorf("Table output missing %q:\n%s", want, table.String())
		}
	}

	var out bytes.Buffer
	if err := DisplaySummary(&out, s, "/photos", "json"); err != nil {
		t.Fatalf("DisplaySummary failed: %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if decoded.Dateless != 2 {
		t.Errorf("Expected 2 dateless in JSON, got %d", decoded.Dateless)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestCreatePreview(t *testing.T) {
	input, preview := t.TempDir(), filepath.Join(t.TempDir(), "preview")
	lib := plannedLibrary(t, input, "/library")
	// two undated files with the same name in different folders
	writeFile(t, filepath.Join(input, "x", "IMG_0003.JPG"), "x")
	writeFile(t, filepath.Join(input, "y", "IMG_0003.JPG"), "y")
	lib[2].Path = filepath.Join(input, "x", "IMG_0003.JPG")
	lib = append(lib, &library.Record{Path: filepath.Join(input, "y", "IMG_0003.JPG"), Source: "WhatsApp"})

	stats, err := CreatePreview(lib, preview)
	if err != nil {
		t.Fatalf("CreatePreview failed: %v", err)
	}
	if stats.Hardlinks+stats.Symlinks != 4 || stats.Undated != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	if got := readFile(t, filepath.Join(preview, "iPhone 8", "2025-01-01 iPhone 8 2.JPG")); got != "second" {
		t.Errorf("Expected planned link, got %q", got)
	}
	if got := readFile(t, filepath.Join(preview, UndatedDir, "IMG_0003_2.JPG")); got != "y" {
		t.Errorf("Expected suffixed undated link, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(input, "IMG_0001.JPG")); err != nil {
		t.Error("Preview must not move originals")
	}

	// running again replaces the links
	if _, err := CreatePreview(lib, preview); err != nil {
		t.Fatalf("Second CreatePreview failed: %v", err)
	}
}

func TestCreatePreview_MissingFile(t *testing.T) {
	lib := library.Library{{Path: filepath.Join(t.TempDir(), "gone.jpg"), Source: "X"}}
	if _, err := CreatePreview(lib, t.TempDir()); err == nil {
		t.Error("Expected an error for a missing original")
	}
}
