package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoname/internal/library"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// plannedLibrary returns two camera records in input/ planned under dest/.
func plannedLibrary(t *testing.T, input, dest string) library.Library {
	t.Helper()
	a := filepath.Join(input, "IMG_0001.JPG")
	b := filepath.Join(input, "IMG_0002.JPG")
	writeFile(t, a, "first")
	writeFile(t, b, "second")
	writeFile(t, filepath.Join(input, "IMG_0001.AAE"), "edits")

	lib := library.Library{
		{Path: a, Timestamp: "2025-01-01T10:00:00+01:00", Source: "iPhone 8", Sidecar: filepath.Join(input, "IMG_0001.AAE")},
		{Path: b, Timestamp: "2025-01-01T11:00:00+01:00", Source: "iPhone 8"},
		{Path: filepath.Join(input, "IMG_0003.JPG"), Source: "WhatsApp"},
	}
	library.Plan(lib, dest)
	return lib
}

func TestApplyPlan_MovesFilesAndSidecars(t *testing.T) {
	input, dest := t.TempDir(), t.TempDir()
	lib := plannedLibrary(t, input, dest)

	session, err := NewRenameSession(dest)
	if err != nil {
		t.Fatalf("NewRenameSession failed: %v", err)
	}
	defer session.Close()

	var out bytes.Buffer
	stats, err := ApplyPlan(context.Background(), lib, ApplyOptions{Out: &out, Session: session, Metrics: NewMetrics()})
	if err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}

	first := filepath.Join(dest, "iPhone 8", "2025-01-01 iPhone 8 1.JPG")
	second := filepath.Join(dest, "iPhone 8", "2025-01-01 iPhone 8 2.JPG")
	if got := readFile(t, first); got != "first" {
		t.Errorf("Expected first file content, got %q", got)
	}
	if got := readFile(t, second); got != "second" {
		t.Errorf("Expected second file content, got %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "iPhone 8", "2025-01-01 iPhone 8 1.aae")); got != "edits" {
		t.Errorf("Expected sidecar next to its photo, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(input, "IMG_0001.JPG")); !os.IsNotExist(err) {
		t.Error("Source file should be gone after the move")
	}

	if lib[0].Path != first || lib[0].Sidecar != filepath.Join(dest, "iPhone 8", "2025-01-01 iPhone 8 1.aae") {
		t.Errorf("Record not updated: %+v", lib[0])
	}
	for _, r := range lib[:2] {
		if got, _ := r.Tags.SourceFile(); got != r.Path {
			t.Errorf("Expected SourceFile tag %s, got %s", r.Path, got)
		}
	}
	if _, ok := lib[2].Tags.SourceFile(); ok {
		t.Error("Undated record should be left untouched")
	}
	if stats.Moved != 2 || stats.Sidecars != 1 || stats.Planned != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if !strings.Contains(out.String(), "IMG_0001.JPG -> 2025-01-01 iPhone 8 1.JPG") {
		t.Errorf("Missing move line in output:\n%s", out.String())
	}

	events, err := ReadJournal(filepath.Join(session.SessionDir, "journal.jsonl"))
	if err != nil {
		t.Fatalf("ReadJournal failed: %v", err)
	}
	var kinds []string
	for _, ev := range events {
		kinds = append(kinds, ev.Event)
		if ev.RunID != session.RunID {
			t.Errorf("Expected run id %s, got %s", session.RunID, ev.RunID)
		}
	}
	want := "session_start moved sidecar_moved moved session_end"
	if strings.Join(kinds, " ") != want {
		t.Errorf("Expected events %q, got %q", want, strings.Join(kinds, " "))
	}
	if events[len(events)-1].Stats.Moved != 2 {
		t.Errorf("Expected session_end to carry the totals, got %+v", events[len(events)-1].Stats)
	}
}

func TestApplyPlan_DryRun(t *testing.T) {
	input, dest := t.TempDir(), t.TempDir()
	lib := plannedLibrary(t, input, dest)

	var out bytes.Buffer
	if _, err := ApplyPlan(context.Background(), lib, ApplyOptions{DryRun: true, Out: &out}); err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(input, "IMG_0001.JPG")); err != nil {
		t.Error("Dry run must not move files")
	}
	if _, err := os.Stat(filepath.Join(dest, "iPhone 8")); !os.IsNotExist(err) {
		t.Error("Dry run must not create folders")
	}
	if !strings.Contains(out.String(), "[dry-run] IMG_0001.AAE -> 2025-01-01 iPhone 8 1.aae") {
		t.Errorf("Expected sidecar in dry run output:\n%s", out.String())
	}
	if lib[0].Path != filepath.Join(input, "IMG_0001.JPG") {
		t.Error("Dry run must not update records")
	}
}

func TestApplyPlan_ExistingDestination(t *testing.T) {
	input, dest := t.TempDir(), t.TempDir()
	lib := plannedLibrary(t, input, dest)

	// identical content: skipped as duplicate
	writeFile(t, lib[0].ProposedName, "first")
	// different content: suffixed
	writeFile(t, lib[1].ProposedName, "someone else")

	stats, err := ApplyPlan(context.Background(), lib, ApplyOptions{})
	if err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}

	if stats.SkippedDuplicate != 1 || stats.Suffixed != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(input, "IMG_0001.JPG")); err != nil {
		t.Error("Duplicate source should stay in place")
	}

	suffixed := filepath.Join(dest, "iPhone 8", "2025-01-01 iPhone 8 2_2.JPG")
	if got := readFile(t, suffixed); got != "second" {
		t.Errorf("Expected suffixed copy, got %q", got)
	}
	if got := readFile(t, lib[1].ProposedName); got != "second" {
		t.Errorf("Record should point at the suffixed file, got %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "iPhone 8", "2025-01-01 iPhone 8 2.JPG")); got != "someone else" {
		t.Error("Existing file must not be overwritten")
	}
}

func TestApplyPlan_Unchanged(t *testing.T) {
	dest := t.TempDir()
	path := filepath.Join(dest, "iPhone 8", "2025-01-01 iPhone 8 1.JPG")
	writeFile(t, path, "x")

	lib := library.Library{{Path: path, Timestamp: "2025-01-01T10:00:00+01:00", Source: "iPhone 8"}}
	library.Plan(lib, dest)

	stats, err := ApplyPlan(context.Background(), lib, ApplyOptions{})
	if err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}
	if stats.Unchanged != 1 || stats.Moved != 0 {
		t.Errorf("Expected the file to be left alone, got %+v", stats)
	}
}

func TestApplyPlan_MissingSource(t *testing.T) {
	dest := t.TempDir()
	lib := library.Library{{Path: filepath.Join(dest, "gone.jpg"), Timestamp: "2025-01-01T10:00:00+01:00", Source: "X"}}
	library.Plan(lib, filepath.Join(dest, "out"))

	errs := NewErrorStats(0)
	stats, err := ApplyPlan(context.Background(), lib, ApplyOptions{Errors: errs})
	if err != nil {
		t.Fatalf("A single missing file should not abort: %v", err)
	}
	if stats.Errors != 1 || errs.Total != 1 {
		t.Errorf("Expected one recorded error, got %+v / %d", stats, errs.Total)
	}
	if errs.LastErrors[0].Category != ErrorCategoryIO {
		t.Errorf("Expected IO category, got %s", errs.LastErrors[0].Category)
	}
}

func TestSafeMovePath(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "a.jpg")
	writeFile(t, dest, "x")

	if got := safeMovePath(dest); got != filepath.Join(dir, "a_2.jpg") {
		t.Errorf("Expected a_2.jpg, got %s", got)
	}
	writeFile(t, filepath.Join(dir, "a_2.jpg"), "x")
	if got := safeMovePath(dest); got != filepath.Join(dir, "a_3.jpg") {
		t.Errorf("Expected a_3.jpg, got %s", got)
	}
}

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mov")
	dest := filepath.Join(dir, "sub", "dest.mov")
	writeFile(t, src, "movie data")
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		t.Fatal(err)
	}

	if err := copyFileAtomic(src, dest, 0600); err != nil {
		t.Fatalf("copyFileAtomic failed: %v", err)
	}
	if got := readFile(t, dest); got != "movie data" {
		t.Errorf("Expected copied content, got %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Errorf("Expected no leftover temp files, got %d entries", len(entries))
	}

	h1, _ := fileHash(src)
	h2, _ := fileHash(dest)
	if h1 == "" || h1 != h2 {
		t.Errorf("Expected equal hashes, got %q and %q", h1, h2)
	}
}
