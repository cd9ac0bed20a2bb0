package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"photoname/internal/gps"
	"photoname/internal/library"
	"photoname/internal/source"
	"photoname/internal/timestamp"
)

func TestCategorizeError_DiskSpace(t *testing.T) {
	err := errors.New("write failed: no space left on device")
	procErr := CategorizeError("/test/file.jpg", err)

	if procErr.Category != ErrorCategoryIO {
		t.Errorf("Expected IO category, got %s", procErr.Category)
	}
	if procErr.Severity != ErrorSeverityCritical {
		t.Errorf("Expected critical severity, got %s", procErr.Severity)
	}
	if !strings.Contains(procErr.Suggestion, "disk space") {
		t.Errorf("Expected disk space suggestion, got: %s", procErr.Suggestion)
	}
}

func TestCategorizeError_Permission(t *testing.T) {
	err := errors.New("open /library/file.jpg: permission denied")
	procErr := CategorizeError("/test/file.jpg", err)

	if procErr.Category != ErrorCategoryIO {
		t.Errorf("Expected IO category, got %s", procErr.Category)
	}
	if procErr.Severity != ErrorSeverityCritical {
		t.Errorf("Expected critical severity, got %s", procErr.Severity)
	}
}

func TestCategorizeError_Metadata(t *testing.T) {
	err := errors.New("failed to read metadata of a.jpg: exif: failed to find exif intro marker")
	procErr := CategorizeError("/test/file.jpg", err)

	if procErr.Category != ErrorCategoryMetadata {
		t.Errorf("Expected metadata category, got %s", procErr.Category)
	}
	if procErr.Severity != ErrorSeverityWarning {
		t.Errorf("Expected warning severity, got %s", procErr.Severity)
	}
}

func TestCategorizeError_Sentinels(t *testing.T) {
	tests := []struct {
		err      error
		category ErrorCategory
		severity ErrorSeverity
	}{
		{timestamp.ErrMalformedOffset, ErrorCategoryTimestamp, ErrorSeverityError},
		{timestamp.ErrInvalidDate, ErrorCategoryTimestamp, ErrorSeverityError},
		{gps.ErrMalformed, ErrorCategoryTimestamp, ErrorSeverityError},
		{source.ErrAmbiguousManufacturer, ErrorCategoryManufacturer, ErrorSeverityError},
		{library.ErrMissingSourceFile, ErrorCategoryInput, ErrorSeverityCritical},
		{library.ErrDuplicatePath, ErrorCategoryInput, ErrorSeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			// wrapped the way the core packages do it, with a misleading message
			err := fmt.Errorf("a.jpg: no such file metadata: %w", tt.err)
			procErr := CategorizeError("a.jpg", err)

			if procErr.Category != tt.category {
				t.Errorf("Expected %s, got %s", tt.category, procErr.Category)
			}
			if procErr.Severity != tt.severity {
				t.Errorf("Expected %s, got %s", tt.severity, procErr.Severity)
			}
			if !errors.Is(procErr, tt.err) {
				t.Error("ProcessError should unwrap to the original error")
			}
		})
	}
}

func TestCategorizeError_Nil(t *testing.T) {
	if CategorizeError("a.jpg", nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestErrorStats_ShouldAbort_Critical(t *testing.T) {
	stats := NewErrorStats(0)

	stats.Add(&ProcessError{
		FilePath: "/test/file.jpg",
		Category: ErrorCategoryIO,
		Severity: ErrorSeverityCritical,
	})

	shouldAbort, reason := stats.ShouldAbort()
	if !shouldAbort {
		t.Error("Expected abort on critical error")
	}
	if !strings.Contains(reason, "Critical") {
		t.Errorf("Expected 'Critical' in reason, got: %s", reason)
	}
}

func TestErrorStats_ShouldAbort_ConsecutiveErrors(t *testing.T) {
	stats := NewErrorStats(0)

	for i := 0; i < 10; i++ {
		stats.Record("/test/file.jpg", errors.New("input/output error"))
	}

	shouldAbort, reason := stats.ShouldAbort()
	if !shouldAbort {
		t.Error("Expected abort after 10 consecutive errors")
	}
	if !strings.Contains(reason, "10 consecutive") {
		t.Errorf("Expected '10 consecutive' in reason, got: %s", reason)
	}
}

func TestErrorStats_ShouldAbort_MaxErrors(t *testing.T) {
	stats := NewErrorStats(3)

	for i := 0; i < 4; i++ {
		stats.Record(fmt.Sprintf("%d.jpg", i), timestamp.ErrInvalidDate)
		stats.ResetConsecutive()
		if abort, _ := stats.ShouldAbort(); abort && i < 3 {
			t.Fatalf("Aborted after %d errors", i+1)
		}
	}

	if err := stats.AsError(); err == nil || !strings.Contains(err.Error(), "max_errors") {
		t.Errorf("Expected max_errors abort, got %v", err)
	}
}

func TestErrorStats_ResetConsecutive(t *testing.T) {
	stats := NewErrorStats(0)

	for i := 0; i < 5; i++ {
		stats.Add(&ProcessError{
			FilePath: "/test/file.jpg",
			Category: ErrorCategoryIO,
			Severity: ErrorSeverityError,
		})
	}

	if stats.Consecutive != 5 {
		t.Errorf("Expected 5 consecutive errors, got %d", stats.Consecutive)
	}

	stats.ResetConsecutive()

	if stats.Consecutive != 0 {
		t.Errorf("Expected 0 consecutive errors after reset, got %d", stats.Consecutive)
	}
}

func TestErrorStats_GenerateReport(t *testing.T) {
	stats := NewErrorStats(0)

	stats.Add(&ProcessError{
		FilePath:    "/test/file1.jpg",
		Category:    ErrorCategoryIO,
		Severity:    ErrorSeverityError,
		OriginalErr: errors.New("I/O error"),
		Suggestion:  "Check disk health",
	})
	stats.Record("/test/file2.jpg", fmt.Errorf("x: %w", timestamp.ErrMalformedOffset))

	report := stats.GenerateReport()

	for _, section := range []string{"Run encountered 2 errors", "Error categories", "Recent errors", "Suggested next steps"} {
		if !strings.Contains(report, section) {
			t.Errorf("Report missing %q", section)
		}
	}
	if !strings.Contains(report, "file1.jpg") {
		t.Error("Report missing first error")
	}
	if !strings.Contains(report, "Check disk health") {
		t.Error("Report missing suggestion")
	}
	if !strings.Contains(report, "photoname dateless") {
		t.Error("Report missing timestamp advice")
	}
}

func TestErrorStats_ByCategory(t *testing.T) {
	stats := NewErrorStats(0)

	stats.Add(&ProcessError{Category: ErrorCategoryIO, Severity: ErrorSeverityError, OriginalErr: errors.New("test")})
	stats.Add(&ProcessError{Category: ErrorCategoryIO, Severity: ErrorSeverityError, OriginalErr: errors.New("test")})
	stats.Add(&ProcessError{Category: ErrorCategoryHash, Severity: ErrorSeverityError, OriginalErr: errors.New("test")})

	if stats.ByCategory[ErrorCategoryIO] != 2 {
		t.Errorf("Expected 2 IO errors, got %d", stats.ByCategory[ErrorCategoryIO])
	}
	if stats.ByCategory[ErrorCategoryHash] != 1 {
		t.Errorf("Expected 1 hash error, got %d", stats.ByCategory[ErrorCategoryHash])
	}
}
