package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"photoname/internal/gps"
	"photoname/internal/library"
	"photoname/internal/source"
	"photoname/internal/timestamp"
)

// ErrorCategory represents the type of error encountered
type ErrorCategory string

const (
	ErrorCategoryIO           ErrorCategory = "io_error"           // File system, permissions, disk space
	ErrorCategoryHash         ErrorCategory = "hash_mismatch"      // Corruption during a cross-device move
	ErrorCategoryMetadata     ErrorCategory = "metadata_error"     // Tag extraction failed
	ErrorCategoryTimestamp    ErrorCategory = "timestamp_error"    // Unparseable date, offset or GPS tag
	ErrorCategoryManufacturer ErrorCategory = "manufacturer_error" // Make/model tags disagree
	ErrorCategoryInput        ErrorCategory = "input_error"        // Broken tag file or library
	ErrorCategoryUnsupported  ErrorCategory = "unsupported_format" // Unrecognized file format
	ErrorCategoryUnknown      ErrorCategory = "unknown_error"      // Unexpected errors
)

// ErrorSeverity indicates how critical the error is
type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical" // Stop everything
	ErrorSeverityError    ErrorSeverity = "error"    // The file is skipped
	ErrorSeverityWarning  ErrorSeverity = "warning"  // The file is kept with less information
)

// ProcessError is an error tied to one file, with a category and a hint for
// the user.
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Context     map[string]string
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error {
	return e.OriginalErr
}

type sentinelRule struct {
	targets    []error
	category   ErrorCategory
	severity   ErrorSeverity
	suggestion string
}

// Errors returned by the core packages, matched with errors.Is before the
// message heuristics run.
var sentinelRules = []sentinelRule{
	{
		targets:    []error{timestamp.ErrMalformedOffset, timestamp.ErrInvalidDate, gps.ErrMalformed},
		category:   ErrorCategoryTimestamp,
		severity:   ErrorSeverityError,
		suggestion: "Inspect the date tags with `photoname tags time` and fix the file with `photoname fixdate`",
	},
	{
		targets:    []error{source.ErrAmbiguousManufacturer},
		category:   ErrorCategoryManufacturer,
		severity:   ErrorSeverityError,
		suggestion: "Make/Model tags disagree - check them with `photoname tags values IFD0:Model`",
	},
	{
		targets:    []error{library.ErrMissingSourceFile, library.ErrDuplicatePath},
		category:   ErrorCategoryInput,
		severity:   ErrorSeverityCritical,
		suggestion: "The tag file is inconsistent - run `photoname scan` again",
	},
}

// CategorizeError analyzes an error and returns a ProcessError with category and severity
func CategorizeError(filePath string, err error) *ProcessError {
	if err == nil {
		return nil
	}

	procErr := &ProcessError{
		FilePath:    filePath,
		OriginalErr: err,
		Context:     make(map[string]string),
	}

	for _, rule := range sentinelRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				procErr.Category = rule.category
				procErr.Severity = rule.severity
				procErr.Suggestion = rule.suggestion
				procErr.Context["cause"] = target.Error()
				return procErr
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	// Disk/Filesystem errors (CRITICAL)
	case strings.Contains(errStr, "no space left"):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Free up disk space on the destination drive and retry the rename"

	case strings.Contains(errStr, "permission denied"):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Check file permissions on both library and destination directories"

	case strings.Contains(errStr, "read-only file system"):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "Destination filesystem is read-only - check mount options"

	case strings.Contains(errStr, "too many open files"):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityCritical
		procErr.Suggestion = "System file descriptor limit reached - increase ulimit or restart"

	case strings.Contains(errStr, "hash mismatch"):
		procErr.Category = ErrorCategoryHash
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "Data corruption detected while moving across devices - check disk health"

	case strings.Contains(errStr, "input/output error"):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "I/O error - check disk health with SMART tools"

	case strings.Contains(errStr, "no such file"):
		procErr.Category = ErrorCategoryIO
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "File disappeared since the last scan - run `photoname scan` again"

	// Metadata errors (WARNING - the file is kept, just undated)
	case strings.Contains(errStr, "exif") || strings.Contains(errStr, "metadata"):
		procErr.Category = ErrorCategoryMetadata
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "Metadata could not be read - install exiftool for better coverage"

	case strings.Contains(errStr, "unsupported") || strings.Contains(errStr, "unknown format"):
		procErr.Category = ErrorCategoryUnsupported
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "File format not recognized - it stays undated"

	default:
		procErr.Category = ErrorCategoryUnknown
		procErr.Severity = ErrorSeverityError
		procErr.Suggestion = "Unexpected error - check logs for details"
	}

	return procErr
}

// ErrorStats tracks error statistics during a run
type ErrorStats struct {
	Total       int
	Critical    int
	Errors      int
	Warnings    int
	ByCategory  map[ErrorCategory]int
	LastErrors  []*ProcessError // Last 5 errors for quick diagnosis
	Consecutive int             // Consecutive non-warning errors (for circuit breaker)
	MaxErrors   int             // 0 means unlimited
}

func NewErrorStats(maxErrors int) *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
		LastErrors: make([]*ProcessError, 0, 5),
		MaxErrors:  maxErrors,
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	s.Total++
	s.ByCategory[err.Category]++
	// warnings keep the file, so they do not trip the circuit breaker
	if err.Severity != ErrorSeverityWarning {
		s.Consecutive++
	}

	switch err.Severity {
	case ErrorSeverityCritical:
		s.Critical++
	case ErrorSeverityError:
		s.Errors++
	case ErrorSeverityWarning:
		s.Warnings++
	}

	if len(s.LastErrors) >= 5 {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

// Record categorizes err and adds it.
func (s *ErrorStats) Record(filePath string, err error) *ProcessError {
	procErr := CategorizeError(filePath, err)
	if procErr != nil {
		s.Add(procErr)
	}
	return procErr
}

// ResetConsecutive is called after every file that went through cleanly.
func (s *ErrorStats) ResetConsecutive() {
	s.Consecutive = 0
}

// ShouldAbort returns true if the run should stop based on error patterns
func (s *ErrorStats) ShouldAbort() (bool, string) {
	if s.Critical > 0 {
		return true, "Critical error detected - aborting to prevent data loss"
	}

	// likely systemic: disk full, unplugged drive, permissions
	if s.Consecutive >= 10 {
		return true, "10 consecutive errors detected - likely systemic issue (disk full, permissions, etc.)"
	}

	if s.MaxErrors > 0 && s.Total > s.MaxErrors {
		return true, fmt.Sprintf("More than %d errors (max_errors) - aborting", s.MaxErrors)
	}

	return false, ""
}

// AsError converts the abort decision into an error for cobra.
func (s *ErrorStats) AsError() error {
	if abort, reason := s.ShouldAbort(); abort {
		return errors.New(reason)
	}
	return nil
}

// GenerateReport creates a human-readable error report
func (s *ErrorStats) GenerateReport() string {
	var report strings.Builder

	fmt.Fprintf(&report, "\nRun encountered %d errors:\n\n", s.Total)

	if s.Critical > 0 {
		fmt.Fprintf(&report, "  Critical: %d (run-level issues)\n", s.Critical)
	}
	if s.Errors > 0 {
		fmt.Fprintf(&report, "  Errors:   %d (file skipped)\n", s.Errors)
	}
	if s.Warnings > 0 {
		fmt.Fprintf(&report, "  Warnings: %d (file kept)\n", s.Warnings)
	}

	report.WriteString("\nError categories:\n")
	cats := make([]string, 0, len(s.ByCategory))
	for cat := range s.ByCategory {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(&report, "  - %s: %d\n", cat, s.ByCategory[ErrorCategory(cat)])
	}

	report.WriteString("\nRecent errors:\n")
	for i, err := range s.LastErrors {
		fmt.Fprintf(&report, "\n%d. %s\n", i+1, err.FilePath)
		fmt.Fprintf(&report, "   Category: %s | Severity: %s\n", err.Category, err.Severity)
		fmt.Fprintf(&report, "   Error: %v\n", err.OriginalErr)
		if err.Suggestion != "" {
			fmt.Fprintf(&report, "   Suggestion: %s\n", err.Suggestion)
		}
	}

	report.WriteString("\n")
	report.WriteString(s.generateSuggestions())

	return report.String()
}

func (s *ErrorStats) generateSuggestions() string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggested next steps:\n")

	if s.ByCategory[ErrorCategoryIO] > 0 {
		suggestions.WriteString("  - Check disk space and permissions\n")
		suggestions.WriteString("  - Verify the library drive is properly connected\n")
	}

	if s.ByCategory[ErrorCategoryHash] > 0 {
		suggestions.WriteString("  - Run disk health check (SMART diagnostics)\n")
	}

	if s.ByCategory[ErrorCategoryTimestamp] > 0 {
		suggestions.WriteString("  - Review the files listed by `photoname dateless` and fix their dates\n")
	}

	if s.ByCategory[ErrorCategoryMetadata] > s.Total/2 {
		suggestions.WriteString("  - Many metadata errors - install exiftool and set exiftool.enabled = true\n")
	}

	if s.Consecutive >= 5 {
		suggestions.WriteString("  - Multiple consecutive errors suggest systemic issue - check system resources\n")
	}

	suggestions.WriteString("  - Check the log file and the rename journal for details\n")

	return suggestions.String()
}
