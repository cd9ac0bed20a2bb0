package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"photoname/internal/library"
)

// Summary describes a library.
type Summary struct {
	Total     int   `json:"total"`
	Dated     int   `json:"dated"`
	Dateless  int   `json:"dateless"`
	Sidecars  int   `json:"sidecars"`
	Estimated int   `json:"estimated"` // dateless records with at least one neighbor estimate
	TotalSize int64 `json:"total_size_bytes"`
	Missing   int   `json:"missing"` // records whose file is gone from disk

	Sources    map[string]int `json:"sources"`
	Extensions map[string]int `json:"extensions"`
	DateRange  *DateRange     `json:"date_range,omitempty"`
}

// DateRange holds canonical timestamps.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// Summarize counts records by state, source and extension. Sizes come from
// the files on disk when they are still there.
func Summarize(lib library.Library) *Summary {
	s := &Summary{
		Total:      len(lib),
		Sources:    make(map[string]int),
		Extensions: make(map[string]int),
	}

	var earliest, latest *library.Record
	var first, last time.Time
	for _, r := range lib {
		s.Sources[r.Source]++
		s.Extensions[strings.ToLower(r.Ext())]++
		if r.Sidecar != "" {
			s.Sidecars++
		}
		if fi, err := os.Stat(r.Path); err == nil {
			s.TotalSize += fi.Size()
		} else {
			s.Missing++
		}

		if !r.Dated() {
			s.Dateless++
			if left, right := r.Estimates(); left != "" || right != "" {
				s.Estimated++
			}
			continue
		}
		s.Dated++

		t, ok := r.Time()
		if !ok {
			continue
		}
		if earliest == nil || t.Before(first) {
			earliest, first = r, t
		}
		if latest == nil || t.After(last) {
			latest, last = r, t
		}
	}

	if earliest != nil {
		s.DateRange = &DateRange{Earliest: earliest.Timestamp, Latest: latest.Timestamp}
	}
	return s
}

// DisplaySummary writes s as a table, or as JSON when format is "json".
func DisplaySummary(w io.Writer, s *Summary, title, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	}

	fmt.Fprintf(w, "=== photoname stats: %s ===\n\n", title)

	fmt.Fprintf(w, "📊 Overview:\n")
	fmt.Fprintf(w, "  - %d files (%s)\n", s.Total, formatBytes(s.TotalSize))
	fmt.Fprintf(w, "  - %d dated, %d dateless (%d%%)\n", s.Dated, s.Dateless, percentage(s.Dateless, s.Total))
	if s.Dateless > 0 {
		fmt.Fprintf(w, "  - %d dateless files have a neighbor estimate\n", s.Estimated)
	}
	fmt.Fprintf(w, "  - %d sidecars\n", s.Sidecars)
	if s.Missing > 0 {
		fmt.Fprintf(w, "  - %d files missing on disk\n", s.Missing)
	}
	if s.DateRange != nil {
		fmt.Fprintf(w, "  - Date range: %s to %s\n", s.DateRange.Earliest[:10], s.DateRange.Latest[:10])
	}

	fmt.Fprintf(w, "\n📷 Sources:\n")
	displayCounts(w, s.Sources, 0)

	fmt.Fprintf(w, "\n📁 Extensions:\n")
	displayCounts(w, s.Extensions, 5)

	fmt.Fprintf(w, "\n💡 Recommendations:\n")
	if s.Dateless > 0 {
		fmt.Fprintf(w, "  - Review undated files: photoname dateless\n")
	}
	if s.Dated > 0 {
		fmt.Fprintf(w, "  - Preview the new names: photoname plan\n")
	}
	return nil
}

// displayCounts prints counts sorted by count (descending) then by name,
// keeping the first limit entries when limit > 0.
func displayCounts(w io.Writer, counts map[string]int, limit int) {
	type entry struct {
		name  string
		count int
	}
	var list []entry
	for name, count := range counts {
		list = append(list, entry{name, count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].name < list[j].name
	})

	shown := len(list)
	if limit > 0 && shown > limit {
		shown = limit
	}
	for _, e := range list[:shown] {
		name := e.name
		if name == "" {
			name = "(no extension)"
		}
		fmt.Fprintf(w, "  - %s: %d\n", strings.TrimPrefix(name, "."), e.count)
	}
	if shown < len(list) {
		fmt.Fprintf(w, "  - ...and %d more\n", len(list)-shown)
	}
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part * 100) / total
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
