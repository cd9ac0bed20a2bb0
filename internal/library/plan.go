package library

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Plan sets ProposedName on every dated record:
//
//	root/<source>/<date> <source> <counter><ext>
//
// Counters run per source and calendar date in library order, zero padded to
// the width of the busiest day of that source. Undated records are left
// without a proposal.
func Plan(lib Library, root string) {
	var order []string
	groups := make(map[string][]*Record)
	for _, r := range lib {
		r.ProposedName = ""
		if !r.Dated() {
			continue
		}
		if _, ok := groups[r.Source]; !ok {
			order = append(order, r.Source)
		}
		groups[r.Source] = append(groups[r.Source], r)
	}

	for _, src := range order {
		planGroup(groups[src], root, src)
	}
}

func planGroup(group []*Record, root, src string) {
	perDay := make(map[string]int)
	busiest := 0
	for _, r := range group {
		perDay[r.Date()]++
		if perDay[r.Date()] > busiest {
			busiest = perDay[r.Date()]
		}
	}
	width := len(strconv.Itoa(busiest))

	name := safeName(src)
	dir := filepath.Join(root, name)
	counters := make(map[string]int, len(perDay))
	for _, r := range group {
		date := r.Date()
		counters[date]++
		file := fmt.Sprintf("%s %s %0*d%s", date, name, width, counters[date], r.Ext())
		r.ProposedName = filepath.Join(dir, file)
	}
}

// safeName keeps a source label from creating extra directory levels.
func safeName(src string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(src)
}

// Planned returns the records that have a proposed name.
func (l Library) Planned() []*Record {
	var out []*Record
	for _, r := range l {
		if r.ProposedName != "" {
			out = append(out, r)
		}
	}
	return out
}
