package library

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// NaturalLess orders paths the way a file browser does: component by
// component, ignoring case, with digit runs compared as numbers. Paths that
// differ are never equal.
func NaturalLess(a, b string) bool {
	ca := strings.Split(filepath.ToSlash(a), "/")
	cb := strings.Split(filepath.ToSlash(b), "/")

	for i := 0; i < len(ca) && i < len(cb); i++ {
		if c := compareComponent(ca[i], cb[i]); c != 0 {
			return c < 0
		}
	}
	if len(ca) != len(cb) {
		return len(ca) < len(cb)
	}
	return a < b
}

func compareComponent(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch {
	case natural.Less(la, lb):
		return -1
	case natural.Less(lb, la):
		return 1
	case la < lb:
		// "01" and "1" are equal numerically
		return -1
	case la > lb:
		return 1
	}
	return 0
}

// Library is a set of records in natural path order.
type Library []*Record

// Sort restores natural path order.
func (l Library) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return NaturalLess(l[i].Path, l[j].Path)
	})
}

// Index returns the position of path, or -1.
func (l Library) Index(path string) int {
	for i, r := range l {
		if r.Path == path {
			return i
		}
	}
	return -1
}

// Dateless returns the indexes of the records without a timestamp.
func (l Library) Dateless() []int {
	var idx []int
	for i, r := range l {
		if !r.Dated() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Upsert replaces the record with the same path or inserts r in order.
func (l Library) Upsert(r *Record) Library {
	if i := l.Index(r.Path); i >= 0 {
		l[i] = r
		return l
	}
	i := sort.Search(len(l), func(i int) bool { return NaturalLess(r.Path, l[i].Path) })
	l = append(l, nil)
	copy(l[i+1:], l[i:])
	l[i] = r
	return l
}

// Remove drops the record with the given path, if present.
func (l Library) Remove(path string) Library {
	i := l.Index(path)
	if i < 0 {
		return l
	}
	return append(l[:i], l[i+1:]...)
}
