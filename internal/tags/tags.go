// Package tags holds the flat metadata dictionaries produced by the tag
// extractor and the helpers used to read, store and explore them.
package tags

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SourceFile is the key every dictionary carries with the file path.
const SourceFile = "SourceFile"

// Groups with special meaning.
const (
	GroupSystem   = "System"
	GroupInferred = "Inferred"
)

// Advisory keys written by the neighbor inferencer.
const (
	InferredLeftDate  = GroupInferred + ":LeftDate"
	InferredRightDate = GroupInferred + ":RightDate"
)

// Dict maps "Group:TagName" to the tag value.
type Dict map[string]string

// SourceFile returns the path recorded in the dictionary.
func (d Dict) SourceFile() (string, bool) {
	p, ok := d[SourceFile]
	if !ok || strings.TrimSpace(p) == "" {
		return "", false
	}
	return p, true
}

// Get returns the value of key and whether it was present.
func (d Dict) Get(key string) (string, bool) {
	v, ok := d[key]
	return v, ok
}

// Clone returns an independent copy.
func (d Dict) Clone() Dict {
	if d == nil {
		return nil
	}
	c := make(Dict, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// SortedKeys returns the keys in lexical order.
func (d Dict) SortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SplitKey splits "Group:TagName". A key without separator has no group.
func SplitKey(key string) (group, name string) {
	group, name, found := strings.Cut(key, ":")
	if !found {
		return "", key
	}
	return group, name
}

// Stringify converts a decoded JSON value into the string form stored in a Dict.
func Stringify(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := Stringify(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), true
	default:
		return fmt.Sprint(val), true
	}
}

// FromFields builds a Dict out of decoded extractor fields.
func FromFields(fields map[string]interface{}) Dict {
	d := make(Dict, len(fields))
	for k, v := range fields {
		if s, ok := Stringify(v); ok {
			d[k] = s
		}
	}
	return d
}

// Load reads the JSON array written by the extractor (or by Store).
func Load(path string) ([]Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag file: %w", err)
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tag file %s: %w", path, err)
	}

	dicts := make([]Dict, 0, len(raw))
	for _, fields := range raw {
		dicts = append(dicts, FromFields(fields))
	}
	return dicts, nil
}

// Store writes dicts as an indented JSON array, replacing path atomically.
func Store(path string, dicts []Dict) error {
	if dicts == nil {
		dicts = []Dict{}
	}
	data, err := json.MarshalIndent(dicts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write tag file: %w", err)
	}
	return os.Rename(tmp, path)
}

// DistinctTags lists every key present in any dictionary, sorted.
func DistinctTags(dicts []Dict) []string {
	seen := make(map[string]struct{})
	for _, d := range dicts {
		for k := range d {
			seen[k] = struct{}{}
		}
	}
	return sortedSet(seen)
}

// DistinctValues lists every value taken by tag, sorted.
func DistinctValues(dicts []Dict, tag string) []string {
	seen := make(map[string]struct{})
	for _, d := range dicts {
		if v, ok := d[tag]; ok {
			seen[v] = struct{}{}
		}
	}
	return sortedSet(seen)
}

// FilesWith lists the SourceFile of every dictionary where tag equals value,
// in input order.
func FilesWith(dicts []Dict, tag, value string) []string {
	var files []string
	for _, d := range dicts {
		if v, ok := d[tag]; ok && v == value {
			files = append(files, d[SourceFile])
		}
	}
	return files
}

// Entry is a single key/value pair of a Dict.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TimeTags returns the date/time entries of d, sorted by key.
func TimeTags(d Dict) []Entry {
	var out []Entry
	for _, k := range d.SortedKeys() {
		if IsTimeTag(k) {
			out = append(out, Entry{Key: k, Value: d[k]})
		}
	}
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
