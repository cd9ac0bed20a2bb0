package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"photoname/internal/sidecar"
	"photoname/internal/source"
	"photoname/internal/tags"
	"photoname/internal/timestamp"
)

var (
	ErrMissingSourceFile = errors.New("tag dictionary has no SourceFile")
	ErrDuplicatePath     = errors.New("duplicate path")
)

// Ignored extensions and file names, compared in lower case.
var ignored = map[string]bool{
	".aae":      true,
	".ds_store": true,
	".json":     true,
	".zip":      true,
}

// Ignored reports whether path is a sidecar, metadata or archive artifact
// rather than media.
func Ignored(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return ignored[strings.ToLower(filepath.Ext(path))] || ignored[base]
}

// Builder builds records. The zero value uses the default resolver,
// classifier and sidecar lookup and stops at the first error.
type Builder struct {
	Resolver    *timestamp.Resolver
	Classifier  *source.Classifier
	FindSidecar func(path string) (string, bool)

	// Progress is called once per input dictionary, discarded ones included.
	Progress func(done, total int)

	// OnError decides what happens to a dictionary that fails to build. A nil
	// return skips it; a non-nil one aborts the build.
	OnError func(d tags.Dict, err error) error
}

// Build runs a zero Builder.
func Build(dicts []tags.Dict) (Library, error) {
	return (&Builder{}).Build(dicts)
}

// Build converts dicts into a library sorted by natural path order.
func (b *Builder) Build(dicts []tags.Dict) (Library, error) {
	lib := make(Library, 0, len(dicts))
	seen := make(map[string]bool, len(dicts))

	for i, d := range dicts {
		r, err := b.build(d, seen)
		if b.Progress != nil {
			b.Progress(i+1, len(dicts))
		}
		if err != nil {
			if b.OnError == nil {
				return nil, err
			}
			if err := b.OnError(d, err); err != nil {
				return nil, err
			}
			continue
		}
		if r == nil {
			continue
		}
		seen[r.Path] = true
		lib = append(lib, r)
	}

	lib.Sort()
	return lib, nil
}

func (b *Builder) build(d tags.Dict, seen map[string]bool) (*Record, error) {
	path, ok := d.SourceFile()
	if !ok {
		return nil, ErrMissingSourceFile
	}
	if Ignored(path) {
		return nil, nil
	}
	if seen[path] {
		return nil, fmt.Errorf("%s: %w", path, ErrDuplicatePath)
	}
	return b.NewRecord(d)
}

// NewRecord builds a single record. The tags are copied.
func (b *Builder) NewRecord(d tags.Dict) (*Record, error) {
	path, ok := d.SourceFile()
	if !ok {
		return nil, ErrMissingSourceFile
	}

	r := &Record{Path: path, Tags: d.Clone()}
	if err := b.Reclassify(r); err != nil {
		return nil, err
	}
	if sc, ok := b.findSidecar(path); ok {
		r.Sidecar = sc
	}
	return r, nil
}

// Reclassify recomputes the timestamp and source of r from its tags.
func (b *Builder) Reclassify(r *Record) error {
	ts, _, err := b.resolver().Resolve(r.Tags)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Path, err)
	}
	src, err := b.classifier().Classify(r.Tags)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Path, err)
	}
	r.Timestamp = ts
	r.Source = src
	return nil
}

func (b *Builder) resolver() *timestamp.Resolver {
	if b.Resolver == nil {
		return timestamp.Default
	}
	return b.Resolver
}

func (b *Builder) classifier() *source.Classifier {
	if b.Classifier == nil {
		return source.Default
	}
	return b.Classifier
}

func (b *Builder) findSidecar(path string) (string, bool) {
	if b.FindSidecar == nil {
		return sidecar.Find(path)
	}
	return b.FindSidecar(path)
}
