package internal

import (
	"context"
	"errors"

	"photoname/internal/extract"
	"photoname/internal/library"
	"photoname/internal/tags"
)

// Pipeline ties extraction and record building to the run's logger, error
// stats and metrics.
type Pipeline struct {
	Config  *Config
	Log     *Logger
	Errors  *ErrorStats
	Metrics *Metrics // may be nil
}

func NewPipeline(cfg *Config, log *Logger, metrics *Metrics) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Log:     log,
		Errors:  NewErrorStats(cfg.MaxErrors),
		Metrics: metrics,
	}
}

// OpenExtractor starts exiftool when it is enabled and falls back to the
// native decoders when it cannot be started.
func (p *Pipeline) OpenExtractor() extract.Extractor {
	if p.Config.ExifTool.Enabled {
		et, err := extract.NewExifTool(p.Config.ExifTool.Path)
		if err == nil {
			et.OnError = p.fileError
			return et
		}
		p.Log.WithError(err).Warnf("falling back to the native extractor")
	}
	n := extract.NewNative()
	n.OnError = p.fileError
	return n
}

func (p *Pipeline) fileError(path string, err error) {
	p.Log.LogError(p.Errors.Record(path, err))
}

// Extract reads the tags of paths. Per-file failures are recorded and
// skipped; the error is the context error or an abort decision.
func (p *Pipeline) Extract(ctx context.Context, ex extract.Extractor, paths []string) ([]tags.Dict, error) {
	dicts, err := ex.Extract(ctx, paths)
	p.Metrics.AddExtracted(ex.Name(), len(dicts))
	if err != nil {
		return dicts, err
	}
	p.Log.Debugf("extracted %d of %d files with %s", len(dicts), len(paths), ex.Name())
	return dicts, p.Errors.AsError()
}

// Builder returns a builder that records failing dictionaries and skips
// them until the error stats call for an abort.
func (p *Pipeline) Builder() *library.Builder {
	return &library.Builder{
		Classifier: p.Config.Classifier(),
		OnError: func(d tags.Dict, err error) error {
			path, _ := d.SourceFile()
			procErr := p.Errors.Record(path, err)
			p.Log.LogError(procErr)
			p.Metrics.IncBuildFailed()
			if abort, reason := p.Errors.ShouldAbort(); abort {
				return errors.Join(errors.New(reason), err)
			}
			return nil
		},
	}
}

// Build converts dicts into a library with neighbor estimates attached.
func (p *Pipeline) Build(dicts []tags.Dict) (library.Library, error) {
	lib, err := p.Builder().Build(dicts)
	if err != nil {
		return nil, err
	}
	lib.AttachEstimates()
	p.observe(lib)
	return lib, nil
}

func (p *Pipeline) observe(lib library.Library) {
	for _, r := range lib {
		p.Metrics.ObserveRecord(r)
	}
	p.Metrics.SetLibrary(lib)
}

// Refresh re-extracts paths and upserts their records into lib. Paths that
// no longer produce a record are removed. Estimates are recomputed.
func (p *Pipeline) Refresh(ctx context.Context, ex extract.Extractor, lib library.Library, paths []string) (library.Library, error) {
	dicts, err := p.Extract(ctx, ex, paths)
	if err != nil {
		return lib, err
	}

	b := p.Builder()
	fresh := make(map[string]bool, len(dicts))
	for _, d := range dicts {
		path, ok := d.SourceFile()
		if !ok || library.Ignored(path) {
			continue
		}
		r, err := b.NewRecord(d)
		if err != nil {
			if err := b.OnError(d, err); err != nil {
				return lib, err
			}
			continue
		}
		fresh[path] = true
		p.Metrics.ObserveRecord(r)
		lib = lib.Upsert(r)
	}
	for _, path := range paths {
		if !fresh[path] {
			lib = lib.Remove(path)
		}
	}

	lib.AttachEstimates()
	p.Metrics.SetLibrary(lib)
	return lib, nil
}
