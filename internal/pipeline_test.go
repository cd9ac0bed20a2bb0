package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoname/internal/extract"
	"photoname/internal/library"
	"photoname/internal/source"
	"photoname/internal/tags"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	isolateConfig(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.ExifTool.Enabled = false
	return NewPipeline(cfg, Nop(), NewMetrics())
}

func TestPipeline_BuildSkipsBadRecords(t *testing.T) {
	p := testPipeline(t)

	lib, err := p.Build([]tags.Dict{
		{tags.SourceFile: "b.jpg", "ExifIFD:DateTimeOriginal": "2025:01:01 10:00:00"},
		{tags.SourceFile: "c.jpg"},
		{tags.SourceFile: "a.jpg", "IFD0:Make": "Apple", "IFD0:Model": "iPhone 8", "XMP-tiff:Model": "iPhone X"},
	})
	require.NoError(t, err)

	require.Len(t, lib, 2)
	assert.Equal(t, "b.jpg", lib[0].Path)
	assert.Equal(t, "c.jpg", lib[1].Path)
	assert.Equal(t, 1, p.Errors.ByCategory[ErrorCategoryManufacturer])

	left, _ := lib[1].Estimates()
	assert.Equal(t, "2025-01-01T10:01:00+00:00", left)
}

func TestPipeline_BuildAbortsOnCriticalError(t *testing.T) {
	p := testPipeline(t)

	_, err := p.Build([]tags.Dict{
		{tags.SourceFile: "a.jpg"},
		{"IFD0:Make": "Apple"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, library.ErrMissingSourceFile))
	assert.Equal(t, 1, p.Errors.Critical)
}

func TestPipeline_OpenExtractorNative(t *testing.T) {
	p := testPipeline(t)
	ex := p.OpenExtractor()
	defer ex.Close()
	assert.Equal(t, "native", ex.Name())
}

func TestPipeline_OpenExtractorFallsBack(t *testing.T) {
	p := testPipeline(t)
	p.Config.ExifTool.Enabled = true
	p.Config.ExifTool.Path = filepath.Join(t.TempDir(), "no-such-exiftool")

	ex := p.OpenExtractor()
	defer ex.Close()
	assert.Equal(t, "native", ex.Name())
}

func TestPipeline_Refresh(t *testing.T) {
	p := testPipeline(t)
	dir := t.TempDir()

	keep := filepath.Join(dir, "a.jpg")
	added := filepath.Join(dir, "b.jpg")
	gone := filepath.Join(dir, "c.jpg")
	writeFile(t, keep, "not really a jpeg")
	writeFile(t, added, "not really a jpeg either")

	lib := library.Library{
		{Path: keep, Timestamp: "2025-01-01T10:00:00+00:00", Source: "X", Tags: tags.Dict{tags.SourceFile: keep}},
		{Path: gone, Source: source.Fallback, Tags: tags.Dict{tags.SourceFile: gone}},
	}

	lib, err := p.Refresh(context.Background(), extract.NewNative(), lib, []string{added, gone})
	require.NoError(t, err)

	require.Len(t, lib, 2)
	assert.Equal(t, keep, lib[0].Path)
	assert.Equal(t, added, lib[1].Path)
	assert.Equal(t, source.Fallback, lib[1].Source)
	// file system dates are kept as tags but never date a record
	assert.False(t, lib[1].Dated())
	assert.Contains(t, lib[1].Tags, tags.GroupSystem+":FileModifyDate")

	left, right := lib[1].Estimates()
	assert.Equal(t, "2025-01-01T10:01:00+00:00", left)
	assert.Empty(t, right)
}
