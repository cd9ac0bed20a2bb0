package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abema/go-mp4"
	"github.com/djherbis/times"
	"github.com/evanoberholster/imagemeta"
	"github.com/rwcarlsen/goexif/exif"

	"photoname/internal/gps"
	"photoname/internal/tags"
)

// Layouts of the values exiftool prints, reproduced by the native extractor.
const (
	exifLayout       = "2006:01:02 15:04:05"
	exifOffsetLayout = "2006:01:02 15:04:05-07:00"
)

// QuickTime timestamps count seconds from 1904-01-01 UTC.
var quickTimeEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// Native extracts the tags the resolver and classifier need without an
// external binary. It reads less than exiftool; files it cannot decode still
// get a dictionary with their file system dates.
type Native struct {
	OnError ErrorFunc
}

func NewNative() *Native {
	return &Native{}
}

func (n *Native) Name() string { return "native" }

func (n *Native) Close() error { return nil }

// Extract decodes every path in turn.
func (n *Native) Extract(ctx context.Context, paths []string) ([]tags.Dict, error) {
	dicts := make([]tags.Dict, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return dicts, err
		}
		d, err := n.ExtractFile(path)
		if err != nil {
			report(n.OnError, path, err)
			if d == nil {
				continue
			}
		}
		dicts = append(dicts, d)
	}
	return dicts, nil
}

// ExtractFile reads one file. A decoding error comes back together with the
// partial dictionary; a nil dictionary means the file could not be opened.
func (n *Native) ExtractFile(path string) (tags.Dict, error) {
	d := tags.Dict{tags.SourceFile: path}
	if err := fileDates(path, d); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = readJPEG(f, d)
	case ".mov", ".mp4", ".m4v":
		err = readQuickTime(f, d)
	case ".heic", ".heif", ".tif", ".tiff", ".dng", ".cr2", ".nef", ".arw":
		err = readImageMeta(f, path, d)
	default:
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("failed to read metadata of %s: %w", path, err)
	}
	return d, nil
}

func fileDates(path string, d tags.Dict) error {
	ts, err := times.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	d[tags.GroupSystem+":FileModifyDate"] = ts.ModTime().Format(exifOffsetLayout)
	if ts.HasBirthTime() {
		d[tags.GroupSystem+":FileCreateDate"] = ts.BirthTime().Format(exifOffsetLayout)
	}
	return nil
}

func readJPEG(r io.Reader, d tags.Dict) error {
	// goexif returns what it could decode alongside non-critical errors
	x, err := exif.Decode(r)
	if x == nil {
		return err
	}

	stringTags := []struct {
		field exif.FieldName
		key   string
	}{
		{exif.DateTimeOriginal, "ExifIFD:DateTimeOriginal"},
		{exif.DateTimeDigitized, "ExifIFD:CreateDate"},
		{exif.DateTime, "IFD0:ModifyDate"},
		{exif.Make, "IFD0:Make"},
		{exif.Model, "IFD0:Model"},
		{exif.Software, "IFD0:Software"},
	}
	for _, st := range stringTags {
		tag, terr := x.Get(st.field)
		if terr != nil {
			continue
		}
		if v, serr := tag.StringVal(); serr == nil {
			if v = strings.TrimRight(strings.TrimSpace(v), "\x00"); v != "" {
				d[st.key] = v
			}
		}
	}

	if tag, terr := x.Get(exif.UserComment); terr == nil {
		if v := userComment(tag.Val); v != "" {
			d["ExifIFD:UserComment"] = v
		}
	}

	if lat, long, lerr := x.LatLong(); lerr == nil {
		setCoordinates(d, lat, long)
	}
	return nil
}

// userComment drops the 8 byte character code that prefixes the comment.
func userComment(raw []byte) string {
	if len(raw) > 8 {
		raw = raw[8:]
	}
	return strings.TrimSpace(string(bytes.Trim(raw, "\x00 ")))
}

func setCoordinates(d tags.Dict, lat, long float64) {
	if lat == 0 && long == 0 {
		return
	}
	d[gps.LatitudeRefKey] = gps.LatitudeRef(lat)
	d[gps.LatitudeKey] = gps.FormatDMS(lat)
	d[gps.LongitudeRefKey] = gps.LongitudeRef(long)
	d[gps.LongitudeKey] = gps.FormatDMS(long)
}

func readImageMeta(r io.ReadSeeker, path string, d tags.Dict) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while decoding %s: %v", path, rec)
		}
	}()

	x, err := imagemeta.Decode(r)
	if err != nil {
		return err
	}

	if v := strings.TrimSpace(x.Make); v != "" {
		d["IFD0:Make"] = v
	}
	if v := strings.TrimSpace(x.Model); v != "" {
		d["IFD0:Model"] = v
	}
	if t := x.DateTimeOriginal(); !t.IsZero() {
		d["ExifIFD:DateTimeOriginal"] = formatDecoded(t)
	}
	if t := x.CreateDate(); !t.IsZero() {
		d["ExifIFD:CreateDate"] = formatDecoded(t)
	}
	setCoordinates(d, x.GPS.Latitude(), x.GPS.Longitude())
	return nil
}

// formatDecoded prints a decoded time the way exiftool does: UTC values are
// taken as offset-less wall clocks.
func formatDecoded(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format(exifLayout)
	}
	return t.Format(exifOffsetLayout)
}

var errNoMovieHeader = errors.New("no movie header")

func readQuickTime(r io.ReadSeeker, d tags.Dict) error {
	boxes, err := mp4.ExtractBoxWithPayload(r, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return err
	}
	if len(boxes) == 0 {
		return errNoMovieHeader
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return errNoMovieHeader
	}

	secs := uint64(mvhd.CreationTimeV0)
	if mvhd.GetVersion() != 0 {
		secs = mvhd.CreationTimeV1
	}
	if secs == 0 {
		return nil
	}
	// exiftool prints QuickTime dates in UTC without an offset
	created := quickTimeEpoch.Add(time.Duration(secs) * time.Second)
	d["QuickTime:CreateDate"] = created.Format(exifLayout)
	return nil
}
