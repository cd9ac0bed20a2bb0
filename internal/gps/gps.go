// Package gps parses the sexagesimal coordinates printed by exiftool and maps
// a coordinate to the time zone it lies in.
package gps

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/bradfitz/latlong"

	"photoname/internal/tags"
)

// Tag keys read by FromTags.
const (
	LatitudeRefKey  = "GPS:GPSLatitudeRef"
	LatitudeKey     = "GPS:GPSLatitude"
	LongitudeRefKey = "GPS:GPSLongitudeRef"
	LongitudeKey    = "GPS:GPSLongitude"
)

var (
	// ErrMalformed is returned for coordinates that cannot be parsed.
	ErrMalformed = errors.New("malformed GPS coordinate")
	// ErrNoZone is returned when a coordinate has no time zone (open sea).
	ErrNoZone = errors.New("no time zone for coordinate")
)

// 42 deg 3' 45.27"  (an optional trailing hemisphere letter is tolerated)
var dmsPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*deg\s*(\d+(?:\.\d+)?)\s*'\s*(\d+(?:\.\d+)?)\s*"\s*[NSEWnsew]?\s*$`)

// Coordinates is a decimal latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// ParseDMS converts `D deg M' S"` into unsigned decimal degrees.
func ParseDMS(s string) (float64, error) {
	m := dmsPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	deg, _ := strconv.ParseFloat(m[1], 64)
	mins, _ := strconv.ParseFloat(m[2], 64)
	secs, _ := strconv.ParseFloat(m[3], 64)
	if mins >= 60 || secs >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	return deg + mins/60 + secs/3600, nil
}

// FormatDMS is the inverse of ParseDMS; the sign of deg is dropped.
func FormatDMS(deg float64) string {
	deg = math.Abs(deg)
	d := math.Floor(deg)
	minutes := (deg - d) * 60
	m := math.Floor(minutes)
	s := (minutes - m) * 60
	// 59.999 rounds to 60.00 when printed
	if math.Round(s*100) >= 6000 {
		s = 0
		m++
	}
	if m >= 60 {
		m = 0
		d++
	}
	return fmt.Sprintf(`%d deg %d' %.2f"`, int(d), int(m), s)
}

// LatitudeRef and LongitudeRef return the exiftool spelling of a hemisphere.
func LatitudeRef(lat float64) string {
	if lat < 0 {
		return "South"
	}
	return "North"
}

func LongitudeRef(long float64) string {
	if long < 0 {
		return "West"
	}
	return "East"
}

// FromTags reads the four GPS tags. ok is false when any of them is missing.
func FromTags(d tags.Dict) (c Coordinates, ok bool, err error) {
	latRef, ok1 := d[LatitudeRefKey]
	lat, ok2 := d[LatitudeKey]
	longRef, ok3 := d[LongitudeRefKey]
	long, ok4 := d[LongitudeKey]
	if !(ok1 && ok2 && ok3 && ok4) {
		return Coordinates{}, false, nil
	}

	c.Latitude, err = ParseDMS(lat)
	if err != nil {
		return Coordinates{}, true, fmt.Errorf("latitude: %w", err)
	}
	c.Longitude, err = ParseDMS(long)
	if err != nil {
		return Coordinates{}, true, fmt.Errorf("longitude: %w", err)
	}

	if isRef(latRef, "South") {
		c.Latitude = -c.Latitude
	}
	if isRef(longRef, "West") {
		c.Longitude = -c.Longitude
	}
	return c, true, nil
}

// isRef accepts both the long form ("West") and the EXIF letter ("W").
func isRef(value, want string) bool {
	value = strings.TrimSpace(value)
	return strings.EqualFold(value, want) || strings.EqualFold(value, want[:1])
}

var zoneCache struct {
	sync.RWMutex
	m map[string]*time.Location
}

// Zone returns the time zone the coordinate lies in.
func Zone(c Coordinates) (*time.Location, error) {
	name := latlong.LookupZoneName(c.Latitude, c.Longitude)
	if name == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoZone, c)
	}
	return loadLocation(name)
}

func loadLocation(name string) (*time.Location, error) {
	zoneCache.RLock()
	loc, ok := zoneCache.m[name]
	zoneCache.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", name, err)
	}

	zoneCache.Lock()
	if zoneCache.m == nil {
		zoneCache.m = make(map[string]*time.Location)
	}
	zoneCache.m[name] = loc
	zoneCache.Unlock()
	return loc, nil
}
