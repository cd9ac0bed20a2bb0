// Package source labels a media file with the device or app it came from.
package source

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"photoname/internal/tags"
)

// ErrAmbiguousManufacturer is returned when make or model tags disagree.
var ErrAmbiguousManufacturer = errors.New("ambiguous manufacturer data")

const (
	Screenshot = "iOS Screenshot"
	Instagram  = "Instagram"
	PicsArt    = "PicsArt"
	Editor     = "Photoshop Etc."
	Fallback   = "WhatsApp"
)

// Rule rewrites the label of a camera. Field is "make" or "model"; Label may
// reference {make} and {model}.
type Rule struct {
	Field      string `mapstructure:"field" json:"field" validate:"oneof=make model"`
	Value      string `mapstructure:"value" json:"value" validate:"required"`
	IgnoreCase bool   `mapstructure:"ignore_case" json:"ignore_case"`
	Label      string `mapstructure:"label" json:"label" validate:"required"`
}

func (r Rule) matches(maker, model string) bool {
	v := maker
	if r.Field == "model" {
		v = model
	}
	if r.IgnoreCase {
		return strings.EqualFold(v, r.Value)
	}
	return v == r.Value
}

func (r Rule) apply(maker, model string) string {
	return strings.NewReplacer("{make}", maker, "{model}", model).Replace(r.Label)
}

// DefaultQuirks is the built-in camera naming table.
var DefaultQuirks = []Rule{
	{Field: "make", Value: "Apple", Label: "{model}"},
	{Field: "make", Value: "Google", Label: "{model}"},
	{Field: "make", Value: "OLYMPUS IMAGING CORP.", IgnoreCase: true, Label: "Olympus {model}"},
	{Field: "make", Value: "Fujifilm", IgnoreCase: true, Label: "Fuji {model}"},
	{Field: "model", Value: "OnePlus A5010", IgnoreCase: true, Label: "{make}5T"},
	{Field: "make", Value: "Canon", IgnoreCase: true, Label: "{model}"},
}

// Classifier applies the app rules and the camera quirk table.
type Classifier struct {
	Quirks []Rule
}

// Default classifies with DefaultQuirks.
var Default = &Classifier{Quirks: DefaultQuirks}

// Classify runs the default classifier.
func Classify(d tags.Dict) (string, error) {
	return Default.Classify(d)
}

type appRule struct {
	label string
	match func(tags.Dict) bool
}

// Checked in order after the camera rule.
var appRules = []appRule{
	{Screenshot, isScreenshot},
	{Instagram, softwareContains("facebook", "instagram")},
	{PicsArt, func(d tags.Dict) bool { return d["IFD0:Software"] == "PicsArt" }},
	{Editor, softwareContains("photoshop", "gimp", "capture one")},
}

// Classify returns the source label of d. It never returns an empty label.
func (c *Classifier) Classify(d tags.Dict) (string, error) {
	maker, model, ok, err := manufacturer(d)
	if err != nil {
		return "", err
	}
	if ok {
		return c.camera(maker, model), nil
	}

	for _, r := range appRules {
		if r.match(d) {
			return r.label, nil
		}
	}
	return Fallback, nil
}

func (c *Classifier) camera(maker, model string) string {
	for _, r := range c.Quirks {
		if r.matches(maker, model) {
			return r.apply(maker, model)
		}
	}
	return maker + " " + model
}

// manufacturer resolves maker and model from IFD0, then from Keys. Every
// Make tag must agree with every other one whatever its group, and so must
// every Model tag, even when no pair resolves.
func manufacturer(d tags.Dict) (maker, model string, ok bool, err error) {
	for _, name := range []string{"Make", "Model"} {
		if err := consistent(d, name); err != nil {
			return "", "", false, err
		}
	}

	for _, group := range []string{"IFD0", "Keys"} {
		mk, ok1 := d[group+":Make"]
		md, ok2 := d[group+":Model"]
		if ok1 && ok2 {
			return mk, md, true, nil
		}
	}
	return "", "", false, nil
}

// consistent fails when two tags called name carry different values.
func consistent(d tags.Dict, name string) error {
	var firstKey, first string
	for _, k := range d.SortedKeys() {
		if _, n := tags.SplitKey(k); n != name {
			continue
		}
		v := strings.TrimSpace(d[k])
		if firstKey == "" {
			firstKey, first = k, v
			continue
		}
		if v != first {
			return fmt.Errorf("%w: %s is %q but %s is %q", ErrAmbiguousManufacturer, firstKey, first, k, v)
		}
	}
	return nil
}

func isScreenshot(d tags.Dict) bool {
	for _, k := range []string{"ExifIFD:UserComment", "XMP-exif:UserComment"} {
		if strings.EqualFold(strings.TrimSpace(d[k]), "screenshot") {
			return true
		}
	}
	return false
}

// softwareContains matches any tag whose key mentions "software" and whose
// value contains one of needles, ignoring case.
func softwareContains(needles ...string) func(tags.Dict) bool {
	return func(d tags.Dict) bool {
		keys := make([]string, 0, len(d))
		for k := range d {
			if strings.Contains(strings.ToLower(k), "software") {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := strings.ToLower(d[k])
			for _, n := range needles {
				if strings.Contains(v, n) {
					return true
				}
			}
		}
		return false
	}
}
