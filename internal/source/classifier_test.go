package source

import (
	"errors"
	"testing"

	"photoname/internal/tags"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   tags.Dict
		want string
	}{
		{"make and model", tags.Dict{"IFD0:Make": "MyMaker", "IFD0:Model": "MyModel"}, "MyMaker MyModel"},
		{"apple", tags.Dict{"IFD0:Make": "Apple", "IFD0:Model": "iPhone 13 mini"}, "iPhone 13 mini"},
		{"google", tags.Dict{"IFD0:Make": "Google", "IFD0:Model": "Pixel 7"}, "Pixel 7"},
		{"apple is case sensitive", tags.Dict{"IFD0:Make": "APPLE", "IFD0:Model": "iPhone"}, "APPLE iPhone"},
		{"olympus", tags.Dict{"IFD0:Make": "OLYMPUS IMAGING CORP.", "IFD0:Model": "ABC"}, "Olympus ABC"},
		{"olympus lower case", tags.Dict{"IFD0:Make": "olympus imaging corp.", "IFD0:Model": "E-M10"}, "Olympus E-M10"},
		{"fujifilm", tags.Dict{"IFD0:Make": "FUJIFILM", "IFD0:Model": "X-T3"}, "Fuji X-T3"},
		{"oneplus", tags.Dict{"IFD0:Make": "OnePlus", "IFD0:Model": "ONEPLUS A5010"}, "OnePlus5T"},
		{"canon", tags.Dict{"IFD0:Make": "Canon", "IFD0:Model": "Canon EOS 80D"}, "Canon EOS 80D"},
		{"quicktime keys", tags.Dict{"Keys:Make": "MyMaker", "Keys:Model": "MyModel"}, "MyMaker MyModel"},
		{"make without model", tags.Dict{"IFD0:Make": "MyMaker"}, Fallback},
		{"screenshot", tags.Dict{"XMP-exif:UserComment": "Screenshot"}, Screenshot},
		{"screenshot exif", tags.Dict{"ExifIFD:UserComment": " screenshot "}, Screenshot},
		{"instagram", tags.Dict{"XMP:Software": "Something Something Instagram"}, Instagram},
		{"facebook", tags.Dict{"XMP:Software": "Facebook This or The Other"}, Instagram},
		{"picsart", tags.Dict{"IFD0:Software": "PicsArt"}, PicsArt},
		{"picsart is exact", tags.Dict{"IFD0:Software": "picsart"}, Fallback},
		{"photoshop", tags.Dict{"IFD0:Software": "Adobe Photoshop CC 2019"}, Editor},
		{"gimp", tags.Dict{"XMP-xmp:CreatorTool": "x", "XMP:Software": "GIMP 2.10"}, Editor},
		{"capture one", tags.Dict{"IFD0:Software": "Capture One 21 Macintosh"}, Editor},
		{"empty", tags.Dict{tags.SourceFile: "A.jpg"}, Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.in)
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	all := tags.Dict{
		"IFD0:Make":            "MyMaker",
		"IFD0:Model":           "MyModel",
		"Keys:Make":            "MyMaker",
		"Keys:Model":           "MyModel",
		"XMP-exif:UserComment": "Screenshot",
		"XMP:Software":         "Something Something Instagram",
		"IFD0:Software":        "PicsArt",
	}
	steps := []struct {
		drop []string
		want string
	}{
		{nil, "MyMaker MyModel"},
		{[]string{"IFD0:Make", "IFD0:Model"}, "MyMaker MyModel"},
		{[]string{"Keys:Make", "Keys:Model"}, Screenshot},
		{[]string{"XMP-exif:UserComment"}, Instagram},
		{[]string{"XMP:Software"}, PicsArt},
		{[]string{"IFD0:Software"}, Fallback},
	}

	d := all.Clone()
	for _, step := range steps {
		for _, k := range step.drop {
			delete(d, k)
		}
		got, err := Classify(d)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if got != step.want {
			t.Errorf("After dropping %v: expected %q, got %q", step.drop, step.want, got)
		}
	}
}

func TestClassify_Ambiguous(t *testing.T) {
	tests := []struct {
		name string
		in   tags.Dict
	}{
		{"exif models disagree", tags.Dict{"IFD0:Make": "Apple", "IFD0:Model": "iPhone 8", "XMP-tiff:Model": "iPhone X"}},
		{"exif makes disagree", tags.Dict{"IFD0:Make": "Apple", "IFD0:Model": "iPhone 8", "XMP-tiff:Make": "Samsung"}},
		{"quicktime models disagree", tags.Dict{"Keys:Make": "Apple", "Keys:Model": "iPhone 8", "UserData:Model": "iPhone 7"}},
		{"exif and quicktime models disagree", tags.Dict{"IFD0:Make": "Apple", "IFD0:Model": "iPhone 8", "Keys:Model": "iPhone X"}},
		{"models disagree without a make", tags.Dict{"IFD0:Model": "iPhone 8", "XMP:Model": "iPhone X"}},
		{"makes disagree without a model", tags.Dict{"IFD0:Make": "Apple", "XMP-tiff:Make": "Samsung"}},
		{"quicktime makes disagree", tags.Dict{"Keys:Make": "Apple", "QuickTime:Make": "Google", "XMP-exif:UserComment": "Screenshot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.in)
			if !errors.Is(err, ErrAmbiguousManufacturer) {
				t.Errorf("Expected ErrAmbiguousManufacturer, got %v", err)
			}
		})
	}

	agreeing := tags.Dict{"IFD0:Make": "Apple", "IFD0:Model": "iPhone 8", "XMP-tiff:Model": "iPhone 8", "Keys:Model": " iPhone 8"}
	if got, err := Classify(agreeing); err != nil || got != "iPhone 8" {
		t.Errorf("Expected iPhone 8, got %q (%v)", got, err)
	}

	// the software tags are not manufacturer tags
	other := tags.Dict{"IFD0:Model": "iPhone 8", "IFD0:Software": "16.1", "XMP:Software": "Photos"}
	if got, err := Classify(other); err != nil || got != Fallback {
		t.Errorf("Expected %s, got %q (%v)", Fallback, got, err)
	}
}

func TestClassifier_CustomQuirks(t *testing.T) {
	c := &Classifier{Quirks: append([]Rule{
		{Field: "make", Value: "samsung", IgnoreCase: true, Label: "Galaxy {model}"},
	}, DefaultQuirks...)}

	got, _ := c.Classify(tags.Dict{"IFD0:Make": "SAMSUNG", "IFD0:Model": "S21"})
	if got != "Galaxy S21" {
		t.Errorf("Expected Galaxy S21, got %q", got)
	}

	got, _ = c.Classify(tags.Dict{"IFD0:Make": "Apple", "IFD0:Model": "iPhone 8"})
	if got != "iPhone 8" {
		t.Errorf("Expected default quirks to still apply, got %q", got)
	}

	empty := &Classifier{}
	got, _ = empty.Classify(tags.Dict{"IFD0:Make": "Apple", "IFD0:Model": "iPhone 8"})
	if got != "Apple iPhone 8" {
		t.Errorf("Expected plain make and model without quirks, got %q", got)
	}
}
