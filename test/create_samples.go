// Command create_samples writes a small media folder and a matching tag file
// so the photoname commands can be tried without exiftool:
//
//	go run ./test/create_samples.go /tmp/samples
//	PHOTONAME_TAGS_FILE=/tmp/samples/tags.json PHOTONAME_STORE_FILE=/tmp/samples/library.json photoname build
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"photoname/internal/tags"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8((x + y) % 255)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return img
}

type sample struct {
	name string
	tags tags.Dict
}

var samples = []sample{
	{"IMG_0001.JPG", tags.Dict{
		"IFD0:Make": "Apple", "IFD0:Model": "iPhone 13 mini",
		"ExifIFD:DateTimeOriginal": "2024:03:15 14:30:22", "ExifIFD:OffsetTimeOriginal": "+01:00",
	}},
	{"IMG_0002.JPG", tags.Dict{
		"IFD0:Make": "Apple", "IFD0:Model": "iPhone 13 mini",
		"ExifIFD:DateTimeOriginal": "2024:03:15 14:31:05", "ExifIFD:OffsetTimeOriginal": "+01:00",
		"GPS:GPSLatitudeRef": "North", "GPS:GPSLatitude": `41 deg 23' 12.00"`,
		"GPS:GPSLongitudeRef": "East", "GPS:GPSLongitude": `2 deg 10' 12.00"`,
	}},
	{"IMG_0003.PNG", tags.Dict{"XMP-exif:UserComment": "Screenshot", "XMP:DateCreated": "2024:03:15 15:00:00"}},
	{"IMG-20240315-WA0001.jpg", tags.Dict{}},
	{"DSC_0100.JPG", tags.Dict{
		"IFD0:Make": "FUJIFILM", "IFD0:Model": "X-T3",
		"ExifIFD:DateTimeOriginal": "2024:03:16 09:00:00",
	}},
	{"edited.jpg", tags.Dict{"IFD0:Software": "Adobe Photoshop CC 2019", "XMP:CreateDate": "2024-03-17T10:00:00+02:00"}},
}

func main() {
	dir := "samples"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Error creating %s: %v\n", dir, err)
		os.Exit(1)
	}

	img := createTestImage(400, 300)
	var dicts []tags.Dict

	for _, s := range samples {
		path := filepath.Join(dir, s.name)
		file, err := os.Create(path)
		if err != nil {
			fmt.Printf("Error creating %s: %v\n", path, err)
			continue
		}

		// the tag file carries the metadata, the images have none
		options := &jpeg.Options{Quality: 85}
		if err := jpeg.Encode(file, img, options); err != nil {
			fmt.Printf("Error encoding %s: %v\n", path, err)
		} else {
			fmt.Printf("Created sample file: %s\n", path)
		}
		file.Close()

		d := s.tags.Clone()
		d[tags.SourceFile] = path
		dicts = append(dicts, d)
	}

	sidecar := filepath.Join(dir, "IMG_0001.AAE")
	if err := os.WriteFile(sidecar, []byte("<plist/>\n"), 0644); err != nil {
		fmt.Printf("Error creating %s: %v\n", sidecar, err)
	}

	tagFile := filepath.Join(dir, "tags.json")
	if err := tags.Store(tagFile, dicts); err != nil {
		fmt.Printf("Error writing %s: %v\n", tagFile, err)
		os.Exit(1)
	}
	fmt.Printf("\nSample folder ready, tags in %s\n", tagFile)
}
