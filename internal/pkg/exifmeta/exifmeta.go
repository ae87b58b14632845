// Package exifmeta pulls the few EXIF fields the index needs out of a JPEG
// and reports missing or malformed tags as named errors.
package exifmeta

import (
	"fmt"
	"io"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"geoimages/internal/pkg/coord"
)

// Metadata is the typed subset of an image's EXIF block.
type Metadata struct {
	DateTime     string
	Latitude     []coord.Rational
	LatitudeRef  string
	Longitude    []coord.Rational
	LongitudeRef string
}

// Extract decodes the EXIF block of r. A missing block or DateTime tag yields
// coord.ErrMissingTimestamp; absent or non-rational GPS tags yield
// coord.ErrMalformedGPSData. GPS values keep every component the tag carries;
// coord.Decompose enforces the count.
func Extract(r io.Reader) (*Metadata, error) {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: %v", coord.ErrMissingTimestamp, err)
	}

	dt, err := stringTag(x, exif.DateTime)
	if err != nil || dt == "" {
		return nil, coord.ErrMissingTimestamp
	}

	meta := &Metadata{DateTime: dt}

	if meta.Latitude, err = rationalTag(x, exif.GPSLatitude); err != nil {
		return nil, err
	}
	if meta.Longitude, err = rationalTag(x, exif.GPSLongitude); err != nil {
		return nil, err
	}
	if meta.LatitudeRef, err = stringTag(x, exif.GPSLatitudeRef); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", coord.ErrMalformedGPSData, exif.GPSLatitudeRef, err)
	}
	if meta.LongitudeRef, err = stringTag(x, exif.GPSLongitudeRef); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", coord.ErrMalformedGPSData, exif.GPSLongitudeRef, err)
	}

	return meta, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) (string, error) {
	tag, err := x.Get(name)
	if err != nil {
		return "", err
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00")), nil
}

func rationalTag(x *exif.Exif, name exif.FieldName) ([]coord.Rational, error) {
	tag, err := x.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", coord.ErrMalformedGPSData, name, err)
	}
	if tag.Format() != tiff.RatVal {
		return nil, fmt.Errorf("%w: %s is not rational", coord.ErrMalformedGPSData, name)
	}
	values := make([]coord.Rational, 0, tag.Count)
	for i := 0; i < int(tag.Count); i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", coord.ErrMalformedGPSData, name, i, err)
		}
		values = append(values, coord.Rational{Num: num, Den: den})
	}
	return values, nil
}
