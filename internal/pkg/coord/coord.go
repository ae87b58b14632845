// Package coord converts GPS coordinates between the EXIF rational form, the
// degrees/minutes/seconds triplet stored in the index, and the "D-M-S" text
// form accepted by the query API.
package coord

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMalformedGPSData        = errors.New("malformed gps data")
	ErrInvalidCoordinateFormat = errors.New("invalid coordinate format")
	ErrMissingTimestamp        = errors.New("missing exif timestamp")
	ErrMalformedTimestamp      = errors.New("malformed exif timestamp")
)

var signaturePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}$`)

// Rational is one EXIF RATIONAL component.
type Rational struct {
	Num int64
	Den int64
}

// DMS is the magnitude of an angle. Direction is carried separately by a
// hemisphere reference letter.
type DMS struct {
	Degrees int
	Minutes int
	Seconds float64
}

// Decompose normalizes an EXIF GPS value (degrees, minutes, seconds as
// rationals) into a DMS. Degrees and minutes are truncated to integers.
func Decompose(values []Rational) (DMS, error) {
	if len(values) != 3 {
		return DMS{}, fmt.Errorf("%w: expected 3 components, got %d", ErrMalformedGPSData, len(values))
	}
	for i, v := range values {
		if v.Den == 0 {
			return DMS{}, fmt.Errorf("%w: component %d has zero denominator", ErrMalformedGPSData, i)
		}
		if (v.Num < 0) != (v.Den < 0) && v.Num != 0 {
			return DMS{}, fmt.Errorf("%w: component %d is negative", ErrMalformedGPSData, i)
		}
	}

	return DMS{
		Degrees: int(values[0].Num / values[0].Den),
		Minutes: int(values[1].Num / values[1].Den),
		Seconds: float64(values[2].Num) / float64(values[2].Den),
	}, nil
}

// Parse reads the "D-M-S" form, e.g. "53-52-35.2455".
func Parse(s string) (DMS, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return DMS{}, fmt.Errorf("%w: %q", ErrInvalidCoordinateFormat, s)
	}

	deg, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return DMS{}, fmt.Errorf("%w: degrees in %q", ErrInvalidCoordinateFormat, s)
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return DMS{}, fmt.Errorf("%w: minutes in %q", ErrInvalidCoordinateFormat, s)
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return DMS{}, fmt.Errorf("%w: seconds in %q", ErrInvalidCoordinateFormat, s)
	}

	return DMS{Degrees: deg, Minutes: min, Seconds: sec}, nil
}

// String renders d in the form accepted by Parse.
func (d DMS) String() string {
	return fmt.Sprintf("%d-%d-%s", d.Degrees, d.Minutes, strconv.FormatFloat(d.Seconds, 'f', -1, 64))
}

// Signature turns an EXIF DateTime ("YYYY:MM:DD HH:MM:SS") into the key used
// for both the index row and the storage directory. Anything that does not
// map to "YYYY-MM-DD-HH-MM-SS" is rejected with ErrMalformedTimestamp.
func Signature(dateTime string) (string, error) {
	dateTime = strings.TrimSpace(dateTime)
	if dateTime == "" {
		return "", ErrMissingTimestamp
	}

	sig := strings.NewReplacer(":", "-", " ", "-").Replace(dateTime)
	if !ValidSignature(sig) {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, dateTime)
	}
	return sig, nil
}

// ValidSignature reports whether sig has the form produced by Signature.
func ValidSignature(sig string) bool {
	return signaturePattern.MatchString(sig)
}
