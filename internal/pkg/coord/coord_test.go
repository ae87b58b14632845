package coord

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	got, err := Decompose([]Rational{{53, 1}, {52, 1}, {35245, 1000}})
	require.NoError(t, err)
	assert.Equal(t, 53, got.Degrees)
	assert.Equal(t, 52, got.Minutes)
	assert.InDelta(t, 35.245, got.Seconds, 1e-9)
}

func TestDecompose_TruncatesDegreesAndMinutes(t *testing.T) {
	got, err := Decompose([]Rational{{107, 2}, {1049, 20}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, DMS{Degrees: 53, Minutes: 52, Seconds: 0}, got)
}

func TestDecompose_Malformed(t *testing.T) {
	cases := map[string][]Rational{
		"nil":            nil,
		"two components": {{1, 1}, {2, 1}},
		"four":           {{1, 1}, {2, 1}, {3, 1}, {4, 1}},
		"zero den":       {{1, 1}, {2, 0}, {3, 1}},
		"negative":       {{-1, 1}, {2, 1}, {3, 1}},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decompose(values)
			assert.ErrorIs(t, err, ErrMalformedGPSData)
		})
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("53-52-35.2455")
	require.NoError(t, err)
	assert.Equal(t, DMS{Degrees: 53, Minutes: 52, Seconds: 35.2455}, got)
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "1-2", "1-2-3-4", "a-2-3", "1-b-3", "1-2-c", "1.5-2-3", "-1-2-3"} {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			assert.ErrorIs(t, err, ErrInvalidCoordinateFormat)
		})
	}
}

func TestDMSString_ParsesBack(t *testing.T) {
	d := DMS{Degrees: 1, Minutes: 54, Seconds: 16.844}
	assert.Equal(t, "1-54-16.844", d.String())

	back, err := Parse(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestSignature(t *testing.T) {
	for _, in := range []string{"2021:07:14 10:22:41", "1999:12:31 23:59:59", "2000:01:01 00:00:00"} {
		sig, err := Signature(in)
		require.NoError(t, err)
		assert.NotContains(t, sig, ":")
		assert.NotContains(t, sig, " ")
		assert.Len(t, sig, len(in))
		assert.Equal(t, strings.NewReplacer(":", "-", " ", "-").Replace(in), sig)
	}

	sig, err := Signature("2021:07:14 10:22:41")
	require.NoError(t, err)
	assert.Equal(t, "2021-07-14-10-22-41", sig)
}

func TestSignature_Missing(t *testing.T) {
	_, err := Signature("  ")
	assert.ErrorIs(t, err, ErrMissingTimestamp)
}

func TestSignature_Malformed(t *testing.T) {
	for _, in := range []string{
		"..",
		"../../escaped",
		"2021:07:14 10:22:41/..",
		`2021:07:14\10:22:41`,
		"2021:07:14 10:22",
		"2021.07.14 10:22:41",
		"yesterday at noon",
		"2021:07:14 10:22:41 extra",
	} {
		_, err := Signature(in)
		assert.ErrorIs(t, err, ErrMalformedTimestamp, in)
	}
}

func TestValidSignature(t *testing.T) {
	assert.True(t, ValidSignature("2021-07-14-10-22-41"))
	assert.False(t, ValidSignature(".."))
	assert.False(t, ValidSignature("2021-07-14-10-22-41/.."))
	assert.False(t, ValidSignature(""))
}
