package exifmeta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoimages/internal/pkg/coord"
	"geoimages/internal/testutil"
)

func TestExtract(t *testing.T) {
	data := testutil.JPEG(t, 16, 16, testutil.Fixture(
		"2021:07:14 10:22:41",
		"N", [3]uint32{53, 52, 35245},
		"W", [3]uint32{1, 54, 16847},
	))

	meta, err := Extract(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "2021:07:14 10:22:41", meta.DateTime)
	assert.Equal(t, "N", meta.LatitudeRef)
	assert.Equal(t, "W", meta.LongitudeRef)
	assert.Equal(t, []coord.Rational{{Num: 53, Den: 1}, {Num: 52, Den: 1}, {Num: 35245, Den: 1000}}, meta.Latitude)

	lon, err := coord.Decompose(meta.Longitude)
	require.NoError(t, err)
	assert.Equal(t, 1, lon.Degrees)
	assert.Equal(t, 54, lon.Minutes)
	assert.InDelta(t, 16.847, lon.Seconds, 1e-9)
}

func TestExtract_NoEXIF(t *testing.T) {
	_, err := Extract(bytes.NewReader(testutil.JPEG(t, 8, 8, nil)))
	assert.ErrorIs(t, err, coord.ErrMissingTimestamp)
}

func TestExtract_NoDateTime(t *testing.T) {
	meta := testutil.Fixture("", "N", [3]uint32{1, 2, 3000}, "E", [3]uint32{4, 5, 6000})
	_, err := Extract(bytes.NewReader(testutil.JPEG(t, 8, 8, meta)))
	assert.ErrorIs(t, err, coord.ErrMissingTimestamp)
}

func TestExtract_NoGPS(t *testing.T) {
	_, err := Extract(bytes.NewReader(testutil.JPEG(t, 8, 8, &testutil.EXIF{DateTime: "2021:07:14 10:22:41"})))
	assert.ErrorIs(t, err, coord.ErrMalformedGPSData)
}

func TestExtract_ShortLatitude(t *testing.T) {
	meta := testutil.Fixture("2021:07:14 10:22:41", "N", [3]uint32{1, 2, 3000}, "E", [3]uint32{4, 5, 6000})
	meta.Lat = meta.Lat[:2]

	got, err := Extract(bytes.NewReader(testutil.JPEG(t, 8, 8, meta)))
	require.NoError(t, err)
	assert.Len(t, got.Latitude, 2)

	_, err = coord.Decompose(got.Latitude)
	assert.ErrorIs(t, err, coord.ErrMalformedGPSData)
}

func TestExtract_ExtraLatitudeComponent(t *testing.T) {
	meta := testutil.Fixture("2021:07:14 10:22:41", "N", [3]uint32{1, 2, 3000}, "E", [3]uint32{4, 5, 6000})
	meta.Lat = append(meta.Lat, [2]uint32{7, 1})

	got, err := Extract(bytes.NewReader(testutil.JPEG(t, 8, 8, meta)))
	require.NoError(t, err)
	assert.Equal(t, []coord.Rational{{Num: 1, Den: 1}, {Num: 2, Den: 1}, {Num: 3000, Den: 1000}, {Num: 7, Den: 1}}, got.Latitude)

	_, err = coord.Decompose(got.Latitude)
	assert.ErrorIs(t, err, coord.ErrMalformedGPSData)
}
