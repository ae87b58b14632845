package photo

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoimages/internal/pkg/coord"
)

func TestParseBoundingBox(t *testing.T) {
	box, err := ParseBoundingBox("53-52-35.233", "1-54-16.844", "53-52-35.2455", "1-54-16.85", "N", "W")
	require.NoError(t, err)

	assert.Equal(t, coord.DMS{Degrees: 53, Minutes: 52, Seconds: 35.233}, box.MinLat)
	assert.Equal(t, coord.DMS{Degrees: 1, Minutes: 54, Seconds: 16.844}, box.MinLon)
	assert.Equal(t, coord.DMS{Degrees: 53, Minutes: 52, Seconds: 35.2455}, box.MaxLat)
	assert.Equal(t, coord.DMS{Degrees: 1, Minutes: 54, Seconds: 16.85}, box.MaxLon)
	assert.Equal(t, "N", box.LatRef)
	assert.Equal(t, "W", box.LonRef)
}

func TestParseBoundingBox_InvalidCorner(t *testing.T) {
	tests := []struct {
		name   string
		args   [4]string
		corner string
	}{
		{"two tokens", [4]string{"53-52", "1-54-16", "53-52-36", "1-54-17"}, "min_lat"},
		{"non-numeric degrees", [4]string{"53-52-35", "x-54-16", "53-52-36", "1-54-17"}, "min_lon"},
		{"fractional minutes", [4]string{"53-52-35", "1-54-16", "53-52.5-36", "1-54-17"}, "max_lat"},
		{"empty", [4]string{"53-52-35", "1-54-16", "53-52-36", ""}, "max_lon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBoundingBox(tt.args[0], tt.args[1], tt.args[2], tt.args[3], "N", "W")
			require.ErrorIs(t, err, coord.ErrInvalidCoordinateFormat)
			assert.Contains(t, err.Error(), tt.corner)
		})
	}
}

func TestParseBoundingBox_RefsPassThrough(t *testing.T) {
	box, err := ParseBoundingBox("0-0-0", "0-0-0", "1-1-1", "1-1-1", "X", "")
	require.NoError(t, err)
	assert.Equal(t, "X", box.LatRef)
	assert.Empty(t, box.LonRef)
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = body
	}
	return out
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	inside := fixtureJPEG(t, "2021:07:14 10:22:41", 35240)
	outside := fixtureJPEG(t, "2021:07:14 10:22:42", 35250)
	_, _, err := svc.Ingest(ctx, inside, "inside.jpg")
	require.NoError(t, err)
	_, _, err = svc.Ingest(ctx, outside, "outside.jpg")
	require.NoError(t, err)

	data, n, err := svc.Archive(ctx, mustBox(t, "53-52-35.233", "1-54-16.844", "53-52-35.2455", "1-54-16.85", "N", "W"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	files := readArchive(t, data)
	require.Len(t, files, 1)
	assert.Equal(t, inside, files["images_archive/inside.jpg"])
}

func TestArchive_Empty(t *testing.T) {
	svc, _, _ := setupTestService(t)

	data, n, err := svc.Archive(context.Background(), mustBox(t, "0-0-0", "0-0-0", "1-1-1", "1-1-1", "N", "E"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, readArchive(t, data))
}

func TestArchive_MissingBackingFile(t *testing.T) {
	ctx := context.Background()
	svc, _, store := setupTestService(t)

	_, _, err := svc.Ingest(ctx, fixtureJPEG(t, "2021:07:14 10:22:41", 35240), "a.jpg")
	require.NoError(t, err)
	sig, _, err := svc.Ingest(ctx, fixtureJPEG(t, "2021:07:14 10:22:43", 35241), "b.jpg")
	require.NoError(t, err)
	require.NoError(t, store.Remove(ctx, store.Dir(sig), "b.jpg"))

	data, n, err := svc.Archive(ctx, mustBox(t, "53-52-0", "1-54-0", "53-52-59", "1-54-59", "N", "W"))
	var missing *MissingBackingFileError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, sig, missing.Signature)
	assert.Nil(t, data)
	assert.Zero(t, n)
}
