package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoimages/internal/config"
	"geoimages/internal/pkg/coord"
	"geoimages/internal/testutil"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DatabaseURL:    filepath.Join(dir, "images.db"),
		ImagesDir:      filepath.Join(dir, "images"),
		StorageBackend: config.StorageFS,
		ThumbnailSize:  64,
		MaxUploadSize:  1 << 20,
	}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	src := filepath.Join(dir, "src")
	fixture := func(dt string) []byte {
		return testutil.JPEG(t, 16, 16, testutil.Fixture(dt, "N", [3]uint32{53, 52, 35240}, "W", [3]uint32{1, 54, 16847}))
	}
	writeFile(t, filepath.Join(src, "a.jpg"), fixture("2021:07:14 10:22:41"))
	writeFile(t, filepath.Join(src, "nested", "b.JPEG"), fixture("2021:07:14 10:22:42"))
	writeFile(t, filepath.Join(src, "copy-of-a.jpg"), fixture("2021:07:14 10:22:41"))
	writeFile(t, filepath.Join(src, "nogps.jpg"), testutil.JPEG(t, 16, 16, &testutil.EXIF{DateTime: "2021:07:14 10:22:43"}))
	writeFile(t, filepath.Join(src, "readme.txt"), []byte("ignored"))

	summary, err := ImportDir(context.Background(), a.Service, src, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Existing)
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[filepath.Join(src, "nogps.jpg")], coord.ErrMalformedGPSData)

	n, err := a.Service.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestImportDir_MissingRoot(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DatabaseURL:    filepath.Join(dir, "images.db"),
		ImagesDir:      filepath.Join(dir, "images"),
		StorageBackend: config.StorageFS,
		ThumbnailSize:  64,
		MaxUploadSize:  1 << 20,
	}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = ImportDir(context.Background(), a.Service, filepath.Join(dir, "nope"), 2, nil)
	assert.Error(t, err)
}

func TestImportDir_StopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DatabaseURL:    filepath.Join(dir, "images.db"),
		ImagesDir:      filepath.Join(dir, "images"),
		StorageBackend: config.StorageFS,
		ThumbnailSize:  64,
		MaxUploadSize:  1 << 20,
	}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	src := filepath.Join(dir, "src")
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		writeFile(t, filepath.Join(src, name), []byte("not read"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := ImportDir(ctx, a.Service, src, 2, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Failed, "no per-file failures once the caller gave up")
	assert.Zero(t, summary.Created)
}
