package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoimages/internal/config"
	"geoimages/internal/storage"
)

func TestNew_FileSystemBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DatabaseURL:    filepath.Join(dir, "images.db"),
		ImagesDir:      filepath.Join(dir, "images"),
		StorageBackend: config.StorageFS,
		ThumbnailSize:  128,
		MaxUploadSize:  1 << 20,
	}

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.IsType(t, &storage.FileSystem{}, a.Store)
	assert.EqualValues(t, 1<<20, a.Service.MaxFileSize())

	n, err := a.Service.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
