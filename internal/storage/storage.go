// Package storage holds image files. Each signature owns one directory (or
// object prefix) containing the original upload and an optional thumbnail.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidName    = errors.New("invalid object name")
)

// Object is an open stored file. Callers must Close it.
type Object struct {
	io.ReadCloser
	Size    int64
	ModTime time.Time
}

// Store is the backing storage for image files. dir values are the ones
// returned by Dir and persisted in the index.
type Store interface {
	Dir(signature string) string
	// Prepare makes dir ready for writes and reports whether this call created it.
	Prepare(ctx context.Context, dir string) (created bool, err error)
	Put(ctx context.Context, dir, name string, data []byte) error
	Open(ctx context.Context, dir, name string) (*Object, error)
	Exists(ctx context.Context, dir, name string) (bool, error)
	Remove(ctx context.Context, dir, name string) error
	RemoveDir(ctx context.Context, dir string) error
}

// CleanName reduces an uploaded file name to a safe base name.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

func checkName(name string) error {
	if name == "" || CleanName(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// checkChildDir requires dir to be a direct child of root.
func checkChildDir(root, dir string) error {
	clean := filepath.Clean(dir)
	if filepath.Dir(clean) != filepath.Clean(root) {
		return fmt.Errorf("%w: %q is outside %q", ErrInvalidName, dir, root)
	}
	return checkName(filepath.Base(clean))
}
