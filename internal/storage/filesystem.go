package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const DefaultRoot = "./images"

// FileSystem stores each signature as a directory under root.
type FileSystem struct {
	root string
}

func NewFileSystem(root string) (*FileSystem, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images root: %w", err)
	}
	return &FileSystem{root: root}, nil
}

func (s *FileSystem) Dir(signature string) string {
	return filepath.Join(s.root, signature)
}

func (s *FileSystem) Prepare(_ context.Context, dir string) (bool, error) {
	if err := checkChildDir(s.root, dir); err != nil {
		return false, err
	}

	err := os.Mkdir(dir, 0755)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to create directory: %w", err)
}

func (s *FileSystem) Put(_ context.Context, dir, name string, data []byte) error {
	if err := s.check(dir, name); err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := dst.Write(data); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *FileSystem) Open(_ context.Context, dir, name string) (*Object, error) {
	if err := s.check(dir, name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrObjectNotFound
	}

	return &Object{ReadCloser: f, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *FileSystem) Exists(_ context.Context, dir, name string) (bool, error) {
	if err := s.check(dir, name); err != nil {
		return false, err
	}

	info, err := os.Stat(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (s *FileSystem) Remove(_ context.Context, dir, name string) error {
	if err := s.check(dir, name); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileSystem) RemoveDir(_ context.Context, dir string) error {
	if err := checkChildDir(s.root, dir); err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

func (s *FileSystem) check(dir, name string) error {
	if err := checkChildDir(s.root, dir); err != nil {
		return err
	}
	return checkName(name)
}
