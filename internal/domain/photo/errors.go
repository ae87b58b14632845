package photo

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("image not found")
	ErrDuplicateSignature = errors.New("duplicate signature")
	ErrMissingBackingFile = errors.New("missing backing file")
	ErrInvalidImage       = errors.New("file is not a jpeg image")
	ErrEmptyFile          = errors.New("file is empty")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidSignature   = errors.New("invalid signature")
)

// MissingBackingFileError names the record whose file is gone from storage.
type MissingBackingFileError struct {
	Signature string
	Path      string
}

func (e *MissingBackingFileError) Error() string {
	return fmt.Sprintf("%s: signature %s (%s)", ErrMissingBackingFile, e.Signature, e.Path)
}

func (e *MissingBackingFileError) Unwrap() error { return ErrMissingBackingFile }
