package photo

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"log/slog"
	"path"
	"time"

	"golang.org/x/crypto/blake2b"

	"geoimages/internal/pkg/coord"
	"geoimages/internal/pkg/exifmeta"
	"geoimages/internal/storage"
)

const (
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50 MB
)

type Options struct {
	ThumbnailSize int
	MaxFileSize   int64
}

// Service ingests, serves and deletes images and answers geo queries.
// The index and the store are kept in step: ingest rolls back storage it
// created when a later step fails, and delete removes both sides.
type Service struct {
	repo          Repository
	store         storage.Store
	locks         *keyedMutex
	thumbnailSize int
	maxFileSize   int64
	logger        *slog.Logger
}

func NewService(repo Repository, store storage.Store, logger *slog.Logger, opts Options) *Service {
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = storage.DefaultThumbnailSize
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:          repo,
		store:         store,
		locks:         newKeyedMutex(),
		thumbnailSize: opts.ThumbnailSize,
		maxFileSize:   opts.MaxFileSize,
		logger:        logger,
	}
}

// MaxFileSize is the largest upload Ingest accepts.
func (s *Service) MaxFileSize() int64 { return s.maxFileSize }

// Ingest stores a JPEG under the signature derived from its EXIF DateTime and
// indexes its GPS position. Re-ingesting a known signature is a no-op that
// returns the signature with created=false.
func (s *Service) Ingest(ctx context.Context, data []byte, filename string) (string, bool, error) {
	if len(data) == 0 {
		return "", false, ErrEmptyFile
	}
	if int64(len(data)) > s.maxFileSize {
		return "", false, ErrFileTooLarge
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || format != "jpeg" {
		return "", false, ErrInvalidImage
	}

	meta, err := exifmeta.Extract(bytes.NewReader(data))
	if err != nil {
		return "", false, err
	}
	signature, err := coord.Signature(meta.DateTime)
	if err != nil {
		return "", false, err
	}

	unlock := s.locks.Lock(signature)
	defer unlock()

	if _, err := s.repo.GetBySignature(ctx, signature); err == nil {
		s.logger.Debug("image already indexed", slog.String("signature", signature))
		return signature, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", false, err
	}

	lat, err := coord.Decompose(meta.Latitude)
	if err != nil {
		return "", false, fmt.Errorf("latitude: %w", err)
	}
	lon, err := coord.Decompose(meta.Longitude)
	if err != nil {
		return "", false, fmt.Errorf("longitude: %w", err)
	}

	name := storage.CleanName(filename)
	if name == "" {
		name = signature + ".jpg"
	}
	sum := blake2b.Sum256(data)

	rec := &ImageRecord{
		Signature:  signature,
		Filename:   name,
		StorageDir: s.store.Dir(signature),
		LatRef:     meta.LatitudeRef,
		LonRef:     meta.LongitudeRef,
		Checksum:   hex.EncodeToString(sum[:]),
		Size:       int64(len(data)),
		CreatedAt:  time.Now(),
	}
	rec.setLatitude(lat)
	rec.setLongitude(lon)

	created, err := s.store.Prepare(ctx, rec.StorageDir)
	if err != nil {
		return "", false, err
	}
	if err := s.store.Put(ctx, rec.StorageDir, name, data); err != nil {
		s.rollback(ctx, rec, created)
		return "", false, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.rollback(ctx, rec, created)
		if errors.Is(err, ErrDuplicateSignature) {
			return signature, false, nil
		}
		return "", false, fmt.Errorf("failed to save image record: %w", err)
	}

	s.logger.Info("image ingested",
		slog.String("signature", signature),
		slog.String("filename", name),
		slog.String("lat", lat.String()+rec.LatRef),
		slog.String("lon", lon.String()+rec.LonRef),
	)
	return signature, true, nil
}

// rollback undoes storage writes of a failed ingest. A directory this call
// did not create is left in place and only the written file is removed.
func (s *Service) rollback(ctx context.Context, rec *ImageRecord, createdDir bool) {
	ctx = context.WithoutCancel(ctx)

	var err error
	if createdDir {
		err = s.store.RemoveDir(ctx, rec.StorageDir)
	} else {
		err = s.store.Remove(ctx, rec.StorageDir, rec.Filename)
	}
	if err != nil {
		s.logger.Error("ingest rollback failed",
			slog.String("signature", rec.Signature),
			slog.String("dir", rec.StorageDir),
			slog.String("error", err.Error()),
		)
	}
}

// Get returns the index record for signature.
func (s *Service) Get(ctx context.Context, signature string) (*ImageRecord, error) {
	if !coord.ValidSignature(signature) {
		return nil, ErrInvalidSignature
	}
	return s.repo.GetBySignature(ctx, signature)
}

// File is an open stored image or thumbnail. Callers must Close it.
type File struct {
	*storage.Object
	Name   string
	Record *ImageRecord
}

// Open returns the stored original for signature, or its thumbnail when
// thumbnail is set. The thumbnail is generated on first request.
func (s *Service) Open(ctx context.Context, signature string, thumbnail bool) (*File, error) {
	rec, err := s.Get(ctx, signature)
	if err != nil {
		return nil, err
	}

	name := rec.Filename
	if thumbnail {
		unlock := s.locks.Lock(signature)
		name, err = storage.Thumbnail(ctx, s.store, rec.StorageDir, rec.Filename, s.thumbnailSize)
		unlock()
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, &MissingBackingFileError{Signature: signature, Path: path.Join(rec.StorageDir, rec.Filename)}
		}
		if err != nil {
			return nil, err
		}
	}

	obj, err := s.store.Open(ctx, rec.StorageDir, name)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, &MissingBackingFileError{Signature: signature, Path: path.Join(rec.StorageDir, name)}
	}
	if err != nil {
		return nil, err
	}
	return &File{Object: obj, Name: name, Record: rec}, nil
}

// Delete removes the storage directory and the index record of signature.
// An unknown signature is not an error; a malformed one is ErrInvalidSignature.
// The record is deleted even when the directory removal fails; that failure is
// still returned.
func (s *Service) Delete(ctx context.Context, signature string) error {
	if !coord.ValidSignature(signature) {
		return ErrInvalidSignature
	}

	unlock := s.locks.Lock(signature)
	defer unlock()

	rec, err := s.repo.GetBySignature(ctx, signature)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	dirErr := s.store.RemoveDir(ctx, rec.StorageDir)
	if err := s.repo.DeleteBySignature(ctx, signature); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(dirErr, err)
	}
	if dirErr != nil {
		return fmt.Errorf("failed to remove storage for %s: %w", signature, dirErr)
	}

	s.logger.Info("image deleted", slog.String("signature", signature))
	return nil
}

// Count returns the number of indexed images.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
