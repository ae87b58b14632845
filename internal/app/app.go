// Package app wires configuration into the index database, the image store
// and the photo service shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"geoimages/internal/config"
	"geoimages/internal/database"
	"geoimages/internal/domain/photo"
	"geoimages/internal/storage"
)

type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Store   storage.Store
	Service *photo.Service
	Logger  *slog.Logger
}

// New connects to the index database, migrates it and opens the configured
// store.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := database.Migrate(db, &photo.ImageRecord{}); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	svc := photo.NewService(photo.NewRepository(db), store, logger, photo.Options{
		ThumbnailSize: cfg.ThumbnailSize,
		MaxFileSize:   cfg.MaxUploadSize,
	})

	return &App{Config: cfg, DB: db, Store: store, Service: svc, Logger: logger}, nil
}

// OpenStore returns the storage backend selected by STORAGE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageMinio:
		s, err := storage.NewMinio(ctx, cfg.Minio)
		if err != nil {
			return nil, err
		}
		slog.Info("using MinIO storage", slog.String("endpoint", cfg.Minio.Endpoint), slog.String("bucket", cfg.Minio.Bucket))
		return s, nil
	default:
		s, err := storage.NewFileSystem(cfg.ImagesDir)
		if err != nil {
			return nil, err
		}
		slog.Info("using filesystem storage", slog.String("dir", cfg.ImagesDir))
		return s, nil
	}
}

func (a *App) Close() error {
	return database.Close(a.DB)
}
