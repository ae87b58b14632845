package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"geoimages/internal/storage"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "images.db"
	defaultImagesDir       = "images"
	defaultStorageBackend  = "fs"
	defaultMinioBucket     = "images"
	defaultThumbnailSize   = "256"
	defaultMaxUploadSizeMB = "50"
	defaultShutdownTimeout = "15s"
	defaultImportWorkers   = "4"

	StorageFS    = "fs"
	StorageMinio = "minio"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	DatabaseURL     string
	ImagesDir       string
	StorageBackend  string
	Minio           storage.MinioConfig
	ThumbnailSize   int
	MaxUploadSize   int64
	ShutdownTimeout time.Duration
	ImportWorkers   int
	CORSOrigins     []string
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.ImagesDir = strings.TrimSpace(getEnv("IMAGES_DIR", defaultImagesDir))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_BACKEND", defaultStorageBackend)))

	cfg.Minio = storage.MinioConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
		AccessKey: strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
		Bucket:    strings.TrimSpace(getEnv("MINIO_BUCKET", defaultMinioBucket)),
		UseSSL:    parseBoolEnv("MINIO_USE_SSL", "false"),
	}

	var err error
	cfg.ThumbnailSize, err = parseIntEnv("THUMBNAIL_SIZE", defaultThumbnailSize)
	if err != nil {
		return nil, err
	}

	maxUploadMB, err := parseIntEnv("MAX_UPLOAD_SIZE_MB", defaultMaxUploadSizeMB)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadSize = int64(maxUploadMB) << 20

	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	cfg.ImportWorkers, err = parseIntEnv("IMPORT_WORKERS", defaultImportWorkers)
	if err != nil {
		return nil, err
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	slog.Info("config loaded",
		slog.String("env", cfg.AppEnv),
		slog.String("addr", cfg.HTTPAddr),
		slog.String("storage", cfg.StorageBackend),
	)

	return cfg, nil
}

// IsProdLike reports whether the environment is production or release.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.ThumbnailSize <= 0 {
		return fmt.Errorf("THUMBNAIL_SIZE must be > 0")
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.ImportWorkers <= 0 {
		return fmt.Errorf("IMPORT_WORKERS must be > 0")
	}

	switch cfg.StorageBackend {
	case StorageFS:
		if cfg.ImagesDir == "" {
			return fmt.Errorf("IMAGES_DIR must not be empty")
		}
	case StorageMinio:
		if cfg.Minio.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT must be set when STORAGE_BACKEND=minio")
		}
		if cfg.Minio.Bucket == "" {
			return fmt.Errorf("MINIO_BUCKET must not be empty")
		}
		if isProdLike(cfg.AppEnv) && (cfg.Minio.AccessKey == "" || cfg.Minio.SecretKey == "") {
			return fmt.Errorf("in prod/release MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: fs, minio")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
