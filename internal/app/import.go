package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"geoimages/internal/domain/photo"
	"geoimages/internal/worker"
)

// ImportSummary counts the outcome of a directory import.
type ImportSummary struct {
	Created  int
	Existing int
	Failed   map[string]error
}

func isJPEG(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// ImportDir ingests every .jpg/.jpeg file below root with a pool of workers.
// Per-file failures are collected in the summary. A walk failure or a
// cancelled ctx stops the walk and is returned with the partial summary.
func ImportDir(ctx context.Context, svc *photo.Service, root string, workers int, logger *slog.Logger) (*ImportSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ingest := func(ctx context.Context, path string) (string, bool, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false, err
		}
		return svc.Ingest(ctx, data, filepath.Base(path))
	}

	pool := worker.NewPool(workers, ingest, logger)
	pool.Start()

	walkErr := make(chan error, 1)
	go func() {
		defer pool.Shutdown()
		walkErr <- filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !isJPEG(d.Name()) {
				return nil
			}
			if !pool.Submit(worker.Job{Ctx: ctx, Path: path}) {
				return ctx.Err()
			}
			return nil
		})
	}()

	summary := &ImportSummary{Failed: map[string]error{}}
	for r := range pool.Results() {
		switch {
		case r.Err != nil:
			summary.Failed[r.Path] = r.Err
		case r.Created:
			summary.Created++
		default:
			summary.Existing++
		}
	}

	if err := <-walkErr; err != nil {
		return summary, err
	}

	logger.Info("import finished",
		slog.String("root", root),
		slog.Int("created", summary.Created),
		slog.Int("existing", summary.Existing),
		slog.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}
