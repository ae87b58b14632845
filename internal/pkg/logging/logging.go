package logging

import (
	"log/slog"
	"os"
)

// New returns the process logger: JSON for prod-like environments, text
// otherwise. It also becomes the slog default.
func New(prodLike bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var h slog.Handler
	if prodLike {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
