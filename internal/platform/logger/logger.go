package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/confengine/internal/config"
)

// New creates a logger writing to out with the level and format from cfg.
func New(cfg config.LoggingConfig, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level(),
	}

	var handler slog.Handler
	if cfg.Structured() {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// Setup initializes the application's logging system from cfg and sets the
// result as the default logger, so the slog package functions use it too.
//
// Logs go to stdout unless a log file is configured. The returned closer
// releases the log file and must be called on shutdown; it is a no-op for stdout.
func Setup(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	var out io.WriteCloser = nopCloser{os.Stdout}
	if path := cfg.File(); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
	}

	logger := New(cfg, out)
	slog.SetDefault(logger)
	return logger, out, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
