package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const strongTestSecret = "thisisasecretkeythatis32charslong!!"

// productionEnv is a complete, valid production environment.
func productionEnv(extra ...string) []string {
	return append([]string{
		"APP_ENV=production",
		"SECRET_KEY=" + strongTestSecret,
		"DATABASE_URL=postgres://app:pw@db.internal:5432/app",
		"REDIS_URL=redis://cache.internal:6379/0",
		"CORS_ORIGINS=https://app.example",
	}, extra...)
}

func newTestManager(t *testing.T, environ []string, overrideFile string) *Manager {
	t.Helper()
	return NewManager(ManagerOptions{
		Environ:      func() []string { return environ },
		OverrideFile: overrideFile,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// writeOverrideFile writes content to a temporary override file.
func writeOverrideFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
