package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvironmentKeepsRecognizedVariables(t *testing.T) {
	raw := ReadEnvironment(DefaultRegistry(), []string{
		"PATH=/usr/bin",
		"HOME=/root",
		"SECRET_KEY=abc=def",
		"APP_ENV=testing",
		"APP_FEATURE_X=on",
		"DB_POOL_SIZE=",
		"malformed",
	})

	assert.Equal(t, RawSettings{
		"SECRET_KEY":    "abc=def",
		"APP_ENV":       "testing",
		"APP_FEATURE_X": "on",
		"DB_POOL_SIZE":  "",
	}, raw)
}

func TestReadOverrideFile(t *testing.T) {
	path := writeOverrideFile(t, `# local overrides
DATABASE_URL=postgres://localhost:5432/app

LOG_LEVEL=INFO
export CACHE_KEY_PREFIX="quoted_"
CORS_ORIGINS=http://a.example,http://b.example
`)

	raw, err := ReadOverrideFile(path)
	require.NoError(t, err)
	assert.Equal(t, RawSettings{
		"DATABASE_URL":     "postgres://localhost:5432/app",
		"LOG_LEVEL":        "INFO",
		"CACHE_KEY_PREFIX": "quoted_",
		"CORS_ORIGINS":     "http://a.example,http://b.example",
	}, raw)
}

func TestReadOverrideFileWithoutPath(t *testing.T) {
	raw, err := ReadOverrideFile("")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestReadOverrideFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.env")

	_, err := ReadOverrideFile(path)

	var fileErr *FileReadError
	require.True(t, errors.As(err, &fileErr), "expected FileReadError, got %v", err)
	assert.Equal(t, path, fileErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMergeEnvironmentWins(t *testing.T) {
	file := RawSettings{"LOG_LEVEL": "INFO", "UPLOAD_FOLDER": "files/"}
	env := RawSettings{"LOG_LEVEL": "ERROR", "SERVER_PORT": "9090"}

	merged := Merge(file, env)

	assert.Equal(t, RawSettings{
		"LOG_LEVEL":     "ERROR",
		"UPLOAD_FOLDER": "files/",
		"SERVER_PORT":   "9090",
	}, merged)
	assert.Equal(t, "INFO", file["LOG_LEVEL"], "inputs are not modified")
}

func TestSourceFollowsMergePrecedence(t *testing.T) {
	file := RawSettings{"LOG_LEVEL": "INFO", "SERVER_PORT": "7000", "UPLOAD_FOLDER": "files/"}
	env := RawSettings{"LOG_LEVEL": "  ", "SERVER_PORT": "9000"}

	assert.Equal(t, "", source("LOG_LEVEL", file, env), "a blank environment value shadows the file")
	assert.Equal(t, "env", source("SERVER_PORT", file, env))
	assert.Equal(t, "file", source("UPLOAD_FOLDER", file, env))
	assert.Equal(t, "", source("CACHE_TYPE", file, env))
}

func TestMergeBlankEnvironmentValueShadowsFile(t *testing.T) {
	merged := Merge(RawSettings{"LOG_LEVEL": "INFO"}, RawSettings{"LOG_LEVEL": " ", "LOG_FILE": ""})

	assert.Equal(t, RawSettings{"LOG_LEVEL": " ", "LOG_FILE": ""}, merged)
}

func TestReadEnvironmentSkipsConfigFileKey(t *testing.T) {
	raw := ReadEnvironment(DefaultRegistry(), []string{
		"APP_CONFIG_FILE=/etc/app.env",
		"APP_ENV=production",
	})

	assert.Equal(t, RawSettings{"APP_ENV": "production"}, raw)
}
