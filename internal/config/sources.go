package config

import (
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix marks application variables that are read even when they are not
// registered, so that misspelled or retired keys show up as warnings.
const EnvPrefix = "APP_"

// ConfigFileKey names the override file for the binary that resolves the
// configuration. It is a bootstrap setting, not an option.
const ConfigFileKey = "APP_CONFIG_FILE"

// bootstrapKeys are read before resolution and are never options.
var bootstrapKeys = []string{EnvironmentKey, ConfigFileKey}

func isBootstrapKey(key string) bool {
	return slices.Contains(bootstrapKeys, key)
}

// RawSettings maps option keys to unparsed values.
type RawSettings map[string]string

// ReadEnvironment collects recognized variables from environ, which uses the
// KEY=value form of os.Environ. A variable is recognized when it is a key of
// reg, the environment selector, or starts with EnvPrefix. ConfigFileKey is
// left out.
func ReadEnvironment(reg *Registry, environ []string) RawSettings {
	raw := make(RawSettings)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if key == ConfigFileKey {
			continue
		}
		if _, known := reg.Lookup(key); known || key == EnvironmentKey || strings.HasPrefix(key, EnvPrefix) {
			raw[key] = value
		}
	}
	return raw
}

// ReadOverrideFile parses a KEY=value file. Blank lines and lines starting with
// # are ignored. An empty path means there is no override file and yields an
// empty result; an unreadable or malformed file is a *FileReadError.
func ReadOverrideFile(path string) (RawSettings, error) {
	if path == "" {
		return RawSettings{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	return RawSettings(values), nil
}

// Merge combines file and environment settings. A variable present in the
// environment always wins, even when it is blank.
func Merge(file, env RawSettings) RawSettings {
	merged := make(RawSettings, len(file)+len(env))
	for k, v := range file {
		merged[k] = v
	}
	for k, v := range env {
		merged[k] = v
	}
	return merged
}

// source reports which layer supplied the value for key, following the
// precedence of Merge. A blank value supplies nothing, so it yields "".
func source(key string, file, env RawSettings) string {
	layer, v := "", ""
	if ev, ok := env[key]; ok {
		layer, v = "env", ev
	} else if fv, ok := file[key]; ok {
		layer, v = "file", fv
	}
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return layer
}
