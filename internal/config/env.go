package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Env holds path and logging overrides read from the environment.
type Env struct {
	DBPath     string `env:"TUISTREAM_DB"`
	ConfigPath string `env:"TUISTREAM_CONFIG"`
	ContentDir string `env:"TUISTREAM_CONTENT_DIR"`
	LogLevel   string `env:"TUISTREAM_LOG_LEVEL" envDefault:"warn"`
}

// ParseEnv reads Env and fills unset paths with XDG defaults.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if e.DBPath == "" {
		e.DBPath = DefaultDBPath()
	}
	if e.ConfigPath == "" {
		e.ConfigPath = DefaultConfigPath()
	}
	if e.ContentDir == "" {
		e.ContentDir = DefaultContentDir()
	}
	return e, nil
}

// ResolveContent returns path unchanged when it exists as given or is
// absolute, otherwise it is looked up in dir.
func ResolveContent(path, dir string, exists func(string) bool) string {
	if path == "" || filepath.IsAbs(path) || exists(path) {
		return path
	}
	candidate := filepath.Join(dir, path)
	if exists(candidate) {
		return candidate
	}
	return path
}
