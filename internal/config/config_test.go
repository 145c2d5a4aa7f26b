package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Exercise.Kind != nil {
		t.Fatalf("expected empty config, got %+v", cfg.Exercise)
	}
}

func TestLoadConfigExerciseTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[exercise]\nkind = \"bubble-pop\"\ndifficulty = \"hard\"\nwpm = 240\nramp-period = \"3s\"\nseed = 9\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	ex := cfg.Exercise
	if ex.Kind == nil || *ex.Kind != "bubble-pop" {
		t.Fatalf("kind = %v", ex.Kind)
	}
	if ex.WPM == nil || *ex.WPM != 240 {
		t.Fatalf("wpm = %v", ex.WPM)
	}
	if ex.RampPeriod == nil || *ex.RampPeriod != "3s" {
		t.Fatalf("ramp-period = %v", ex.RampPeriod)
	}
	if ex.Seed == nil || *ex.Seed != 9 {
		t.Fatalf("seed = %v", ex.Seed)
	}
	if ex.Dial != nil {
		t.Fatalf("dial should be unset")
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	t.Setenv("TUISTREAM_DB", "/tmp/x.db")
	t.Setenv("TUISTREAM_CONFIG", "")
	t.Setenv("TUISTREAM_CONTENT_DIR", "")
	t.Setenv("TUISTREAM_LOG_LEVEL", "")

	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if e.DBPath != "/tmp/x.db" {
		t.Fatalf("db = %q", e.DBPath)
	}
	if e.ConfigPath != filepath.Join("/conf", "tuistream", "config.toml") {
		t.Fatalf("config = %q", e.ConfigPath)
	}
	if e.ContentDir != filepath.Join("/conf", "tuistream", "content") {
		t.Fatalf("content = %q", e.ContentDir)
	}
}

func TestResolveContent(t *testing.T) {
	known := map[string]bool{"/lib/story.yaml": true, "local.txt": true}
	exists := func(p string) bool { return known[p] }

	if got := ResolveContent("story.yaml", "/lib", exists); got != "/lib/story.yaml" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveContent("local.txt", "/lib", exists); got != "local.txt" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveContent("missing.txt", "/lib", exists); got != "missing.txt" {
		t.Fatalf("got %q", got)
	}
}
