package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/source"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.PreferredOrigin() != source.OriginRepo {
		t.Errorf("Prefer = %s, want repo", cfg.Prefer)
	}
	if cfg.Cache.Backend != BackendFile || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if filepath.Base(cfg.DBPath) != "registry.db" {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvBuildDir, "")

	path := writeConfig(t, `
prefer = "AUR"
sudo = false
build_dir = "/var/tmp/aurorus"

[cache]
backend = "redis"
ttl = "6h"
redis_addr = "cache:6379"
redis_db = 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.PreferredOrigin() != source.OriginAUR {
		t.Errorf("Prefer = %s, want aur", cfg.Prefer)
	}
	if cfg.Sudo {
		t.Error("Sudo should be false")
	}
	if cfg.BuildDir != "/var/tmp/aurorus" {
		t.Errorf("BuildDir = %s", cfg.BuildDir)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL.Duration != 6*time.Hour ||
		cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Pacman != "pacman" {
		t.Errorf("unset keys should keep defaults, Pacman = %q", cfg.Pacman)
	}
	if cfg.Path != path {
		t.Errorf("Path = %s, want %s", cfg.Path, path)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `db_path = "/from/file.db"`)
	t.Setenv(EnvDB, "/from/env.db")
	t.Setenv(EnvBuildDir, "/env/build")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DBPath != "/from/env.db" || cfg.BuildDir != "/env/build" {
		t.Errorf("env overrides not applied: db=%s build=%s", cfg.DBPath, cfg.BuildDir)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	path := writeConfig(t, `arch = "aarch64"`)
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Arch != "aarch64" {
		t.Errorf("Arch = %s", cfg.Arch)
	}
}

func TestLoadMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	if _, err := Load(missing); !aerr.Is(err, aerr.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing file error = %v, want INVALID_CONFIG", err)
	}

	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file should not fail: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", `prefer = `},
		{"unknown key", `colour = "blue"`},
		{"unknown prefer", `prefer = "flatpak"`},
		{"unknown backend", "[cache]\nbackend = \"memcached\""},
		{"bad ttl", "[cache]\nttl = \"soon\""},
		{"negative ttl", "[cache]\nttl = \"-1h\""},
		{"bad aur url", `aur_url = "aur.archlinux.org"`},
		{"empty pacman", `pacman = ""`},
		{"redis without addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !aerr.Is(err, aerr.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90m")); err != nil {
		t.Fatalf("UnmarshalText() failed: %v", err)
	}
	if d.Duration != 90*time.Minute {
		t.Errorf("Duration = %v", d.Duration)
	}
	text, _ := d.MarshalText()
	if string(text) != "1h30m0s" {
		t.Errorf("MarshalText() = %s", text)
	}
}
