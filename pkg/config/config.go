// Package config loads aurorus settings from a TOML file.
//
// Settings are layered: [Default] values, then the config file, then
// environment overrides. A missing file at the default location is not an
// error; a missing file that was asked for explicitly is.
//
// Example config.toml:
//
//	prefer = "aur"
//	sudo = true
//	build_dir = "/var/tmp/aurorus"
//
//	[cache]
//	backend = "redis"
//	ttl = "6h"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/integrations/aur"
	"github.com/matzehuels/aurorus/pkg/source"
)

// Environment variables that override file settings.
const (
	EnvConfig   = "AURORUS_CONFIG"
	EnvDB       = "AURORUS_DB"
	EnvBuildDir = "AURORUS_BUILD_DIR"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds all settings.
type Config struct {
	AURURL   string `toml:"aur_url"`
	Arch     string `toml:"arch"`
	Prefer   string `toml:"prefer"` // "repo" or "aur"
	DBPath   string `toml:"db_path"`
	BuildDir string `toml:"build_dir"`
	Sudo     bool   `toml:"sudo"`

	Pacman  string `toml:"pacman"`
	Makepkg string `toml:"makepkg"`
	Git     string `toml:"git"`

	Cache CacheConfig `toml:"cache"`

	// Path is the file the settings were read from, empty if none.
	Path string `toml:"-"`
}

// CacheConfig configures the metadata cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"` // "file", "redis" or "none"
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// Duration is a time.Duration written as a string ("24h", "30m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		AURURL:   aur.DefaultURL,
		Arch:     defaultArch(),
		Prefer:   string(source.OriginRepo),
		DBPath:   filepath.Join(dataDir(), "aurorus", "registry.db"),
		BuildDir: filepath.Join(os.TempDir(), "aurorus"),
		Sudo:     os.Geteuid() != 0,
		Pacman:   "pacman",
		Makepkg:  "makepkg",
		Git:      "git",
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       Duration{24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/aurorus/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), ".config")
	}
	return filepath.Join(dir, "aurorus", "config.toml")
}

// Load reads settings. An empty path means $AURORUS_CONFIG, or the default
// location when that is unset.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfig); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath()
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, aerr.Wrap(aerr.ErrCodeInvalidConfig, err, "invalid config %s", path)
		}
		cfg.Path = path
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, aerr.Wrap(aerr.ErrCodeInvalidConfig, err, "cannot read config %s", path)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return fmt.Errorf("parsing TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvBuildDir); v != "" {
		c.BuildDir = v
	}
}

// Validate checks settings for values aurorus cannot work with and
// normalizes Prefer.
func (c *Config) Validate() error {
	prefer, err := source.ParseOrigin(c.Prefer)
	if err != nil {
		return aerr.Wrap(aerr.ErrCodeInvalidConfig, err, "invalid prefer")
	}
	c.Prefer = string(prefer)
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return aerr.New(aerr.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return aerr.New(aerr.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return aerr.New(aerr.ErrCodeInvalidConfig, "redis cache needs redis_addr")
	}
	u, err := url.Parse(c.AURURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return aerr.New(aerr.ErrCodeInvalidConfig, "aur_url must be an http(s) URL, got %q", c.AURURL)
	}
	if c.Arch == "" {
		return aerr.New(aerr.ErrCodeInvalidConfig, "arch must not be empty")
	}
	if c.DBPath == "" {
		return aerr.New(aerr.ErrCodeInvalidConfig, "db_path must not be empty")
	}
	for key, bin := range map[string]string{"pacman": c.Pacman, "makepkg": c.Makepkg, "git": c.Git} {
		if bin == "" {
			return aerr.New(aerr.ErrCodeInvalidConfig, "%s must not be empty", key)
		}
	}
	return nil
}

// PreferredOrigin returns Prefer as an origin.
func (c *Config) PreferredOrigin() source.Origin { return source.Origin(c.Prefer) }

func defaultArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	}
	return runtime.GOARCH
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return os.TempDir()
}
