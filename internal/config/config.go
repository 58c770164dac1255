// Package config loads the ReelTune configuration from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appDir = "reeltune"

// Transport names.
const (
	TransportBeep = "beep"
	TransportMock = "mock"
)

// Defaults applied when a key is missing.
const (
	DefaultProgressInterval = 100 * time.Millisecond
	DefaultSleepMinutes     = 30
	DefaultRecentLimit      = 25
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	MediaDir  string `koanf:"media_dir"` // where imported media is copied
	Database  string `koanf:"database"`  // catalog path; empty means the XDG data dir
	Transport string `koanf:"transport"` // "beep" or "mock"

	LogLevel  string `koanf:"log_level"`  // overridden by REELTUNE_LOG_LEVEL
	LogFormat string `koanf:"log_format"` // "text" or "json"

	ProgressInterval    string `koanf:"progress_interval"` // e.g. "100ms"
	DefaultSleepMinutes int    `koanf:"default_sleep_minutes"`
	RecentLimit         int    `koanf:"recent_limit"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		MediaDir:            filepath.Join(xdg.UserDirs.Music, "ReelTune"),
		Transport:           TransportBeep,
		LogLevel:            "info",
		LogFormat:           "text",
		ProgressInterval:    DefaultProgressInterval.String(),
		DefaultSleepMinutes: DefaultSleepMinutes,
		RecentLimit:         DefaultRecentLimit,
	}
}

// Load reads the user config and then ./config.toml; later files win.
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles reads the given TOML files in order over the defaults.
// Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.MediaDir = expandPath(cfg.MediaDir)
	cfg.Database = expandPath(cfg.Database)
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportBeep, TransportMock:
	default:
		return fmt.Errorf("%w: transport %q (want beep or mock)", ErrInvalidConfig, c.Transport)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q (want text or json)", ErrInvalidConfig, c.LogFormat)
	}

	if c.MediaDir == "" {
		return fmt.Errorf("%w: media_dir is empty", ErrInvalidConfig)
	}

	if _, err := c.Progress(); err != nil {
		return err
	}
	if c.DefaultSleepMinutes < 0 {
		return fmt.Errorf("%w: default_sleep_minutes must not be negative", ErrInvalidConfig)
	}
	if c.RecentLimit < 0 {
		return fmt.Errorf("%w: recent_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Progress returns the progress tick interval.
func (c *Config) Progress() (time.Duration, error) {
	if c.ProgressInterval == "" {
		return DefaultProgressInterval, nil
	}
	d, err := time.ParseDuration(c.ProgressInterval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: progress_interval %q", ErrInvalidConfig, c.ProgressInterval)
	}
	return d, nil
}

// DefaultSleep returns the default sleep timer duration, falling back to
// DefaultSleepMinutes when unset.
func (c *Config) DefaultSleep() time.Duration {
	if c.DefaultSleepMinutes <= 0 {
		return DefaultSleepMinutes * time.Minute
	}
	return time.Duration(c.DefaultSleepMinutes) * time.Minute
}

// Recent returns the number of recently played tracks to show.
func (c *Config) Recent() int {
	if c.RecentLimit <= 0 {
		return DefaultRecentLimit
	}
	return c.RecentLimit
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/reeltune/config.toml
		filepath.Join(xdg.ConfigHome, appDir, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
