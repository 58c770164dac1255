// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel is the environment variable that overrides the configured log level.
const EnvLevel = "REELTUNE_LOG_LEVEL"

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"

	// Output defaults to os.Stderr
	Output io.Writer
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// DefaultConfig returns the default logger configuration.
// REELTUNE_LOG_LEVEL (DEBUG, INFO, WARN, WARNING, ERROR) overrides the INFO default.
func DefaultConfig() Config {
	level := slog.LevelInfo
	if envLevel := os.Getenv(EnvLevel); envLevel != "" {
		level = ParseLevel(envLevel, level)
	}

	return Config{
		Level:  level,
		Format: "text",
	}
}

// ParseLevel converts a level name to a slog.Level.
// Unknown names yield fallback.
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return fallback
	}
}

// ResolveLevel parses the configured level name; REELTUNE_LOG_LEVEL, when
// set to a known name, takes precedence.
func ResolveLevel(configured string) slog.Level {
	level := ParseLevel(configured, slog.LevelInfo)
	if envLevel := os.Getenv(EnvLevel); envLevel != "" {
		level = ParseLevel(envLevel, level)
	}
	return level
}
