package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name, slog.LevelInfo))
		})
	}
}

func TestDefaultConfig_EnvOverride(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	assert.Equal(t, slog.LevelDebug, DefaultConfig().Level)

	t.Setenv(EnvLevel, "")
	assert.Equal(t, slog.LevelInfo, DefaultConfig().Level)
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	log.Debug("hidden")
	log.Info("shown", slog.String("track_id", "t1"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"track_id":"t1"`)
}

func TestResolveLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, slog.LevelWarn, ResolveLevel("warn"))
	assert.Equal(t, slog.LevelInfo, ResolveLevel("loud"))

	t.Setenv(EnvLevel, "debug")
	assert.Equal(t, slog.LevelDebug, ResolveLevel("error"))

	t.Setenv(EnvLevel, "bogus")
	assert.Equal(t, slog.LevelError, ResolveLevel("error"))
}

func TestNewTestLogger_Levels(t *testing.T) {
	ctx := context.Background()

	t.Setenv(EnvTestDebug, "")
	t.Setenv(EnvLevel, "")
	quiet := NewTestLogger()
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	t.Setenv(EnvTestDebug, "1")
	assert.True(t, NewTestLogger().Enabled(ctx, slog.LevelDebug))

	t.Setenv(EnvLevel, "error")
	assert.False(t, NewTestLogger().Enabled(ctx, slog.LevelWarn))
}

func TestNewCaptureLogger(t *testing.T) {
	log, buf := NewCaptureLogger()

	log.Debug("catalog opened", slog.String("path", ":memory:"))

	assert.Contains(t, buf.String(), "msg=\"catalog opened\"")
	assert.Contains(t, buf.String(), "path=:memory:")
}
