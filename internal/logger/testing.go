package logger

import (
	"bytes"
	"log/slog"
	"os"
	"sync"
)

// EnvTestDebug turns on debug output in tests.
const EnvTestDebug = "TEST_DEBUG"

// NewTestLogger creates a logger for tests.
//
// Output is quiet (WARN) unless TEST_DEBUG is set. REELTUNE_LOG_LEVEL, when
// it names a level, wins over both, same as in the application.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv(EnvTestDebug) != "" {
		level = slog.LevelDebug
	}
	if envLevel := os.Getenv(EnvLevel); envLevel != "" {
		level = ParseLevel(envLevel, level)
	}

	return NewLogger(Config{Level: level, Format: "text", Output: os.Stdout})
}

// CaptureBuffer collects log output for assertions. Safe for concurrent writers.
type CaptureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *CaptureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *CaptureBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewCaptureLogger returns a debug logger that writes into a CaptureBuffer.
func NewCaptureLogger() (*slog.Logger, *CaptureBuffer) {
	buf := &CaptureBuffer{}
	return NewLogger(Config{Level: slog.LevelDebug, Format: "text", Output: buf}), buf
}
