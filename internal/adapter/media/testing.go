package media

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

const testSampleRate = 8000

// silence streams n frames of silence.
type silence struct {
	remaining int
}

func (s *silence) Stream(samples [][2]float64) (int, bool) {
	if s.remaining <= 0 {
		return 0, false
	}
	n := min(len(samples), s.remaining)
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{}
	}
	s.remaining -= n
	return n, true
}

func (s *silence) Err() error { return nil }

// WriteTestWAV writes a silent 16-bit stereo WAV file of the given length
// into dir and returns its path.
func WriteTestWAV(t testing.TB, dir, name string, length time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav fixture: %v", err)
	}
	defer f.Close()

	format := beep.Format{
		SampleRate:  testSampleRate,
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(f, &silence{remaining: format.SampleRate.N(length)}, format); err != nil {
		t.Fatalf("encode wav fixture: %v", err)
	}

	return path
}
