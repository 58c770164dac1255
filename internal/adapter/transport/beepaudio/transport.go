// Package beepaudio provides a MediaTransport that decodes audio with
// github.com/gopxl/beep/v2 and plays it through the system speaker.
package beepaudio

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/reeltune/reeltune/internal/adapter/media"
	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

const (
	// DefaultSampleRate is the output rate; tracks at other rates are resampled.
	DefaultSampleRate beep.SampleRate = 44100

	defaultProgressInterval = 100 * time.Millisecond
	resampleQuality         = 4
)

// Transport decodes media off the caller's goroutine and plays it through an
// Output. Listener callbacks are delivered in order by a dispatcher goroutine,
// never from inside a command.
//
// Lock order: t.mu before the output lock. The output goroutine never takes
// t.mu; end-of-stream is handed off to a fresh goroutine.
type Transport struct {
	// Dependencies
	logger *slog.Logger
	out    Output

	// Configuration
	mediaDir   string
	interval   time.Duration
	sampleRate beep.SampleRate

	// State
	listener ports.TransportListener
	current  *loadedMedia
	pending  domain.LoadID // load being decoded, NoLoad if none
	wantPlay bool
	closed   bool

	mu         sync.Mutex
	dispatch   *dispatcher
	stopTicker chan struct{}
	wg         sync.WaitGroup
}

type loadedMedia struct {
	id       domain.LoadID
	stream   beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	duration time.Duration
	ended    bool
}

// New creates a transport on the system speaker.
func New(cfg ports.TransportConfig, logger *slog.Logger) (*Transport, error) {
	return NewWithOutput(cfg, SpeakerOutput{}, DefaultSampleRate, logger)
}

// NewWithOutput creates a transport on the given output.
func NewWithOutput(cfg ports.TransportConfig, out Output, sampleRate beep.SampleRate, logger *slog.Logger) (*Transport, error) {
	if err := out.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, domain.NewTransportError("init", "", "cannot open audio output", err)
	}

	interval := cfg.ProgressInterval
	if interval <= 0 {
		interval = defaultProgressInterval
	}

	t := &Transport{
		logger:     logger.With(slog.String("transport", "beep")),
		out:        out,
		mediaDir:   cfg.MediaDir,
		interval:   interval,
		sampleRate: sampleRate,
		dispatch:   newDispatcher(),
		stopTicker: make(chan struct{}),
	}

	t.wg.Add(1)
	go t.progressRoutine()

	t.logger.Debug("beep transport initialized",
		slog.Int("sample_rate", int(sampleRate)),
		slog.Duration("progress_interval", interval))

	return t, nil
}

// SetListener registers the event listener.
func (t *Transport) SetListener(listener ports.TransportListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listener = listener
}

// Load releases whatever is loaded and starts decoding locator in the
// background. The result is reported through the listener.
func (t *Transport) Load(id domain.LoadID, locator string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrTransportClosed
	}
	if locator == "" {
		return domain.ErrInvalidLocator
	}

	t.unloadLocked()
	t.pending = id
	t.wantPlay = false

	path := t.resolve(locator)
	t.logger.Debug("decoding media", slog.Uint64("load_id", uint64(id)), slog.String("path", path))

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		stream, format, err := media.Decode(path)
		t.finishLoad(id, stream, format, err)
	}()

	return nil
}

// Play starts or resumes playback. While a load is in flight the request is
// remembered and applied when decoding finishes.
func (t *Transport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrTransportClosed
	}

	t.wantPlay = true

	switch {
	case t.current != nil:
		t.setPausedLocked(false)
		t.emitStatusLocked(t.current.id, domain.StatusPlaying)
		return nil
	case t.pending != domain.NoLoad:
		return nil
	default:
		t.wantPlay = false
		return domain.ErrNoTrackLoaded
	}
}

// Pause pauses playback, keeping the position.
func (t *Transport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrTransportClosed
	}

	t.wantPlay = false

	switch {
	case t.current != nil:
		t.setPausedLocked(true)
		t.emitStatusLocked(t.current.id, domain.StatusPaused)
		return nil
	case t.pending != domain.NoLoad:
		return nil
	default:
		return domain.ErrNoTrackLoaded
	}
}

// Seek moves to position, clamped to the media length.
func (t *Transport) Seek(position time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrTransportClosed
	}
	if t.current == nil {
		return domain.ErrNoTrackLoaded
	}

	m := t.current
	sample := m.format.SampleRate.N(position)
	if sample < 0 {
		sample = 0
	}
	if length := m.stream.Len(); sample >= length {
		sample = max(length-1, 0)
	}

	t.out.Lock()
	err := m.stream.Seek(sample)
	t.out.Unlock()
	if err != nil {
		return domain.NewTransportError("seek", "", "cannot seek", err)
	}

	m.ended = false
	t.emitProgressLocked(m, m.format.SampleRate.D(sample))
	return nil
}

// Stop stops playback and releases the loaded media.
func (t *Transport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrTransportClosed
	}

	t.unloadLocked()
	t.pending = domain.NoLoad
	t.wantPlay = false
	return nil
}

// Close stops playback, waits for background goroutines and closes the output.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.unloadLocked()
	t.pending = domain.NoLoad
	t.listener = nil
	t.mu.Unlock()

	close(t.stopTicker)
	t.wg.Wait()
	t.dispatch.stop()
	t.out.Close()

	t.logger.Debug("beep transport closed")
	return nil
}

func (t *Transport) finishLoad(id domain.LoadID, stream beep.StreamSeekCloser, format beep.Format, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.pending != id {
		if stream != nil {
			stream.Close()
		}
		return
	}
	t.pending = domain.NoLoad

	if err != nil {
		t.logger.Warn("media failed to load", slog.Uint64("load_id", uint64(id)), slog.Any("error", err))
		t.emitLocked(func(l ports.TransportListener) { l.OnLoadFailed(id, err) })
		return
	}

	var playable beep.Streamer = stream
	if format.SampleRate != t.sampleRate {
		playable = beep.Resample(resampleQuality, format.SampleRate, t.sampleRate, stream)
	}

	m := &loadedMedia{
		id:       id,
		stream:   stream,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: playable, Paused: !t.wantPlay},
		duration: format.SampleRate.D(stream.Len()),
	}
	t.current = m

	t.out.Play(beep.Seq(m.ctrl, beep.Callback(func() {
		// Runs on the output goroutine with the output lock held.
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.streamEnded(id)
		}()
	})))

	status := domain.StatusPaused
	if t.wantPlay {
		status = domain.StatusPlaying
	}
	t.emitStatusLocked(id, status)
	t.emitProgressLocked(m, 0)
}

func (t *Transport) streamEnded(id domain.LoadID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.current == nil || t.current.id != id || t.current.ended {
		return
	}

	t.current.ended = true
	t.logger.Debug("end of stream", slog.Uint64("load_id", uint64(id)))
	t.emitProgressLocked(t.current, t.current.duration)
	t.emitLocked(func(l ports.TransportListener) { l.OnTrackCompleted(id) })
}

// progressRoutine reports the position of playing media at a fixed interval.
func (t *Transport) progressRoutine() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopTicker:
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Transport) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.current
	if m == nil || m.ended || !t.wantPlay {
		return
	}

	t.out.Lock()
	position := m.format.SampleRate.D(m.stream.Position())
	t.out.Unlock()

	t.emitProgressLocked(m, position)
}

func (t *Transport) unloadLocked() {
	if t.current == nil {
		return
	}
	t.out.Clear()
	if err := t.current.stream.Close(); err != nil {
		t.logger.Debug("error closing stream", slog.Any("error", err))
	}
	t.current = nil
}

func (t *Transport) setPausedLocked(paused bool) {
	t.out.Lock()
	t.current.ctrl.Paused = paused
	t.out.Unlock()
}

func (t *Transport) emitStatusLocked(id domain.LoadID, status domain.PlaybackStatus) {
	t.emitLocked(func(l ports.TransportListener) { l.OnStatusChanged(id, status) })
}

func (t *Transport) emitProgressLocked(m *loadedMedia, position time.Duration) {
	id, duration := m.id, m.duration
	t.emitLocked(func(l ports.TransportListener) { l.OnProgressTick(id, position, duration) })
}

func (t *Transport) emitLocked(fn func(l ports.TransportListener)) {
	l := t.listener
	if l == nil {
		return
	}
	t.dispatch.push(func() { fn(l) })
}

func (t *Transport) resolve(locator string) string {
	if filepath.IsAbs(locator) || t.mediaDir == "" {
		return locator
	}
	return filepath.Join(t.mediaDir, locator)
}

// Verify that Transport implements the MediaTransport interface
var _ ports.MediaTransport = (*Transport)(nil)
