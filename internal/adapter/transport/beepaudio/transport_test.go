package beepaudio

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltune/reeltune/internal/adapter/media"
	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/logger"
	"github.com/reeltune/reeltune/internal/ports"
	"github.com/reeltune/reeltune/internal/testutil"
)

const (
	testRate = 8000
	waitFor  = 2 * time.Second
	pollStep = 5 * time.Millisecond
)

// fakeOutput is a mixer driven by hand instead of by an audio device.
type fakeOutput struct {
	mu        sync.Mutex
	streamers []beep.Streamer
	initRate  beep.SampleRate
	failInit  error
	closed    bool
}

func (o *fakeOutput) Init(sampleRate beep.SampleRate, _ int) error {
	if o.failInit != nil {
		return o.failInit
	}
	o.initRate = sampleRate
	return nil
}

func (o *fakeOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, s)
}

func (o *fakeOutput) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = nil
}

func (o *fakeOutput) Lock()   { o.mu.Lock() }
func (o *fakeOutput) Unlock() { o.mu.Unlock() }

func (o *fakeOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// pull streams n frames through every active streamer, dropping the
// ones that are drained.
func (o *fakeOutput) pull(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	buf := make([][2]float64, n)
	active := o.streamers[:0]
	for _, s := range o.streamers {
		got, ok := s.Stream(buf)
		if ok && got == n {
			active = append(active, s)
		}
	}
	o.streamers = active
}

func (o *fakeOutput) active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streamers)
}

type listenerEvent struct {
	kind     string
	id       domain.LoadID
	status   domain.PlaybackStatus
	position time.Duration
	duration time.Duration
	err      error
}

type recordingListener struct {
	mu     sync.Mutex
	events []listenerEvent
	gate   *sync.Mutex
}

func (r *recordingListener) add(e listenerEvent) {
	if r.gate != nil {
		r.gate.Lock()
		defer r.gate.Unlock()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingListener) OnProgressTick(id domain.LoadID, elapsed, duration time.Duration) {
	r.add(listenerEvent{kind: "progress", id: id, position: elapsed, duration: duration})
}

func (r *recordingListener) OnStatusChanged(id domain.LoadID, status domain.PlaybackStatus) {
	r.add(listenerEvent{kind: "status", id: id, status: status})
}

func (r *recordingListener) OnTrackCompleted(id domain.LoadID) {
	r.add(listenerEvent{kind: "completed", id: id})
}

func (r *recordingListener) OnLoadFailed(id domain.LoadID, err error) {
	r.add(listenerEvent{kind: "failed", id: id, err: err})
}

func (r *recordingListener) find(kind string) []listenerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []listenerEvent
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingListener) lastStatus() (domain.PlaybackStatus, bool) {
	statuses := r.find("status")
	if len(statuses) == 0 {
		return domain.StatusStopped, false
	}
	return statuses[len(statuses)-1].status, true
}

func newTestTransport(t *testing.T, dir string) (*Transport, *fakeOutput, *recordingListener) {
	t.Helper()

	out := &fakeOutput{}
	tr, err := NewWithOutput(ports.TransportConfig{
		MediaDir:         dir,
		ProgressInterval: 10 * time.Millisecond,
	}, out, testRate, logger.NewTestLogger())
	require.NoError(t, err)

	l := &recordingListener{}
	tr.SetListener(l)
	return tr, out, l
}

func waitForStatus(t *testing.T, l *recordingListener, want domain.PlaybackStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		got, ok := l.lastStatus()
		return ok && got == want
	}, waitFor, pollStep)
}

func TestTransport_InitFailure(t *testing.T) {
	out := &fakeOutput{failInit: errors.New("no device")}

	_, err := NewWithOutput(ports.TransportConfig{}, out, testRate, logger.NewTestLogger())

	var terr *domain.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "init", terr.Op)
}

func TestTransport_LoadAndPlay(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	dir := t.TempDir()
	media.WriteTestWAV(t, dir, "tone.wav", time.Second)

	tr, out, l := newTestTransport(t, dir)
	defer tr.Close()

	require.NoError(t, tr.Load(1, "tone.wav"))
	require.NoError(t, tr.Play())

	waitForStatus(t, l, domain.StatusPlaying)
	assert.Equal(t, 1, out.active())
	assert.Equal(t, beep.SampleRate(testRate), out.initRate)

	for _, e := range l.find("status") {
		assert.Equal(t, domain.LoadID(1), e.id)
	}

	require.Eventually(t, func() bool {
		progress := l.find("progress")
		return len(progress) > 0 && progress[len(progress)-1].duration == time.Second
	}, waitFor, pollStep)
}

func TestTransport_PauseWhileLoadingDefersPlayback(t *testing.T) {
	dir := t.TempDir()
	media.WriteTestWAV(t, dir, "tone.wav", time.Second)

	tr, _, l := newTestTransport(t, dir)
	defer tr.Close()

	require.NoError(t, tr.Load(1, "tone.wav"))
	require.NoError(t, tr.Play())
	require.NoError(t, tr.Pause())

	waitForStatus(t, l, domain.StatusPaused)

	require.NoError(t, tr.Play())
	waitForStatus(t, l, domain.StatusPlaying)
}

func TestTransport_CommandsWithNothingLoaded(t *testing.T) {
	tr, _, _ := newTestTransport(t, t.TempDir())
	defer tr.Close()

	assert.ErrorIs(t, tr.Play(), domain.ErrNoTrackLoaded)
	assert.ErrorIs(t, tr.Pause(), domain.ErrNoTrackLoaded)
	assert.ErrorIs(t, tr.Seek(time.Second), domain.ErrNoTrackLoaded)
	assert.NoError(t, tr.Stop())
	assert.ErrorIs(t, tr.Load(1, ""), domain.ErrInvalidLocator)
}

func TestTransport_LoadFailures(t *testing.T) {
	tr, _, l := newTestTransport(t, t.TempDir())
	defer tr.Close()

	require.NoError(t, tr.Load(1, "missing.mp3"), "load reports failures asynchronously")
	require.Eventually(t, func() bool { return len(l.find("failed")) == 1 }, waitFor, pollStep)

	failed := l.find("failed")[0]
	assert.Equal(t, domain.LoadID(1), failed.id)
	assert.ErrorIs(t, failed.err, domain.ErrFileNotFound)

	require.NoError(t, tr.Load(2, "clip.mp4"))
	require.Eventually(t, func() bool { return len(l.find("failed")) == 2 }, waitFor, pollStep)
	assert.ErrorIs(t, l.find("failed")[1].err, domain.ErrUnsupportedFormat)
}

func TestTransport_CompletionReported(t *testing.T) {
	dir := t.TempDir()
	media.WriteTestWAV(t, dir, "short.wav", 500*time.Millisecond)

	tr, out, l := newTestTransport(t, dir)
	defer tr.Close()

	require.NoError(t, tr.Load(3, "short.wav"))
	require.NoError(t, tr.Play())
	waitForStatus(t, l, domain.StatusPlaying)

	out.pull(testRate)

	require.Eventually(t, func() bool { return len(l.find("completed")) == 1 }, waitFor, pollStep)
	assert.Equal(t, domain.LoadID(3), l.find("completed")[0].id)
	assert.Equal(t, 0, out.active())
}

func TestTransport_ResamplesToOutputRate(t *testing.T) {
	dir := t.TempDir()
	path := media.WriteTestWAV(t, dir, "tone.wav", 250*time.Millisecond)

	out := &fakeOutput{}
	tr, err := NewWithOutput(ports.TransportConfig{}, out, 16000, logger.NewTestLogger())
	require.NoError(t, err)
	defer tr.Close()

	l := &recordingListener{}
	tr.SetListener(l)

	require.NoError(t, tr.Load(1, path), "absolute locators bypass the media dir")
	require.NoError(t, tr.Play())
	waitForStatus(t, l, domain.StatusPlaying)

	// 250ms at 16 kHz is 4000 frames.
	out.pull(3000)
	assert.Empty(t, l.find("completed"))
	out.pull(2000)
	require.Eventually(t, func() bool { return len(l.find("completed")) == 1 }, waitFor, pollStep)
}

func TestTransport_SeekClamps(t *testing.T) {
	dir := t.TempDir()
	media.WriteTestWAV(t, dir, "tone.wav", time.Second)

	tr, _, l := newTestTransport(t, dir)
	defer tr.Close()

	require.NoError(t, tr.Load(1, "tone.wav"))
	require.NoError(t, tr.Pause())
	waitForStatus(t, l, domain.StatusPaused)

	require.NoError(t, tr.Seek(10*time.Second))
	require.Eventually(t, func() bool {
		for _, e := range l.find("progress") {
			if e.position > 900*time.Millisecond {
				return e.position < time.Second
			}
		}
		return false
	}, waitFor, pollStep)

	require.NoError(t, tr.Seek(-time.Second))
}

func TestTransport_StopReleasesMedia(t *testing.T) {
	dir := t.TempDir()
	media.WriteTestWAV(t, dir, "tone.wav", time.Second)

	tr, out, l := newTestTransport(t, dir)
	defer tr.Close()

	require.NoError(t, tr.Load(1, "tone.wav"))
	require.NoError(t, tr.Play())
	waitForStatus(t, l, domain.StatusPlaying)

	require.NoError(t, tr.Stop())
	assert.Equal(t, 0, out.active())
	assert.ErrorIs(t, tr.Play(), domain.ErrNoTrackLoaded)
}

func TestTransport_ListenerNeverCalledFromCommands(t *testing.T) {
	dir := t.TempDir()
	media.WriteTestWAV(t, dir, "tone.wav", time.Second)

	tr, _, l := newTestTransport(t, dir)
	defer tr.Close()

	gate := &sync.Mutex{}
	l.gate = gate

	gate.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = tr.Load(1, "tone.wav")
		_ = tr.Play()
		time.Sleep(20 * time.Millisecond)
		_ = tr.Pause()
		_ = tr.Seek(time.Millisecond)
		_ = tr.Stop()
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("a command blocked on the listener")
	}
	gate.Unlock()
}

func TestTransport_Close(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	dir := t.TempDir()
	media.WriteTestWAV(t, dir, "tone.wav", time.Second)

	tr, out, l := newTestTransport(t, dir)
	require.NoError(t, tr.Load(1, "tone.wav"))
	require.NoError(t, tr.Play())
	waitForStatus(t, l, domain.StatusPlaying)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	assert.True(t, out.closed)
	assert.ErrorIs(t, tr.Load(2, "tone.wav"), domain.ErrTransportClosed)
	assert.ErrorIs(t, tr.Play(), domain.ErrTransportClosed)
	assert.ErrorIs(t, tr.Stop(), domain.ErrTransportClosed)
}

func TestTransport_ResolveLocator(t *testing.T) {
	tr := &Transport{mediaDir: "/data/media"}
	assert.Equal(t, filepath.Join("/data/media", "a.mp3"), tr.resolve("a.mp3"))
	assert.Equal(t, "/elsewhere/b.mp3", tr.resolve("/elsewhere/b.mp3"))

	tr.mediaDir = ""
	assert.Equal(t, "c.mp3", tr.resolve("c.mp3"))
}
