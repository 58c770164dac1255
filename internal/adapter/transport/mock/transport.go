// Package mock provides an in-memory implementation of the MediaTransport interface.
// It records every command it receives and lets tests drive listener events by
// hand, so session logic can be exercised without an audio device.
package mock

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

// Op names a transport command.
type Op string

// Recorded command names.
const (
	OpLoad  Op = "load"
	OpPlay  Op = "play"
	OpPause Op = "pause"
	OpSeek  Op = "seek"
	OpStop  Op = "stop"
)

// Command is one recorded call on the transport.
type Command struct {
	Op       Op
	LoadID   domain.LoadID
	Locator  string
	Position time.Duration
}

// Transport is a recording MediaTransport.
//
// Thread-safety: This implementation is thread-safe. Listener callbacks
// triggered through the Emit helpers run on the caller's goroutine without
// the transport lock held.
type Transport struct {
	logger   *slog.Logger
	listener ports.TransportListener

	commands []Command
	loadID   domain.LoadID
	locator  string
	status   domain.PlaybackStatus
	position time.Duration
	closed   bool

	// Behavior configuration (for testing error scenarios)
	failLoad bool
	failPlay bool
	failSeek bool

	mu sync.Mutex
}

// NewTransport creates a new mock transport.
func NewTransport(logger *slog.Logger) *Transport {
	return &Transport{
		logger: logger.With(slog.String("transport", "mock")),
		status: domain.StatusStopped,
	}
}

// SetFailLoad makes Load return an error synchronously.
func (m *Transport) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay makes Play return an error.
func (m *Transport) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetFailSeek makes Seek return an error.
func (m *Transport) SetFailSeek(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSeek = fail
}

// SetListener registers the event listener.
func (m *Transport) SetListener(listener ports.TransportListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = listener
}

// Load records a load. It never notifies the listener.
func (m *Transport) Load(id domain.LoadID, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrTransportClosed
	}

	m.commands = append(m.commands, Command{Op: OpLoad, LoadID: id, Locator: locator})

	if locator == "" {
		return domain.ErrInvalidLocator
	}
	if m.failLoad {
		return domain.NewTransportError("load", locator, "mock load failed", nil)
	}

	m.loadID = id
	m.locator = locator
	m.position = 0
	m.status = domain.StatusLoading

	return nil
}

// Play records a play.
func (m *Transport) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrTransportClosed
	}

	m.commands = append(m.commands, Command{Op: OpPlay, LoadID: m.loadID})

	if m.failPlay {
		return domain.NewTransportError("play", m.locator, "mock play failed", nil)
	}
	if m.locator == "" {
		return domain.ErrNoTrackLoaded
	}

	m.status = domain.StatusPlaying
	return nil
}

// Pause records a pause.
func (m *Transport) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrTransportClosed
	}

	m.commands = append(m.commands, Command{Op: OpPause, LoadID: m.loadID})

	if m.locator == "" {
		return domain.ErrNoTrackLoaded
	}

	m.status = domain.StatusPaused
	return nil
}

// Seek records a seek.
func (m *Transport) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrTransportClosed
	}

	m.commands = append(m.commands, Command{Op: OpSeek, LoadID: m.loadID, Position: position})

	if m.failSeek {
		return domain.NewTransportError("seek", m.locator, "mock seek failed", nil)
	}
	if m.locator == "" {
		return domain.ErrNoTrackLoaded
	}

	m.position = position
	return nil
}

// Stop records a stop and unloads the media.
func (m *Transport) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrTransportClosed
	}

	m.commands = append(m.commands, Command{Op: OpStop, LoadID: m.loadID})

	m.locator = ""
	m.position = 0
	m.status = domain.StatusStopped
	return nil
}

// Close marks the transport closed. Further commands fail.
func (m *Transport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.listener = nil
	m.logger.Debug("mock transport closed")
	return nil
}

// Commands returns a copy of all recorded commands in order.
func (m *Transport) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.commands)
}

// Ops returns just the operation names of recorded commands.
func (m *Transport) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make([]Op, len(m.commands))
	for i, c := range m.commands {
		ops[i] = c.Op
	}
	return ops
}

// Loads returns the recorded load commands.
func (m *Transport) Loads() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	var loads []Command
	for _, c := range m.commands {
		if c.Op == OpLoad {
			loads = append(loads, c)
		}
	}
	return loads
}

// ClearCommands forgets the recorded commands.
func (m *Transport) ClearCommands() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = nil
}

// LoadID returns the ID of the most recent successful load.
func (m *Transport) LoadID() domain.LoadID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadID
}

// Locator returns the loaded locator, or "" after Stop.
func (m *Transport) Locator() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locator
}

// Status returns the simulated transport status.
func (m *Transport) Status() domain.PlaybackStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Position returns the simulated playback position.
func (m *Transport) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// EmitProgress reports a progress tick for the current load.
func (m *Transport) EmitProgress(elapsed, duration time.Duration) {
	id, l := m.current()
	if l != nil {
		l.OnProgressTick(id, elapsed, duration)
	}
}

// EmitStatus reports a status change for the current load.
func (m *Transport) EmitStatus(status domain.PlaybackStatus) {
	id, l := m.current()
	if l != nil {
		l.OnStatusChanged(id, status)
	}
}

// EmitCompleted reports end of stream for the current load.
func (m *Transport) EmitCompleted() {
	id, l := m.current()
	if l != nil {
		l.OnTrackCompleted(id)
	}
}

// EmitLoadFailed reports an asynchronous load failure for the current load.
func (m *Transport) EmitLoadFailed(err error) {
	id, l := m.current()
	if l != nil {
		l.OnLoadFailed(id, err)
	}
}

// Listener returns the registered listener so tests can deliver events
// carrying an arbitrary (for example stale) load ID.
func (m *Transport) Listener() ports.TransportListener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listener
}

func (m *Transport) current() (domain.LoadID, ports.TransportListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadID, m.listener
}

// Verify that Transport implements the MediaTransport interface
var _ ports.MediaTransport = (*Transport)(nil)
