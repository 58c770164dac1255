// Package service provides business logic for the ReelTune application.
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

// PlaybackSession is the single owner of "what is loaded, what is playing and
// what plays next". User commands and transport events both funnel through it.
//
// All state is guarded by one mutex. Transport commands are issued while the
// lock is held; bus events are queued during the operation and published once
// the lock is released, so subscribers may call back into the session.
//
// Commands own the queue, the index and the current track. Transport events
// only ever touch status and progress, and only when they carry the ID of the
// active load.
type PlaybackSession struct {
	// Dependencies (injected)
	logger    *slog.Logger
	transport ports.MediaTransport
	tracks    ports.TrackLookup
	bus       ports.EventBus
	clock     clockwork.Clock

	// State
	current      *domain.Track
	queue        []string
	currentIndex int
	status       domain.PlaybackStatus
	position     time.Duration
	duration     time.Duration
	repeat       bool
	upNext       *domain.Track
	sleep        sleepTimer

	// Load bookkeeping
	activeLoad domain.LoadID
	lastLoad   domain.LoadID

	// Concurrency control
	mu      sync.Mutex
	pending []domain.Event
	closed  bool
}

// NewPlaybackSession creates a playback session and registers it as the
// transport's listener.
func NewPlaybackSession(
	logger *slog.Logger,
	transport ports.MediaTransport,
	tracks ports.TrackLookup,
	bus ports.EventBus,
	clock clockwork.Clock,
) *PlaybackSession {
	s := &PlaybackSession{
		logger:       logger,
		transport:    transport,
		tracks:       tracks,
		bus:          bus,
		clock:        clock,
		currentIndex: -1,
		status:       domain.StatusStopped,
	}

	transport.SetListener(s)

	logger.Debug("playback session initialized")

	return s
}

// Play plays track within queue.
//
// If track is already the current track, Play toggles between paused and
// playing in place and never reloads the media. Otherwise the queue is
// replaced by queue (or by track alone when queue is empty), the current
// index is set to the position of track within it (0 if absent) and the
// track is loaded. The current track is updated before the transport
// confirms anything.
func (s *PlaybackSession) Play(track domain.Track, queue []domain.Track) error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.ErrSessionClosed
	}

	if s.current != nil && s.current.ID == track.ID && s.status != domain.StatusStopped {
		if s.status == domain.StatusPaused {
			return s.resumeLocked()
		}
		return s.pauseLocked()
	}

	if len(queue) == 0 {
		queue = []domain.Track{track}
	}

	ids := make([]string, len(queue))
	for i, t := range queue {
		ids[i] = t.ID
	}

	index := indexOf(ids, track.ID)
	if index < 0 {
		index = 0
	}

	selected := queue[index]
	s.queue = ids
	s.currentIndex = index
	s.current = &selected

	s.logger.Debug("play requested",
		slog.String("track_id", selected.ID),
		slog.Int("index", index),
		slog.Int("queue_len", len(ids)))

	s.queueChangedLocked()
	return s.loadCurrentLocked()
}

// Pause pauses playback and freezes the sleep timer countdown.
func (s *PlaybackSession) Pause() error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.ErrSessionClosed
	}

	return s.pauseLocked()
}

// Next advances to the following queue entry, wrapping from last to first.
// The media is always reloaded, even when the wrap lands on the same track.
// With an empty queue the current track, if any, is replayed.
func (s *PlaybackSession) Next() error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.ErrSessionClosed
	}

	return s.stepLocked(1)
}

// Previous retreats to the preceding queue entry, wrapping from first to last.
// It reloads the media exactly like Next.
func (s *PlaybackSession) Previous() error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.ErrSessionClosed
	}

	return s.stepLocked(-1)
}

// Seek moves playback to an absolute position.
// It is a no-op when nothing is loaded. The position is not clamped here.
func (s *PlaybackSession) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.ErrSessionClosed
	}

	if s.current == nil || !s.status.IsActive() {
		return nil
	}

	if err := s.transport.Seek(position); err != nil {
		return err
	}

	s.position = position
	s.emit(domain.NewTrackProgressEvent(position, s.duration))

	return nil
}

// ToggleRepeat flips repeat-one and returns the new value. A closed session
// keeps its setting.
func (s *PlaybackSession) ToggleRepeat() bool {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return s.repeat
	}

	s.setRepeatLocked(!s.repeat)
	return s.repeat
}

// SetRepeat sets repeat-one explicitly.
func (s *PlaybackSession) SetRepeat(enabled bool) {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed || s.repeat == enabled {
		return
	}
	s.setRepeatLocked(enabled)
}

func (s *PlaybackSession) setRepeatLocked(enabled bool) {
	s.repeat = enabled
	s.emit(domain.NewRepeatToggledEvent(enabled))
	s.refreshUpNextLocked()
}

// EnqueueNext makes track play right after the current one.
//
// A track already queued elsewhere is moved rather than duplicated. The
// current track keeps playing and its identity never changes; only the
// index is shifted when the move crosses it.
func (s *PlaybackSession) EnqueueNext(track domain.Track) (domain.EnqueueResult, error) {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.EnqueueUnchanged, domain.ErrSessionClosed
	}

	if s.current == nil {
		s.logger.Info("enqueue ignored, nothing is playing", slog.String("track_id", track.ID))
		return domain.EnqueueUnchanged, domain.ErrNothingPlaying
	}

	if track.ID == s.current.ID {
		return domain.EnqueueUnchanged, nil
	}

	s.alignIndexLocked()
	if len(s.queue) == 0 {
		s.queue = []string{s.current.ID}
		s.currentIndex = 0
	}

	result := domain.EnqueueAdded
	if existing := indexOf(s.queue, track.ID); existing >= 0 {
		if existing == s.currentIndex+1 {
			return domain.EnqueueUnchanged, nil
		}
		s.queue = removeAt(s.queue, existing)
		if existing < s.currentIndex {
			s.currentIndex--
		}
		result = domain.EnqueueMoved
	}

	at := s.currentIndex + 1
	s.queue = insertAt(s.queue, at, track.ID)

	s.logger.Debug("track enqueued",
		slog.String("track_id", track.ID),
		slog.String("result", result.String()),
		slog.Int("index", at))

	s.emit(domain.NewTrackEnqueuedEvent(track, at, result))
	s.queueChangedLocked()

	return result, nil
}

// RemoveFromQueue removes the entry with the given track ID.
// Removing the current entry stops playback; the entry that takes its place
// becomes current without being loaded.
func (s *PlaybackSession) RemoveFromQueue(id string) error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.ErrSessionClosed
	}

	index := indexOf(s.queue, id)
	if index < 0 {
		return domain.ErrTrackNotFound
	}

	if index != s.currentIndex {
		s.dropEntryLocked(index)
		s.queueChangedLocked()
		return nil
	}

	stopped := s.current
	s.stopLocked()
	s.dropEntryLocked(index)
	s.current = nil
	if s.currentIndex >= 0 {
		if t, ok := s.tracks.LookupTrack(s.queue[s.currentIndex]); ok {
			s.current = &t
		}
	}
	if stopped != nil {
		s.emit(domain.NewTrackStoppedEvent(*stopped))
	}
	s.queueChangedLocked()

	return nil
}

// NextTrack derives the track offset entries after the current one without
// side effects. With repeat-one it is the current track. If the current track
// is not in the queue the first entry is returned. Entries that no longer
// resolve in the catalog are skipped.
func (s *PlaybackSession) NextTrack(offset int) *domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nextTrackLocked(offset)
}

// UpNext returns the cached "up next" track. The cache is refreshed on every
// change of the queue, the index or the repeat flag.
func (s *PlaybackSession) UpNext() *domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneTrack(s.upNext)
}

// CurrentTrack returns the current track, or nil.
func (s *PlaybackSession) CurrentTrack() *domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneTrack(s.current)
}

// Queue returns a copy of the queued track IDs.
func (s *PlaybackSession) Queue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.queue...)
}

// State returns a snapshot of the whole session.
func (s *PlaybackSession) State() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.PlaybackState{
		CurrentTrack: cloneTrack(s.current),
		Queue:        append([]string(nil), s.queue...),
		CurrentIndex: s.currentIndex,
		Status:       s.status,
		Position:     s.position,
		Duration:     s.duration,
		Repeat:       s.repeat,
		SleepTimer:   s.sleepSnapshotLocked(),
		NextTrack:    cloneTrack(s.upNext),
	}
}

// Shutdown stops playback, disarms the sleep timer and rejects further commands.
func (s *PlaybackSession) Shutdown() error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return nil
	}

	s.cancelSleepLocked()
	s.stopLocked()
	s.closed = true

	s.logger.Debug("playback session shut down")

	return nil
}

// Transport events

// OnProgressTick records the elapsed time and duration reported by the transport.
func (s *PlaybackSession) OnProgressTick(id domain.LoadID, elapsed, duration time.Duration) {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if !s.acceptLocked(id) {
		return
	}

	s.position = elapsed
	if duration > 0 {
		s.duration = duration
	}
	s.emit(domain.NewTrackProgressEvent(s.position, s.duration))
}

// OnStatusChanged records a transport status change.
// A "playing" report never overrides a pause the user already issued.
func (s *PlaybackSession) OnStatusChanged(id domain.LoadID, status domain.PlaybackStatus) {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if !s.acceptLocked(id) {
		return
	}

	if s.status == domain.StatusPaused && status == domain.StatusPlaying {
		s.logger.Debug("ignoring playing report while paused", slog.Uint64("load_id", uint64(id)))
		return
	}

	s.setStatusLocked(status)
}

// OnTrackCompleted handles end of stream: repeat-one replays the same track
// from zero, otherwise the session advances exactly like Next.
func (s *PlaybackSession) OnTrackCompleted(id domain.LoadID) {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if !s.acceptLocked(id) {
		return
	}

	if s.current != nil {
		s.emit(domain.NewTrackCompletedEvent(*s.current, s.repeat))
	}

	var err error
	if s.repeat {
		err = s.loadCurrentLocked()
	} else {
		err = s.stepLocked(1)
	}
	if err != nil {
		s.logger.Warn("failed to continue after completion", slog.Any("error", err))
	}
}

// OnLoadFailed resets the status to stopped and reports the failure.
// The queue and the current index are left untouched so the user can retry
// or skip.
func (s *PlaybackSession) OnLoadFailed(id domain.LoadID, err error) {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if !s.acceptLocked(id) {
		return
	}

	s.failLoadLocked(err)
}

// Internal helpers. All of them expect s.mu to be held.

// acceptLocked reports whether an event for load id may be applied.
func (s *PlaybackSession) acceptLocked(id domain.LoadID) bool {
	if s.closed {
		return false
	}
	if id == domain.NoLoad || id != s.activeLoad {
		s.logger.Debug("dropping stale transport event",
			slog.Uint64("load_id", uint64(id)),
			slog.Uint64("active_load", uint64(s.activeLoad)))
		return false
	}
	return true
}

// loadCurrentLocked stops whatever is loaded and loads the current track from zero.
func (s *PlaybackSession) loadCurrentLocked() error {
	if s.current == nil {
		return domain.ErrNothingPlaying
	}

	track := *s.current

	if err := s.transport.Stop(); err != nil {
		s.logger.Warn("failed to stop transport before load", slog.Any("error", err))
	}

	s.lastLoad++
	s.activeLoad = s.lastLoad
	s.position = 0
	s.duration = track.Duration
	s.setStatusLocked(domain.StatusLoading)

	s.logger.Debug("loading track",
		slog.String("track_id", track.ID),
		slog.String("locator", track.Locator),
		slog.Uint64("load_id", uint64(s.activeLoad)))

	if err := s.transport.Load(s.activeLoad, track.Locator); err != nil {
		s.failLoadLocked(err)
		return err
	}

	if err := s.transport.Play(); err != nil {
		s.failLoadLocked(err)
		return err
	}

	s.resumeSleepLocked()
	s.emit(domain.NewTrackStartedEvent(track, s.currentIndex, s.activeLoad))
	s.refreshUpNextLocked()

	return nil
}

// stepLocked moves delta entries through the queue (circularly) and loads the
// entry it lands on. Entries whose track is gone from the catalog are dropped.
func (s *PlaybackSession) stepLocked(delta int) error {
	for attempts := len(s.queue); attempts > 0 && len(s.queue) > 0; attempts-- {
		s.alignIndexLocked()

		n := len(s.queue)
		index := ((s.currentIndex+delta)%n + n) % n

		track, ok := s.tracks.LookupTrack(s.queue[index])
		if !ok {
			s.logger.Info("dropping dangling queue entry", slog.String("track_id", s.queue[index]))
			s.dropEntryLocked(index)
			s.queueChangedLocked()
			continue
		}

		s.currentIndex = index
		s.current = &track
		s.queueChangedLocked()

		return s.loadCurrentLocked()
	}

	if s.current == nil {
		return nil
	}

	if _, ok := s.tracks.LookupTrack(s.current.ID); !ok {
		stopped := *s.current
		s.stopLocked()
		s.current = nil
		s.emit(domain.NewTrackStoppedEvent(stopped))
		s.refreshUpNextLocked()
		return nil
	}

	return s.loadCurrentLocked()
}

func (s *PlaybackSession) pauseLocked() error {
	if s.current == nil || !s.status.IsActive() {
		return domain.ErrNoTrackLoaded
	}

	if s.status == domain.StatusPaused {
		return nil
	}

	if err := s.transport.Pause(); err != nil {
		return err
	}

	s.setStatusLocked(domain.StatusPaused)
	s.pauseSleepLocked()
	s.emit(domain.NewTrackPausedEvent(*s.current, s.position))

	return nil
}

func (s *PlaybackSession) resumeLocked() error {
	if err := s.transport.Play(); err != nil {
		return err
	}

	s.setStatusLocked(domain.StatusPlaying)
	s.resumeSleepLocked()
	s.emit(domain.NewTrackResumedEvent(*s.current))

	return nil
}

// stopLocked stops the transport and forgets the active load.
func (s *PlaybackSession) stopLocked() {
	if s.activeLoad != domain.NoLoad || s.status != domain.StatusStopped {
		if err := s.transport.Stop(); err != nil {
			s.logger.Warn("failed to stop transport", slog.Any("error", err))
		}
	}
	s.activeLoad = domain.NoLoad
	s.position = 0
	s.setStatusLocked(domain.StatusStopped)
}

func (s *PlaybackSession) failLoadLocked(err error) {
	s.logger.Warn("track failed to load", slog.Any("error", err))

	s.activeLoad = domain.NoLoad
	s.setStatusLocked(domain.StatusStopped)

	var track domain.Track
	if s.current != nil {
		track = *s.current
	}
	s.emit(domain.NewTrackErrorEvent(track, err))
}

func (s *PlaybackSession) setStatusLocked(status domain.PlaybackStatus) {
	if s.status == status {
		return
	}
	previous := s.status
	s.status = status
	s.emit(domain.NewStatusChangedEvent(previous, status))
}

// alignIndexLocked clamps the current index into range. An index left out of
// bounds by an external mutation is treated as a recoverable condition.
func (s *PlaybackSession) alignIndexLocked() {
	n := len(s.queue)
	switch {
	case n == 0:
		s.currentIndex = -1
	case s.currentIndex < 0:
		s.currentIndex = 0
	case s.currentIndex >= n:
		s.currentIndex = n - 1
	}
}

// dropEntryLocked removes queue entry index and keeps the index on the same
// track when possible.
func (s *PlaybackSession) dropEntryLocked(index int) {
	s.queue = removeAt(s.queue, index)
	if index < s.currentIndex {
		s.currentIndex--
	}
	s.alignIndexLocked()
}

func (s *PlaybackSession) queueChangedLocked() {
	s.emit(domain.NewQueueChangedEvent(append([]string(nil), s.queue...), s.currentIndex))
	s.refreshUpNextLocked()
}

func (s *PlaybackSession) refreshUpNextLocked() {
	next := s.nextTrackLocked(1)
	if sameTrack(next, s.upNext) {
		return
	}
	s.upNext = next
	s.emit(domain.NewNextTrackChangedEvent(cloneTrack(next)))
}

func (s *PlaybackSession) nextTrackLocked(offset int) *domain.Track {
	if s.repeat {
		return cloneTrack(s.current)
	}

	n := len(s.queue)
	if n == 0 {
		return nil
	}

	start := 0
	if s.current != nil && s.currentIndex >= 0 && s.currentIndex < n && s.queue[s.currentIndex] == s.current.ID {
		start = ((s.currentIndex+offset)%n + n) % n
	}

	for i := 0; i < n; i++ {
		if track, ok := s.tracks.LookupTrack(s.queue[(start+i)%n]); ok {
			return &track
		}
	}

	return nil
}

// emit queues an event for publication once the lock is released.
func (s *PlaybackSession) emit(event domain.Event) {
	s.pending = append(s.pending, event)
}

// unlockAndPublish releases the lock and then publishes queued events in order.
func (s *PlaybackSession) unlockAndPublish() {
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, event := range events {
		s.bus.Publish(event)
	}
}

func cloneTrack(t *domain.Track) *domain.Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func sameTrack(a, b *domain.Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// Verify that PlaybackSession implements the transport listener.
var _ ports.TransportListener = (*PlaybackSession)(nil)
