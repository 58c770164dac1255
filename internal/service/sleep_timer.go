package service

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/reeltune/reeltune/internal/domain"
)

// sleepTimer is the countdown state. It is owned by PlaybackSession and only
// touched with the session lock held.
type sleepTimer struct {
	armed     bool
	paused    bool
	total     time.Duration
	remaining time.Duration // left as of resumedAt
	startedAt time.Time
	resumedAt time.Time
	timer     clockwork.Timer

	// generation invalidates callbacks of timers that were stopped too late
	generation uint64
}

// SetSleepTimer arms the sleep timer. Any previously armed timer is replaced.
// When the countdown runs out, playback is paused and the timer disarms itself.
func (s *PlaybackSession) SetSleepTimer(d time.Duration) error {
	if d <= 0 {
		return domain.ErrInvalidDuration
	}

	s.mu.Lock()
	defer s.unlockAndPublish()

	if s.closed {
		return domain.ErrSessionClosed
	}

	s.stopSleepClockLocked()

	now := s.clock.Now()
	s.sleep.armed = true
	s.sleep.paused = false
	s.sleep.total = d
	s.sleep.remaining = d
	s.sleep.startedAt = now
	s.sleep.resumedAt = now
	s.startSleepClockLocked()

	s.logger.Info("sleep timer armed", slog.Duration("duration", d))
	s.emit(domain.NewSleepTimerEvent(domain.EventSleepTimerArmed, d, d))

	return nil
}

// PauseSleepTimer freezes the countdown. Pausing a paused timer is a no-op.
func (s *PlaybackSession) PauseSleepTimer() error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if !s.sleep.armed {
		return domain.ErrNoSleepTimer
	}

	s.pauseSleepLocked()
	return nil
}

// ResumeSleepTimer continues a frozen countdown with its remaining time.
func (s *PlaybackSession) ResumeSleepTimer() error {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if !s.sleep.armed {
		return domain.ErrNoSleepTimer
	}

	s.resumeSleepLocked()
	return nil
}

// CancelSleepTimer disarms the sleep timer. It is safe to call at any time.
func (s *PlaybackSession) CancelSleepTimer() {
	s.mu.Lock()
	defer s.unlockAndPublish()

	s.cancelSleepLocked()
}

// SleepTimer returns the current sleep timer state, or nil when it is off.
func (s *PlaybackSession) SleepTimer() *domain.SleepTimerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sleepSnapshotLocked()
}

func (s *PlaybackSession) pauseSleepLocked() {
	if !s.sleep.armed || s.sleep.paused {
		return
	}

	s.stopSleepClockLocked()
	s.sleep.remaining = s.sleepRemainingLocked()
	s.sleep.paused = true

	s.logger.Debug("sleep timer paused", slog.Duration("remaining", s.sleep.remaining))
	s.emit(domain.NewSleepTimerEvent(domain.EventSleepTimerPaused, s.sleep.total, s.sleep.remaining))
}

func (s *PlaybackSession) resumeSleepLocked() {
	if !s.sleep.armed || !s.sleep.paused {
		return
	}

	s.sleep.paused = false
	s.sleep.resumedAt = s.clock.Now()
	s.startSleepClockLocked()

	s.logger.Debug("sleep timer resumed", slog.Duration("remaining", s.sleep.remaining))
	s.emit(domain.NewSleepTimerEvent(domain.EventSleepTimerResumed, s.sleep.total, s.sleep.remaining))
}

func (s *PlaybackSession) cancelSleepLocked() {
	if !s.sleep.armed {
		return
	}

	s.stopSleepClockLocked()
	total := s.sleep.total
	remaining := s.sleepRemainingLocked()
	s.sleep = sleepTimer{generation: s.sleep.generation}

	s.logger.Info("sleep timer cancelled")
	s.emit(domain.NewSleepTimerEvent(domain.EventSleepTimerCancelled, total, remaining))
}

// startSleepClockLocked schedules expiry after the remaining time.
func (s *PlaybackSession) startSleepClockLocked() {
	s.sleep.generation++
	generation := s.sleep.generation
	s.sleep.timer = s.clock.AfterFunc(s.sleep.remaining, func() {
		s.onSleepExpired(generation)
	})
}

func (s *PlaybackSession) stopSleepClockLocked() {
	if s.sleep.timer != nil {
		s.sleep.timer.Stop()
		s.sleep.timer = nil
	}
	s.sleep.generation++
}

func (s *PlaybackSession) onSleepExpired(generation uint64) {
	s.mu.Lock()
	defer s.unlockAndPublish()

	if !s.sleep.armed || s.sleep.paused || s.sleep.generation != generation {
		return
	}

	total := s.sleep.total
	s.sleep = sleepTimer{generation: s.sleep.generation + 1}

	s.logger.Info("sleep timer fired, pausing playback")

	if err := s.pauseLocked(); err != nil {
		s.logger.Debug("sleep timer fired with nothing to pause", slog.Any("error", err))
	}
	s.emit(domain.NewSleepTimerEvent(domain.EventSleepTimerFired, total, 0))
}

func (s *PlaybackSession) sleepRemainingLocked() time.Duration {
	if s.sleep.paused {
		return s.sleep.remaining
	}
	remaining := s.sleep.remaining - s.clock.Since(s.sleep.resumedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *PlaybackSession) sleepSnapshotLocked() *domain.SleepTimerSnapshot {
	if !s.sleep.armed {
		return nil
	}
	remaining := s.sleepRemainingLocked()
	return &domain.SleepTimerSnapshot{
		Total:     s.sleep.total,
		Elapsed:   s.sleep.total - remaining,
		Remaining: remaining,
		StartedAt: s.sleep.startedAt,
		Paused:    s.sleep.paused,
	}
}
