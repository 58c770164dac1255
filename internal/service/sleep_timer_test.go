package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltune/reeltune/internal/adapter/transport/mock"
	"github.com/reeltune/reeltune/internal/domain"
)

const (
	eventuallyWait = time.Second
	eventuallyTick = 5 * time.Millisecond
)

func TestSleepTimer_InvalidDuration(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)

	assert.ErrorIs(t, f.session.SetSleepTimer(0), domain.ErrInvalidDuration)
	assert.ErrorIs(t, f.session.SetSleepTimer(-time.Minute), domain.ErrInvalidDuration)
	assert.Nil(t, f.session.SleepTimer())
}

func TestSleepTimer_PauseResumeWithoutTimer(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)

	assert.ErrorIs(t, f.session.PauseSleepTimer(), domain.ErrNoSleepTimer)
	assert.ErrorIs(t, f.session.ResumeSleepTimer(), domain.ErrNoSleepTimer)
}

func TestSleepTimer_FiresAndPausesPlayback(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)
	f.playing(t, trackA, trackA, trackB)

	require.NoError(t, f.session.SetSleepTimer(time.Hour))
	snap := f.session.SleepTimer()
	require.NotNil(t, snap)
	assert.Equal(t, time.Hour, snap.Total)
	assert.Equal(t, time.Hour, snap.Remaining)

	f.clock.Advance(time.Hour)

	require.Eventually(t, func() bool {
		return f.session.SleepTimer() == nil
	}, eventuallyWait, eventuallyTick)

	assert.Equal(t, domain.StatusPaused, f.session.State().Status)
	assert.Equal(t, []mock.Op{mock.OpPause}, f.transport.Ops())
	assert.Len(t, f.events.ofType(domain.EventSleepTimerFired), 1)
	assert.Equal(t, "a", f.session.CurrentTrack().ID, "the sleep timer only pauses")
}

func TestSleepTimer_FiresWithNothingPlaying(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)

	require.NoError(t, f.session.SetSleepTimer(time.Minute))
	f.clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		return f.session.SleepTimer() == nil
	}, eventuallyWait, eventuallyTick)
	assert.Empty(t, f.transport.Ops())
}

func TestSleepTimer_PauseFreezesCountdown(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)

	require.NoError(t, f.session.SetSleepTimer(100*time.Second))
	f.clock.Advance(30 * time.Second)

	require.NoError(t, f.session.PauseSleepTimer())
	require.NoError(t, f.session.PauseSleepTimer(), "pausing twice is harmless")

	f.clock.Advance(1000 * time.Second)
	snap := f.session.SleepTimer()
	require.NotNil(t, snap)
	assert.True(t, snap.Paused)
	assert.Equal(t, 70*time.Second, snap.Remaining)
	assert.Equal(t, 30*time.Second, snap.Elapsed)

	require.NoError(t, f.session.ResumeSleepTimer())
	f.clock.Advance(69 * time.Second)

	snap = f.session.SleepTimer()
	require.NotNil(t, snap)
	assert.False(t, snap.Paused)
	assert.Equal(t, time.Second, snap.Remaining)

	f.clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return f.session.SleepTimer() == nil
	}, eventuallyWait, eventuallyTick)

	assert.Len(t, f.events.ofType(domain.EventSleepTimerPaused), 1)
	assert.Len(t, f.events.ofType(domain.EventSleepTimerResumed), 1)
	assert.Len(t, f.events.ofType(domain.EventSleepTimerFired), 1)
}

func TestSleepTimer_FollowsPlaybackPause(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)
	f.playing(t, trackA, trackA, trackB)

	require.NoError(t, f.session.SetSleepTimer(10*time.Minute))
	f.clock.Advance(4 * time.Minute)

	require.NoError(t, f.session.Pause())
	snap := f.session.SleepTimer()
	require.NotNil(t, snap)
	assert.True(t, snap.Paused)
	assert.Equal(t, 6*time.Minute, snap.Remaining)

	f.clock.Advance(time.Hour)
	require.NotNil(t, f.session.SleepTimer())

	// Resuming the same track resumes the countdown.
	require.NoError(t, f.session.Play(trackA, []domain.Track{trackA, trackB}))
	snap = f.session.SleepTimer()
	require.NotNil(t, snap)
	assert.False(t, snap.Paused)
	assert.Equal(t, 6*time.Minute, snap.Remaining)
}

func TestSleepTimer_RearmReplacesPrevious(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)

	require.NoError(t, f.session.SetSleepTimer(10*time.Minute))
	f.clock.Advance(5 * time.Minute)

	require.NoError(t, f.session.SetSleepTimer(10*time.Minute))
	f.clock.Advance(6 * time.Minute)

	assert.Never(t, func() bool {
		return f.session.SleepTimer() == nil
	}, 50*time.Millisecond, eventuallyTick, "the replaced timer must not fire")

	snap := f.session.SleepTimer()
	require.NotNil(t, snap)
	assert.Equal(t, 4*time.Minute, snap.Remaining)

	f.clock.Advance(4 * time.Minute)
	require.Eventually(t, func() bool {
		return f.session.SleepTimer() == nil
	}, eventuallyWait, eventuallyTick)
	assert.Len(t, f.events.ofType(domain.EventSleepTimerArmed), 2)
}

func TestSleepTimer_CancelIsIdempotent(t *testing.T) {
	f := newSessionFixture(t, allTracks()...)

	f.session.CancelSleepTimer()
	assert.Empty(t, f.events.ofType(domain.EventSleepTimerCancelled))

	require.NoError(t, f.session.SetSleepTimer(time.Minute))
	f.session.CancelSleepTimer()
	f.session.CancelSleepTimer()

	assert.Nil(t, f.session.SleepTimer())
	assert.Len(t, f.events.ofType(domain.EventSleepTimerCancelled), 1)

	f.clock.Advance(2 * time.Minute)
	assert.Never(t, func() bool {
		return len(f.events.ofType(domain.EventSleepTimerFired)) > 0
	}, 50*time.Millisecond, eventuallyTick)
}
