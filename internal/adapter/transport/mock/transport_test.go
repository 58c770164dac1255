package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/logger"
)

type recordingListener struct {
	progress  []time.Duration
	statuses  []domain.PlaybackStatus
	completed []domain.LoadID
	failures  []error
}

func (r *recordingListener) OnProgressTick(_ domain.LoadID, elapsed, _ time.Duration) {
	r.progress = append(r.progress, elapsed)
}

func (r *recordingListener) OnStatusChanged(_ domain.LoadID, status domain.PlaybackStatus) {
	r.statuses = append(r.statuses, status)
}

func (r *recordingListener) OnTrackCompleted(id domain.LoadID) {
	r.completed = append(r.completed, id)
}

func (r *recordingListener) OnLoadFailed(_ domain.LoadID, err error) {
	r.failures = append(r.failures, err)
}

func TestTransport_RecordsCommandsInOrder(t *testing.T) {
	tr := NewTransport(logger.NewTestLogger())

	require.NoError(t, tr.Stop())
	require.NoError(t, tr.Load(1, "song.mp3"))
	require.NoError(t, tr.Play())
	require.NoError(t, tr.Seek(30*time.Second))
	require.NoError(t, tr.Pause())

	assert.Equal(t, []Op{OpStop, OpLoad, OpPlay, OpSeek, OpPause}, tr.Ops())
	assert.Equal(t, domain.LoadID(1), tr.LoadID())
	assert.Equal(t, "song.mp3", tr.Locator())
	assert.Equal(t, domain.StatusPaused, tr.Status())
	assert.Equal(t, 30*time.Second, tr.Position())

	loads := tr.Loads()
	require.Len(t, loads, 1)
	assert.Equal(t, "song.mp3", loads[0].Locator)
}

func TestTransport_LoadDoesNotNotifyListener(t *testing.T) {
	tr := NewTransport(logger.NewTestLogger())
	l := &recordingListener{}
	tr.SetListener(l)

	require.NoError(t, tr.Load(1, "song.mp3"))
	require.NoError(t, tr.Play())

	assert.Empty(t, l.statuses)
	assert.Empty(t, l.progress)
}

func TestTransport_EmitHelpersUseCurrentLoad(t *testing.T) {
	tr := NewTransport(logger.NewTestLogger())
	l := &recordingListener{}
	tr.SetListener(l)

	require.NoError(t, tr.Load(7, "song.mp3"))
	tr.EmitStatus(domain.StatusPlaying)
	tr.EmitProgress(time.Second, time.Minute)
	tr.EmitCompleted()

	assert.Equal(t, []domain.PlaybackStatus{domain.StatusPlaying}, l.statuses)
	assert.Equal(t, []time.Duration{time.Second}, l.progress)
	assert.Equal(t, []domain.LoadID{7}, l.completed)
}

func TestTransport_FailureInjection(t *testing.T) {
	tr := NewTransport(logger.NewTestLogger())

	tr.SetFailLoad(true)
	err := tr.Load(1, "song.mp3")
	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "load", terr.Op)

	tr.SetFailLoad(false)
	require.NoError(t, tr.Load(2, "song.mp3"))

	tr.SetFailPlay(true)
	assert.Error(t, tr.Play())

	tr.SetFailSeek(true)
	assert.Error(t, tr.Seek(time.Second))
}

func TestTransport_InvalidLocator(t *testing.T) {
	tr := NewTransport(logger.NewTestLogger())

	assert.ErrorIs(t, tr.Load(1, ""), domain.ErrInvalidLocator)
	assert.ErrorIs(t, tr.Play(), domain.ErrNoTrackLoaded)
}

func TestTransport_Close(t *testing.T) {
	tr := NewTransport(logger.NewTestLogger())
	tr.SetListener(&recordingListener{})

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	assert.ErrorIs(t, tr.Load(1, "song.mp3"), domain.ErrTransportClosed)
	assert.ErrorIs(t, tr.Play(), domain.ErrTransportClosed)
	assert.Nil(t, tr.Listener())
}
