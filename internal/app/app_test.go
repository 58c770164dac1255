package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltune/reeltune/internal/adapter/media"
	"github.com/reeltune/reeltune/internal/adapter/repository/sqlite"
	"github.com/reeltune/reeltune/internal/adapter/transport/mock"
	"github.com/reeltune/reeltune/internal/config"
	"github.com/reeltune/reeltune/internal/domain"
)

func testOptions(t *testing.T) Options {
	t.Helper()

	cfg := config.Default()
	cfg.Transport = config.TransportMock
	cfg.Database = sqlite.MemoryPath
	cfg.MediaDir = filepath.Join(t.TempDir(), "media")

	opts := DefaultOptions()
	opts.Config = cfg
	opts.LogOutput = io.Discard
	opts.TestFyneApp = test.NewApp()
	return opts
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(testOptions(t))
	require.NoError(t, err)
	require.NotNil(t, app)

	// Verify all services were created
	session, catalog, preference := app.GetServices()
	assert.NotNil(t, session)
	assert.NotNil(t, catalog)
	assert.NotNil(t, preference)

	assert.NotNil(t, app.GetEventBus())
	assert.NotNil(t, app.GetFyneApp())
	assert.IsType(t, &mock.Transport{}, app.GetTransport())

	assert.NoError(t, app.Shutdown())
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "com.reeltune.app", opts.AppID)
	assert.Nil(t, opts.Config)
	assert.Nil(t, opts.TestFyneApp)
}

func TestApplicationLifecycle(t *testing.T) {
	app, err := NewApplication(testOptions(t))
	require.NoError(t, err)

	// Run would normally block, but we're not calling it in test

	assert.NoError(t, app.Shutdown())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())

	session, _, _ := app.GetServices()
	assert.ErrorIs(t, session.Play(domain.Track{ID: "x", Locator: "x.wav"}, nil), domain.ErrSessionClosed)
}

func TestApplicationRejectsUnknownTransport(t *testing.T) {
	opts := testOptions(t)
	opts.Config.Transport = "bass"

	_, err := NewApplication(opts)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestApplicationRestoresRepeat(t *testing.T) {
	opts := testOptions(t)
	opts.TestFyneApp.Preferences().SetBool("preferences.repeat", true)

	app, err := NewApplication(opts)
	require.NoError(t, err)
	defer app.Shutdown()

	session, _, _ := app.GetServices()
	assert.True(t, session.State().Repeat)
}

func TestApplicationImportAndPlay(t *testing.T) {
	app, err := NewApplication(testOptions(t))
	require.NoError(t, err)
	defer app.Shutdown()

	session, catalog, preference := app.GetServices()
	assert.Equal(t, 30*time.Minute, preference.DefaultSleep())

	path := media.WriteTestWAV(t, t.TempDir(), "Blue.wav", time.Second)
	tracks, err := catalog.Import(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	require.NoError(t, session.Play(tracks[0], nil))
	assert.Equal(t, tracks[0].Locator, app.GetTransport().(*mock.Transport).Locator())

	recent, err := catalog.RecentlyPlayed(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, tracks[0].ID, recent[0].ID)

	session.ToggleRepeat()
	assert.True(t, preference.Repeat())
}
