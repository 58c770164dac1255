// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/jonboulle/clockwork"

	"github.com/reeltune/reeltune/internal/adapter/eventbus"
	"github.com/reeltune/reeltune/internal/adapter/metadata"
	"github.com/reeltune/reeltune/internal/adapter/repository/memory"
	"github.com/reeltune/reeltune/internal/adapter/repository/sqlite"
	"github.com/reeltune/reeltune/internal/adapter/transport/beepaudio"
	"github.com/reeltune/reeltune/internal/adapter/transport/mock"
	fyneui "github.com/reeltune/reeltune/internal/adapter/ui/fyne"
	"github.com/reeltune/reeltune/internal/config"
	"github.com/reeltune/reeltune/internal/logger"
	"github.com/reeltune/reeltune/internal/ports"
	"github.com/reeltune/reeltune/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App
	config  *config.Config

	// Infrastructure
	eventBus  ports.EventBus
	transport ports.MediaTransport
	store     *sqlite.Store

	// Services
	session           *service.PlaybackSession
	catalogService    *service.CatalogService
	preferenceService *service.PreferenceService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
}

// Options holds everything NewApplication needs besides the config file.
type Options struct {
	// AppID is the unique application identifier
	AppID string

	// Config is the loaded configuration (nil means config.Load)
	Config *config.Config

	// LogOutput receives log records (nil means stderr)
	LogOutput io.Writer

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultOptions returns the production options.
func DefaultOptions() Options {
	return Options{
		AppID: "com.reeltune.app",
	}
}

// transportFactories maps config transport names to constructors.
func transportFactories(log *slog.Logger) map[string]ports.TransportFactory {
	return map[string]ports.TransportFactory{
		config.TransportBeep: func(cfg ports.TransportConfig) (ports.MediaTransport, error) {
			return beepaudio.New(cfg, log.With(slog.String("transport", "beep")))
		},
		config.TransportMock: func(ports.TransportConfig) (ports.MediaTransport, error) {
			return mock.NewTransport(log.With(slog.String("transport", "mock"))), nil
		},
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(opts Options) (*Application, error) {
	app := &Application{}

	// Step 1: Load configuration
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	app.config = cfg

	// Step 2: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  logger.ResolveLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: opts.LogOutput,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", opts.AppID),
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("media_dir", cfg.MediaDir),
		slog.String("transport", cfg.Transport))

	progress, err := cfg.Progress()
	if err != nil {
		return nil, err
	}

	// Step 3: Create Fyne application
	if opts.TestFyneApp != nil {
		app.fyneApp = opts.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(opts.AppID)
	}

	// Step 4: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	// Step 5: Create the media transport
	factory, ok := transportFactories(app.logger)[cfg.Transport]
	if !ok {
		return nil, fmt.Errorf("%w: transport %q", config.ErrInvalidConfig, cfg.Transport)
	}
	app.transport, err = factory(ports.TransportConfig{
		MediaDir:         cfg.MediaDir,
		ProgressInterval: progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media transport: %w", err)
	}

	// Step 6: Open the catalog
	dbPath := cfg.Database
	if dbPath == "" {
		if dbPath, err = sqlite.DefaultPath(); err != nil {
			app.Shutdown()
			return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
		}
	}
	app.store, err = sqlite.Open(dbPath, app.logger.With(slog.String("component", "catalog")))
	if err != nil {
		app.Shutdown()
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// Step 7: Create services (with dependency injection)
	clock := clockwork.NewRealClock()

	app.catalogService = service.NewCatalogService(
		app.logger.With(slog.String("service", "catalog")),
		app.store,
		app.store,
		metadata.NewTagReader(app.logger.With(slog.String("component", "metadata"))),
		app.eventBus,
		clock,
		cfg.MediaDir,
	)

	app.session = service.NewPlaybackSession(
		app.logger.With(slog.String("service", "session")),
		app.transport,
		app.catalogService,
		app.eventBus,
		clock,
	)

	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		memory.NewPreferencesRepository(app.fyneApp.Preferences()),
		app.eventBus,
		cfg.DefaultSleep(),
	)

	// Step 8: Restore saved state
	app.session.SetRepeat(app.preferenceService.Repeat())

	// Step 9: Create UI and presenter
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.logger.With(slog.String("component", "window")))
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.session,
		app.catalogService,
		app.preferenceService,
		app.eventBus,
		clock,
		app.mainWindow,
		cfg.Recent(),
	)
	app.mainWindow.SetPresenter(app.presenter)

	return app, nil
}

// Run shows the main window and blocks until it is closed.
func (a *Application) Run() error {
	a.logger.Info("ReelTune started", slog.String("version", GetVersionInfo().String()))
	a.mainWindow.ShowAndRun()
	return nil
}

// Shutdown gracefully shuts down the application in reverse order of creation.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		if a.preferenceService != nil {
			a.preferenceService.Shutdown()
		}

		if a.session != nil {
			if err := a.session.Shutdown(); err != nil {
				a.logger.Warn("failed to shutdown playback session", slog.Any("error", err))
			}
		}

		if a.catalogService != nil {
			a.catalogService.Shutdown()
		}

		if a.transport != nil {
			if err := a.transport.Close(); err != nil {
				a.logger.Warn("failed to close media transport", slog.Any("error", err))
			}
		}

		if a.store != nil {
			if err := a.store.Close(); err != nil {
				a.logger.Warn("failed to close catalog", slog.Any("error", err))
			}
		}

		if a.eventBus != nil {
			if err := a.eventBus.Close(); err != nil {
				a.logger.Warn("failed to close event bus", slog.Any("error", err))
			}
		}

		a.logger.Info("application shutdown complete")
	})
	return nil
}

// GetServices returns the application services.
func (a *Application) GetServices() (*service.PlaybackSession, *service.CatalogService, *service.PreferenceService) {
	return a.session, a.catalogService, a.preferenceService
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetTransport returns the media transport.
func (a *Application) GetTransport() ports.MediaTransport {
	return a.transport
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}
