package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/ports"
)

// PreferenceService manages user preferences and keeps them in sync with
// the playback session. Repeat toggles published on the bus are persisted
// so the next start restores them.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	// Cached preferences
	prefs    domain.Preferences
	defaults domain.Preferences

	repeatSub domain.SubscriptionID

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service. defaultSleep is
// used until the user picks a sleep duration of their own.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
	defaultSleep time.Duration,
) *PreferenceService {
	s := &PreferenceService{
		logger:     logger,
		repository: repository,
		bus:        bus,
		defaults:   domain.Preferences{DefaultSleep: defaultSleep},
	}
	s.prefs = s.defaults

	s.loadPreferences()
	s.repeatSub = bus.Subscribe(domain.EventRepeatToggled, s.handleRepeatToggled)

	logger.Debug("preference service initialized",
		slog.Bool("repeat", s.prefs.RepeatEnabled),
		slog.Duration("default_sleep", s.prefs.DefaultSleep))

	return s
}

// loadPreferences loads all preferences from the repository into the cache.
func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if repeat, err := s.repository.LoadRepeat(); err == nil {
		s.prefs.RepeatEnabled = repeat
	} else {
		s.logger.Warn("cannot load repeat preference", slog.Any("error", err))
	}

	if d, err := s.repository.LoadDefaultSleep(); err == nil && d > 0 {
		s.prefs.DefaultSleep = d
	}

	if dir, err := s.repository.LoadLastImportDir(); err == nil {
		s.prefs.LastImportDir = dir
	}
}

// Preferences returns a copy of the current preferences.
func (s *PreferenceService) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Repeat returns the saved repeat-one preference.
func (s *PreferenceService) Repeat() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.RepeatEnabled
}

// SetRepeat saves the repeat-one preference.
func (s *PreferenceService) SetRepeat(enabled bool) error {
	s.mu.Lock()
	s.prefs.RepeatEnabled = enabled
	s.mu.Unlock()

	return s.repository.SaveRepeat(enabled)
}

// DefaultSleep returns the sleep timer duration offered by default.
func (s *PreferenceService) DefaultSleep() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.DefaultSleep
}

// SetDefaultSleep saves the default sleep timer duration.
func (s *PreferenceService) SetDefaultSleep(d time.Duration) error {
	if d <= 0 {
		return domain.ErrInvalidDuration
	}

	s.mu.Lock()
	s.prefs.DefaultSleep = d
	s.mu.Unlock()

	return s.repository.SaveDefaultSleep(d)
}

// LastImportDir returns the directory of the last import.
func (s *PreferenceService) LastImportDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.LastImportDir
}

// SetLastImportDir saves the directory of the last import.
func (s *PreferenceService) SetLastImportDir(dir string) error {
	s.mu.Lock()
	s.prefs.LastImportDir = dir
	s.mu.Unlock()

	return s.repository.SaveLastImportDir(dir)
}

// ResetToDefaults clears saved preferences and restores the defaults.
func (s *PreferenceService) ResetToDefaults() error {
	s.mu.Lock()
	s.prefs = s.defaults
	s.mu.Unlock()

	return s.repository.Clear()
}

func (s *PreferenceService) handleRepeatToggled(event domain.Event) {
	e, ok := event.(domain.RepeatToggledEvent)
	if !ok {
		return
	}
	if err := s.SetRepeat(e.Enabled); err != nil {
		s.logger.Warn("cannot persist repeat preference", slog.Any("error", err))
	}
}

// Shutdown stops listening to session events.
func (s *PreferenceService) Shutdown() {
	s.bus.Unsubscribe(s.repeatSub)
}
