// Package memory provides repositories backed by the host application's
// preference store.
package memory

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"github.com/reeltune/reeltune/internal/ports"
)

const (
	keyRepeat        = "preferences.repeat"
	keyDefaultSleep  = "preferences.default_sleep_seconds"
	keyLastImportDir = "preferences.last_import_dir"
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveRepeat persists the repeat-one default.
func (r *PreferencesRepository) SaveRepeat(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetBool(keyRepeat, enabled)
	return nil
}

// LoadRepeat retrieves the repeat-one default.
func (r *PreferencesRepository) LoadRepeat() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.BoolWithFallback(keyRepeat, false), nil
}

// SaveDefaultSleep persists the default sleep duration with second precision.
func (r *PreferencesRepository) SaveDefaultSleep(d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetInt(keyDefaultSleep, int(d/time.Second))
	return nil
}

// LoadDefaultSleep retrieves the default sleep duration (0 if never saved).
func (r *PreferencesRepository) LoadDefaultSleep() (time.Duration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seconds := r.prefs.IntWithFallback(keyDefaultSleep, 0)
	return time.Duration(seconds) * time.Second, nil
}

// SaveLastImportDir persists the directory of the last import.
func (r *PreferencesRepository) SaveLastImportDir(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyLastImportDir, dir)
	return nil
}

// LoadLastImportDir retrieves the directory of the last import.
func (r *PreferencesRepository) LoadLastImportDir() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.String(keyLastImportDir), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyRepeat)
	r.prefs.RemoveValue(keyDefaultSleep)
	r.prefs.RemoveValue(keyLastImportDir)

	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
