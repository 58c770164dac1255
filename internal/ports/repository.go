// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"context"
	"time"

	"github.com/reeltune/reeltune/internal/domain"
)

// TrackLookup resolves queued track IDs to catalog tracks.
// It is the only view of the catalog the playback session has.
type TrackLookup interface {
	// LookupTrack returns the track with the given ID.
	// ok is false when the track no longer exists.
	LookupTrack(id string) (track domain.Track, ok bool)
}

// TrackRepository handles the persistence of catalog tracks.
//
// Thread-safety: Implementations must be thread-safe.
type TrackRepository interface {
	// SaveTrack inserts or replaces a track.
	SaveTrack(ctx context.Context, track domain.Track) error

	// GetTrack returns the track with the given ID or domain.ErrTrackNotFound.
	GetTrack(ctx context.Context, id string) (*domain.Track, error)

	// ListTracks returns every track, most recently added first.
	ListTracks(ctx context.Context) ([]domain.Track, error)

	// ListFavorites returns liked tracks, most recently modified first.
	ListFavorites(ctx context.Context) ([]domain.Track, error)

	// ListRecent returns up to limit recently played tracks, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.Track, error)

	// SetFavorite sets the favorite flag and bumps the modification time.
	SetFavorite(ctx context.Context, id string, favorite bool, at time.Time) error

	// MarkPlayed flags the track as recently played at the given time.
	MarkPlayed(ctx context.Context, id string, at time.Time) error

	// DeleteTrack removes the track and its playlist memberships.
	// Deleting an unknown ID returns domain.ErrTrackNotFound.
	DeleteTrack(ctx context.Context, id string) error
}

// PlaylistRepository handles the persistence of playlists.
//
// Thread-safety: Implementations must be thread-safe.
type PlaylistRepository interface {
	// SavePlaylist inserts or replaces a playlist including its track order.
	SavePlaylist(ctx context.Context, playlist domain.Playlist) error

	// GetPlaylist returns a playlist by ID or domain.ErrPlaylistNotFound.
	GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error)

	// ListPlaylists returns all playlists, most recently updated first.
	ListPlaylists(ctx context.Context) ([]domain.Playlist, error)

	// DeletePlaylist removes a playlist. Unknown IDs are a no-op.
	DeletePlaylist(ctx context.Context, id string) error
}

// PreferencesRepository handles the persistence of user preferences.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveRepeat persists the repeat-one default.
	SaveRepeat(enabled bool) error

	// LoadRepeat retrieves the repeat-one default (false if never saved).
	LoadRepeat() (bool, error)

	// SaveDefaultSleep persists the default sleep timer duration.
	SaveDefaultSleep(d time.Duration) error

	// LoadDefaultSleep retrieves the default sleep timer duration
	// (0 if never saved).
	LoadDefaultSleep() (time.Duration, error)

	// SaveLastImportDir persists the directory of the last import.
	SaveLastImportDir(dir string) error

	// LoadLastImportDir retrieves the directory of the last import ("" if none).
	LoadLastImportDir() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
