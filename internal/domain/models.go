// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the ReelTune player.
package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Track represents a single imported song or clip in the catalog.
// The catalog owns tracks; the playback session only borrows them by ID.
type Track struct {
	// ID is a unique identifier for the track (UUID)
	ID string

	// Title is the song title (from metadata or filename)
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// Copyright is the copyright notice embedded in the file, if any
	Copyright string

	// Duration is the total length of the track
	Duration time.Duration

	// Locator is the opaque reference to the playable media.
	// For file-backed catalogs it is the file name inside the media directory.
	Locator string

	// IsVideo indicates the media carries a video stream
	IsVideo bool

	// IsFavorite marks the track as liked
	IsFavorite bool

	// IsRecent marks the track as recently played
	IsRecent bool

	// LastPlayedAt is when playback of the track last started (zero if never)
	LastPlayedAt time.Time

	// AddedAt is when the track was imported
	AddedAt time.Time

	// ModifiedAt is when the record was last changed
	ModifiedAt time.Time

	// Artwork is the embedded cover art as raw bytes
	Artwork []byte
}

// Extension returns the lower-cased file extension of the locator, including the dot.
func (t Track) Extension() string {
	return strings.ToLower(filepath.Ext(t.Locator))
}

// Playlist represents a named, ordered collection of catalog tracks.
type Playlist struct {
	// ID is a unique identifier for the playlist (UUID)
	ID string

	// Name is the playlist name
	Name string

	// TrackIDs is the ordered list of track IDs in the playlist
	TrackIDs []string

	// CreatedAt is when the playlist was created
	CreatedAt time.Time

	// UpdatedAt is when the playlist was last modified
	UpdatedAt time.Time
}

// PlaybackStatus represents the transport status as seen by the session.
type PlaybackStatus int

const (
	// StatusStopped indicates nothing is loaded or playback was stopped
	StatusStopped PlaybackStatus = iota

	// StatusLoading indicates a load was issued and not yet confirmed
	StatusLoading

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// IsActive returns true when a track is loaded (loading, playing or paused).
func (s PlaybackStatus) IsActive() bool {
	return s == StatusLoading || s == StatusPlaying || s == StatusPaused
}

// LoadID identifies one load issued to the transport.
// Every reload gets a fresh, strictly increasing ID so that events belonging
// to a superseded load can be recognized and dropped.
type LoadID uint64

// NoLoad is the zero LoadID; it never matches a real load.
const NoLoad LoadID = 0

// SleepTimerSnapshot describes an armed or paused sleep timer.
type SleepTimerSnapshot struct {
	// Total is the duration the timer was originally armed with
	Total time.Duration

	// Elapsed is the active (non-paused) time consumed so far
	Elapsed time.Duration

	// Remaining is Total minus Elapsed
	Remaining time.Duration

	// StartedAt is when the timer was first armed
	StartedAt time.Time

	// Paused is true while the countdown is frozen
	Paused bool
}

// PlaybackState is a point-in-time snapshot of the playback session.
type PlaybackState struct {
	// CurrentTrack is the current track (nil if none)
	CurrentTrack *Track

	// Queue is the ordered list of queued track IDs
	Queue []string

	// CurrentIndex is the index in the queue (0-based, -1 if the queue is empty)
	CurrentIndex int

	// Status is the current playback status
	Status PlaybackStatus

	// Position is the elapsed playback time of the current track
	Position time.Duration

	// Duration is the length of the current track as reported by the transport
	Duration time.Duration

	// Repeat indicates repeat-one mode
	Repeat bool

	// SleepTimer is the sleep timer state (nil when off)
	SleepTimer *SleepTimerSnapshot

	// NextTrack is the derived "up next" track (nil if none)
	NextTrack *Track
}

// EnqueueResult reports what EnqueueNext did to the queue.
type EnqueueResult int

const (
	// EnqueueUnchanged means the queue was left as it was
	EnqueueUnchanged EnqueueResult = iota

	// EnqueueAdded means a new entry was inserted after the current track
	EnqueueAdded

	// EnqueueMoved means an existing entry was moved to play next
	EnqueueMoved
)

// String returns a human-readable representation of the enqueue result.
func (r EnqueueResult) String() string {
	switch r {
	case EnqueueAdded:
		return "added"
	case EnqueueMoved:
		return "moved"
	default:
		return "unchanged"
	}
}

// Preferences contain user preferences and settings.
type Preferences struct {
	// RepeatEnabled indicates if repeat-one is enabled at startup
	RepeatEnabled bool

	// DefaultSleep is the sleep timer duration offered by default
	DefaultSleep time.Duration

	// LastImportDir is the directory the last import was made from
	LastImportDir string
}

// ImportProgress represents the progress of a catalog import.
type ImportProgress struct {
	// CurrentFile is the file currently being imported
	CurrentFile string

	// FilesDone is the number of files processed so far
	FilesDone int

	// TotalFiles is the total number of files to import
	TotalFiles int

	// Imported is the number of files successfully added to the catalog
	Imported int
}

// Percentage returns the completion percentage (0-100), or -1 if total is unknown.
func (p ImportProgress) Percentage() float64 {
	if p.TotalFiles <= 0 {
		return -1
	}
	return float64(p.FilesDone) / float64(p.TotalFiles) * 100.0
}

// videoExtensions lists container formats that carry a video stream.
var videoExtensions = map[string]bool{
	".mov": true,
	".mp4": true,
	".m4v": true,
	".mkv": true,
	".avi": true,
}

// IsVideoLocator reports whether the locator points at a video container.
func IsVideoLocator(locator string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(locator))]
}
