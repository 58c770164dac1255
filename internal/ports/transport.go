// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"time"

	"github.com/reeltune/reeltune/internal/domain"
)

// MediaTransport is the decode-and-render engine driven by the playback session.
// Any engine satisfying these commands and emitting TransportListener events
// can be substituted (real audio output, the recording mock used in tests).
//
// Commands never block on media I/O: Load returns as soon as the request is
// accepted and reports the outcome later through the listener.
//
// Implementations must be thread-safe and must never invoke the listener
// synchronously from inside a command method; the session holds its lock
// while issuing commands.
type MediaTransport interface {
	// SetListener registers the receiver of transport events.
	// Only one listener is supported; a later call replaces the earlier one.
	SetListener(listener TransportListener)

	// Load starts loading the media behind locator.
	// Every event about this media carries id. A new Load supersedes any
	// previous one; the transport may still emit late events for the old id.
	Load(id domain.LoadID, locator string) error

	// Play starts or resumes playback of the loaded media.
	// If the load is still in flight, playback starts once it completes.
	Play() error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Seek moves to an absolute position. Clamping to [0, duration] is the
	// transport's responsibility.
	Seek(position time.Duration) error

	// Stop stops playback and releases the loaded media. Stopping with
	// nothing loaded is a no-op.
	Stop() error

	// Close releases every resource held by the transport.
	Close() error
}

// TransportListener receives asynchronous events from a MediaTransport.
// The playback session implements it.
type TransportListener interface {
	// OnProgressTick reports the elapsed time and total duration of load id.
	OnProgressTick(id domain.LoadID, elapsed, duration time.Duration)

	// OnStatusChanged reports a transport status change for load id.
	OnStatusChanged(id domain.LoadID, status domain.PlaybackStatus)

	// OnTrackCompleted reports that load id reached end of stream.
	OnTrackCompleted(id domain.LoadID)

	// OnLoadFailed reports that load id could not be opened or decoded.
	OnLoadFailed(id domain.LoadID, err error)
}

// TransportFactory is a function that creates a MediaTransport instance.
// This allows for dependency injection of different transport implementations.
type TransportFactory func(config TransportConfig) (MediaTransport, error)

// TransportConfig contains configuration for creating a transport.
type TransportConfig struct {
	// MediaDir is the directory relative locators are resolved against
	MediaDir string

	// ProgressInterval is how often progress ticks are emitted
	ProgressInterval time.Duration
}
