// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrTrackNotFound is returned when a requested track cannot be found.
	ErrTrackNotFound = errors.New("track not found")

	// ErrPlaylistNotFound is returned when a requested playlist cannot be found.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrNothingPlaying is returned when an operation needs a current track and there is none.
	ErrNothingPlaying = errors.New("no track is currently playing")

	// ErrNoTrackLoaded is returned when a transport command is issued with nothing loaded.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrInvalidDuration is returned when a non-positive duration is supplied.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrNoSleepTimer is returned when pausing or resuming a sleep timer that is not armed.
	ErrNoSleepTimer = errors.New("no sleep timer armed")

	// ErrUnsupportedFormat is returned when a media format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported media format")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidLocator is returned when a media locator is empty or malformed.
	ErrInvalidLocator = errors.New("invalid media locator")

	// ErrSessionClosed is returned when the playback session has been shut down.
	ErrSessionClosed = errors.New("playback session closed")

	// ErrTransportClosed is returned when the transport has been closed.
	ErrTransportClosed = errors.New("transport closed")

	// ErrImportCancelled is returned when an import is canceled.
	ErrImportCancelled = errors.New("import cancelled")

	// ErrImportInProgress is returned when an import is started while another one runs.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrEmptyName is returned when a playlist is created without a name.
	ErrEmptyName = errors.New("name must not be empty")
)

// TransportError represents an error from the media transport.
// This wraps low-level decoder and output errors with additional context.
type TransportError struct {
	Op      string // Operation that failed (e.g., "load", "play", "seek")
	Locator string // Media locator (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("transport %s failed for '%s': %s", e.Op, e.Locator, e.Message)
	}
	return fmt.Sprintf("transport %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(op, locator, message string, err error) *TransportError {
	return &TransportError{
		Op:      op,
		Locator: locator,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load", "delete")
	Type    string // Repository type (e.g., "tracks", "playlists", "preferences")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repository %s.%s failed: %s: %v", e.Type, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackSession", "CatalogService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
