// Package domain defines events for the event-driven architecture.
// Events replace callbacks and enable loose coupling between components.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackResumed   EventType = "track.resumed"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventTrackProgress  EventType = "track.progress"
	EventTrackError     EventType = "track.error"
	EventStatusChanged  EventType = "playback.status"

	// Playback mode events
	EventRepeatToggled EventType = "repeat.toggled"

	// Queue events
	EventQueueChanged     EventType = "queue.changed"
	EventNextTrackChanged EventType = "queue.next_changed"
	EventTrackEnqueued    EventType = "queue.enqueued"

	// Sleep timer events
	EventSleepTimerArmed     EventType = "sleep.armed"
	EventSleepTimerPaused    EventType = "sleep.paused"
	EventSleepTimerResumed   EventType = "sleep.resumed"
	EventSleepTimerFired     EventType = "sleep.fired"
	EventSleepTimerCancelled EventType = "sleep.cancelled"

	// Catalog events
	EventImportStarted   EventType = "import.started"
	EventImportProgress  EventType = "import.progress"
	EventImportCompleted EventType = "import.completed"
	EventFavoriteToggled EventType = "catalog.favorite"
	EventTrackDeleted    EventType = "catalog.deleted"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackStartedEvent is published when the session loads a track for playback.
// The catalog listens to it to mark the track as recently played.
type TrackStartedEvent struct {
	baseEvent
	Track  Track
	Index  int
	LoadID LoadID
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track, index int, id LoadID) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
		LoadID:    id,
	}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// TrackResumedEvent is published when paused playback resumes in place.
type TrackResumedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackResumedEvent) Type() EventType {
	return EventTrackResumed
}

// NewTrackResumedEvent creates a new TrackResumedEvent.
func NewTrackResumedEvent(track Track) TrackResumedEvent {
	return TrackResumedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackStoppedEvent is published when playback stops without a follow-up track.
type TrackStoppedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track Track) TrackStoppedEvent {
	return TrackStoppedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackCompletedEvent is published when a track finishes playing naturally.
type TrackCompletedEvent struct {
	baseEvent
	Track    Track
	Repeated bool
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType {
	return EventTrackCompleted
}

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track Track, repeated bool) TrackCompletedEvent {
	return TrackCompletedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Repeated:  repeated,
	}
}

// TrackProgressEvent is published for every accepted progress tick.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType {
	return EventTrackProgress
}

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// TrackErrorEvent is published when a track cannot be loaded or played.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Error:     err,
	}
}

// StatusChangedEvent is published whenever the session status changes.
type StatusChangedEvent struct {
	baseEvent
	Previous PlaybackStatus
	Current  PlaybackStatus
}

// Type returns the event type.
func (e StatusChangedEvent) Type() EventType {
	return EventStatusChanged
}

// NewStatusChangedEvent creates a new StatusChangedEvent.
func NewStatusChangedEvent(previous, current PlaybackStatus) StatusChangedEvent {
	return StatusChangedEvent{
		baseEvent: newBaseEvent(),
		Previous:  previous,
		Current:   current,
	}
}

// RepeatToggledEvent is published when repeat-one is toggled.
type RepeatToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e RepeatToggledEvent) Type() EventType {
	return EventRepeatToggled
}

// NewRepeatToggledEvent creates a new RepeatToggledEvent.
func NewRepeatToggledEvent(enabled bool) RepeatToggledEvent {
	return RepeatToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// QueueChangedEvent is published when the queue order or current index changes.
type QueueChangedEvent struct {
	baseEvent
	Queue []string
	Index int
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType {
	return EventQueueChanged
}

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue []string, index int) QueueChangedEvent {
	return QueueChangedEvent{
		baseEvent: newBaseEvent(),
		Queue:     queue,
		Index:     index,
	}
}

// NextTrackChangedEvent is published when the derived "up next" track changes.
type NextTrackChangedEvent struct {
	baseEvent
	Track *Track
}

// Type returns the event type.
func (e NextTrackChangedEvent) Type() EventType {
	return EventNextTrackChanged
}

// NewNextTrackChangedEvent creates a new NextTrackChangedEvent.
func NewNextTrackChangedEvent(track *Track) NextTrackChangedEvent {
	return NextTrackChangedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackEnqueuedEvent is published when a track is queued to play next.
type TrackEnqueuedEvent struct {
	baseEvent
	Track  Track
	Index  int
	Result EnqueueResult
}

// Type returns the event type.
func (e TrackEnqueuedEvent) Type() EventType {
	return EventTrackEnqueued
}

// NewTrackEnqueuedEvent creates a new TrackEnqueuedEvent.
func NewTrackEnqueuedEvent(track Track, index int, result EnqueueResult) TrackEnqueuedEvent {
	return TrackEnqueuedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Index:     index,
		Result:    result,
	}
}

// SleepTimerEvent is published on every sleep timer transition.
// The concrete transition is given by Type.
type SleepTimerEvent struct {
	baseEvent
	kind      EventType
	Total     time.Duration
	Remaining time.Duration
}

// Type returns the event type.
func (e SleepTimerEvent) Type() EventType {
	return e.kind
}

// NewSleepTimerEvent creates a SleepTimerEvent of the given kind.
func NewSleepTimerEvent(kind EventType, total, remaining time.Duration) SleepTimerEvent {
	return SleepTimerEvent{
		baseEvent: newBaseEvent(),
		kind:      kind,
		Total:     total,
		Remaining: remaining,
	}
}

// ImportStartedEvent is published when a catalog import starts.
type ImportStartedEvent struct {
	baseEvent
	TotalFiles int
}

// Type returns the event type.
func (e ImportStartedEvent) Type() EventType {
	return EventImportStarted
}

// NewImportStartedEvent creates a new ImportStartedEvent.
func NewImportStartedEvent(total int) ImportStartedEvent {
	return ImportStartedEvent{
		baseEvent:  newBaseEvent(),
		TotalFiles: total,
	}
}

// ImportProgressEvent is published after each file of an import.
type ImportProgressEvent struct {
	baseEvent
	Progress ImportProgress
}

// Type returns the event type.
func (e ImportProgressEvent) Type() EventType {
	return EventImportProgress
}

// NewImportProgressEvent creates a new ImportProgressEvent.
func NewImportProgressEvent(progress ImportProgress) ImportProgressEvent {
	return ImportProgressEvent{
		baseEvent: newBaseEvent(),
		Progress:  progress,
	}
}

// ImportCompletedEvent is published when a catalog import finishes.
type ImportCompletedEvent struct {
	baseEvent
	Tracks []Track
}

// Type returns the event type.
func (e ImportCompletedEvent) Type() EventType {
	return EventImportCompleted
}

// NewImportCompletedEvent creates a new ImportCompletedEvent.
func NewImportCompletedEvent(tracks []Track) ImportCompletedEvent {
	return ImportCompletedEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
	}
}

// FavoriteToggledEvent is published when a track is liked or unliked.
type FavoriteToggledEvent struct {
	baseEvent
	TrackID  string
	Favorite bool
}

// Type returns the event type.
func (e FavoriteToggledEvent) Type() EventType {
	return EventFavoriteToggled
}

// NewFavoriteToggledEvent creates a new FavoriteToggledEvent.
func NewFavoriteToggledEvent(trackID string, favorite bool) FavoriteToggledEvent {
	return FavoriteToggledEvent{
		baseEvent: newBaseEvent(),
		TrackID:   trackID,
		Favorite:  favorite,
	}
}

// TrackDeletedEvent is published when a track is removed from the catalog.
type TrackDeletedEvent struct {
	baseEvent
	TrackID string
}

// Type returns the event type.
func (e TrackDeletedEvent) Type() EventType {
	return EventTrackDeleted
}

// NewTrackDeletedEvent creates a new TrackDeletedEvent.
func NewTrackDeletedEvent(trackID string) TrackDeletedEvent {
	return TrackDeletedEvent{
		baseEvent: newBaseEvent(),
		TrackID:   trackID,
	}
}
