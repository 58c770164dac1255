// Package ports define the EventBus interface for event-driven communication.
package ports

import (
	"github.com/reeltune/reeltune/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
// Services publish state transitions on it; the presenter, the catalog and
// logging subscribe without knowing who published.
//
// Thread-safety: Implementations must be thread-safe as events may be published and
// subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	bus.Publish(domain.NewRepeatToggledEvent(true))
//
//	subID := bus.Subscribe(domain.EventTrackStarted, func(event domain.Event) {
//	    e := event.(domain.TrackStartedEvent)
//	    catalog.MarkPlayed(e.Track.ID)
//	})
//	defer bus.Unsubscribe(subID)
type EventBus interface {
	// Publish delivers an event to all subscribers of its type and to
	// wildcard subscribers. Handlers must return quickly.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type and
	// returns an ID for Unsubscribe.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered handler.
	// Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives every event.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers reports whether anyone listens to eventType.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and drops all subscriptions.
	Close() error
}

// EventFilter is a function that determines if an event should be delivered to a subscriber.
type EventFilter func(event domain.Event) bool

// FilteringEventBus extends EventBus with filtered subscriptions.
type FilteringEventBus interface {
	EventBus

	// SubscribeFiltered registers a handler that only sees events of
	// eventType that pass filter.
	//
	// Example: only react to the favorite flag of one track
	//	bus.SubscribeFiltered(domain.EventFavoriteToggled, func(e domain.Event) bool {
	//	    return e.(domain.FavoriteToggledEvent).TrackID == current.ID
	//	}, refreshHeart)
	SubscribeFiltered(eventType domain.EventType, filter EventFilter, handler domain.EventHandler) domain.SubscriptionID
}
