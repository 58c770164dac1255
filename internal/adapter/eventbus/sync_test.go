package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeltune/reeltune/internal/domain"
	"github.com/reeltune/reeltune/internal/logger"
)

func newTestBus(t *testing.T) *SyncEventBus {
	t.Helper()
	bus := NewSyncEventBus(logger.NewTestLogger())
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestNewSyncEventBus(t *testing.T) {
	bus := newTestBus(t)

	assert.Equal(t, 0, bus.SubscriberCount())
	assert.False(t, bus.closed)
}

func TestPublishSubscribe(t *testing.T) {
	bus := newTestBus(t)

	var received []domain.Event
	subID := bus.Subscribe(domain.EventTrackStarted, func(e domain.Event) {
		received = append(received, e)
	})
	require.NotEmpty(t, subID)

	track := domain.Track{ID: "test123", Title: "Test Track"}
	bus.Publish(domain.NewTrackStartedEvent(track, 0, 1))

	require.Len(t, received, 1)
	started, ok := received[0].(domain.TrackStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "test123", started.Track.ID)
	assert.Equal(t, domain.LoadID(1), started.LoadID)
}

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := newTestBus(t)

	var order []string
	bus.SubscribeAll(func(domain.Event) { order = append(order, "all") })
	bus.Subscribe(domain.EventRepeatToggled, func(domain.Event) { order = append(order, "first") })
	bus.Subscribe(domain.EventRepeatToggled, func(domain.Event) { order = append(order, "second") })

	bus.Publish(domain.NewRepeatToggledEvent(true))

	assert.Equal(t, []string{"first", "second", "all"}, order)
}

func TestUnsubscribe(t *testing.T) {
	bus := newTestBus(t)

	var calls atomic.Int32
	subID := bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { calls.Add(1) })

	track := domain.Track{ID: "test"}
	bus.Publish(domain.NewTrackStartedEvent(track, 0, 1))
	bus.Unsubscribe(subID)
	bus.Publish(domain.NewTrackStartedEvent(track, 0, 2))

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestUnsubscribePreservesOrder(t *testing.T) {
	bus := newTestBus(t)

	var order []int
	bus.Subscribe(domain.EventQueueChanged, func(domain.Event) { order = append(order, 1) })
	middle := bus.Subscribe(domain.EventQueueChanged, func(domain.Event) { order = append(order, 2) })
	bus.Subscribe(domain.EventQueueChanged, func(domain.Event) { order = append(order, 3) })
	bus.Subscribe(domain.EventQueueChanged, func(domain.Event) { order = append(order, 4) })

	bus.Unsubscribe(middle)
	bus.Publish(domain.NewQueueChangedEvent(nil, -1))

	assert.Equal(t, []int{1, 3, 4}, order)
}

func TestUnsubscribeInvalidID(t *testing.T) {
	bus := newTestBus(t)

	assert.NotPanics(t, func() {
		bus.Unsubscribe("invalid-id")
		bus.Unsubscribe("")
	})
}

func TestSubscribeAll(t *testing.T) {
	bus := newTestBus(t)

	var mu sync.Mutex
	var received []domain.EventType
	bus.SubscribeAll(func(e domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e.Type())
	})

	track := domain.Track{ID: "test"}
	bus.Publish(domain.NewTrackStartedEvent(track, 0, 1))
	bus.Publish(domain.NewTrackPausedEvent(track, 10*time.Second))
	bus.Publish(domain.NewSleepTimerEvent(domain.EventSleepTimerArmed, time.Minute, time.Minute))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.EventType{
		domain.EventTrackStarted,
		domain.EventTrackPaused,
		domain.EventSleepTimerArmed,
	}, received)
}

func TestSubscribeFiltered(t *testing.T) {
	bus := newTestBus(t)

	var got []string
	bus.SubscribeFiltered(domain.EventFavoriteToggled,
		func(e domain.Event) bool { return e.(domain.FavoriteToggledEvent).TrackID == "a" },
		func(e domain.Event) { got = append(got, e.(domain.FavoriteToggledEvent).TrackID) })

	bus.Publish(domain.NewFavoriteToggledEvent("a", true))
	bus.Publish(domain.NewFavoriteToggledEvent("b", true))
	bus.Publish(domain.NewFavoriteToggledEvent("a", false))

	assert.Equal(t, []string{"a", "a"}, got)
}

func TestHasSubscribers(t *testing.T) {
	bus := newTestBus(t)

	assert.False(t, bus.HasSubscribers(domain.EventTrackStarted))

	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventTrackStarted))
	assert.False(t, bus.HasSubscribers(domain.EventTrackPaused))

	bus.SubscribeAll(func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventTrackPaused))
}

func TestHandlerPanicDoesNotStopDelivery(t *testing.T) {
	bus := newTestBus(t)

	var called bool
	bus.Subscribe(domain.EventTrackError, func(domain.Event) { panic("boom") })
	bus.Subscribe(domain.EventTrackError, func(domain.Event) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(domain.NewTrackErrorEvent(domain.Track{}, domain.ErrFileNotFound))
	})
	assert.True(t, called)
}

func TestHandlerMayResubscribeDuringPublish(t *testing.T) {
	bus := newTestBus(t)

	var inner atomic.Int32
	bus.Subscribe(domain.EventRepeatToggled, func(domain.Event) {
		bus.Subscribe(domain.EventRepeatToggled, func(domain.Event) { inner.Add(1) })
	})

	bus.Publish(domain.NewRepeatToggledEvent(true))
	assert.Equal(t, int32(0), inner.Load())

	bus.Publish(domain.NewRepeatToggledEvent(false))
	assert.Equal(t, int32(1), inner.Load())
}

func TestClose(t *testing.T) {
	bus := NewSyncEventBus(logger.NewTestLogger())

	var calls int
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { calls++ })

	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Close(), ErrBusClosed)

	bus.Publish(domain.NewTrackStartedEvent(domain.Track{}, 0, 1))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.SubscriberCount())

	assert.Panics(t, func() {
		bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {})
	})
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	bus := newTestBus(t)

	var calls atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(domain.EventTrackProgress, func(domain.Event) { calls.Add(1) })
			for j := 0; j < 100; j++ {
				bus.Publish(domain.NewTrackProgressEvent(time.Duration(j)*time.Second, time.Minute))
			}
			bus.Unsubscribe(id)
		}()
	}

	wg.Wait()
	assert.Positive(t, calls.Load())
	assert.Equal(t, 0, bus.SubscriberCount())
}
