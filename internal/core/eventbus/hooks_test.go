package eventbus

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHooks_PublishAndDrop(t *testing.T) {
	bus := New()
	bus.Close()

	var published, dropped atomic.Int64
	bus.OnPublish(func(Event, any) { published.Add(1) })
	bus.OnDrop(func(Event, any) { dropped.Add(1) })

	// The bus is closed, so the buffer fills and overflow is dropped.
	for range busBuffer + 5 {
		bus.PublishMissionQueued(MissionQueuedPayload{})
	}

	assert.Equal(t, int64(busBuffer), published.Load())
	assert.Equal(t, int64(5), dropped.Load())
}

func TestHooks_Subscribe(t *testing.T) {
	bus := New()
	defer bus.Close()

	var events []Event
	bus.OnSubscribe(func(e Event) { events = append(events, e) })

	bus.SubscribeMissionQueued(func(MissionQueuedPayload) {})
	bus.SubscribeMissionFailed(func(MissionFailedPayload) {})

	assert.Equal(t, []Event{EventMissionQueued, EventMissionFailed}, events)
}

func TestHooks_PanicContained(t *testing.T) {
	bus := New()
	defer bus.Close()

	panicked := make(chan struct{})
	bus.OnPanic(func(event Event, payload, recovered any) {
		assert.Equal(t, EventMissionQueued, event)
		assert.Equal(t, "boom", recovered)
		close(panicked)
	})

	delivered := make(chan struct{})
	bus.SubscribeMissionQueued(func(MissionQueuedPayload) { panic("boom") })
	bus.SubscribeMissionQueued(func(MissionQueuedPayload) { close(delivered) })

	bus.PublishMissionQueued(MissionQueuedPayload{})

	waitFor(t, panicked)
	// Later subscribers still run after an earlier one panics.
	waitFor(t, delivered)
}
