// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within ronin.
package eventbus

import (
	"sync"

	"github.com/roninhq/ronin/internal/core/mission"
)

// Event names a domain event carried by the bus.
type Event string

const (
	EventMissionQueued     Event = "mission.queued"
	EventMissionStarted    Event = "mission.started"
	EventMissionCompleted  Event = "mission.completed"
	EventMissionFailed     Event = "mission.failed"
	EventMissionsRecovered Event = "missions.recovered"
)

// MissionQueuedPayload is emitted when a producer inserts a mission.
type MissionQueuedPayload struct {
	Entry  mission.Entry
	Urgent bool
}

// MissionStartedPayload is emitted when the consumer claims a mission.
type MissionStartedPayload struct {
	Entry mission.Entry
}

// MissionCompletedPayload is emitted when a mission finishes successfully.
type MissionCompletedPayload struct {
	Entry mission.Entry
}

// MissionFailedPayload is emitted when a mission finishes in failure.
type MissionFailedPayload struct {
	Entry mission.Entry
}

// MissionsRecoveredPayload is emitted after a startup recovery sweep.
type MissionsRecoveredPayload struct {
	Count int
}

const busBuffer = 64

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches events to subscribers on a single background
// goroutine. Publishing never blocks: events are dropped when the buffer is
// full.
type EventBus struct {
	mu   sync.RWMutex
	subs map[Event][]func(any)

	hooks hooks

	ch   chan envelope
	done chan struct{}
	once sync.Once
}

// New creates a started EventBus.
func New() *EventBus {
	bus := &EventBus{
		subs: make(map[Event][]func(any)),
		ch:   make(chan envelope, busBuffer),
		done: make(chan struct{}),
	}
	go bus.run()
	return bus
}

// Close stops the dispatch goroutine. Events published after Close are
// dropped.
func (b *EventBus) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *EventBus) run() {
	for {
		select {
		case <-b.done:
			return
		case env := <-b.ch:
			b.dispatch(env)
		}
	}
}

func (b *EventBus) dispatch(env envelope) {
	b.mu.RLock()
	subs := make([]func(any), len(b.subs[env.event]))
	copy(subs, b.subs[env.event])
	b.mu.RUnlock()

	for _, fn := range subs {
		b.call(env, fn)
	}
}

// call invokes one subscriber, containing panics so a bad subscriber cannot
// kill the dispatch goroutine.
func (b *EventBus) call(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			b.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

func (b *EventBus) send(event Event, payload any) {
	select {
	case b.ch <- envelope{event: event, payload: payload}:
		b.runOnPublish(event, payload)
	default:
		b.runOnDrop(event, payload)
	}
}

func (b *EventBus) subscribe(event Event, fn func(any)) {
	b.mu.Lock()
	b.subs[event] = append(b.subs[event], fn)
	b.mu.Unlock()
	b.runOnSubscribe(event)
}

// PublishMissionQueued publishes a mission.queued event.
func (b *EventBus) PublishMissionQueued(p MissionQueuedPayload) { b.send(EventMissionQueued, p) }

// SubscribeMissionQueued registers a callback for mission.queued events.
func (b *EventBus) SubscribeMissionQueued(fn func(MissionQueuedPayload)) {
	b.subscribe(EventMissionQueued, func(p any) {
		if payload, ok := p.(MissionQueuedPayload); ok {
			fn(payload)
		}
	})
}

// PublishMissionStarted publishes a mission.started event.
func (b *EventBus) PublishMissionStarted(p MissionStartedPayload) { b.send(EventMissionStarted, p) }

// SubscribeMissionStarted registers a callback for mission.started events.
func (b *EventBus) SubscribeMissionStarted(fn func(MissionStartedPayload)) {
	b.subscribe(EventMissionStarted, func(p any) {
		if payload, ok := p.(MissionStartedPayload); ok {
			fn(payload)
		}
	})
}

// PublishMissionCompleted publishes a mission.completed event.
func (b *EventBus) PublishMissionCompleted(p MissionCompletedPayload) {
	b.send(EventMissionCompleted, p)
}

// SubscribeMissionCompleted registers a callback for mission.completed events.
func (b *EventBus) SubscribeMissionCompleted(fn func(MissionCompletedPayload)) {
	b.subscribe(EventMissionCompleted, func(p any) {
		if payload, ok := p.(MissionCompletedPayload); ok {
			fn(payload)
		}
	})
}

// PublishMissionFailed publishes a mission.failed event.
func (b *EventBus) PublishMissionFailed(p MissionFailedPayload) { b.send(EventMissionFailed, p) }

// SubscribeMissionFailed registers a callback for mission.failed events.
func (b *EventBus) SubscribeMissionFailed(fn func(MissionFailedPayload)) {
	b.subscribe(EventMissionFailed, func(p any) {
		if payload, ok := p.(MissionFailedPayload); ok {
			fn(payload)
		}
	})
}

// PublishMissionsRecovered publishes a missions.recovered event.
func (b *EventBus) PublishMissionsRecovered(p MissionsRecoveredPayload) {
	b.send(EventMissionsRecovered, p)
}

// SubscribeMissionsRecovered registers a callback for missions.recovered events.
func (b *EventBus) SubscribeMissionsRecovered(fn func(MissionsRecoveredPayload)) {
	b.subscribe(EventMissionsRecovered, func(p any) {
		if payload, ok := p.(MissionsRecoveredPayload); ok {
			fn(payload)
		}
	})
}
