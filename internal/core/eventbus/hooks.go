package eventbus

import "sync"

// hooks holds the lifecycle hook state for the EventBus. Hooks observe bus
// activity without participating in dispatch.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onDrop      []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// OnPublish registers a hook that fires after an event is successfully enqueued.
func (b *EventBus) OnPublish(fn func(Event, any)) {
	b.hooks.mu.Lock()
	b.hooks.onPublish = append(b.hooks.onPublish, fn)
	b.hooks.mu.Unlock()
}

// OnDrop registers a hook that fires when an event is dropped due to a full buffer.
func (b *EventBus) OnDrop(fn func(Event, any)) {
	b.hooks.mu.Lock()
	b.hooks.onDrop = append(b.hooks.onDrop, fn)
	b.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (b *EventBus) OnSubscribe(fn func(Event)) {
	b.hooks.mu.Lock()
	b.hooks.onSubscribe = append(b.hooks.onSubscribe, fn)
	b.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (b *EventBus) OnPanic(fn func(Event, any, any)) {
	b.hooks.mu.Lock()
	b.hooks.onPanic = append(b.hooks.onPanic, fn)
	b.hooks.mu.Unlock()
}

func (b *EventBus) runOnPublish(event Event, payload any) {
	b.hooks.mu.RLock()
	fns := make([]func(Event, any), len(b.hooks.onPublish))
	copy(fns, b.hooks.onPublish)
	b.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(event, payload)
	}
}

func (b *EventBus) runOnDrop(event Event, payload any) {
	b.hooks.mu.RLock()
	fns := make([]func(Event, any), len(b.hooks.onDrop))
	copy(fns, b.hooks.onDrop)
	b.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(event, payload)
	}
}

func (b *EventBus) runOnSubscribe(event Event) {
	b.hooks.mu.RLock()
	fns := make([]func(Event), len(b.hooks.onSubscribe))
	copy(fns, b.hooks.onSubscribe)
	b.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(event)
	}
}

func (b *EventBus) runOnPanic(event Event, payload any, recovered any) {
	b.hooks.mu.RLock()
	fns := make([]func(Event, any, any), len(b.hooks.onPanic))
	copy(fns, b.hooks.onPanic)
	b.hooks.mu.RUnlock()
	for _, fn := range fns {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
