package eventbus

import "sync"

// hooks holds the lifecycle hook state for the EventBus.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Topic, any)
	onSubscribe []func(Topic)
	onPanic     []func(Topic, any, any)
}

// OnPublish registers a hook that fires before listeners run for an event.
func (bus *EventBus) OnPublish(fn func(Topic, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPublish = append(bus.hooks.onPublish, fn)
	bus.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Topic)) {
	bus.hooks.mu.Lock()
	bus.hooks.onSubscribe = append(bus.hooks.onSubscribe, fn)
	bus.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (bus *EventBus) OnPanic(fn func(Topic, any, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPanic = append(bus.hooks.onPanic, fn)
	bus.hooks.mu.Unlock()
}

func (bus *EventBus) runOnPublish(topic Topic, payload any) {
	bus.hooks.mu.RLock()
	hooks := make([]func(Topic, any), len(bus.hooks.onPublish))
	copy(hooks, bus.hooks.onPublish)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(topic, payload)
	}
}

func (bus *EventBus) runOnSubscribe(topic Topic) {
	bus.hooks.mu.RLock()
	hooks := make([]func(Topic), len(bus.hooks.onSubscribe))
	copy(hooks, bus.hooks.onSubscribe)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		fn(topic)
	}
}

func (bus *EventBus) runOnPanic(topic Topic, payload any, recovered any) {
	bus.hooks.mu.RLock()
	hooks := make([]func(Topic, any, any), len(bus.hooks.onPanic))
	copy(hooks, bus.hooks.onPanic)
	bus.hooks.mu.RUnlock()
	for _, fn := range hooks {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(topic, payload, recovered)
		}()
	}
}
