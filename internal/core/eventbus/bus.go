package eventbus

import "sync"

// Listener receives the payload of a published event.
type Listener func(payload any)

// Unsubscribe releases a registration. Calling it more than once is a no-op.
type Unsubscribe func()

type subscriber struct {
	id uint64
	fn Listener
}

// EventBus is a synchronous in-process bus. Publish fans out to the
// listeners subscribed at that moment, in subscription order, before it
// returns. There is no queue, no replay for late subscribers and no retry.
type EventBus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Topic][]subscriber
	exits  []exitInterceptor

	hooks hooks
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers fn for topic. Screens must call the returned handle
// on teardown so the bus does not keep a destroyed screen alive.
func (bus *EventBus) Subscribe(topic Topic, fn Listener) Unsubscribe {
	bus.mu.Lock()
	bus.nextID++
	id := bus.nextID
	bus.subs[topic] = append(bus.subs[topic], subscriber{id: id, fn: fn})
	bus.mu.Unlock()

	bus.runOnSubscribe(topic)

	var once sync.Once
	return func() {
		once.Do(func() { bus.remove(topic, id) })
	}
}

func (bus *EventBus) remove(topic Topic, id uint64) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	subs := bus.subs[topic]
	for i, s := range subs {
		if s.id == id {
			bus.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(bus.subs[topic]) == 0 {
		delete(bus.subs, topic)
	}
}

// Publish delivers payload to every current listener of topic. A panicking
// listener is recovered and reported through OnPanic hooks; the remaining
// listeners still run.
func (bus *EventBus) Publish(topic Topic, payload any) {
	bus.mu.Lock()
	subs := make([]subscriber, len(bus.subs[topic]))
	copy(subs, bus.subs[topic])
	bus.mu.Unlock()

	bus.runOnPublish(topic, payload)

	for _, s := range subs {
		bus.deliver(topic, payload, s.fn)
	}
}

func (bus *EventBus) deliver(topic Topic, payload any, fn Listener) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(topic, payload, r)
		}
	}()
	fn(payload)
}

// SubscriberCount returns how many listeners are registered for topic.
func (bus *EventBus) SubscriberCount(topic Topic) int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.subs[topic])
}
