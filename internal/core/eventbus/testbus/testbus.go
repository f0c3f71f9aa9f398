// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"sync"
	"testing"

	"github.com/colonyops/casereview/internal/core/eventbus"
)

// RecordedEvent holds a captured topic and payload.
type RecordedEvent struct {
	Topic   eventbus.Topic
	Payload any
}

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus that records every event published on any topic
// listed in eventbus.Events. Recording listeners are released when the test
// completes.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{EventBus: eventbus.New()}

	for topic := range eventbus.Events {
		unsub := tb.Subscribe(topic, func(payload any) {
			tb.record(topic, payload)
		})
		t.Cleanup(unsub)
	}

	return tb
}

func (tb *Bus) record(topic eventbus.Topic, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, RecordedEvent{Topic: topic, Payload: payload})
}

// Events returns a copy of all recorded events.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	out := make([]RecordedEvent, len(tb.events))
	copy(out, tb.events)
	return out
}

// Of returns the payloads recorded for topic, oldest first.
func (tb *Bus) Of(topic eventbus.Topic) []any {
	var out []any
	for _, e := range tb.Events() {
		if e.Topic == topic {
			out = append(out, e.Payload)
		}
	}
	return out
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// AssertPublished asserts that an event on topic was recorded. Delivery is
// synchronous, so no waiting is involved.
func (tb *Bus) AssertPublished(t *testing.T, topic eventbus.Topic) {
	t.Helper()
	if len(tb.Of(topic)) == 0 {
		t.Errorf("expected event %q to be published, but it was not", topic)
	}
}

// AssertNotPublished asserts that no event on topic was recorded.
func (tb *Bus) AssertNotPublished(t *testing.T, topic eventbus.Topic) {
	t.Helper()
	if n := len(tb.Of(topic)); n > 0 {
		t.Errorf("expected event %q to NOT be published, but it was published %d time(s)", topic, n)
	}
}
