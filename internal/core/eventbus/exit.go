package eventbus

import "sync"

type exitInterceptor struct {
	id      uint64
	message string
	blocks  func() bool
}

// ExitVerdict is the outcome of RequestExit.
type ExitVerdict struct {
	Blocked bool
	// Warning is the message of the interceptor that blocked, shown to the
	// reviewer as-is.
	Warning string
}

// InterceptExit registers a check that runs immediately before the view is
// torn down. When blocks returns true the exit is held and message is shown.
//
// Interception is advisory. The host may close regardless (a killed process,
// a forced window close), so nothing may depend on it for correctness.
func (bus *EventBus) InterceptExit(message string, blocks func() bool) Unsubscribe {
	bus.mu.Lock()
	bus.nextID++
	id := bus.nextID
	bus.exits = append(bus.exits, exitInterceptor{id: id, message: message, blocks: blocks})
	bus.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			bus.mu.Lock()
			defer bus.mu.Unlock()
			for i, e := range bus.exits {
				if e.id == id {
					bus.exits = append(bus.exits[:i:i], bus.exits[i+1:]...)
					break
				}
			}
		})
	}
}

// RequestExit asks every interceptor, in registration order, whether the
// exit should be held. The first one that blocks wins.
func (bus *EventBus) RequestExit() ExitVerdict {
	bus.mu.Lock()
	checks := make([]exitInterceptor, len(bus.exits))
	copy(checks, bus.exits)
	bus.mu.Unlock()

	for _, c := range checks {
		if c.blocks != nil && c.blocks() {
			return ExitVerdict{Blocked: true, Warning: c.message}
		}
	}
	return ExitVerdict{}
}
