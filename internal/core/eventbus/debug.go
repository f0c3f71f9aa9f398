package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity at debug level.
// Uses OnPublish for event firing and OnPanic for subscriber panic reporting.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(topic Topic, payload any) {
		logger.Debug().Str("topic", string(topic)).Interface("payload", payload).Msg("event fired")
	})

	bus.OnSubscribe(func(topic Topic) {
		logger.Debug().Str("topic", string(topic)).Msg("subscriber added")
	})

	bus.OnPanic(func(topic Topic, _ any, recovered any) {
		logger.Error().
			Str("topic", string(topic)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}
