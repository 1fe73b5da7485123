package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger wires bus hooks into the given logger: published events
// at debug level with their mission context, dropped events at warn, and
// subscriber panics at error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		withMission(logger.Debug(), payload).Str("event", string(event)).Msg("event fired")
	})

	bus.OnDrop(func(event Event, payload any) {
		withMission(logger.Warn(), payload).Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, payload any, recovered any) {
		withMission(logger.Error(), payload).
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

// withMission annotates a log event with the payload's mission details.
func withMission(ev *zerolog.Event, payload any) *zerolog.Event {
	switch p := payload.(type) {
	case MissionQueuedPayload:
		return ev.Str("mission", p.Entry.Text).Bool("urgent", p.Urgent)
	case MissionStartedPayload:
		return ev.Str("mission", p.Entry.Text)
	case MissionCompletedPayload:
		return ev.Str("mission", p.Entry.Text)
	case MissionFailedPayload:
		return ev.Str("mission", p.Entry.Text)
	case MissionsRecoveredPayload:
		return ev.Int("recovered", p.Count)
	default:
		return ev
	}
}
