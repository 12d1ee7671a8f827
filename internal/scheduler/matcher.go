package scheduler

import (
	"github.com/agentcore/runtime/internal/events"
)

// MatchEvent reports whether e satisfies trigger: the event type must match
// and every filter key must be present in the payload with an equal string
// value.
func MatchEvent(e events.Event, trigger *EventTrigger) bool {
	if trigger == nil {
		return false
	}
	if string(e.Type) != trigger.Type {
		return false
	}
	for key, expected := range trigger.Filter {
		val, ok := e.Payload[key]
		if !ok {
			return false
		}
		strVal, ok := val.(string)
		if !ok || strVal != expected {
			return false
		}
	}
	return true
}
