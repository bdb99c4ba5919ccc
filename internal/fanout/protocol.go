package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkrishnan/kabaddi-live/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventRaidScore, events.EventTackleScore, events.EventSuperTackleScore,
		events.EventLineOut, events.EventEmptyRaid, events.EventDoOrDieFail:
		var sp events.ScorePayload
		if err := json.Unmarshal(env.Payload, &sp); err != nil {
			return evt, fmt.Errorf("unmarshal %s: %w", env.Type, err)
		}
		evt.Payload = sp
	case events.EventSubstitution:
		var sub events.SubstitutionPayload
		if err := json.Unmarshal(env.Payload, &sub); err != nil {
			return evt, fmt.Errorf("unmarshal substitution: %w", err)
		}
		evt.Payload = sub
	case events.EventTimeout:
		var to events.TimeoutPayload
		if err := json.Unmarshal(env.Payload, &to); err != nil {
			return evt, fmt.Errorf("unmarshal timeout: %w", err)
		}
		evt.Payload = to
	case events.EventClock:
		var cp events.ClockPayload
		if err := json.Unmarshal(env.Payload, &cp); err != nil {
			return evt, fmt.Errorf("unmarshal clock: %w", err)
		}
		evt.Payload = cp
	case events.EventMatchReset:
		var rp events.ResetPayload
		if err := json.Unmarshal(env.Payload, &rp); err != nil {
			return evt, fmt.Errorf("unmarshal match_reset: %w", err)
		}
		evt.Payload = rp
	case events.EventCommentary:
		var cp events.CommentaryPayload
		if err := json.Unmarshal(env.Payload, &cp); err != nil {
			return evt, fmt.Errorf("unmarshal commentary: %w", err)
		}
		evt.Payload = cp
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}

	return evt, nil
}
