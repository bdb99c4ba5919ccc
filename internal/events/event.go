package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope that flows through the event bus. Every applied
// match mutation (score, empty raid, substitution, timeout, clock change,
// reset, commentary line) is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Scoring engine events
	EventRaidScore        EventType = "raid_score"
	EventTackleScore      EventType = "tackle_score"
	EventSuperTackleScore EventType = "super_tackle_score"
	EventLineOut          EventType = "line_out"
	EventEmptyRaid        EventType = "empty_raid"
	EventDoOrDieFail      EventType = "do_or_die_fail"
	// Match administration events
	EventSubstitution EventType = "substitution"
	EventTimeout      EventType = "timeout"
	EventClock        EventType = "clock"
	EventMatchReset   EventType = "match_reset"
	// Commentary adapter output
	EventCommentary EventType = "commentary"
)

// New wraps a payload in a timestamped envelope with a fresh ID.
func New(t EventType, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
