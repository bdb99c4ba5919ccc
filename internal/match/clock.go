package match

import "fmt"

// ClockEvent flags the transitions a Tick can produce.
type ClockEvent int

const (
	ClockNone ClockEvent = iota
	ClockHalfEnd
	ClockMatchEnd
)

// Clock is the match countdown. Like State it is a value type: Tick and the
// control transitions return a new Clock. The ticking loop itself lives in
// the session; the clock only encodes the second-by-second rules.
type Clock struct {
	Minutes int
	Seconds int
	Half    int // 1 or 2
	Running bool
	Timeout bool

	HalfMinutes int
}

func NewClock(halfMinutes int) Clock {
	return Clock{
		Minutes:     halfMinutes,
		Half:        1,
		HalfMinutes: halfMinutes,
	}
}

// Display renders the remaining time as "MM:SS".
func (c Clock) Display() string {
	return fmt.Sprintf("%02d:%02d", c.Minutes, c.Seconds)
}

func (c Clock) Expired() bool { return c.Minutes == 0 && c.Seconds == 0 }

// MatchOver reports whether the second half has run out.
func (c Clock) MatchOver() bool { return c.Half == 2 && c.Expired() }

// Tick advances the countdown by one second. Half 1 running out rolls the
// clock over to a paused half 2 (the half break); half 2 running out ends
// the match. A paused or timed-out clock does not move.
func (c Clock) Tick() (Clock, ClockEvent) {
	if !c.Running || c.Timeout {
		return c, ClockNone
	}

	switch {
	case c.Seconds > 0:
		c.Seconds--
	case c.Minutes > 0:
		c.Minutes--
		c.Seconds = 59
	}

	if !c.Expired() {
		return c, ClockNone
	}

	if c.Half == 1 {
		c.Half = 2
		c.Minutes = c.HalfMinutes
		c.Seconds = 0
		c.Running = false
		return c, ClockHalfEnd
	}

	c.Running = false
	return c, ClockMatchEnd
}

// Toggle starts or pauses the countdown. Resuming from a timeout clears the
// timeout flag. Toggling a finished match is a no-op.
func (c Clock) Toggle() Clock {
	if c.MatchOver() && !c.Timeout {
		return c
	}
	if c.Timeout {
		c.Timeout = false
		c.Running = true
		return c
	}
	c.Running = !c.Running
	return c
}

// BeginTimeout pauses the countdown for a team timeout.
func (c Clock) BeginTimeout() Clock {
	c.Timeout = true
	c.Running = false
	return c
}

// CanTimeout reports whether a timeout may be taken right now; the per-team
// quota is checked by the caller against the roster.
func (c Clock) CanTimeout() bool {
	return c.Running && !c.Timeout && !c.MatchOver()
}
