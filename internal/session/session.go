// Package session owns the live state of one match: scoring state, clock,
// substitution budgets, and the commentary log.
//
// All mutations are serialized through an inbox channel — one goroutine
// drains it, so no mutexes are needed on any field. The scorer's HTTP
// boundary, the clock ticker, and the commentary worker all funnel through
// the same queue, which is what makes every transition atomic.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/mkrishnan/kabaddi-live/internal/events"
	"github.com/mkrishnan/kabaddi-live/internal/match"
	"github.com/mkrishnan/kabaddi-live/internal/telemetry"
)

var (
	// ErrTimeoutUnavailable rejects a timeout while the clock is stopped,
	// during another timeout, or with no timeouts left.
	ErrTimeoutUnavailable = errors.New("timeout unavailable")
	// ErrMatchStarted rejects configuration only allowed on a pristine match.
	ErrMatchStarted = errors.New("match already started")
	// ErrEmptyName rejects a rename to nothing.
	ErrEmptyName = errors.New("empty name")
)

// Snapshot is a point-in-time copy of everything a reader needs. State and
// Clock are value types, so the copy is deep and free of aliasing.
type Snapshot struct {
	State       match.State
	Clock       match.Clock
	SubsUsed    [2]int
	BreakActive bool
	Pristine    bool
	Commentary  []string // newest first
}

// Session is the single source of truth for the running match.
type Session struct {
	engine *match.Engine
	bus    *events.Bus

	state       match.State
	clock       match.Clock
	subsUsed    [2]int
	breakActive bool
	pristine    bool
	resetGen    uint64
	commentary  []string // newest first

	inbox      chan func()
	quit       chan struct{}
	done       chan struct{}
	tickerStop chan struct{} // non-nil while the 1s ticker runs
}

func New(engine *match.Engine, bus *events.Bus) *Session {
	rules := engine.Rules()
	s := &Session{
		engine:   engine,
		bus:      bus,
		state:    match.NewState(rules.TimeoutsPerHalf),
		clock:    match.NewClock(rules.HalfMinutes),
		pristine: true,
		inbox:    make(chan func(), 64),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-s.quit:
			return
		}
	}
}

// call runs fn on the session goroutine and waits for it. Every public
// operation goes through here — exactly one event is in flight at a time.
func (s *Session) call(fn func()) {
	reply := make(chan struct{})
	s.inbox <- func() {
		fn()
		close(reply)
	}
	<-reply
}

// send enqueues fn without waiting. Used by the ticker so a stalled queue
// sheds ticks instead of backing up.
func (s *Session) send(fn func()) {
	select {
	case s.inbox <- fn:
	default:
		telemetry.Metrics.InboxOverflows.Inc()
	}
}

// Close stops the ticker and the session goroutine. Must be the last call;
// a tick racing Close at worst lands in the buffered inbox and is never run.
func (s *Session) Close() {
	s.call(s.stopTicker)
	close(s.quit)
	<-s.done
}

// Snapshot returns a deep copy of the current match for rendering/export.
func (s *Session) Snapshot() Snapshot {
	var snap Snapshot
	s.call(func() {
		snap = Snapshot{
			State:       s.state,
			Clock:       s.clock,
			SubsUsed:    s.subsUsed,
			BreakActive: s.breakActive,
			Pristine:    s.pristine,
			Commentary:  append([]string(nil), s.commentary...),
		}
	})
	return snap
}

// ApplyScore runs one scoring event through the engine and, on success,
// installs the new snapshot and publishes the summary.
func (s *Session) ApplyScore(ev match.ScoreEvent) (match.Summary, error) {
	var sum match.Summary
	var err error
	s.call(func() {
		var next match.State
		next, sum, err = s.engine.ApplyScoreEvent(s.state, ev)
		if err != nil {
			telemetry.Metrics.EventsRejected.Inc()
			return
		}
		s.state = next
		s.pristine = false
		telemetry.Metrics.EventsApplied.Inc()
		s.publishSummary(sum)
	})
	return sum, err
}

// EmptyRaid records a pointless raid, with do-or-die resolution.
func (s *Session) EmptyRaid(raiding match.Side, raiderID int) (match.Summary, error) {
	var sum match.Summary
	var err error
	s.call(func() {
		var next match.State
		next, sum, err = s.engine.ApplyEmptyRaid(s.state, raiding, raiderID)
		if err != nil {
			telemetry.Metrics.EventsRejected.Inc()
			return
		}
		s.state = next
		s.pristine = false
		telemetry.Metrics.EventsApplied.Inc()
		telemetry.Metrics.EmptyRaids.Inc()
		if sum.DoOrDieFail {
			telemetry.Metrics.DoOrDieFails.Inc()
		}
		s.publishSummary(sum)
	})
	return sum, err
}

// Substitute swaps a bench and a court player during an open break, charged
// against the team's per-break budget.
func (s *Session) Substitute(side match.Side, playerInID, playerOutID int) error {
	var err error
	s.call(func() {
		if !side.Valid() {
			err = fmt.Errorf("%w: side %d", match.ErrUnknownEntity, side)
			return
		}
		var next match.State
		next, err = s.engine.Substitute(s.state, side, playerInID, playerOutID, s.subsUsed[side], s.breakActive)
		if err != nil {
			return
		}
		s.state = next
		s.subsUsed[side]++
		telemetry.Metrics.Substitutions.Inc()

		in, _ := s.state.Team(side).Player(playerInID)
		out, _ := s.state.Team(side).Player(playerOutID)
		s.bus.Publish(events.New(events.EventSubstitution, events.SubstitutionPayload{
			Team:          s.state.Team(side).Name,
			PlayerIn:      in.Name,
			PlayerOut:     out.Name,
			UsedThisBreak: s.subsUsed[side],
		}))
	})
	return err
}

// TakeTimeout pauses the match for a team timeout and opens a substitution
// window. Budgets reset because a new break is starting.
func (s *Session) TakeTimeout(side match.Side) error {
	var err error
	s.call(func() {
		if !side.Valid() {
			err = fmt.Errorf("%w: side %d", match.ErrUnknownEntity, side)
			return
		}
		team := s.state.Team(side)
		if !s.clock.CanTimeout() || team.TimeoutsLeft <= 0 {
			err = ErrTimeoutUnavailable
			return
		}
		team.TimeoutsLeft--
		s.clock = s.clock.BeginTimeout()
		s.openBreak()
		s.stopTicker()

		s.bus.Publish(events.New(events.EventTimeout, events.TimeoutPayload{
			Team:      team.Name,
			Remaining: team.TimeoutsLeft,
		}))
	})
	return err
}

// ToggleClock starts, pauses, or resumes the countdown. Starting play closes
// any open substitution window. A finished match stays finished.
func (s *Session) ToggleClock() {
	s.call(func() {
		switch {
		case s.clock.MatchOver() && !s.clock.Timeout:
			return
		case s.clock.Timeout:
			s.clock = s.clock.Toggle()
			s.breakActive = false
			s.startTicker()
			s.publishClock("resume")
		case s.clock.Running:
			s.clock = s.clock.Toggle()
			s.stopTicker()
			s.publishClock("pause")
		default:
			s.clock = s.clock.Toggle()
			s.pristine = false
			s.breakActive = false
			s.startTicker()
			s.publishClock("start")
		}
	})
}

// Reset discards the match wholesale: fresh rosters, fresh clock, empty
// commentary log. Late commentary responses for the old match are fenced
// out by the generation counter.
func (s *Session) Reset() {
	s.call(func() {
		rules := s.engine.Rules()
		s.stopTicker()
		half := s.clock.HalfMinutes
		s.state = match.NewState(rules.TimeoutsPerHalf)
		s.clock = match.NewClock(half)
		s.subsUsed = [2]int{}
		s.breakActive = false
		s.pristine = true
		s.commentary = nil
		s.resetGen++

		s.bus.Publish(events.New(events.EventMatchReset, events.ResetPayload{HalfMinutes: half}))
	})
}

// SetHalfDuration reconfigures the half length. Only allowed while the
// match is pristine.
func (s *Session) SetHalfDuration(minutes int) error {
	var err error
	s.call(func() {
		if minutes <= 0 {
			err = fmt.Errorf("half duration must be positive, got %d", minutes)
			return
		}
		if !s.pristine {
			err = ErrMatchStarted
			return
		}
		s.clock = match.NewClock(minutes)
	})
	return err
}

// SetTeamName renames a team mid-match.
func (s *Session) SetTeamName(side match.Side, name string) error {
	return s.setTeamField(side, name, func(t *match.Team, v string) { t.Name = v })
}

// SetTeamCoach renames a team's coach.
func (s *Session) SetTeamCoach(side match.Side, name string) error {
	return s.setTeamField(side, name, func(t *match.Team, v string) { t.Coach = v })
}

// SetTeamCity renames a team's city.
func (s *Session) SetTeamCity(side match.Side, name string) error {
	return s.setTeamField(side, name, func(t *match.Team, v string) { t.City = v })
}

func (s *Session) setTeamField(side match.Side, name string, set func(*match.Team, string)) error {
	var err error
	s.call(func() {
		if !side.Valid() {
			err = fmt.Errorf("%w: side %d", match.ErrUnknownEntity, side)
			return
		}
		clean := match.SanitizeName(name)
		if clean == "" {
			err = ErrEmptyName
			return
		}
		set(s.state.Team(side), clean)
		s.state.Version++
	})
	return err
}

// SetPlayerName renames a squad member.
func (s *Session) SetPlayerName(side match.Side, playerID int, name string) error {
	var err error
	s.call(func() {
		if !side.Valid() {
			err = fmt.Errorf("%w: side %d", match.ErrUnknownEntity, side)
			return
		}
		clean := match.SanitizeName(name)
		if clean == "" {
			err = ErrEmptyName
			return
		}
		team := s.state.Team(side)
		found := false
		for i := range team.Players {
			if team.Players[i].ID == playerID {
				team.Players[i].Name = clean
				found = true
				break
			}
		}
		if !found {
			err = fmt.Errorf("%w: player %d", match.ErrUnknownEntity, playerID)
			return
		}
		s.state.Version++
	})
	return err
}

// CommentaryContext is what the commentary worker reads when it builds a
// request: the most recent log lines, the clock display, and the reset
// generation used to fence out stale responses.
type CommentaryContext struct {
	History      []string
	ClockDisplay string
	Gen          uint64
}

func (s *Session) CommentaryContext(historyLimit int) CommentaryContext {
	var ctx CommentaryContext
	s.call(func() {
		n := min(historyLimit, len(s.commentary))
		ctx = CommentaryContext{
			History:      append([]string(nil), s.commentary[:n]...),
			ClockDisplay: s.clock.Display(),
			Gen:          s.resetGen,
		}
	})
	return ctx
}

// AppendCommentary prepends a generated line to the log, unless the match
// was reset after the request was issued — a stale response is discarded as
// a lost update.
func (s *Session) AppendCommentary(gen uint64, text string) bool {
	accepted := false
	s.call(func() {
		if gen != s.resetGen {
			telemetry.Metrics.CommentaryDropped.Inc()
			return
		}
		s.commentary = append([]string{text}, s.commentary...)
		accepted = true
		s.bus.Publish(events.New(events.EventCommentary, events.CommentaryPayload{Text: text}))
	})
	return accepted
}

// ── internal transitions (session goroutine only) ──────────────────

// publishSummary turns an engine summary into a bus event, stamped with the
// current clock display so consumers never re-read state.
func (s *Session) publishSummary(sum match.Summary) {
	s.bus.Publish(events.New(events.EventType(sum.EventType), events.ScorePayload{
		EventType:     sum.EventType,
		PointType:     string(sum.PointType),
		RaidingTeam:   sum.RaidingTeam,
		DefendingTeam: sum.DefendingTeam,
		RaiderName:    sum.RaiderName,
		DefenderName:  sum.DefenderName,
		Points:        sum.Points,
		IsSuperRaid:   sum.IsSuperRaid,
		IsDoOrDie:     sum.IsDoOrDie,
		IsBonus:       sum.IsBonus,
		IsLona:        sum.IsLona,
		RaidCount:     sum.RaidCount,
		Team1Score:    sum.Team1Score,
		Team2Score:    sum.Team2Score,
		ClockDisplay:  s.clock.Display(),
	}))
}

func (s *Session) publishClock(action string) {
	s.bus.Publish(events.New(events.EventClock, events.ClockPayload{
		Action:       action,
		Half:         s.clock.Half,
		ClockDisplay: s.clock.Display(),
		Running:      s.clock.Running,
	}))
}

// openBreak starts a new substitution window: both budgets reset.
func (s *Session) openBreak() {
	s.breakActive = true
	s.subsUsed = [2]int{}
}

func (s *Session) tick() {
	next, ev := s.clock.Tick()
	moved := next != s.clock
	s.clock = next

	switch ev {
	case match.ClockHalfEnd:
		// Half break: substitution window opens, timeouts restock.
		s.openBreak()
		rules := s.engine.Rules()
		s.state.Team(match.Home).TimeoutsLeft = rules.TimeoutsPerHalf
		s.state.Team(match.Away).TimeoutsLeft = rules.TimeoutsPerHalf
		s.stopTicker()
		s.publishClock("half_end")
	case match.ClockMatchEnd:
		s.stopTicker()
		s.publishClock("match_end")
	default:
		// a tick queued just before the ticker stopped finds a paused
		// clock and must stay silent
		if moved {
			s.publishClock("tick")
		}
	}
}

// startTicker begins a fresh 1-second tick loop. The previous loop, if any,
// is stopped first, so start/pause/reset always gets a clean lifetime and a
// stopped ticker can never fire into a later match.
func (s *Session) startTicker() {
	s.stopTicker()
	stop := make(chan struct{})
	s.tickerStop = stop

	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.send(s.tick)
			}
		}
	}()
}

func (s *Session) stopTicker() {
	if s.tickerStop != nil {
		close(s.tickerStop)
		s.tickerStop = nil
	}
}
