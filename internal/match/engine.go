package match

import (
	"fmt"

	"github.com/mkrishnan/kabaddi-live/internal/config"
)

// PointType is the closed set of scoring event kinds the engine accepts.
type PointType string

const (
	PointRaid       PointType = "raid"
	PointRaidBonus  PointType = "raid-bonus"
	PointBonus      PointType = "bonus"
	PointLona       PointType = "lona-points"
	PointLonaBonus  PointType = "lona-bonus-points"
	PointTackle     PointType = "tackle"
	PointTackleLona PointType = "tackle-lona"
	PointLineOut    PointType = "line-out"
)

// raidCategory reports whether the event kind concludes a raid in the
// raider's favor: these reset the empty-raid counter and hand the raid over.
func (t PointType) raidCategory() bool {
	switch t {
	case PointRaid, PointRaidBonus, PointBonus, PointLona, PointLonaBonus:
		return true
	}
	return false
}

func (t PointType) valid() bool {
	switch t {
	case PointRaid, PointRaidBonus, PointBonus, PointLona, PointLonaBonus,
		PointTackle, PointTackleLona, PointLineOut:
		return true
	}
	return false
}

func (t PointType) carriesBonus() bool {
	return t == PointRaidBonus || t == PointBonus || t == PointLonaBonus
}

func (t PointType) carriesLona() bool {
	return t == PointLona || t == PointLonaBonus || t == PointTackleLona
}

// ScoreEvent is one raw scoring submission from the input boundary.
//
// Team is the team the scorer attributed the event to: the scoring team for
// raid and tackle kinds, the offending team for line-out (points go to the
// opponent). PlayerID names the credited player (offender for line-out,
// where it is optional). RaiderID optionally names the raider for tackle
// and line-out commentary — attribution is explicit, never inferred.
//
// RawPoints semantics depend on the kind, per the scoring table. The engine
// applies its formula to any positive value; the 1..10 business range is the
// input boundary's concern.
type ScoreEvent struct {
	Team      Side
	PlayerID  int
	RaiderID  int
	Type      PointType
	RawPoints int
}

// Engine interprets raw scoring events against a match state snapshot.
// All methods are pure: they return a new State and never mutate their
// input, so a rejected event is all-or-nothing by construction.
type Engine struct {
	rules config.MatchRules
}

func NewEngine(rules config.MatchRules) *Engine {
	return &Engine{rules: rules}
}

func (e *Engine) Rules() config.MatchRules { return e.rules }

// ApplyScoreEvent derives the team score delta, player stat deltas, raid
// cycle and raid turn consequences of one scoring event, with the fixed
// precedence: validate, credit team, credit player, raid-cycle reset,
// turn flip, summary.
func (e *Engine) ApplyScoreEvent(st State, ev ScoreEvent) (State, Summary, error) {
	if !ev.Type.valid() {
		return st, Summary{}, fmt.Errorf("%w: %q", ErrInvalidEventKind, ev.Type)
	}
	if !ev.Team.Valid() {
		return st, Summary{}, fmt.Errorf("%w: side %d", ErrUnknownEntity, ev.Team)
	}

	raw := ev.RawPoints
	if ev.Type == PointBonus {
		raw = 1 // a bonus is always exactly one point
	}

	// Who gets the team points, and whose raid this event belongs to.
	scoring := ev.Team
	raiding := ev.Team
	switch ev.Type {
	case PointLineOut:
		scoring = ev.Team.Other() // committing team concedes
	case PointTackle, PointTackleLona:
		raiding = ev.Team.Other() // a tackle scores for the defense of the current raid
	}

	// Resolve the credited player before touching anything.
	playerIdx := -1
	if ev.Type == PointLineOut {
		if ev.PlayerID != 0 {
			playerIdx = st.Teams[ev.Team].playerIndex(ev.PlayerID)
			if playerIdx < 0 {
				return st, Summary{}, fmt.Errorf("%w: player %d", ErrUnknownEntity, ev.PlayerID)
			}
		}
	} else {
		playerIdx = st.Teams[ev.Team].playerIndex(ev.PlayerID)
		if playerIdx < 0 {
			return st, Summary{}, fmt.Errorf("%w: player %d", ErrUnknownEntity, ev.PlayerID)
		}
	}

	// Optional explicit raider attribution for tackle / line-out commentary.
	// A line-out has exactly one attribution slot (the player who stepped
	// out); a second, different id is contradictory input.
	raiderName := ""
	if ev.RaiderID != 0 {
		if ev.Type == PointLineOut && ev.PlayerID != 0 && ev.RaiderID != ev.PlayerID {
			return st, Summary{}, fmt.Errorf("%w: line-out player %d vs raider %d",
				ErrConflictingAttribution, ev.PlayerID, ev.RaiderID)
		}
		rp, ok := st.Teams[raiding].Player(ev.RaiderID)
		if !ok {
			return st, Summary{}, fmt.Errorf("%w: raider %d", ErrUnknownEntity, ev.RaiderID)
		}
		raiderName = rp.Name
	}

	teamDelta := e.teamScoreDelta(ev.Type, raw)
	effective := effectivePointsInRaid(ev.Type, raw)
	superRaid := ev.Type.raidCategory() && effective >= e.rules.SuperRaidPoints
	superTackle := ev.Type == PointTackleLona && raw == e.rules.SuperTackleRaw
	preRaidCount := st.RaidCycle[raiding]

	next := st
	next.Teams[scoring].Score += teamDelta

	if playerIdx >= 0 && ev.Type != PointLineOut {
		p := &next.Teams[ev.Team].Players[playerIdx]
		switch ev.Type {
		case PointRaid, PointLona:
			p.RaidPoints += raw
			p.TotalPoints += raw
		case PointRaidBonus, PointLonaBonus:
			p.RaidPoints += raw
			p.BonusPoints++
			p.TotalPoints += raw + 1
		case PointBonus:
			p.BonusPoints++
			p.TotalPoints++
		case PointTackle, PointTackleLona:
			p.TacklePoints += raw
			p.TotalPoints += raw
		}
		if ev.Type.raidCategory() {
			p.TotalRaids++
			p.SuccessfulRaids++
			if superRaid {
				p.SuperRaids++
			}
		}
		if superTackle {
			p.SuperTacklePoints++
		}
	}

	// Raid cycle: a scoring raid wipes the raider's empty-raid streak.
	// Tackles and line-outs leave both counters alone.
	if ev.Type.raidCategory() {
		next.RaidCycle[scoring] = 0
		next.RaidTurn = scoring.Other()
	}
	next.Version++

	sum := Summary{
		EventType:     summaryType(ev.Type, superTackle),
		PointType:     ev.Type,
		RaidingTeam:   st.Teams[raiding].Name,
		DefendingTeam: st.Teams[raiding.Other()].Name,
		Points:        teamDelta,
		IsSuperRaid:   superRaid,
		IsDoOrDie:     ev.Type != PointLineOut && preRaidCount >= e.rules.DoOrDieThreshold,
		IsBonus:       ev.Type.carriesBonus(),
		IsLona:        ev.Type.carriesLona(),
		RaidCount:     next.RaidCycle[raiding],
		Team1Score:    next.Teams[Home].Score,
		Team2Score:    next.Teams[Away].Score,
	}
	if playerIdx >= 0 {
		name := st.Teams[ev.Team].Players[playerIdx].Name
		switch ev.Type {
		case PointTackle, PointTackleLona:
			sum.DefenderName = name
			sum.RaiderName = raiderName
		case PointLineOut:
			sum.RaiderName = name
		default:
			sum.RaiderName = name
		}
	} else {
		sum.RaiderName = raiderName
	}

	return next, sum, nil
}

// ApplyEmptyRaid records a pointless raid by raiderID of the raiding team.
// Two empty raids are tolerated; the third must score, so when the pre-event
// counter is already at the threshold the raid is a failed do-or-die: the
// opponent is awarded one point and the counter resets.
func (e *Engine) ApplyEmptyRaid(st State, raiding Side, raiderID int) (State, Summary, error) {
	if !raiding.Valid() {
		return st, Summary{}, fmt.Errorf("%w: side %d", ErrUnknownEntity, raiding)
	}
	raiderIdx := st.Teams[raiding].playerIndex(raiderID)
	if raiderIdx < 0 {
		return st, Summary{}, fmt.Errorf("%w: raider %d", ErrUnknownEntity, raiderID)
	}

	pre := st.RaidCycle[raiding]
	failed := pre >= e.rules.DoOrDieThreshold

	next := st
	next.Teams[raiding].Players[raiderIdx].TotalRaids++
	points := 0
	if failed {
		next.Teams[raiding.Other()].Score++
		next.RaidCycle[raiding] = 0
		points = 1
	} else {
		next.RaidCycle[raiding] = pre + 1
	}
	next.RaidTurn = raiding.Other()
	next.Version++

	eventType := SummaryEmptyRaid
	if failed {
		eventType = SummaryDoOrDieFail
	}
	sum := Summary{
		EventType:     eventType,
		RaidingTeam:   st.Teams[raiding].Name,
		DefendingTeam: st.Teams[raiding.Other()].Name,
		RaiderName:    st.Teams[raiding].Players[raiderIdx].Name,
		Points:        points,
		IsDoOrDie:     failed,
		DoOrDieFail:   failed,
		RaidCount:     next.RaidCycle[raiding],
		Team1Score:    next.Teams[Home].Score,
		Team2Score:    next.Teams[Away].Score,
	}
	return next, sum, nil
}

func (e *Engine) teamScoreDelta(t PointType, raw int) int {
	switch t {
	case PointRaid, PointTackle, PointLineOut:
		return raw
	case PointRaidBonus:
		return raw + 1
	case PointBonus:
		return 1
	case PointLona:
		return raw + e.rules.LonaBonus
	case PointLonaBonus:
		return raw + 1 + e.rules.LonaBonus
	case PointTackleLona:
		return raw + e.rules.LonaBonus
	}
	return 0
}

// effectivePointsInRaid is the points the raider personally produced during
// the raid: touch points plus the bonus if one was taken. The lona bonus is
// a team award and never counts toward a super raid.
func effectivePointsInRaid(t PointType, raw int) int {
	switch t {
	case PointRaid, PointLona:
		return raw
	case PointRaidBonus, PointLonaBonus:
		return raw + 1
	case PointBonus:
		return 1
	}
	return 0
}

func summaryType(t PointType, superTackle bool) string {
	switch {
	case t.raidCategory():
		return SummaryRaidScore
	case t == PointLineOut:
		return SummaryLineOut
	case superTackle:
		return SummarySuperTackleScore
	default:
		return SummaryTackleScore
	}
}
