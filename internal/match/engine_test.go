package match

import (
	"errors"
	"testing"

	"github.com/mkrishnan/kabaddi-live/internal/config"
)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultMatchRules())
}

func TestApplyScoreEvent_TeamDeltas(t *testing.T) {
	tests := []struct {
		name      string
		pointType PointType
		raw       int
		wantDelta int
	}{
		{"raid", PointRaid, 2, 2},
		{"raid-bonus", PointRaidBonus, 2, 3},
		{"bonus forces one", PointBonus, 7, 1},
		{"lona-points", PointLona, 3, 5},
		{"lona-bonus-points", PointLonaBonus, 2, 5},
		{"engine does not cap raw points", PointRaid, 12, 12},
	}

	e := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState(2)
			next, sum, err := e.ApplyScoreEvent(st, ScoreEvent{
				Team: Home, PlayerID: 101, Type: tt.pointType, RawPoints: tt.raw,
			})
			if err != nil {
				t.Fatalf("ApplyScoreEvent: %v", err)
			}
			if got := next.Teams[Home].Score; got != tt.wantDelta {
				t.Errorf("team score = %d, want %d", got, tt.wantDelta)
			}
			if sum.Points != tt.wantDelta {
				t.Errorf("summary points = %d, want %d", sum.Points, tt.wantDelta)
			}
		})
	}
}

// Scenario: fresh match, Team1 raids for 3. Three touch points is a super
// raid, the raid succeeds, and the raid passes to Team2.
func TestApplyScoreEvent_RaidForThree(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)

	next, sum, err := e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 101, Type: PointRaid, RawPoints: 3})
	if err != nil {
		t.Fatalf("ApplyScoreEvent: %v", err)
	}

	if next.Teams[Home].Score != 3 {
		t.Errorf("team1 score = %d, want 3", next.Teams[Home].Score)
	}
	p, _ := next.Teams[Home].Player(101)
	if p.RaidPoints != 3 || p.TotalPoints != 3 {
		t.Errorf("raider points = raid %d total %d, want 3/3", p.RaidPoints, p.TotalPoints)
	}
	if p.TotalRaids != 1 || p.SuccessfulRaids != 1 {
		t.Errorf("raid counts = %d/%d, want 1/1", p.TotalRaids, p.SuccessfulRaids)
	}
	if p.SuperRaids != 1 {
		t.Errorf("super raids = %d, want 1", p.SuperRaids)
	}
	if next.RaidTurn != Away {
		t.Errorf("raid turn = %v, want Away", next.RaidTurn)
	}
	if !sum.IsSuperRaid || sum.EventType != SummaryRaidScore {
		t.Errorf("summary = %+v, want super raid_score", sum)
	}
}

func TestApplyScoreEvent_SuperRaidBoundary(t *testing.T) {
	e := newTestEngine()

	// raid-bonus with 2 touch points is effectively 3 — a super raid.
	st := NewState(2)
	next, sum, err := e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 101, Type: PointRaidBonus, RawPoints: 2})
	if err != nil {
		t.Fatal(err)
	}
	p, _ := next.Teams[Home].Player(101)
	if p.SuperRaids != 1 || !sum.IsSuperRaid {
		t.Errorf("effective 3: super raids = %d, IsSuperRaid = %v, want 1/true", p.SuperRaids, sum.IsSuperRaid)
	}
	if p.BonusPoints != 1 || p.RaidPoints != 2 || p.TotalPoints != 3 {
		t.Errorf("player = bonus %d raid %d total %d, want 1/2/3", p.BonusPoints, p.RaidPoints, p.TotalPoints)
	}

	// raid-bonus with 1 touch point is effectively 2 — not a super raid.
	st = NewState(2)
	next, sum, err = e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 101, Type: PointRaidBonus, RawPoints: 1})
	if err != nil {
		t.Fatal(err)
	}
	p, _ = next.Teams[Home].Player(101)
	if p.SuperRaids != 0 || sum.IsSuperRaid {
		t.Errorf("effective 2: super raids = %d, IsSuperRaid = %v, want 0/false", p.SuperRaids, sum.IsSuperRaid)
	}
}

// Lona points are a team award: the +2 never lands on the raider.
func TestApplyScoreEvent_LonaBonusIsTeamOnly(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)

	next, _, err := e.ApplyScoreEvent(st, ScoreEvent{Team: Away, PlayerID: 203, Type: PointLona, RawPoints: 4})
	if err != nil {
		t.Fatal(err)
	}
	if next.Teams[Away].Score != 6 {
		t.Errorf("team score = %d, want 6", next.Teams[Away].Score)
	}
	p, _ := next.Teams[Away].Player(203)
	if p.RaidPoints != 4 || p.TotalPoints != 4 {
		t.Errorf("raider = raid %d total %d, want 4/4", p.RaidPoints, p.TotalPoints)
	}
}

// Scenario: super tackle against a raider from Team1 while Team1 raids.
// Team2 collects 2+2, the defender logs a super tackle, and the raid turn
// does not flip — the tackle is part of Team1's raid.
func TestApplyScoreEvent_SuperTackle(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)
	st.RaidTurn = Home

	next, sum, err := e.ApplyScoreEvent(st, ScoreEvent{
		Team: Away, PlayerID: 205, RaiderID: 101, Type: PointTackleLona, RawPoints: 2,
	})
	if err != nil {
		t.Fatalf("ApplyScoreEvent: %v", err)
	}

	if next.Teams[Away].Score != 4 {
		t.Errorf("team2 score = %d, want 4", next.Teams[Away].Score)
	}
	p, _ := next.Teams[Away].Player(205)
	if p.TacklePoints != 2 || p.TotalPoints != 2 {
		t.Errorf("defender = tackle %d total %d, want 2/2", p.TacklePoints, p.TotalPoints)
	}
	if p.SuperTacklePoints != 1 {
		t.Errorf("super tackles = %d, want 1", p.SuperTacklePoints)
	}
	if p.TotalRaids != 0 || p.SuccessfulRaids != 0 {
		t.Errorf("tackle must not touch raid counts, got %d/%d", p.TotalRaids, p.SuccessfulRaids)
	}
	if next.RaidTurn != Home {
		t.Errorf("raid turn flipped on a tackle: %v", next.RaidTurn)
	}
	if sum.EventType != SummarySuperTackleScore {
		t.Errorf("event type = %q, want %q", sum.EventType, SummarySuperTackleScore)
	}
	if sum.DefenderName == "" || sum.RaiderName == "" {
		t.Errorf("summary missing names: %+v", sum)
	}
	if sum.RaidingTeam != st.Teams[Home].Name {
		t.Errorf("raiding team = %q, want team1", sum.RaidingTeam)
	}
}

// A plain 1-point tackle is not a super tackle and keeps the turn.
func TestApplyScoreEvent_PlainTackle(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)
	st.RaidTurn = Away
	st.RaidCycle[Away] = 1

	next, sum, err := e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 102, Type: PointTackle, RawPoints: 1})
	if err != nil {
		t.Fatal(err)
	}
	if next.Teams[Home].Score != 1 {
		t.Errorf("score = %d, want 1", next.Teams[Home].Score)
	}
	if next.RaidTurn != Away {
		t.Errorf("turn = %v, want Away (unchanged)", next.RaidTurn)
	}
	if next.RaidCycle[Away] != 1 {
		t.Errorf("tackle must not touch the raid cycle, got %d", next.RaidCycle[Away])
	}
	if sum.EventType != SummaryTackleScore {
		t.Errorf("event type = %q", sum.EventType)
	}
	p, _ := next.Teams[Home].Player(102)
	if p.SuperTacklePoints != 0 {
		t.Errorf("super tackles = %d, want 0", p.SuperTacklePoints)
	}
}

// Scenario: line-out by Team1 credits Team2 and changes nothing else.
func TestApplyScoreEvent_LineOut(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)
	st.RaidTurn = Home
	st.RaidCycle[Home] = 1

	next, sum, err := e.ApplyScoreEvent(st, ScoreEvent{Team: Home, Type: PointLineOut, RawPoints: 1})
	if err != nil {
		t.Fatalf("ApplyScoreEvent: %v", err)
	}

	if next.Teams[Away].Score != 1 {
		t.Errorf("team2 score = %d, want 1", next.Teams[Away].Score)
	}
	if next.Teams[Home].Score != 0 {
		t.Errorf("team1 score = %d, want 0", next.Teams[Home].Score)
	}
	if next.RaidTurn != Home || next.RaidCycle[Home] != 1 {
		t.Errorf("line-out must leave turn and raid cycle alone")
	}
	if sum.EventType != SummaryLineOut {
		t.Errorf("event type = %q", sum.EventType)
	}
	for s := range next.Teams {
		for i := range next.Teams[s].Players {
			if next.Teams[s].Players[i] != st.Teams[s].Players[i] {
				t.Fatalf("line-out mutated player stats: %+v", next.Teams[s].Players[i])
			}
		}
	}
}

func TestApplyEmptyRaid_DoOrDieCycle(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)
	st.RaidTurn = Home

	// Two empty raids are tolerated.
	for i := 1; i <= 2; i++ {
		var sum Summary
		var err error
		st, sum, err = e.ApplyEmptyRaid(st, Home, 101)
		if err != nil {
			t.Fatalf("empty raid %d: %v", i, err)
		}
		if sum.DoOrDieFail {
			t.Fatalf("empty raid %d flagged as do-or-die fail", i)
		}
		if st.RaidCycle[Home] != i {
			t.Fatalf("counter after raid %d = %d", i, st.RaidCycle[Home])
		}
		if sum.RaidCount != i {
			t.Fatalf("summary raid count = %d, want %d", sum.RaidCount, i)
		}
	}

	// The third consecutive failure concedes a point and resets.
	next, sum, err := e.ApplyEmptyRaid(st, Home, 101)
	if err != nil {
		t.Fatalf("third empty raid: %v", err)
	}
	if !sum.DoOrDieFail || sum.EventType != SummaryDoOrDieFail {
		t.Errorf("summary = %+v, want do_or_die_fail", sum)
	}
	if next.Teams[Away].Score != 1 {
		t.Errorf("opponent score = %d, want 1", next.Teams[Away].Score)
	}
	if next.RaidCycle[Home] != 0 {
		t.Errorf("counter after fail = %d, want 0", next.RaidCycle[Home])
	}
	if next.RaidTurn != Away {
		t.Errorf("turn = %v, want Away", next.RaidTurn)
	}
	p, _ := next.Teams[Home].Player(101)
	if p.TotalRaids != 3 || p.SuccessfulRaids != 0 {
		t.Errorf("raider counts = %d/%d, want 3/0", p.TotalRaids, p.SuccessfulRaids)
	}
}

// The counter never leaves {0,1,2} no matter the sequence, and a scoring
// raid wipes the streak.
func TestRaidCycle_Invariant(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)

	check := func(step string) {
		t.Helper()
		for s := Home; s <= Away; s++ {
			if c := st.RaidCycle[s]; c < 0 || c > 2 {
				t.Fatalf("%s: counter out of range: side %d = %d", step, s, c)
			}
		}
	}

	var err error
	for i := 0; i < 10; i++ {
		st, _, err = e.ApplyEmptyRaid(st, Home, 101)
		if err != nil {
			t.Fatal(err)
		}
		check("empty raid")
	}

	st.RaidCycle[Home] = 2
	st, _, err = e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 101, Type: PointRaid, RawPoints: 1})
	if err != nil {
		t.Fatal(err)
	}
	if st.RaidCycle[Home] != 0 {
		t.Errorf("scoring raid must reset the counter, got %d", st.RaidCycle[Home])
	}
}

// A do-or-die empty raid right at the threshold reports IsDoOrDie on the
// summary even when it also fails.
func TestApplyScoreEvent_DoOrDieFlagOnScoringRaid(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)
	st.RaidCycle[Home] = 2

	_, sum, err := e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 101, Type: PointRaid, RawPoints: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !sum.IsDoOrDie {
		t.Error("scoring raid on the third attempt must be flagged do-or-die")
	}
	if sum.RaidCount != 0 {
		t.Errorf("raid count after scoring = %d, want 0", sum.RaidCount)
	}
}

// Score bookkeeping: team score equals the sum of applied deltas, and the
// player total always matches its components.
func TestScoreAccumulation(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)

	seq := []ScoreEvent{
		{Team: Home, PlayerID: 101, Type: PointRaid, RawPoints: 2},
		{Team: Home, PlayerID: 101, Type: PointBonus, RawPoints: 9},
		{Team: Home, PlayerID: 101, Type: PointRaidBonus, RawPoints: 1},
		{Team: Home, PlayerID: 101, Type: PointLona, RawPoints: 3},
	}

	wantTeam := 0
	for _, ev := range seq {
		var sum Summary
		var err error
		st, sum, err = e.ApplyScoreEvent(st, ev)
		if err != nil {
			t.Fatalf("%s: %v", ev.Type, err)
		}
		wantTeam += sum.Points

		if st.Teams[Home].Score != wantTeam {
			t.Fatalf("after %s: team score %d, want %d", ev.Type, st.Teams[Home].Score, wantTeam)
		}
		p, _ := st.Teams[Home].Player(101)
		if p.TotalPoints != p.RaidPoints+p.BonusPoints+p.TacklePoints {
			t.Fatalf("after %s: total %d != raid %d + bonus %d + tackle %d",
				ev.Type, p.TotalPoints, p.RaidPoints, p.BonusPoints, p.TacklePoints)
		}
	}
}

// Applying the same event value twice produces two independent increments.
func TestApplyScoreEvent_NoDeduplication(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)
	ev := ScoreEvent{Team: Home, PlayerID: 101, Type: PointRaid, RawPoints: 2}

	var err error
	st, _, err = e.ApplyScoreEvent(st, ev)
	if err != nil {
		t.Fatal(err)
	}
	st, _, err = e.ApplyScoreEvent(st, ev)
	if err != nil {
		t.Fatal(err)
	}
	if st.Teams[Home].Score != 4 {
		t.Errorf("score = %d, want 4", st.Teams[Home].Score)
	}
}

func TestApplyScoreEvent_Rejections(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)

	tests := []struct {
		name    string
		ev      ScoreEvent
		wantErr error
	}{
		{"unknown point type", ScoreEvent{Team: Home, PlayerID: 101, Type: "super-duper", RawPoints: 1}, ErrInvalidEventKind},
		{"unknown player", ScoreEvent{Team: Home, PlayerID: 999, Type: PointRaid, RawPoints: 1}, ErrUnknownEntity},
		{"player from the other roster", ScoreEvent{Team: Home, PlayerID: 201, Type: PointRaid, RawPoints: 1}, ErrUnknownEntity},
		{"missing player on raid", ScoreEvent{Team: Home, Type: PointRaid, RawPoints: 1}, ErrUnknownEntity},
		{"bad side", ScoreEvent{Team: 5, PlayerID: 101, Type: PointRaid, RawPoints: 1}, ErrUnknownEntity},
		{"unknown raider attribution", ScoreEvent{Team: Away, PlayerID: 201, RaiderID: 999, Type: PointTackle, RawPoints: 1}, ErrUnknownEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := e.ApplyScoreEvent(st, tt.ev)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if next != st {
				t.Error("rejected event mutated state")
			}
		})
	}
}

func TestApplyEmptyRaid_RejectsUnknownRaider(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)

	next, _, err := e.ApplyEmptyRaid(st, Home, 777)
	if !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("err = %v, want ErrUnknownEntity", err)
	}
	if next != st {
		t.Error("rejected empty raid mutated state")
	}
}

// Line-out player attribution is optional but must resolve when present.
func TestApplyScoreEvent_LineOutAttribution(t *testing.T) {
	e := newTestEngine()
	st := NewState(2)

	_, sum, err := e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 104, Type: PointLineOut, RawPoints: 2})
	if err != nil {
		t.Fatal(err)
	}
	if sum.RaiderName == "" {
		t.Error("offender name missing from summary")
	}

	_, _, err = e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 999, Type: PointLineOut, RawPoints: 2})
	if !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("err = %v, want ErrUnknownEntity", err)
	}

	// the same id in both slots is redundant but consistent
	_, sum, err = e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 104, RaiderID: 104, Type: PointLineOut, RawPoints: 2})
	if err != nil {
		t.Fatal(err)
	}
	if sum.RaiderName == "" {
		t.Error("offender name missing from summary")
	}

	// two different players cannot both be the one who stepped out
	_, _, err = e.ApplyScoreEvent(st, ScoreEvent{Team: Home, PlayerID: 104, RaiderID: 105, Type: PointLineOut, RawPoints: 2})
	if !errors.Is(err, ErrConflictingAttribution) {
		t.Errorf("err = %v, want ErrConflictingAttribution", err)
	}

	// raider id alone still attributes the line-out
	_, sum, err = e.ApplyScoreEvent(st, ScoreEvent{Team: Home, RaiderID: 104, Type: PointLineOut, RawPoints: 2})
	if err != nil {
		t.Fatal(err)
	}
	if sum.RaiderName != st.Teams[Home].Players[3].Name {
		t.Errorf("raider name = %q", sum.RaiderName)
	}
}
