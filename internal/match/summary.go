package match

// Summary is the structured record of one applied event, consumed by the
// commentary adapter, the fanout feed, and the journal. It is derived from
// the pre-event state plus the computed deltas in the same pass that
// mutates the snapshot — never from a re-read of mutated state.
type Summary struct {
	EventType string // raid_score, tackle_score, super_tackle_score, line_out, empty_raid, do_or_die_fail
	PointType PointType

	RaidingTeam   string
	DefendingTeam string
	RaiderName    string
	DefenderName  string

	Points      int // team score delta of the event
	IsSuperRaid bool
	IsDoOrDie   bool // the raid in play was a do-or-die raid (pre-event counter at threshold)
	IsBonus     bool
	IsLona      bool
	DoOrDieFail bool

	RaidCount  int // raiding team's empty-raid counter after the event
	Team1Score int // resulting scores
	Team2Score int
}

const (
	SummaryRaidScore        = "raid_score"
	SummaryTackleScore      = "tackle_score"
	SummarySuperTackleScore = "super_tackle_score"
	SummaryLineOut          = "line_out"
	SummaryEmptyRaid        = "empty_raid"
	SummaryDoOrDieFail      = "do_or_die_fail"
)
