package match

// State is the whole scoring state of a match: both rosters, the per-team
// consecutive-empty-raid counters, and whose raid it is. It is a value type
// built from fixed arrays, so an ordinary assignment is a deep copy — every
// engine transition takes one State and returns another, and a rejected
// event leaves the caller's snapshot untouched.
type State struct {
	Teams     [2]Team
	RaidCycle [2]int // consecutive empty raids since that team's last scoring raid
	RaidTurn  Side
	Version   uint64
}

// NewState builds the initial pristine match state: two default-named teams,
// zeroed counters, first seven of each squad on court, home side raiding.
func NewState(timeoutsPerHalf int) State {
	return State{
		Teams: [2]Team{
			newTeam(Home, timeoutsPerHalf),
			newTeam(Away, timeoutsPerHalf),
		},
		RaidTurn: Home,
	}
}

// Team returns the team on the given side.
func (s *State) Team(side Side) *Team { return &s.Teams[side] }

// Scores returns (team 1 score, team 2 score).
func (s *State) Scores() (int, int) {
	return s.Teams[Home].Score, s.Teams[Away].Score
}
