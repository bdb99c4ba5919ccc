package match

import "fmt"

const (
	// SquadSize is the fixed bench size per team.
	SquadSize = 12
	// ActiveSize is the number of players on court per team.
	ActiveSize = 7
)

// Side indexes the two teams. Using a two-slot enum instead of searching by
// team id keeps every engine lookup O(1).
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) Other() Side {
	if s == Home {
		return Away
	}
	return Home
}

func (s Side) Valid() bool { return s == Home || s == Away }

// SideOfTeamID maps the external team ids 1 and 2 onto sides.
func SideOfTeamID(id int) (Side, bool) {
	switch id {
	case 1:
		return Home, true
	case 2:
		return Away, true
	}
	return 0, false
}

// Player is one squad member. Stat counters only ever increase within a
// match; TotalPoints is always the sum of points credited through raid,
// bonus, and tackle events.
type Player struct {
	ID     int
	Name   string
	Active bool

	RaidPoints        int
	TacklePoints      int
	BonusPoints       int
	TotalPoints       int
	TotalRaids        int
	SuccessfulRaids   int
	SuperRaids        int
	SuperTacklePoints int
}

// Team holds one side's identity, score, timeouts, and fixed squad.
type Team struct {
	ID    int
	Name  string
	Coach string
	City  string

	Score        int
	TimeoutsLeft int

	Players [SquadSize]Player
}

// playerIndex returns the squad slot of a player id, or -1.
func (t *Team) playerIndex(playerID int) int {
	for i := range t.Players {
		if t.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// Player returns the squad member with the given id.
func (t *Team) Player(playerID int) (Player, bool) {
	if i := t.playerIndex(playerID); i >= 0 {
		return t.Players[i], true
	}
	return Player{}, false
}

// ActiveCount reports how many players are currently on court.
func (t *Team) ActiveCount() int {
	n := 0
	for i := range t.Players {
		if t.Players[i].Active {
			n++
		}
	}
	return n
}

func newTeam(side Side, timeouts int) Team {
	id := int(side) + 1
	t := Team{
		ID:           id,
		Name:         fmt.Sprintf("Team %d", id),
		Coach:        "Coach",
		City:         "City",
		TimeoutsLeft: timeouts,
	}
	for i := range t.Players {
		t.Players[i] = Player{
			ID:     id*100 + i + 1, // 101..112 and 201..212
			Name:   fmt.Sprintf("Player %d", i+1),
			Active: i < ActiveSize,
		}
	}
	return t
}
