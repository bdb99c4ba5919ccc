package events

// ScorePayload is published for every engine-applied scoring event,
// including empty raids and do-or-die failures. Field values describe the
// event itself plus the resulting scores, so display clients never need a
// second state fetch.
type ScorePayload struct {
	EventType     string `json:"event_type"` // raid_score, tackle_score, ...
	PointType     string `json:"point_type,omitempty"`
	RaidingTeam   string `json:"raiding_team"`
	DefendingTeam string `json:"defending_team"`
	RaiderName    string `json:"raider_name,omitempty"`
	DefenderName  string `json:"defender_name,omitempty"`
	Points        int    `json:"points"`
	IsSuperRaid   bool   `json:"is_super_raid,omitempty"`
	IsDoOrDie     bool   `json:"is_do_or_die,omitempty"`
	IsBonus       bool   `json:"is_bonus,omitempty"`
	IsLona        bool   `json:"is_lona,omitempty"`
	RaidCount     int    `json:"raid_count"`
	Team1Score    int    `json:"team1_score"`
	Team2Score    int    `json:"team2_score"`
	ClockDisplay  string `json:"clock_display"`
}

// SubstitutionPayload is published when a bench/court pair swap is applied.
type SubstitutionPayload struct {
	Team          string `json:"team"`
	PlayerIn      string `json:"player_in"`
	PlayerOut     string `json:"player_out"`
	UsedThisBreak int    `json:"used_this_break"`
}

// TimeoutPayload is published when a team takes a timeout.
type TimeoutPayload struct {
	Team      string `json:"team"`
	Remaining int    `json:"remaining"`
}

// ClockPayload is published on clock transitions the displays care about:
// start, pause, resume, half end, match end.
type ClockPayload struct {
	Action       string `json:"action"` // "start", "pause", "half_end", "match_end", "resume"
	Half         int    `json:"half"`
	ClockDisplay string `json:"clock_display"`
	Running      bool   `json:"running"`
}

// ResetPayload is published when the scorer resets the match.
type ResetPayload struct {
	HalfMinutes int `json:"half_minutes"`
}

// CommentaryPayload carries one generated commentary line.
type CommentaryPayload struct {
	Text string `json:"text"`
}
