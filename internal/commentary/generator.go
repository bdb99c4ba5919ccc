// Package commentary turns engine event summaries into broadcast-style prose
// via an external text generator. It is strictly additive: a slow or failed
// generation never blocks or rolls back a scoring decision.
package commentary

import "context"

// Request is the structured event summary handed to the generator, enriched
// with recent history and match context.
type Request struct {
	EventType     string   `json:"event_type"`
	RaidingTeam   string   `json:"raiding_team"`
	DefendingTeam string   `json:"defending_team"`
	RaiderName    string   `json:"raider_name"`
	DefenderName  string   `json:"defender_name,omitempty"`
	Points        int      `json:"points"`
	IsSuperRaid   bool     `json:"is_super_raid"`
	IsDoOrDie     bool     `json:"is_do_or_die"`
	IsBonus       bool     `json:"is_bonus,omitempty"`
	IsLona        bool     `json:"is_lona,omitempty"`
	RaidCount     int      `json:"raid_count"`
	Team1Score    int      `json:"team1_score"`
	Team2Score    int      `json:"team2_score"`
	RecentHistory []string `json:"recent_history,omitempty"` // up to 3 prior lines
	ClockDisplay  string   `json:"clock_display"`            // "MM:SS"
}

// Generator produces one commentary line for an event. Implementations are
// fallible and independent of scoring correctness.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// HistoryLimit is how many prior lines are sent for context.
const HistoryLimit = 3
