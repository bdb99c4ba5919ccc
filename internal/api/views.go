package api

import (
	"github.com/mkrishnan/kabaddi-live/internal/match"
	"github.com/mkrishnan/kabaddi-live/internal/session"
)

// eventView is the response body for an applied scoring event. The shapes
// mirror the fanout wire payloads so scorer UI and displays render from the
// same fields.
type eventView struct {
	EventType     string `json:"event_type"`
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
	DoOrDieFail   bool   `json:"do_or_die_fail,omitempty"`
	RaidCount     int    `json:"raid_count"`
	Team1Score    int    `json:"team1_score"`
	Team2Score    int    `json:"team2_score"`
}

func summaryResponse(sum match.Summary) eventView {
	return eventView{
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
		DoOrDieFail:   sum.DoOrDieFail,
		RaidCount:     sum.RaidCount,
		Team1Score:    sum.Team1Score,
		Team2Score:    sum.Team2Score,
	}
}

type playerView struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`

	RaidPoints        int `json:"raid_points"`
	TacklePoints      int `json:"tackle_points"`
	BonusPoints       int `json:"bonus_points"`
	TotalPoints       int `json:"total_points"`
	TotalRaids        int `json:"total_raids"`
	SuccessfulRaids   int `json:"successful_raids"`
	SuperRaids        int `json:"super_raids"`
	SuperTacklePoints int `json:"super_tackle_points"`
}

type teamView struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Coach        string       `json:"coach"`
	City         string       `json:"city"`
	Score        int          `json:"score"`
	TimeoutsLeft int          `json:"timeouts_left"`
	RaidCount    int          `json:"raid_count"`
	SubsUsed     int          `json:"subs_used"`
	Players      []playerView `json:"players"`
}

type clockStateView struct {
	Display     string `json:"display"`
	Half        int    `json:"half"`
	Running     bool   `json:"running"`
	Timeout     bool   `json:"timeout"`
	HalfMinutes int    `json:"half_minutes"`
	MatchOver   bool   `json:"match_over"`
}

type stateView struct {
	Teams       [2]teamView    `json:"teams"`
	RaidTurn    int            `json:"raid_turn"` // team id whose raid it is
	Clock       clockStateView `json:"clock"`
	BreakActive bool           `json:"break_active"`
	Pristine    bool           `json:"pristine"`
	Commentary  []string       `json:"commentary"` // newest first
	Version     uint64         `json:"version"`
}

func clockView(c match.Clock) clockStateView {
	return clockStateView{
		Display:     c.Display(),
		Half:        c.Half,
		Running:     c.Running,
		Timeout:     c.Timeout,
		HalfMinutes: c.HalfMinutes,
		MatchOver:   c.MatchOver(),
	}
}

func snapshotView(snap session.Snapshot) stateView {
	var view stateView
	for side := match.Home; side <= match.Away; side++ {
		team := snap.State.Team(side)
		tv := teamView{
			ID:           team.ID,
			Name:         team.Name,
			Coach:        team.Coach,
			City:         team.City,
			Score:        team.Score,
			TimeoutsLeft: team.TimeoutsLeft,
			RaidCount:    snap.State.RaidCycle[side],
			SubsUsed:     snap.SubsUsed[side],
			Players:      make([]playerView, 0, match.SquadSize),
		}
		for i := range team.Players {
			p := &team.Players[i]
			tv.Players = append(tv.Players, playerView{
				ID:                p.ID,
				Name:              p.Name,
				Active:            p.Active,
				RaidPoints:        p.RaidPoints,
				TacklePoints:      p.TacklePoints,
				BonusPoints:       p.BonusPoints,
				TotalPoints:       p.TotalPoints,
				TotalRaids:        p.TotalRaids,
				SuccessfulRaids:   p.SuccessfulRaids,
				SuperRaids:        p.SuperRaids,
				SuperTacklePoints: p.SuperTacklePoints,
			})
		}
		view.Teams[side] = tv
	}
	view.RaidTurn = snap.State.Team(snap.State.RaidTurn).ID
	view.Clock = clockView(snap.Clock)
	view.BreakActive = snap.BreakActive
	view.Pristine = snap.Pristine
	view.Commentary = snap.Commentary
	view.Version = snap.State.Version
	return view
}
