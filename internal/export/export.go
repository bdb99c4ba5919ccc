// Package export renders a match snapshot as downloadable documents: a
// per-player stats workbook in CSV and the commentary log as plain text.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mkrishnan/kabaddi-live/internal/match"
	"github.com/mkrishnan/kabaddi-live/internal/session"
)

// SnapshotSource is anything that can produce a point-in-time match copy.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// Exporter renders documents off a snapshot source. Concurrent requests for
// the same document are collapsed: a scoreboard full of viewers hitting
// "download" together costs one render.
type Exporter struct {
	src   SnapshotSource
	group singleflight.Group
}

func New(src SnapshotSource) *Exporter {
	return &Exporter{src: src}
}

// StatsCSV renders both squads' player statistics.
func (e *Exporter) StatsCSV() ([]byte, error) {
	v, err, _ := e.group.Do("stats.csv", func() (any, error) {
		return renderStatsCSV(e.src.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// CommentaryText renders the commentary log oldest-first.
func (e *Exporter) CommentaryText() ([]byte, error) {
	v, err, _ := e.group.Do("commentary.txt", func() (any, error) {
		return renderCommentaryText(e.src.Snapshot()), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

var statsHeader = []string{
	"Player",
	"Total Points",
	"Raid Points",
	"Bonus Points",
	"Tackle Points",
	"Super Tackle Points",
	"Total Raids",
	"Successful Raids",
	"Success Rate",
	"Super Raids",
}

func renderStatsCSV(snap session.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for side := match.Home; side <= match.Away; side++ {
		team := snap.State.Team(side)
		rows := [][]string{
			{"Team", team.Name},
			{"Coach", team.Coach},
			{"City", team.City},
			{"Score", strconv.Itoa(team.Score)},
			statsHeader,
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write stats row: %w", err)
			}
		}
		for i := range team.Players {
			p := &team.Players[i]
			row := []string{
				p.Name,
				strconv.Itoa(p.TotalPoints),
				strconv.Itoa(p.RaidPoints),
				strconv.Itoa(p.BonusPoints),
				strconv.Itoa(p.TacklePoints),
				strconv.Itoa(p.SuperTacklePoints),
				strconv.Itoa(p.TotalRaids),
				strconv.Itoa(p.SuccessfulRaids),
				successRate(p),
				strconv.Itoa(p.SuperRaids),
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write stats row: %w", err)
			}
		}
		if side == match.Home {
			if err := w.Write([]string{}); err != nil {
				return nil, fmt.Errorf("write stats row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush stats csv: %w", err)
	}
	return buf.Bytes(), nil
}

func successRate(p *match.Player) string {
	if p.TotalRaids == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(p.SuccessfulRaids)/float64(p.TotalRaids))
}

func renderCommentaryText(snap session.Snapshot) []byte {
	home := snap.State.Team(match.Home)
	away := snap.State.Team(match.Away)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Match Commentary — %s vs %s\n", home.Name, away.Name)
	fmt.Fprintf(&buf, "Final score: %s %d - %d %s\n", home.Name, home.Score, away.Score, away.Name)
	fmt.Fprintf(&buf, "Exported: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	if len(snap.Commentary) == 0 {
		buf.WriteString("(no commentary yet)\n")
		return buf.Bytes()
	}
	// commentary is stored newest-first; the document reads chronologically
	for i := len(snap.Commentary) - 1; i >= 0; i-- {
		fmt.Fprintf(&buf, "%d. %s\n", len(snap.Commentary)-i, snap.Commentary[i])
	}
	return buf.Bytes()
}
