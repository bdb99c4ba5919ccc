// Command scoreboard is a terminal display that follows a live match over
// the scorer's fanout WebSocket feed and prints every update as it lands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkrishnan/kabaddi-live/internal/config"
	"github.com/mkrishnan/kabaddi-live/internal/events"
	"github.com/mkrishnan/kabaddi-live/internal/fanout"
	"github.com/mkrishnan/kabaddi-live/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.FanoutPort)
	telemetry.Infof("Starting scoreboard display, feed=%s", addr)

	bus := events.NewBus()
	bus.SubscribeAll(render)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := fanout.NewClient(addr, bus)
	go client.ConnectWithRetry(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Scoreboard closing")
	cancel()
}

func render(e events.Event) error {
	switch p := e.Payload.(type) {
	case events.ScorePayload:
		line := fmt.Sprintf("[%s] %-18s %s %d - %d %s",
			p.ClockDisplay, label(p), p.RaidingTeam, p.Team1Score, p.Team2Score, p.DefendingTeam)
		if p.RaiderName != "" {
			line += "  raider=" + p.RaiderName
		}
		if p.DefenderName != "" {
			line += "  defender=" + p.DefenderName
		}
		telemetry.Plainf("%s", line)
	case events.SubstitutionPayload:
		telemetry.Plainf("SUB  %s: %s in, %s out", p.Team, p.PlayerIn, p.PlayerOut)
	case events.TimeoutPayload:
		telemetry.Plainf("TIMEOUT  %s (%d left)", p.Team, p.Remaining)
	case events.ClockPayload:
		if p.Action == "tick" {
			return nil
		}
		telemetry.Plainf("CLOCK  %s  half=%d  [%s]", p.Action, p.Half, p.ClockDisplay)
	case events.ResetPayload:
		telemetry.Plainf("MATCH RESET  half=%dm", p.HalfMinutes)
	case events.CommentaryPayload:
		telemetry.Plainf("  » %s", p.Text)
	}
	return nil
}

func label(p events.ScorePayload) string {
	tag := p.EventType
	switch {
	case p.IsSuperRaid:
		tag = "SUPER RAID"
	case p.EventType == "super_tackle_score":
		tag = "SUPER TACKLE"
	case p.EventType == "do_or_die_fail":
		tag = "DO-OR-DIE FAIL"
	}
	if p.Points > 0 {
		tag += fmt.Sprintf(" +%d", p.Points)
	}
	return tag
}
