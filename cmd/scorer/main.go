package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkrishnan/kabaddi-live/internal/adapters/outbound/redispub"
	"github.com/mkrishnan/kabaddi-live/internal/api"
	"github.com/mkrishnan/kabaddi-live/internal/commentary"
	"github.com/mkrishnan/kabaddi-live/internal/config"
	"github.com/mkrishnan/kabaddi-live/internal/events"
	"github.com/mkrishnan/kabaddi-live/internal/export"
	"github.com/mkrishnan/kabaddi-live/internal/fanout"
	"github.com/mkrishnan/kabaddi-live/internal/foulplay"
	"github.com/mkrishnan/kabaddi-live/internal/journal"
	"github.com/mkrishnan/kabaddi-live/internal/match"
	"github.com/mkrishnan/kabaddi-live/internal/session"
	"github.com/mkrishnan/kabaddi-live/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting scorer")

	bus := events.NewBus()

	// ── Match rules ─────────────────────────────────────────────
	rules, err := config.LoadMatchRules(cfg.MatchRulesPath)
	if err != nil {
		telemetry.Errorf("Failed to load match rules: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("Match rules: half=%dm timeouts=%d subs_per_break=%d",
		rules.HalfMinutes, rules.TimeoutsPerHalf, rules.SubsPerBreak)

	// ── Session ─────────────────────────────────────────────────
	engine := match.NewEngine(rules)
	sess := session.New(engine, bus)

	// ── Event journal (opt-in) ──────────────────────────────────
	var eventJournal *journal.Journal
	if cfg.JournalPath != "" {
		eventJournal, err = journal.Open(cfg.JournalPath)
		if err != nil {
			telemetry.Warnf("Event journal disabled: %v", err)
		} else {
			eventJournal.Attach(bus)
		}
	}

	// ── Redis stream publisher (opt-in) ─────────────────────────
	var streamPub *redispub.Publisher
	if cfg.RedisAddr != "" {
		streamPub = redispub.New(cfg.RedisAddr, cfg.RedisStream)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := streamPub.Ping(pingCtx); err != nil {
			telemetry.Warnf("Redis publisher disabled: %v", err)
			streamPub.Close()
			streamPub = nil
		} else {
			streamPub.Attach(bus)
			telemetry.Infof("Redis publisher: stream=%s addr=%s", cfg.RedisStream, cfg.RedisAddr)
		}
		pingCancel()
	}

	// ── Commentary ──────────────────────────────────────────────
	generator := commentary.NewOpenAIGenerator(commentary.OpenAIConfig{
		ResponsesURL: cfg.CommentaryURL,
		APIKey:       cfg.CommentaryAPIKey,
		Model:        cfg.CommentaryModel,
		RPS:          cfg.CommentaryRPS,
	})
	var worker *commentary.Worker
	var analyzer *foulplay.Analyzer
	if generator.Enabled() {
		worker = commentary.NewWorker(generator, sess, cfg.CommentaryTimeout)
		worker.Attach(bus)
		worker.Start()
		analyzer = foulplay.New(generator, cfg.CommentaryTimeout)
		telemetry.Infof("Commentary + foul play analysis: model=%s", cfg.CommentaryModel)
	} else {
		telemetry.Warnf("Commentary and foul play analysis disabled — set COMMENTARY_API_KEY in .env to enable")
	}

	// ── Fanout server for scoreboard displays ───────────────────
	fanoutServer := fanout.NewServer(bus)
	go func() {
		if err := fanoutServer.ListenAndServe(cfg.FanoutPort); err != nil {
			telemetry.Errorf("Fanout server: %v", err)
			os.Exit(1)
		}
	}()

	// ── Scorer HTTP API ─────────────────────────────────────────
	handler := api.NewHandler(sess, export.New(sess), analyzer)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("Scorer API listening on %q", addr)

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if worker != nil {
		worker.Close()
	}
	sess.Close()
	if streamPub != nil {
		streamPub.Close()
	}
	if eventJournal != nil {
		eventJournal.Close()
	}

	telemetry.Infof("Shutdown complete")
}
