package commentary

import (
	"context"
	"time"

	"github.com/mkrishnan/kabaddi-live/internal/events"
	"github.com/mkrishnan/kabaddi-live/internal/session"
	"github.com/mkrishnan/kabaddi-live/internal/telemetry"
)

// MatchLog is the slice of the session the worker needs: context for
// building a request and the fenced append for storing the result.
type MatchLog interface {
	CommentaryContext(historyLimit int) session.CommentaryContext
	AppendCommentary(gen uint64, text string) bool
}

// Worker drains scoring events into generator calls, one in flight at a
// time so lines land in event order. Bus handlers run on the session
// goroutine, so they only enqueue; history and the reset generation are
// read when the request is actually issued.
type Worker struct {
	gen     Generator
	log     MatchLog
	timeout time.Duration

	queue chan Request
	quit  chan struct{}
	done  chan struct{}
}

func NewWorker(gen Generator, log MatchLog, timeout time.Duration) *Worker {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Worker{
		gen:     gen,
		log:     log,
		timeout: timeout,
		queue:   make(chan Request, 16),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Attach subscribes the worker to every scoring event type on the bus.
func (w *Worker) Attach(bus *events.Bus) {
	for _, t := range []events.EventType{
		events.EventRaidScore,
		events.EventTackleScore,
		events.EventSuperTackleScore,
		events.EventLineOut,
		events.EventEmptyRaid,
		events.EventDoOrDieFail,
	} {
		bus.Subscribe(t, w.handle)
	}
}

func (w *Worker) handle(e events.Event) error {
	p, ok := e.Payload.(events.ScorePayload)
	if !ok {
		return nil
	}
	req := Request{
		EventType:     p.EventType,
		RaidingTeam:   p.RaidingTeam,
		DefendingTeam: p.DefendingTeam,
		RaiderName:    p.RaiderName,
		DefenderName:  p.DefenderName,
		Points:        p.Points,
		IsSuperRaid:   p.IsSuperRaid,
		IsDoOrDie:     p.IsDoOrDie,
		IsBonus:       p.IsBonus,
		IsLona:        p.IsLona,
		RaidCount:     p.RaidCount,
		Team1Score:    p.Team1Score,
		Team2Score:    p.Team2Score,
		ClockDisplay:  p.ClockDisplay,
	}
	select {
	case w.queue <- req:
	default:
		// scoring never waits for prose
		telemetry.Metrics.CommentaryDropped.Inc()
	}
	return nil
}

func (w *Worker) Start() {
	go w.run()
}

func (w *Worker) Close() {
	close(w.quit)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case req := <-w.queue:
			w.process(req)
		case <-w.quit:
			return
		}
	}
}

func (w *Worker) process(req Request) {
	mc := w.log.CommentaryContext(HistoryLimit)
	req.RecentHistory = mc.History
	req.ClockDisplay = mc.ClockDisplay

	telemetry.Metrics.CommentaryRequests.Inc()
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	text, err := w.gen.Generate(ctx, req)
	telemetry.Metrics.CommentaryLatency.Record(time.Since(start))
	if err != nil {
		telemetry.Metrics.CommentaryFailures.Inc()
		telemetry.Warnf("commentary generation failed for %s: %v", req.EventType, err)
		return
	}
	if !w.log.AppendCommentary(mc.Gen, text) {
		telemetry.Debugf("commentary line for %s discarded after reset", req.EventType)
	}
}
