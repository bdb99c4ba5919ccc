package journal

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrishnan/kabaddi-live/internal/events"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "match.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func countRows(t *testing.T, j *Journal) ([]string, [][]byte) {
	t.Helper()
	var types []string
	var payloads [][]byte
	if err := j.Replay(func(eventType string, payload []byte) error {
		types = append(types, eventType)
		payloads = append(payloads, payload)
		return nil
	}); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	return types, payloads
}

func waitForRows(t *testing.T, j *Journal, n int) ([]string, [][]byte) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		types, payloads := countRows(t, j)
		if len(types) >= n {
			return types, payloads
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("journal never reached %d rows", n)
	return nil, nil
}

func TestJournalRecordsPublishedEvents(t *testing.T) {
	j := openTestJournal(t)
	bus := events.NewBus()
	j.Attach(bus)

	bus.Publish(events.New(events.EventRaidScore, events.ScorePayload{
		EventType: "raid_score", RaidingTeam: "Team 1", Points: 2,
	}))
	bus.Publish(events.New(events.EventTimeout, events.TimeoutPayload{
		Team: "Team 2", Remaining: 1,
	}))

	types, payloads := waitForRows(t, j, 2)
	if types[0] != "raid_score" || types[1] != "timeout" {
		t.Errorf("stored types = %v", types)
	}

	var sp events.ScorePayload
	if err := json.Unmarshal(payloads[0], &sp); err != nil {
		t.Fatalf("unmarshal stored payload: %v", err)
	}
	if sp.RaidingTeam != "Team 1" || sp.Points != 2 {
		t.Errorf("stored payload = %+v", sp)
	}
}

func TestJournalSkipsClockTicks(t *testing.T) {
	j := openTestJournal(t)
	bus := events.NewBus()
	j.Attach(bus)

	bus.Publish(events.New(events.EventClock, events.ClockPayload{Action: "tick", ClockDisplay: "19:59"}))
	bus.Publish(events.New(events.EventClock, events.ClockPayload{Action: "half_end", Half: 2}))

	types, _ := waitForRows(t, j, 1)
	for _, typ := range types {
		if typ != "clock" {
			t.Errorf("unexpected type %q", typ)
		}
	}
	if len(types) != 1 {
		t.Errorf("tick should be skipped, got %d rows", len(types))
	}
}

func TestJournalPreservesPublishOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "match.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	bus := events.NewBus()
	j.Attach(bus)

	const n = 50
	for i := 0; i < n; i++ {
		bus.Publish(events.New(events.EventRaidScore, events.ScorePayload{
			EventType: "raid_score", Points: i,
		}))
	}
	// Close flushes the writer queue
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	j2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()

	_, payloads := countRows(t, j2)
	if len(payloads) != n {
		t.Fatalf("row count = %d, want %d", len(payloads), n)
	}
	for i, raw := range payloads {
		var sp events.ScorePayload
		if err := json.Unmarshal(raw, &sp); err != nil {
			t.Fatalf("unmarshal row %d: %v", i, err)
		}
		if sp.Points != i {
			t.Fatalf("row %d carries sequence %d; replay is out of publish order", i, sp.Points)
		}
	}
}

func TestJournalSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "match.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	bus := events.NewBus()
	j.Attach(bus)
	bus.Publish(events.New(events.EventMatchReset, events.ResetPayload{HalfMinutes: 20}))
	waitForRows(t, j, 1)
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	j2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()
	types, _ := countRows(t, j2)
	if len(types) != 1 || types[0] != "match_reset" {
		t.Errorf("reopened rows = %v", types)
	}
}
