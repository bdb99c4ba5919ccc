// Package journal persists every published match event in a FIFO SQLite
// database so a disputed match can be replayed after the fact. It is opt-in:
// with no path configured, nothing is written.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mkrishnan/kabaddi-live/internal/events"
	"github.com/mkrishnan/kabaddi-live/internal/telemetry"

	_ "modernc.org/sqlite"
)

const (
	maxJournalBytes int64 = 64 << 20 // a season of matches, comfortably
	evictBatchSize        = 50
	vacuumInterval        = 100 // run incremental vacuum every N evictions
)

// Journal appends event envelopes to SQLite, evicting oldest rows once the
// size budget is exceeded. A single writer goroutine applies rows in the
// order they were published, so Replay's id-ordered scan is publish-ordered.
type Journal struct {
	db           *sql.DB
	mu           sync.Mutex
	cachedSize   int64
	evictCounter int

	pending chan journalRow
	done    chan struct{}
}

type journalRow struct {
	eventID   string
	eventType string
	occurred  string
	payload   []byte
}

func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA auto_vacuum = INCREMENTAL`,
		`CREATE TABLE IF NOT EXISTS match_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id   TEXT    NOT NULL,
			event_type TEXT    NOT NULL,
			occurred   TEXT    NOT NULL,
			byte_size  INTEGER NOT NULL,
			payload    BLOB    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_me_occurred ON match_events(occurred)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	var size int64
	row := db.QueryRow(`SELECT COALESCE(SUM(byte_size), 0) FROM match_events`)
	if err := row.Scan(&size); err != nil {
		db.Close()
		return nil, fmt.Errorf("read current size: %w", err)
	}

	telemetry.Infof("journal: opened %s  rows_bytes=%d", path, size)

	j := &Journal{
		db:         db,
		cachedSize: size,
		pending:    make(chan journalRow, 256),
		done:       make(chan struct{}),
	}
	go j.writer()
	return j, nil
}

// Attach subscribes the journal to every event on the bus.
func (j *Journal) Attach(bus *events.Bus) {
	bus.SubscribeAll(j.record)
}

func (j *Journal) record(e events.Event) error {
	// one-a-second clock ticks would dominate the journal for no replay value
	if cp, ok := e.Payload.(events.ClockPayload); ok && cp.Action == "tick" {
		return nil
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}

	row := journalRow{
		eventID:   e.ID,
		eventType: string(e.Type),
		occurred:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		payload:   payload,
	}
	// handing the row to the writer keeps a slow disk off the publisher's
	// goroutine; a full queue sheds rather than stalls
	select {
	case j.pending <- row:
	default:
		telemetry.Warnf("journal: queue full, dropping %s", e.Type)
	}
	return nil
}

// writer drains pending rows one at a time, in arrival order.
func (j *Journal) writer() {
	defer close(j.done)
	for row := range j.pending {
		j.insert(row)
	}
}

func (j *Journal) insert(row journalRow) {
	size := int64(len(row.payload))

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO match_events (event_id, event_type, occurred, byte_size, payload) VALUES (?, ?, ?, ?, ?)`,
		row.eventID,
		row.eventType,
		row.occurred,
		size,
		row.payload,
	)
	if err != nil {
		telemetry.Warnf("journal: insert failed: %v", err)
		return
	}

	j.cachedSize += size
	if j.cachedSize > maxJournalBytes {
		j.evict()
	}
}

// evict removes oldest rows until total size is under budget.
// Must be called with j.mu held.
func (j *Journal) evict() {
	for j.cachedSize > maxJournalBytes {
		var freed int64
		err := j.db.QueryRow(
			`WITH deleted AS (
				DELETE FROM match_events
				WHERE id IN (SELECT id FROM match_events ORDER BY id ASC LIMIT ?)
				RETURNING byte_size
			)
			SELECT COALESCE(SUM(byte_size), 0) FROM deleted`,
			evictBatchSize,
		).Scan(&freed)
		if err != nil || freed == 0 {
			break
		}
		j.cachedSize -= freed
		j.evictCounter++
		telemetry.Metrics.JournalEvictions.Inc()

		if j.evictCounter%vacuumInterval == 0 {
			j.db.Exec(`PRAGMA incremental_vacuum`)
		}
	}
}

// Replay streams stored events oldest-first to fn, stopping on its error.
func (j *Journal) Replay(fn func(eventType string, payload []byte) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(`SELECT event_type, payload FROM match_events ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventType string
		var payload []byte
		if err := rows.Scan(&eventType, &payload); err != nil {
			return fmt.Errorf("scan journal row: %w", err)
		}
		if err := fn(eventType, payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close flushes queued rows and closes the database. The bus must be quiet
// by the time Close runs.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	close(j.pending)
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
