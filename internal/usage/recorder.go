// Package usage persists token-usage and latency accounting for external
// model calls in a small SQLite database, separate from the article store so
// accounting writes never contend with the store lock.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ts          INTEGER NOT NULL,
	op          TEXT    NOT NULL,
	tokens      INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_events_op ON usage_events(op);
`

// Recorder stores one row per external model call. Recording failures are
// logged and swallowed: accounting must never fail the request path.
type Recorder struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpSummary aggregates all events for one operation kind.
type OpSummary struct {
	Op          string `json:"op"`
	Calls       int64  `json:"calls"`
	TotalTokens int64  `json:"total_tokens"`
	TotalMillis int64  `json:"total_ms"`
}

// NewRecorder opens (creating if needed) the usage database at path.
func NewRecorder(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("usage: open database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("usage: initialize schema: %w", err)
	}
	return &Recorder{db: db, path: path}, nil
}

// Record stores one usage event. Safe to call on a nil Recorder (accounting
// disabled).
func (r *Recorder) Record(ctx context.Context, op string, tokens int, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO usage_events (ts, op, tokens, duration_ms) VALUES (?, ?, ?, ?)",
		time.Now().Unix(), op, tokens, d.Milliseconds())
	if err != nil {
		log.Printf("usage: failed to record %s event: %v", op, err)
	}
}

// Summary aggregates recorded events per operation kind.
func (r *Recorder) Summary(ctx context.Context) ([]OpSummary, error) {
	if r == nil {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT op, COUNT(*), SUM(tokens), SUM(duration_ms) FROM usage_events GROUP BY op ORDER BY op")
	if err != nil {
		return nil, fmt.Errorf("usage: query summary: %w", err)
	}
	defer rows.Close()

	var summaries []OpSummary
	for rows.Next() {
		var s OpSummary
		if err := rows.Scan(&s.Op, &s.Calls, &s.TotalTokens, &s.TotalMillis); err != nil {
			return nil, fmt.Errorf("usage: scan summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}
