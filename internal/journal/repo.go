package journal

import (
	"fmt"
	"time"
)

// Trigger values.
const (
	TriggerCLI   = "cli"
	TriggerWatch = "watch"
)

// Run is one recorded build.
type Run struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	Trigger   string
	Dirs      int
	Converted int
	Copied    int
	Skipped   int
	Error     string
}

// Failed reports whether the run ended in an error.
func (r Run) Failed() bool {
	return r.Error != ""
}

// Record appends a run and returns its id.
func (db *DB) Record(r Run) (int64, error) {
	if r.Trigger == "" {
		r.Trigger = TriggerCLI
	}
	res, err := db.conn.Exec(`
		INSERT INTO builds (started_at, duration_ms, origin, dirs, converted, copied, skipped, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.StartedAt.UTC(), r.Duration.Milliseconds(), r.Trigger, r.Dirs, r.Converted, r.Copied, r.Skipped, r.Error)
	if err != nil {
		return 0, fmt.Errorf("journal: record: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first.
func (db *DB) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, started_at, duration_ms, origin, dirs, converted, copied, skipped, error
		FROM builds
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var ms int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &ms, &r.Trigger, &r.Dirs, &r.Converted, &r.Copied, &r.Skipped, &r.Error); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}
