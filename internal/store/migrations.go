package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all tos tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		workload     TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		completed_at TEXT,
		total_ticks  INTEGER NOT NULL DEFAULT 0,
		thread_count INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		run_id      TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		tick        INTEGER NOT NULL,
		thread_id   INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		queue       TEXT NOT NULL DEFAULT '',
		burst_ticks INTEGER NOT NULL DEFAULT 0,
		line        TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

// migrate applies the schema statements in order.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
