package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS time_entries (
		local_id              TEXT PRIMARY KEY,
		remote_id             TEXT,
		user_id               TEXT NOT NULL,
		state                 TEXT NOT NULL
		                      CHECK(state IN ('active','on_break','completed')),
		clock_in_at           TEXT NOT NULL,
		clock_out_at          TEXT,
		clock_in_location     TEXT,
		clock_out_location    TEXT,
		break_accumulated_min INTEGER NOT NULL DEFAULT 0,
		break_started_at      TEXT,
		validation_valid      INTEGER,
		validation_distance_m REAL,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_entries_user ON time_entries(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_state ON time_entries(state)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_clock_in ON time_entries(clock_in_at)`,

	`CREATE TABLE IF NOT EXISTS location_samples (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_local_id  TEXT NOT NULL REFERENCES time_entries(local_id) ON DELETE CASCADE,
		latitude        REAL NOT NULL,
		longitude       REAL NOT NULL,
		accuracy_meters REAL,
		captured_at     TEXT NOT NULL,
		address         TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_location_samples_entry ON location_samples(entry_local_id)`,

	`CREATE TABLE IF NOT EXISTS queue_operations (
		queue_id       INTEGER PRIMARY KEY AUTOINCREMENT,
		op_type        TEXT NOT NULL
		               CHECK(op_type IN ('clock_in','clock_out')),
		local_entry_id TEXT NOT NULL,
		remote_id      TEXT,
		payload        TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'pending'
		               CHECK(status IN ('pending','failed')),
		attempt_count  INTEGER NOT NULL DEFAULT 0,
		last_error     TEXT,
		last_error_at  TEXT,
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_queue_operations_entry ON queue_operations(local_entry_id)`,
	`CREATE INDEX IF NOT EXISTS idx_queue_operations_status ON queue_operations(status)`,

	`CREATE TABLE IF NOT EXISTS worksites (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		latitude      REAL NOT NULL,
		longitude     REAL NOT NULL,
		radius_meters REAL NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
}
