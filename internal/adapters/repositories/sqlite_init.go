package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	return execSchema(db, "init schema", []string{
		`
	CREATE TABLE IF NOT EXISTS supply_points (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		metadata TEXT,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS resolution_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		method TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		occurred_at TEXT NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_resolution_attempts_request
	ON resolution_attempts(request_id, id);
	`,
	})
}

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	return execSchema(db, "init postgres schema", []string{
		`
	CREATE TABLE IF NOT EXISTS supply_points (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		metadata JSONB,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS resolution_attempts (
		id BIGSERIAL PRIMARY KEY,
		request_id TEXT NOT NULL,
		method TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_resolution_attempts_request
	ON resolution_attempts(request_id, id);
	`,
	})
}

func execSchema(db *sql.DB, op string, statements []string) error {
	if db == nil {
		return fmt.Errorf("%s: DB is nil", op)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return nil
}

var errNilDB = errors.New("DB is nil")
