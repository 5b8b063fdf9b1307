package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Every statement is idempotent, so re-running
// the full list against an existing database is safe.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id      INTEGER PRIMARY KEY,
		interval_seconds INTEGER NOT NULL DEFAULT 900,
		first_name       TEXT NOT NULL DEFAULT '',
		last_name        TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		user_telegram_id INTEGER NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
		name             TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_telegram_id)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		user_telegram_id INTEGER NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
		start_at         TEXT NOT NULL,
		stop_at          TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON sessions(user_telegram_id, start_at)`,

	// Store-level guarantee of the "one active session per user" invariant:
	// a second row with NULL stop_at for the same user fails the insert.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON sessions(user_telegram_id) WHERE stop_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS timesheet (
		activity_id TEXT PRIMARY KEY,
		session_id  INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		start       TEXT NOT NULL,
		finish      TEXT NOT NULL,
		category_id INTEGER REFERENCES categories(id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_timesheet_session ON timesheet(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_timesheet_open ON timesheet(session_id) WHERE category_id IS NULL`,
}
