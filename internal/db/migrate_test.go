package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesTables(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	for _, table := range []string{"users", "categories", "sessions", "timesheet"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(database))
	require.NoError(t, Migrate(database))
}

func TestMigrate_OneActiveSessionIndex(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`INSERT INTO users (telegram_id, created_at) VALUES (1, '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO sessions (user_telegram_id, start_at) VALUES (1, '2026-01-01T10:00:00Z')`)
	require.NoError(t, err)

	// A second active session for the same user must violate the partial
	// unique index.
	_, err = database.Exec(`INSERT INTO sessions (user_telegram_id, start_at) VALUES (1, '2026-01-01T11:00:00Z')`)
	assert.Error(t, err)

	// Once the first one is stopped, a new active session is fine again.
	_, err = database.Exec(`UPDATE sessions SET stop_at = '2026-01-01T12:00:00Z' WHERE user_telegram_id = 1`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO sessions (user_telegram_id, start_at) VALUES (1, '2026-01-01T13:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_ForeignKeysEnforced(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`INSERT INTO sessions (user_telegram_id, start_at) VALUES (999, '2026-01-01T10:00:00Z')`)
	assert.Error(t, err, "session for a missing user should fail")
}
