package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time — should succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"time_entries", "location_samples", "queue_operations", "worksites"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_time_entries_user",
		"idx_time_entries_state",
		"idx_time_entries_clock_in",
		"idx_location_samples_entry",
		"idx_queue_operations_entry",
		"idx_queue_operations_status",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_QueueIDIsMonotonic(t *testing.T) {
	db := openTestDB(t)

	res, err := db.Exec(`INSERT INTO queue_operations (op_type, local_entry_id, payload, created_at)
		VALUES ('clock_in', 'e1', '{}', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)
	first, err := res.LastInsertId()
	require.NoError(t, err)

	res, err = db.Exec(`INSERT INTO queue_operations (op_type, local_entry_id, payload, created_at)
		VALUES ('clock_out', 'e1', '{}', '2026-01-01T00:00:01Z')`)
	require.NoError(t, err)
	second, err := res.LastInsertId()
	require.NoError(t, err)

	assert.Greater(t, second, first, "queue IDs must be assigned in enqueue order")
}
