package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunSQLiteMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, RunSQLiteMigrations(ctx, db))
	require.NoError(t, RunSQLiteMigrations(ctx, db))

	for _, table := range []string{"habits", "habit_logs", "outbox"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestRunSQLiteMigrations_HabitLogsAppendOnly(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, RunSQLiteMigrations(ctx, db))

	_, err := db.ExecContext(ctx, `INSERT INTO habits (id, owner_id, title, title_key, created_on, created_at, updated_at)
		VALUES ('h1', 'u1', 'Read', 'read', '2026-01-10', '2026-01-10T09:00:00.000000000Z', '2026-01-10T09:00:00.000000000Z')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO habit_logs (id, habit_id, log_date, action, created_at)
		VALUES ('l1', 'h1', '2026-01-10', 'created', '2026-01-10T09:00:00.000000000Z')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE habit_logs SET action = 'completed' WHERE id = 'l1'`)
	assert.ErrorContains(t, err, "append-only")

	_, err = db.ExecContext(ctx, `DELETE FROM habit_logs WHERE id = 'l1'`)
	assert.ErrorContains(t, err, "append-only")
}

func TestRunSQLiteMigrations_TitleUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, RunSQLiteMigrations(ctx, db))

	insert := `INSERT INTO habits (id, owner_id, title, title_key, is_deleted, created_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '2026-01-10', '2026-01-10T09:00:00.000000000Z', '2026-01-10T09:00:00.000000000Z')`

	_, err := db.ExecContext(ctx, insert, "h1", "u1", "Read", "read", 0)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "h2", "u1", "READ", "read", 0)
	assert.ErrorContains(t, err, "UNIQUE constraint failed")

	_, err = db.ExecContext(ctx, insert, "h3", "u2", "Read", "read", 0)
	assert.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "h4", "u1", "Read", "read", 1)
	assert.NoError(t, err)
}
