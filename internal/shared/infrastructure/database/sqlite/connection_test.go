package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
)

func TestNewConnection_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "habits.db")

	conn, err := NewConnection(ctx, database.Config{Driver: database.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping(ctx))
	assert.Equal(t, database.DriverSQLite, conn.Driver())

	var fk int
	require.NoError(t, conn.DB().QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestNewConnection_Memory(t *testing.T) {
	ctx := context.Background()

	conn, err := NewConnection(ctx, database.Config{SQLitePath: MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.DB().ExecContext(ctx, `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)
	_, err = conn.DB().ExecContext(ctx, `INSERT INTO notes (body) VALUES ('kept')`)
	require.NoError(t, err)

	var body string
	require.NoError(t, conn.DB().QueryRowContext(ctx, `SELECT body FROM notes`).Scan(&body))
	assert.Equal(t, "kept", body)
}

func TestOpenThroughRegistry(t *testing.T) {
	conn, err := database.Open(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: MemoryPath,
	})
	require.NoError(t, err)
	defer conn.Close()

	assert.IsType(t, &Connection{}, conn)
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", buildDSN(MemoryPath))
	assert.Contains(t, buildDSN("/tmp/h.db?mode=rwc"), "/tmp/h.db?mode=rwc&_pragma=foreign_keys(1)")
}
