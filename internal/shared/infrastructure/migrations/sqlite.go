package migrations

import (
	"context"
	"database/sql"
	"embed"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

// RunSQLiteMigrations applies the embedded SQLite schema. Every statement is
// idempotent, so running it against an existing database is safe.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	return apply(ctx, db, sqliteFS, "sqlite")
}
