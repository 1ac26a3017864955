package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	// lib/pq runs the multi-statement schema files over the simple query protocol.
	_ "github.com/lib/pq"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

// RunPostgresMigrations opens a short-lived database/sql connection to url and
// applies the embedded PostgreSQL schema.
func RunPostgresMigrations(ctx context.Context, url string) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("failed to open postgres for migrations: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach postgres for migrations: %w", err)
	}
	return apply(ctx, db, postgresFS, "postgres")
}
