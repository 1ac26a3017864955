package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

func init() {
	database.RegisterDriver(database.DriverSQLite, func(ctx context.Context, cfg database.Config) (database.Connection, error) {
		return NewConnection(ctx, cfg)
	})
}

// Connection owns the *sql.DB used by SQLite stores.
type Connection struct {
	db *sql.DB
}

// NewConnection opens the database file with WAL and foreign keys enabled.
func NewConnection(ctx context.Context, cfg database.Config) (*Connection, error) {
	path := cfg.SQLitePath
	if path == "" && cfg.URL != "" {
		path = database.SQLitePathFromURL(cfg.URL)
	}
	if path == "" {
		path = database.DefaultSQLitePath()
	}

	if path != MemoryPath {
		if err := database.EnsureDirectory(path); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One connection serializes writers, which is what the per-habit
	// completion guard relies on. It also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &Connection{db: db}, nil
}

func buildDSN(path string) string {
	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	if path != MemoryPath {
		pragmas = append(pragmas, "journal_mode(WAL)", "synchronous(NORMAL)")
	}

	var b strings.Builder
	b.WriteString(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// DB returns the underlying sql.DB.
func (c *Connection) DB() *sql.DB {
	return c.db
}

func (c *Connection) Driver() database.Driver {
	return database.DriverSQLite
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
