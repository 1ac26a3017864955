package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds database configuration.
type Config struct {
	Driver Driver
	// URL is the PostgreSQL connection string.
	URL string
	// SQLitePath defaults to ~/.habitrack/habitrack.db. ":memory:" is allowed.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// Connection is the minimal surface the composition root needs from a backend.
// Stores reach the concrete handle through the driver subpackages.
type Connection interface {
	Driver() Driver
	Ping(ctx context.Context) error
	Close() error
}

type opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]opener{}

// RegisterDriver wires a backend. Driver subpackages call it from init.
func RegisterDriver(driver Driver, open func(ctx context.Context, cfg Config) (Connection, error)) {
	openers[driver] = open
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DetectDriver(cfg.URL)
	}
	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".habitrack", "habitrack.db")
}

// SQLitePathFromURL strips the sqlite:// and file: prefixes.
func SQLitePathFromURL(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	return strings.TrimPrefix(url, "file:")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
