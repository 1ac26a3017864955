package database

import (
	"fmt"
	"strings"
)

// Driver represents a storage backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	// DriverMemory keeps everything in process. Nothing survives a restart.
	DriverMemory Driver = "memory"
)

func (d Driver) String() string {
	return string(d)
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite, DriverMemory:
		return true
	default:
		return false
	}
}

// ParseDriver resolves a configured driver name. Empty or "auto" defers to the URL.
func ParseDriver(name, url string) (Driver, error) {
	if name == "" || name == "auto" {
		return DetectDriver(url), nil
	}
	d := Driver(strings.ToLower(name))
	if !d.IsValid() {
		return "", fmt.Errorf("unsupported database driver: %s", name)
	}
	return d, nil
}

// DetectDriver guesses the driver from a connection string. An empty URL
// selects SQLite so the CLI works without setup.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case url == "memory", strings.HasPrefix(url, "memory://"):
		return DriverMemory
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite
	default:
		return DriverPostgres
	}
}
