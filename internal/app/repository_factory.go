package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	habitsDomain "github.com/habitrack/habitrack/internal/habits/domain"
	habitPersistence "github.com/habitrack/habitrack/internal/habits/infrastructure/persistence"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

// Repositories is the set of stores that share one transaction boundary.
type Repositories struct {
	Habits     habitsDomain.HabitStore
	Logs       habitsDomain.LogStore
	Outbox     outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork
}

// RepositoryFactory builds stores for whichever backend the connection uses.
type RepositoryFactory struct {
	conn database.Connection
}

// NewRepositoryFactory creates a factory bound to conn.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// Driver returns the backend the factory builds for.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}

// Build returns stores and a unit of work that agree on the backend.
func (f *RepositoryFactory) Build() (Repositories, error) {
	switch f.conn.Driver() {
	case database.DriverPostgres:
		pool, err := postgresPool(f.conn)
		if err != nil {
			return Repositories{}, err
		}
		return Repositories{
			Habits:     habitPersistence.NewPostgresHabitRepository(pool),
			Logs:       habitPersistence.NewPostgresLogStore(pool),
			Outbox:     outbox.NewPostgresRepository(pool),
			UnitOfWork: sharedPersistence.NewPostgresUnitOfWork(pool),
		}, nil

	case database.DriverSQLite:
		db, err := sqliteDB(f.conn)
		if err != nil {
			return Repositories{}, err
		}
		return Repositories{
			Habits:     habitPersistence.NewSQLiteHabitRepository(db),
			Logs:       habitPersistence.NewSQLiteLogStore(db),
			Outbox:     outbox.NewSQLiteRepository(db),
			UnitOfWork: sharedPersistence.NewSQLiteUnitOfWork(db),
		}, nil

	case database.DriverMemory:
		habits := habitPersistence.NewMemoryHabitRepository()
		logs := habitPersistence.NewMemoryLogStore(habits)
		messages := outbox.NewInMemoryRepository()
		return Repositories{
			Habits:     habits,
			Logs:       logs,
			Outbox:     messages,
			UnitOfWork: sharedPersistence.NewMemoryUnitOfWork(habits, logs, messages),
		}, nil

	default:
		return Repositories{}, fmt.Errorf("unsupported database driver: %s", f.conn.Driver())
	}
}

func postgresPool(conn database.Connection) (*pgxpool.Pool, error) {
	pc, ok := conn.(interface{ Pool() *pgxpool.Pool })
	if !ok {
		return nil, fmt.Errorf("connection does not expose a PostgreSQL pool")
	}
	return pc.Pool(), nil
}

func sqliteDB(conn database.Connection) (*sql.DB, error) {
	sc, ok := conn.(interface{ DB() *sql.DB })
	if !ok {
		return nil, fmt.Errorf("connection does not expose a SQLite handle")
	}
	return sc.DB(), nil
}

// memoryConnection stands in for a database when every store lives in the
// process. Nothing survives Close.
type memoryConnection struct{}

func (memoryConnection) Driver() database.Driver      { return database.DriverMemory }
func (memoryConnection) Ping(_ context.Context) error { return nil }
func (memoryConnection) Close() error                 { return nil }
