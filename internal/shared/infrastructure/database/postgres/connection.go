package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/habitrack/habitrack/internal/shared/infrastructure/convert"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterDriver(database.DriverPostgres, func(ctx context.Context, cfg database.Config) (database.Connection, error) {
		return NewConnection(ctx, cfg)
	})
}

// Connection owns the pgx pool used by PostgreSQL stores.
type Connection struct {
	pool *pgxpool.Pool
}

// NewConnection creates the pool and verifies it with a ping.
func NewConnection(ctx context.Context, cfg database.Config) (*Connection, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = convert.IntToInt32Clamped(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{pool: pool}, nil
}

// Pool returns the underlying pgxpool.Pool.
func (c *Connection) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Connection) Driver() database.Driver {
	return database.DriverPostgres
}

func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}
