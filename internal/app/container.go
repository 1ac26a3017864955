package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	habitCommands "github.com/habitrack/habitrack/internal/habits/application/commands"
	habitQueries "github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/infrastructure/cache"
	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
	_ "github.com/habitrack/habitrack/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/habitrack/habitrack/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/habitrack/habitrack/internal/shared/infrastructure/eventbus"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/migrations"
	"github.com/habitrack/habitrack/pkg/config"
	"github.com/habitrack/habitrack/pkg/observability"
)

const redisPingTimeout = 2 * time.Second

// Container holds all application dependencies.
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  observability.Metrics
	Clock    sharedDomain.Clock
	Location *time.Location
	Owner    uuid.UUID

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Statistics cache; both nil when RedisURL is empty.
	RedisClient *redis.Client
	StatsCache  *cache.StatsCache

	// Stores and the unit of work spanning them
	Repositories

	// Local event delivery after commit
	EventBus *eventbus.InProcessEventBus

	Health *observability.HealthRegistry

	// Habit Command Handlers
	CreateHabitHandler         *habitCommands.CreateHabitHandler
	MarkHabitDoneHandler       *habitCommands.MarkHabitDoneHandler
	UndoHabitCompletionHandler *habitCommands.UndoHabitCompletionHandler
	UpdateHabitHandler         *habitCommands.UpdateHabitHandler
	RemoveHabitHandler         *habitCommands.RemoveHabitHandler
	ArchiveHabitHandler        *habitCommands.ArchiveHabitHandler
	UnarchiveHabitHandler      *habitCommands.UnarchiveHabitHandler

	// Habit Query Handlers
	GetHabitHandler          *habitQueries.GetHabitHandler
	ListHabitsHandler        *habitQueries.ListHabitsHandler
	ListTodayHabitsHandler   *habitQueries.ListTodayHabitsHandler
	GetHabitHistoryHandler   *habitQueries.GetHabitHistoryHandler
	GetCompletionRateHandler *habitQueries.GetCompletionRateHandler
	GetStreaksHandler        *habitQueries.GetStreaksHandler
	GetHabitStatsHandler     *habitQueries.GetHabitStatsHandler
	GetTodaySummaryHandler   *habitQueries.GetTodaySummaryHandler
	GetUserSummaryHandler    *habitQueries.GetUserSummaryHandler
}

// Option adjusts a container before its handlers are built.
type Option func(*Container)

// WithClock replaces the system clock.
func WithClock(clock sharedDomain.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// WithMetrics replaces the in-memory metrics sink.
func WithMetrics(metrics observability.Metrics) Option {
	return func(c *Container) { c.Metrics = metrics }
}

// NewContainer connects to the configured backend, migrates it and wires
// every handler. Close releases what it opened.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	owner, err := cfg.Owner()
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Metrics:  observability.NewInMemoryMetrics(),
		Clock:    sharedDomain.SystemClock{},
		Location: loc,
		Owner:    owner,
		Health:   observability.NewHealthRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.openDatabase(ctx); err != nil {
		return nil, err
	}

	repos, err := NewRepositoryFactory(c.DBConn).Build()
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Repositories = repos

	if err := c.openStatsCache(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.EventBus = eventbus.NewInProcessEventBus(logger)
	if c.StatsCache != nil {
		c.EventBus.RegisterConsumer(cache.NewStatsCacheInvalidator(c.StatsCache, logger))
	}

	c.wireHandlers()

	logger.Debug("container ready",
		"driver", c.DBDriver,
		"stats_cache", c.StatsCache != nil,
		"timezone", loc.String(),
	)
	return c, nil
}

func (c *Container) openDatabase(ctx context.Context) error {
	driver, err := database.ParseDriver(c.Config.DatabaseDriver, c.Config.DatabaseURL)
	if err != nil {
		return err
	}
	c.DBDriver = driver

	if driver == database.DriverMemory {
		c.DBConn = memoryConnection{}
		c.Health.Register("database", observability.DatabaseHealthChecker(c.DBConn.Ping))
		return nil
	}

	conn, err := database.Open(ctx, database.Config{
		Driver:     driver,
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
		MaxConns:   c.Config.DBMaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	switch driver {
	case database.DriverSQLite:
		db, err := sqliteDB(conn)
		if err == nil {
			err = migrations.RunSQLiteMigrations(ctx, db)
		}
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to run SQLite migrations: %w", err)
		}
	case database.DriverPostgres:
		if err := migrations.RunPostgresMigrations(ctx, c.Config.DatabaseURL); err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
		}
	}

	c.Logger.Info("connected to database", "driver", driver)
	return nil
}

// openStatsCache wires Redis when configured. An unreachable server is only
// logged; the cache reports misses until it comes back.
func (c *Container) openStatsCache(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	client, err := cache.NewRedisClient(c.Config.RedisURL)
	if err != nil {
		return err
	}
	c.RedisClient = client

	cacheCfg := cache.DefaultConfig()
	if c.Config.StatsCacheTTL > 0 {
		cacheCfg.TTL = c.Config.StatsCacheTTL
	}
	c.StatsCache = cache.NewStatsCache(client, cacheCfg, c.Metrics, c.Logger)
	c.Health.Register("redis", observability.RedisHealthChecker(c.StatsCache.Ping))

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := c.StatsCache.Ping(pingCtx); err != nil {
		c.Logger.Warn("Redis unavailable, statistics will not be cached", "error", err)
	}
	return nil
}

func (c *Container) wireHandlers() {
	cmdDeps := habitCommands.Dependencies{
		Habits:     c.Habits,
		Logs:       c.Logs,
		Outbox:     c.Outbox,
		UnitOfWork: c.UnitOfWork,
		Clock:      c.Clock,
		Location:   c.Location,
		Publisher:  c.EventBus,
		Logger:     c.Logger,
	}
	c.CreateHabitHandler = habitCommands.NewCreateHabitHandler(cmdDeps)
	c.MarkHabitDoneHandler = habitCommands.NewMarkHabitDoneHandler(cmdDeps)
	c.UndoHabitCompletionHandler = habitCommands.NewUndoHabitCompletionHandler(cmdDeps)
	c.UpdateHabitHandler = habitCommands.NewUpdateHabitHandler(cmdDeps)
	c.RemoveHabitHandler = habitCommands.NewRemoveHabitHandler(cmdDeps)
	c.ArchiveHabitHandler = habitCommands.NewArchiveHabitHandler(cmdDeps)
	c.UnarchiveHabitHandler = habitCommands.NewUnarchiveHabitHandler(cmdDeps)

	queryDeps := habitQueries.Dependencies{
		Habits:   c.Habits,
		Logs:     c.Logs,
		Clock:    c.Clock,
		Location: c.Location,
	}
	if c.StatsCache != nil {
		queryDeps.Cache = c.StatsCache
	}
	c.GetHabitHandler = habitQueries.NewGetHabitHandler(queryDeps)
	c.ListHabitsHandler = habitQueries.NewListHabitsHandler(queryDeps)
	c.ListTodayHabitsHandler = habitQueries.NewListTodayHabitsHandler(queryDeps)
	c.GetHabitHistoryHandler = habitQueries.NewGetHabitHistoryHandler(queryDeps)
	c.GetCompletionRateHandler = habitQueries.NewGetCompletionRateHandler(queryDeps)
	c.GetStreaksHandler = habitQueries.NewGetStreaksHandler(queryDeps)
	c.GetHabitStatsHandler = habitQueries.NewGetHabitStatsHandler(queryDeps)
	c.GetTodaySummaryHandler = habitQueries.NewGetTodaySummaryHandler(queryDeps)
	c.GetUserSummaryHandler = habitQueries.NewGetUserSummaryHandler(queryDeps)
}

// Close releases the event bus, Redis and the database, in that order.
func (c *Container) Close() {
	if c.EventBus != nil {
		if err := c.EventBus.Close(); err != nil {
			c.Logger.Warn("error closing event bus", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		} else {
			c.Logger.Debug("database connection closed")
		}
	}
}
