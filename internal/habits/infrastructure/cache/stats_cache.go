package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/pkg/observability"
)

const (
	habitStatsPrefix   = "habitrack:stats:habit:"
	todaySummaryPrefix = "habitrack:stats:today:"

	kindHabitStats   = "habit_stats"
	kindTodaySummary = "today_summary"
)

// Config tunes the cache and its circuit breaker.
type Config struct {
	TTL time.Duration

	// FailureThreshold consecutive Redis errors open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		TTL:              10 * time.Minute,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// backend is the slice of Redis the cache needs. Get returns redis.Nil on a
// miss.
type backend interface {
	Get(ctx context.Context, key, field string) ([]byte, error)
	Put(ctx context.Context, key, field string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// StatsCache keeps HabitStats and TodaySummary values in Redis hashes keyed
// by habit or owner, with one field per calendar day. Redis errors are
// absorbed: reads miss, writes are dropped, and a run of failures opens the
// breaker so later calls skip Redis entirely.
type StatsCache struct {
	backend backend
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewStatsCache creates a cache on top of a Redis client.
func NewStatsCache(client redis.Cmdable, cfg Config, metrics observability.Metrics, logger *slog.Logger) *StatsCache {
	return newStatsCache(redisBackend{client: client}, cfg, metrics, logger)
}

func newStatsCache(b backend, cfg Config, metrics observability.Metrics, logger *slog.Logger) *StatsCache {
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &StatsCache{
		backend: b,
		ttl:     cfg.TTL,
		metrics: metrics,
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "stats-cache",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c
}

func habitStatsKey(habitID uuid.UUID) string   { return habitStatsPrefix + habitID.String() }
func todaySummaryKey(ownerID uuid.UUID) string { return todaySummaryPrefix + ownerID.String() }

func (c *StatsCache) HabitStats(ctx context.Context, habitID uuid.UUID, today domain.Date) (domain.HabitStats, bool) {
	var stats domain.HabitStats
	ok := c.get(ctx, kindHabitStats, habitStatsKey(habitID), today.String(), &stats)
	return stats, ok
}

func (c *StatsCache) PutHabitStats(ctx context.Context, today domain.Date, stats domain.HabitStats) {
	c.put(ctx, kindHabitStats, habitStatsKey(stats.HabitID), today.String(), stats)
}

func (c *StatsCache) TodaySummary(ctx context.Context, ownerID uuid.UUID, today domain.Date) (domain.TodaySummary, bool) {
	var summary domain.TodaySummary
	ok := c.get(ctx, kindTodaySummary, todaySummaryKey(ownerID), today.String(), &summary)
	return summary, ok
}

func (c *StatsCache) PutTodaySummary(ctx context.Context, ownerID uuid.UUID, summary domain.TodaySummary) {
	c.put(ctx, kindTodaySummary, todaySummaryKey(ownerID), summary.Date.String(), summary)
}

// Invalidate drops every cached day for the habit and for its owner's
// summary.
func (c *StatsCache) Invalidate(ctx context.Context, habitID, ownerID uuid.UUID) error {
	keys := make([]string, 0, 2)
	if habitID != uuid.Nil {
		keys = append(keys, habitStatsKey(habitID))
	}
	if ownerID != uuid.Nil {
		keys = append(keys, todaySummaryKey(ownerID))
	}
	if len(keys) == 0 {
		return nil
	}
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.backend.Delete(ctx, keys...)
	})
	return err
}

// Ping reports whether Redis answers. It bypasses the breaker.
func (c *StatsCache) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

func (c *StatsCache) get(ctx context.Context, kind, key, field string, dst any) bool {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		b, err := c.backend.Get(ctx, key, field)
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		c.logger.DebugContext(ctx, "cache read failed", "kind", kind, "key", key, "error", err)
		c.miss(kind)
		return false
	}
	if raw == nil {
		c.miss(kind)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnContext(ctx, "cache entry unreadable", "kind", kind, "key", key, "error", err)
		c.miss(kind)
		return false
	}
	c.metrics.Counter(observability.MetricCacheHits, 1, observability.T("cache", kind))
	return true
}

func (c *StatsCache) put(ctx context.Context, kind, key, field string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "cache entry not encodable", "kind", kind, "error", err)
		return
	}
	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.backend.Put(ctx, key, field, raw, c.ttl)
	})
	if err != nil {
		c.logger.DebugContext(ctx, "cache write failed", "kind", kind, "key", key, "error", err)
	}
}

func (c *StatsCache) miss(kind string) {
	c.metrics.Counter(observability.MetricCacheMisses, 1, observability.T("cache", kind))
}

type redisBackend struct {
	client redis.Cmdable
}

func (b redisBackend) Get(ctx context.Context, key, field string) ([]byte, error) {
	return b.client.HGet(ctx, key, field).Bytes()
}

// Put writes the field and refreshes the hash expiry in one transaction.
func (b redisBackend) Put(ctx context.Context, key, field string, value []byte, ttl time.Duration) error {
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, value)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (b redisBackend) Delete(ctx context.Context, keys ...string) error {
	return b.client.Del(ctx, keys...).Err()
}

func (b redisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
