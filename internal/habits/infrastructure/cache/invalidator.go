package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/eventbus"
)

// Invalidator evicts cached statistics.
type Invalidator interface {
	Invalidate(ctx context.Context, habitID, ownerID uuid.UUID) error
}

// StatsCacheInvalidator evicts a habit's statistics and its owner's summary
// whenever the habit changes.
type StatsCacheInvalidator struct {
	cache  Invalidator
	logger *slog.Logger
}

// NewStatsCacheInvalidator creates the consumer.
func NewStatsCacheInvalidator(cache Invalidator, logger *slog.Logger) *StatsCacheInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCacheInvalidator{cache: cache, logger: logger}
}

func (c *StatsCacheInvalidator) EventTypes() []string {
	return []string{domain.RoutingKeyPrefix + "*"}
}

func (c *StatsCacheInvalidator) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload struct {
		HabitID uuid.UUID `json:"habit_id"`
		OwnerID uuid.UUID `json:"owner_id"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.RoutingKey, err)
	}
	if payload.HabitID == uuid.Nil {
		payload.HabitID = event.AggregateID
	}
	if payload.OwnerID == uuid.Nil {
		payload.OwnerID = event.Metadata.UserID
	}

	if err := c.cache.Invalidate(ctx, payload.HabitID, payload.OwnerID); err != nil {
		return fmt.Errorf("invalidate stats for habit %s: %w", payload.HabitID, err)
	}
	c.logger.DebugContext(ctx, "stats cache invalidated",
		"routing_key", event.RoutingKey,
		"habit_id", payload.HabitID,
		"owner_id", payload.OwnerID,
	)
	return nil
}
