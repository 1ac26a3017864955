package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/habitrack/habitrack/internal/shared/domain"
)

// InProcessEventBus delivers envelopes synchronously to local consumers. The
// CLI uses it in place of a broker.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the envelope and dispatches it. Consumer failures are
// logged and never returned, so a local side effect cannot fail a command.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	b.dispatch(ctx, event)
	return nil
}

// PublishDomainEvents wraps each event in an envelope and dispatches it.
func (b *InProcessEventBus) PublishDomainEvents(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		envelope, err := NewEnvelope(event)
		if err != nil {
			return err
		}
		b.dispatch(ctx, envelope)
	}
	return nil
}

// PublishConsumedEvent dispatches an envelope and returns consumer errors.
func (b *InProcessEventBus) PublishConsumedEvent(ctx context.Context, event *ConsumedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registry.Dispatch(ctx, event)
}

func (b *InProcessEventBus) dispatch(ctx context.Context, event *ConsumedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	err := b.registry.Dispatch(ctx, event)
	duration := time.Since(start)

	if err != nil {
		b.logger.Error("event dispatch failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return
	}
	b.logger.Debug("event dispatched",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"duration_ms", duration.Milliseconds(),
	)
}

func (b *InProcessEventBus) Close() error {
	return nil
}

func (b *InProcessEventBus) GetRegistry() *ConsumerRegistry {
	return b.registry
}
