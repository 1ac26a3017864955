package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventConsumer handles events whose routing key matches one of its patterns.
type EventConsumer interface {
	// EventTypes returns routing key patterns such as "habits.habit.completed"
	// or "habits.habit.*". Patterns follow AMQP topic syntax.
	EventTypes() []string

	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent is the envelope received from the bus.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      EventMetadata   `json:"metadata,omitempty"`
}

// EventMetadata carries tracing context alongside the event.
type EventMetadata struct {
	UserID        uuid.UUID `json:"user_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CausationID   string    `json:"causation_id,omitempty"`
}

// Consumer receives events from a broker and dispatches them.
type Consumer interface {
	// Start blocks until ctx is done or the consumer is closed.
	Start(ctx context.Context) error
	RegisterConsumer(consumer EventConsumer)
	Close() error
}
