package eventbus

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/habitrack/habitrack/internal/shared/domain"
)

// NewEnvelope wraps a domain event in the wire format every consumer parses.
func NewEnvelope(event domain.DomainEvent) (*ConsumedEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	meta := event.Metadata()
	envelope := &ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
		Metadata: EventMetadata{
			UserID: meta.UserID,
		},
	}
	if meta.CorrelationID != uuid.Nil {
		envelope.Metadata.CorrelationID = meta.CorrelationID.String()
	}
	if meta.CausationID != uuid.Nil {
		envelope.Metadata.CausationID = meta.CausationID.String()
	}
	return envelope, nil
}

// CreateConsumedEvent creates a ConsumedEvent from raw parts.
func CreateConsumedEvent(
	eventID uuid.UUID,
	aggregateID uuid.UUID,
	aggregateType string,
	routingKey string,
	payload json.RawMessage,
	userID uuid.UUID,
) *ConsumedEvent {
	return &ConsumedEvent{
		EventID:       eventID,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		RoutingKey:    routingKey,
		OccurredAt:    time.Now().UTC(),
		Payload:       payload,
		Metadata: EventMetadata{
			UserID: userID,
		},
	}
}
