package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/habitrack/habitrack/internal/shared/domain"
	"github.com/habitrack/habitrack/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	t.Run("generates correlation ID without context value", func(t *testing.T) {
		userID := uuid.New()

		m1 := NewEventMetadata(context.Background(), userID)
		m2 := NewEventMetadata(context.Background(), userID)

		assert.Equal(t, userID, m1.UserID)
		assert.NotEqual(t, uuid.Nil, m1.CorrelationID)
		assert.NotEqual(t, m1.CorrelationID, m2.CorrelationID)
		assert.NotEqual(t, m1.CausationID, m2.CausationID)
	})

	t.Run("reuses correlation ID from context", func(t *testing.T) {
		correlationID := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), correlationID.String())

		metadata := NewEventMetadata(ctx, uuid.New())

		assert.Equal(t, correlationID, metadata.CorrelationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	userID := uuid.New()
	event1 := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Habit", "habits.habit.created", testNow)}
	event2 := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Habit", "habits.habit.completed", testNow)}
	metadata := NewEventMetadata(context.Background(), userID)

	ApplyEventMetadata([]domain.DomainEvent{event1, event2}, metadata)

	assert.Equal(t, metadata, event1.Metadata())
	assert.Equal(t, metadata, event2.Metadata())

	require.NotPanics(t, func() {
		ApplyEventMetadata(nil, metadata)
	})
}
