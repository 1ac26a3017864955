package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/habitrack/habitrack/internal/shared/domain"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)

type testAggregate struct {
	domain.BaseAggregateRoot
	Title string
}

func newTestAggregate(title string) *testAggregate {
	return &testAggregate{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(testNow)),
		Title:             title,
	}
}

type testAggregateEvent struct {
	domain.BaseEvent
}

func newTestAggregateEvent(aggregateID uuid.UUID) testAggregateEvent {
	return testAggregateEvent{
		BaseEvent: domain.NewBaseEvent(aggregateID, "TestAggregate", "test.aggregate.created", testNow),
	}
}

func TestNewBaseAggregateRoot(t *testing.T) {
	agg := newTestAggregate("Read")

	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Equal(t, 0, agg.Version())
	assert.Empty(t, agg.DomainEvents())
	assert.Equal(t, testNow, agg.CreatedAt())
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := newTestAggregate("Read")

	for i := 0; i < 3; i++ {
		agg.AddDomainEvent(newTestAggregateEvent(agg.ID()))
	}
	assert.Len(t, agg.DomainEvents(), 3)
	for _, event := range agg.DomainEvents() {
		assert.Equal(t, agg.ID(), event.AggregateID())
	}

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseAggregateRoot_Versioning(t *testing.T) {
	agg := newTestAggregate("Read")
	agg.IncrementVersion()
	agg.IncrementVersion()
	assert.Equal(t, 2, agg.Version())

	restored := domain.RehydrateBaseAggregateRoot(
		domain.RehydrateBaseEntity(agg.ID(), agg.CreatedAt(), agg.UpdatedAt()), 7)
	assert.Equal(t, 7, restored.Version())
	assert.Equal(t, agg.ID(), restored.ID())
	assert.Empty(t, restored.DomainEvents())
}
