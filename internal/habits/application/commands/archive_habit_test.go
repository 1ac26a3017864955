package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/outbox"
)

func TestArchiveHabitHandler_Handle(t *testing.T) {
	ownerID := uuid.New()

	t.Run("archives the habit", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		f.expectCommit(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)
		f.habits.On("Update", ctx, habit).Return(nil)
		f.logs.On("Append", ctx, mock.MatchedBy(func(e *domain.LogEntry) bool {
			return e.Action == domain.ActionArchived
		})).Return(nil)
		f.outbox.On("SaveBatch", ctx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == "habits.habit.archived"
		})).Return(nil)
		f.publisher.On("PublishDomainEvents", ctx, mock.Anything).Return(nil)

		archived, err := NewArchiveHabitHandler(f.deps()).Handle(ctx, ArchiveHabitCommand{OwnerID: ownerID, HabitID: habit.ID()})

		require.NoError(t, err)
		assert.True(t, archived.IsArchived())
		f.assertExpectations(t)
	})

	t.Run("already archived is a conflict", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		_, err := habit.Archive(testNow, testToday)
		require.NoError(t, err)
		f.expectRollback(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)

		_, err = NewArchiveHabitHandler(f.deps()).Handle(ctx, ArchiveHabitCommand{OwnerID: ownerID, HabitID: habit.ID()})

		assert.ErrorIs(t, err, sharedApplication.ErrConflict)
		assert.EqualError(t, err, "Habit is already archived")
		f.assertExpectations(t)
	})
}

func TestUnarchiveHabitHandler_Handle(t *testing.T) {
	ownerID := uuid.New()

	t.Run("restores an archived habit", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		_, err := habit.Archive(testNow, testToday)
		require.NoError(t, err)
		habit.ClearDomainEvents()

		f.expectCommit(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)
		f.habits.On("Update", ctx, habit).Return(nil)
		f.logs.On("Append", ctx, mock.MatchedBy(func(e *domain.LogEntry) bool {
			return e.Action == domain.ActionUnarchived
		})).Return(nil)
		f.outbox.On("SaveBatch", ctx, mock.Anything).Return(nil)
		f.publisher.On("PublishDomainEvents", ctx, mock.Anything).Return(nil)

		restored, err := NewUnarchiveHabitHandler(f.deps()).Handle(ctx, ArchiveHabitCommand{OwnerID: ownerID, HabitID: habit.ID()})

		require.NoError(t, err)
		assert.False(t, restored.IsArchived())
		f.assertExpectations(t)
	})

	t.Run("not archived is a conflict", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		f.expectRollback(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)

		_, err := NewUnarchiveHabitHandler(f.deps()).Handle(ctx, ArchiveHabitCommand{OwnerID: ownerID, HabitID: habit.ID()})

		assert.ErrorIs(t, err, sharedApplication.ErrConflict)
		assert.EqualError(t, err, "Habit is not archived")
		f.assertExpectations(t)
	})
}
