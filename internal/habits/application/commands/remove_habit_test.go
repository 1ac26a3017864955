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
)

func TestRemoveHabitHandler_Handle(t *testing.T) {
	ownerID := uuid.New()

	t.Run("soft-deletes and appends a Removed entry", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		f.expectCommit(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)
		f.habits.On("SoftDelete", ctx, habit.ID(), f.clock.Now()).Return(nil)
		f.logs.On("Append", ctx, mock.MatchedBy(func(e *domain.LogEntry) bool {
			return e.Action == domain.ActionRemoved
		})).Return(nil)
		f.outbox.On("SaveBatch", ctx, mock.Anything).Return(nil)
		f.publisher.On("PublishDomainEvents", ctx, mock.Anything).Return(nil)

		result, err := NewRemoveHabitHandler(f.deps()).Handle(ctx, RemoveHabitCommand{OwnerID: ownerID, HabitID: habit.ID()})

		require.NoError(t, err)
		assert.True(t, result.Removed)
		assert.True(t, habit.IsDeleted())
		f.assertExpectations(t)
	})

	t.Run("already deleted is a no-op success", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		habit.Remove(testNow, testToday)
		habit.ClearDomainEvents()
		f.expectCommit(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)

		result, err := NewRemoveHabitHandler(f.deps()).Handle(ctx, RemoveHabitCommand{OwnerID: ownerID, HabitID: habit.ID()})

		require.NoError(t, err)
		assert.False(t, result.Removed)
		f.habits.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
		f.habits.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		f.outbox.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("deleted habit of another user is unauthorized", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(uuid.New(), "Read")
		habit.Remove(testNow, testToday)
		f.expectRollback(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)

		_, err := NewRemoveHabitHandler(f.deps()).Handle(ctx, RemoveHabitCommand{OwnerID: ownerID, HabitID: habit.ID()})

		assert.ErrorIs(t, err, sharedApplication.ErrUnauthorized)
		f.assertExpectations(t)
	})

	t.Run("missing habit is not found", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		id := uuid.New()
		f.expectRollback(ctx)
		f.habits.On("FindByID", ctx, id).Return(nil, nil)

		_, err := NewRemoveHabitHandler(f.deps()).Handle(ctx, RemoveHabitCommand{OwnerID: ownerID, HabitID: id})

		assert.ErrorIs(t, err, sharedApplication.ErrNotFound)
		f.assertExpectations(t)
	})
}
