package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateHabitHandler_Handle(t *testing.T) {
	ownerID := uuid.New()

	t.Run("updates details and keeps unspecified fields", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		f.expectCommit(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)
		f.habits.On("FindByTitle", ctx, ownerID, "Read books").Return(nil, nil)
		f.habits.On("Update", ctx, habit).Return(nil)
		f.logs.On("Append", ctx, mock.MatchedBy(func(e *domain.LogEntry) bool {
			return e.Action == domain.ActionUpdated
		})).Return(nil)
		f.outbox.On("SaveBatch", ctx, mock.Anything).Return(nil)
		f.publisher.On("PublishDomainEvents", ctx, mock.Anything).Return(nil)

		updated, err := NewUpdateHabitHandler(f.deps()).Handle(ctx, UpdateHabitCommand{
			OwnerID:  ownerID,
			HabitID:  habit.ID(),
			Title:    ptr("Read books"),
			Priority: ptr("medium"),
			Duration: ptr(30 * time.Minute),
		})

		require.NoError(t, err)
		assert.Equal(t, "Read books", updated.Title())
		assert.Equal(t, domain.PriorityMedium, updated.Priority())
		assert.Equal(t, 30*time.Minute, updated.Duration())
		assert.Equal(t, domain.RepeatNone, updated.RepeatPeriod())
		f.assertExpectations(t)
	})

	t.Run("case-only title change skips the uniqueness check", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		f.expectCommit(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)
		f.habits.On("Update", ctx, habit).Return(nil)
		f.logs.On("Append", ctx, mock.Anything).Return(nil)
		f.outbox.On("SaveBatch", ctx, mock.Anything).Return(nil)
		f.publisher.On("PublishDomainEvents", ctx, mock.Anything).Return(nil)

		updated, err := NewUpdateHabitHandler(f.deps()).Handle(ctx, UpdateHabitCommand{
			OwnerID: ownerID,
			HabitID: habit.ID(),
			Title:   ptr("READ"),
		})

		require.NoError(t, err)
		assert.Equal(t, "READ", updated.Title())
		f.habits.AssertNotCalled(t, "FindByTitle", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("title taken by another habit is a conflict", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		f.expectRollback(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)
		f.habits.On("FindByTitle", ctx, ownerID, "Walk").Return(existingHabit(ownerID, "Walk"), nil)

		_, err := NewUpdateHabitHandler(f.deps()).Handle(ctx, UpdateHabitCommand{
			OwnerID: ownerID,
			HabitID: habit.ID(),
			Title:   ptr("Walk"),
		})

		assert.ErrorIs(t, err, sharedApplication.ErrConflict)
		f.habits.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("empty title is a validation failure", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		habit := existingHabit(ownerID, "Read")
		f.expectRollback(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)

		_, err := NewUpdateHabitHandler(f.deps()).Handle(ctx, UpdateHabitCommand{
			OwnerID: ownerID,
			HabitID: habit.ID(),
			Title:   ptr(""),
		})

		assert.ErrorIs(t, err, sharedApplication.ErrValidation)
		assert.EqualError(t, err, "Title can not be empty")
		f.assertExpectations(t)
	})

	t.Run("clears the category", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		categoryID := uuid.New()
		habit, _, err := domain.NewHabit(ownerID, domain.HabitDetails{Title: "Read", CategoryID: &categoryID}, testNow, testToday)
		require.NoError(t, err)
		habit.ClearDomainEvents()

		f.expectCommit(ctx)
		f.habits.On("FindByID", ctx, habit.ID()).Return(habit, nil)
		f.habits.On("Update", ctx, habit).Return(nil)
		f.logs.On("Append", ctx, mock.Anything).Return(nil)
		f.outbox.On("SaveBatch", ctx, mock.Anything).Return(nil)
		f.publisher.On("PublishDomainEvents", ctx, mock.Anything).Return(nil)

		updated, err := NewUpdateHabitHandler(f.deps()).Handle(ctx, UpdateHabitCommand{
			OwnerID:       ownerID,
			HabitID:       habit.ID(),
			ClearCategory: true,
		})

		require.NoError(t, err)
		assert.Nil(t, updated.CategoryID())
		f.assertExpectations(t)
	})
}
