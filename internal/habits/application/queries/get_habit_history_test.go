package queries_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

func TestGetHabitHistoryHandler_Handle(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	w := newWorld()

	read := w.daily(t, ownerID, "Read")
	walk := w.daily(t, ownerID, "Walk")
	yesterday := testToday.AddDays(-1)
	w.complete(t, read, yesterday)
	w.complete(t, walk, testToday)
	w.undo(t, walk, testToday)
	w.complete(t, read, testToday)

	handler := queries.NewGetHabitHistoryHandler(w.deps())

	t.Run("newest first with descriptions", func(t *testing.T) {
		history, err := handler.Handle(ctx, queries.GetHabitHistoryQuery{OwnerID: ownerID})
		require.NoError(t, err)
		require.Len(t, history, 6)
		assert.Equal(t, domain.ActionUndone, history[0].Action)
		assert.Equal(t, "Habit was unmarked as completed.", history[0].Description)
		assert.Equal(t, domain.ActionCreated, history[5].Action)
		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].Date.After(history[i-1].Date))
		}
	})

	t.Run("single habit", func(t *testing.T) {
		id := read.ID()
		history, err := handler.Handle(ctx, queries.GetHabitHistoryQuery{OwnerID: ownerID, HabitID: &id})
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, testToday, history[0].Date)
		assert.Equal(t, "Habit was marked as completed.", history[0].Description)
	})

	t.Run("date range", func(t *testing.T) {
		history, err := handler.Handle(ctx, queries.GetHabitHistoryQuery{OwnerID: ownerID, Start: &yesterday, End: &yesterday})
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, read.ID(), history[0].HabitID)
	})

	t.Run("action on one day", func(t *testing.T) {
		completed := domain.ActionCompleted
		today := testToday
		history, err := handler.Handle(ctx, queries.GetHabitHistoryQuery{OwnerID: ownerID, Start: &today, End: &today, Action: &completed})
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, read.ID(), history[0].HabitID)
		assert.Equal(t, walk.ID(), history[1].HabitID)
	})

	t.Run("start after end", func(t *testing.T) {
		today := testToday
		_, err := handler.Handle(ctx, queries.GetHabitHistoryQuery{OwnerID: ownerID, Start: &today, End: &yesterday})
		require.ErrorIs(t, err, sharedApplication.ErrValidation)
		assert.EqualError(t, err, "Start date cannot be greater than end date.")
	})

	t.Run("someone else's habit", func(t *testing.T) {
		id := read.ID()
		_, err := handler.Handle(ctx, queries.GetHabitHistoryQuery{OwnerID: uuid.New(), HabitID: &id})
		assert.ErrorIs(t, err, sharedApplication.ErrUnauthorized)
	})
}
