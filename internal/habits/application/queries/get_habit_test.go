package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

type failingHabitStore struct {
	mock.Mock
	domain.HabitStore
}

func (m *failingHabitStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func TestGetHabitHandler_Handle(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("reports today's effective status", func(t *testing.T) {
		w := newWorld()
		habit := w.daily(t, ownerID, "Read")
		w.complete(t, habit, testToday)

		dto, err := queries.NewGetHabitHandler(w.deps()).Handle(ctx, queries.GetHabitQuery{OwnerID: ownerID, HabitID: habit.ID()})
		require.NoError(t, err)
		assert.Equal(t, "Read", dto.Title)
		assert.True(t, dto.IsCompleted)
		assert.True(t, dto.IsCompletedToday)
		assert.True(t, dto.IsDueToday)
		assert.Equal(t, string(domain.RepeatDaily), dto.RepeatPeriod)
	})

	t.Run("yesterday's completion is not today's", func(t *testing.T) {
		w := newWorld()
		habit := w.daily(t, ownerID, "Read")
		w.complete(t, habit, testToday.AddDays(-1))

		dto, err := queries.NewGetHabitHandler(w.deps()).Handle(ctx, queries.GetHabitQuery{OwnerID: ownerID, HabitID: habit.ID()})
		require.NoError(t, err)
		assert.True(t, dto.IsCompleted)
		assert.False(t, dto.IsCompletedToday)
	})

	t.Run("missing habit is not found", func(t *testing.T) {
		w := newWorld()
		_, err := queries.NewGetHabitHandler(w.deps()).Handle(ctx, queries.GetHabitQuery{OwnerID: ownerID, HabitID: uuid.New()})
		assert.ErrorIs(t, err, sharedApplication.ErrNotFound)
	})

	t.Run("other owner's habit is unauthorized", func(t *testing.T) {
		w := newWorld()
		habit := w.daily(t, uuid.New(), "Theirs")
		_, err := queries.NewGetHabitHandler(w.deps()).Handle(ctx, queries.GetHabitQuery{OwnerID: ownerID, HabitID: habit.ID()})
		assert.ErrorIs(t, err, sharedApplication.ErrUnauthorized)
	})

	t.Run("deleted habit is not found", func(t *testing.T) {
		w := newWorld()
		habit := w.daily(t, ownerID, "Gone")
		removed, ok := habit.Remove(at(testToday, time.Minute), testToday)
		require.True(t, ok)
		require.NoError(t, w.habits.SoftDelete(ctx, habit.ID(), removed.CreatedAt))
		require.NoError(t, w.logs.Append(ctx, &removed))

		_, err := queries.NewGetHabitHandler(w.deps()).Handle(ctx, queries.GetHabitQuery{OwnerID: ownerID, HabitID: habit.ID()})
		assert.ErrorIs(t, err, sharedApplication.ErrNotFound)
	})

	t.Run("store errors are persistence failures", func(t *testing.T) {
		store := new(failingHabitStore)
		id := uuid.New()
		store.On("FindByID", mock.Anything, id).Return(nil, errors.New("disk full"))

		w := newWorld()
		deps := w.deps()
		deps.Habits = store
		_, err := queries.NewGetHabitHandler(deps).Handle(ctx, queries.GetHabitQuery{OwnerID: ownerID, HabitID: id})
		assert.ErrorIs(t, err, sharedApplication.ErrPersistence)
		store.AssertExpectations(t)
	})
}
