package queries

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

// ListHabitsQuery lists the owner's habits. Deleted habits never appear.
type ListHabitsQuery struct {
	OwnerID         uuid.UUID
	Priority        *domain.Priority
	CategoryID      *uuid.UUID
	IncludeArchived bool
}

// ListHabitsHandler handles ListHabitsQuery.
type ListHabitsHandler struct {
	reader
}

// NewListHabitsHandler creates a new ListHabitsHandler.
func NewListHabitsHandler(deps Dependencies) *ListHabitsHandler {
	return &ListHabitsHandler{reader: newReader(deps)}
}

// Handle returns habits ordered by priority, highest first, then title.
func (h *ListHabitsHandler) Handle(ctx context.Context, query ListHabitsQuery) ([]HabitDTO, error) {
	habits, err := h.Habits.FindByOwner(ctx, query.OwnerID, domain.HabitFilter{
		Priority:        query.Priority,
		CategoryID:      query.CategoryID,
		IncludeArchived: query.IncludeArchived,
	})
	if err != nil {
		return nil, services.ToFailure(err)
	}

	today := h.today()
	todays, err := h.Logs.ByDate(ctx, query.OwnerID, today)
	if err != nil {
		return nil, services.ToFailure(err)
	}

	sortByPriority(habits)
	return toHabitDTOs(habits, todays, today), nil
}

// ListTodayHabitsQuery lists the owner's habits due today.
type ListTodayHabitsQuery struct {
	OwnerID uuid.UUID
}

// ListTodayHabitsHandler handles ListTodayHabitsQuery.
type ListTodayHabitsHandler struct {
	reader
}

// NewListTodayHabitsHandler creates a new ListTodayHabitsHandler.
func NewListTodayHabitsHandler(deps Dependencies) *ListTodayHabitsHandler {
	return &ListTodayHabitsHandler{reader: newReader(deps)}
}

// Handle returns active habits whose recurrence applies to today. Archived
// habits are skipped.
func (h *ListTodayHabitsHandler) Handle(ctx context.Context, query ListTodayHabitsQuery) ([]HabitDTO, error) {
	habits, err := h.Habits.FindByOwner(ctx, query.OwnerID, domain.HabitFilter{})
	if err != nil {
		return nil, services.ToFailure(err)
	}

	today := h.today()
	todays, err := h.Logs.ByDate(ctx, query.OwnerID, today)
	if err != nil {
		return nil, services.ToFailure(err)
	}

	due := domain.DueOn(habits, today)
	sortByPriority(due)
	return toHabitDTOs(due, todays, today), nil
}

func sortByPriority(habits []*domain.Habit) {
	slices.SortStableFunc(habits, func(a, b *domain.Habit) int {
		if c := b.Priority().Rank() - a.Priority().Rank(); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
	})
}

func toHabitDTOs(habits []*domain.Habit, todays []domain.LogEntry, today domain.Date) []HabitDTO {
	dtos := make([]HabitDTO, len(habits))
	for i, h := range habits {
		dtos[i] = NewHabitDTO(h, todays, today)
	}
	return dtos
}
