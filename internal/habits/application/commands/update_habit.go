package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
)

// UpdateHabitCommand replaces a habit's editable details. Nil fields keep
// their current value. ClearCategory removes the category.
type UpdateHabitCommand struct {
	OwnerID        uuid.UUID
	HabitID        uuid.UUID
	Title          *string
	Description    *string
	CategoryID     *uuid.UUID
	ClearCategory  bool
	Priority       *string
	RepeatPeriod   *string
	RepeatInterval *int
	RepeatCount    *int
	Duration       *time.Duration
}

// apply overlays the command on current.
func (cmd UpdateHabitCommand) apply(current domain.HabitDetails) (domain.HabitDetails, error) {
	next := current
	if cmd.Title != nil {
		next.Title = *cmd.Title
	}
	if cmd.Description != nil {
		next.Description = *cmd.Description
	}
	if cmd.ClearCategory {
		next.CategoryID = nil
	} else if cmd.CategoryID != nil {
		id := *cmd.CategoryID
		next.CategoryID = &id
	}
	if cmd.Priority != nil {
		p, err := domain.ParsePriority(*cmd.Priority)
		if err != nil {
			return current, err
		}
		next.Priority = p
	}
	if cmd.RepeatPeriod != nil {
		p, err := domain.ParseRepeatPeriod(*cmd.RepeatPeriod)
		if err != nil {
			return current, err
		}
		next.RepeatPeriod = p
	}
	if cmd.RepeatInterval != nil {
		interval, err := repeatInterval(cmd.RepeatInterval)
		if err != nil {
			return current, err
		}
		next.RepeatInterval = interval
	}
	if cmd.RepeatCount != nil {
		next.RepeatCount = *cmd.RepeatCount
	}
	if cmd.Duration != nil {
		next.Duration = *cmd.Duration
	}
	next = next.Normalize()
	return next, next.Validate()
}

// UpdateHabitHandler handles the UpdateHabitCommand.
type UpdateHabitHandler struct {
	handler
}

// NewUpdateHabitHandler creates a new UpdateHabitHandler.
func NewUpdateHabitHandler(deps Dependencies) *UpdateHabitHandler {
	return &UpdateHabitHandler{handler: newHandler(deps)}
}

// Handle re-checks title uniqueness only when the title changes beyond case.
func (h *UpdateHabitHandler) Handle(ctx context.Context, cmd UpdateHabitCommand) (*domain.Habit, error) {
	return h.execute(ctx, "update_habit", cmd.OwnerID, func(txCtx context.Context) (*domain.Habit, error) {
		habit, err := h.load(txCtx, cmd.HabitID, cmd.OwnerID, false)
		if err != nil {
			return nil, err
		}

		details, err := cmd.apply(habit.Details())
		if err != nil {
			return nil, err
		}
		if !habit.HasTitle(details.Title) {
			other, err := h.Habits.FindByTitle(txCtx, cmd.OwnerID, details.Title)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID() != habit.ID() {
				return nil, domain.ErrHabitDuplicateTitle
			}
		}

		now, today := h.now()
		entry, err := habit.Update(details, now, today)
		if err != nil {
			return nil, err
		}
		if err := h.Habits.Update(txCtx, habit); err != nil {
			return nil, err
		}
		if err := h.record(txCtx, habit, entry, cmd.OwnerID); err != nil {
			return nil, err
		}
		return habit, nil
	})
}
