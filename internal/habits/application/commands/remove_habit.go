package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
)

// RemoveHabitCommand soft-deletes a habit.
type RemoveHabitCommand struct {
	OwnerID uuid.UUID
	HabitID uuid.UUID
}

// RemoveHabitResult reports whether this call deleted the habit. Removed is
// false when it was already deleted.
type RemoveHabitResult struct {
	HabitID uuid.UUID
	Removed bool
}

// RemoveHabitHandler handles the RemoveHabitCommand.
type RemoveHabitHandler struct {
	handler
}

// NewRemoveHabitHandler creates a new RemoveHabitHandler.
func NewRemoveHabitHandler(deps Dependencies) *RemoveHabitHandler {
	return &RemoveHabitHandler{handler: newHandler(deps)}
}

// Handle is idempotent: removing a deleted habit writes nothing and succeeds.
func (h *RemoveHabitHandler) Handle(ctx context.Context, cmd RemoveHabitCommand) (*RemoveHabitResult, error) {
	result := &RemoveHabitResult{HabitID: cmd.HabitID}

	_, err := h.execute(ctx, "remove_habit", cmd.OwnerID, func(txCtx context.Context) (*domain.Habit, error) {
		habit, err := h.load(txCtx, cmd.HabitID, cmd.OwnerID, true)
		if err != nil {
			return nil, err
		}

		now, today := h.now()
		entry, removed := habit.Remove(now, today)
		if !removed {
			return habit, nil
		}
		if err := h.Habits.SoftDelete(txCtx, habit.ID(), now); err != nil {
			return nil, err
		}
		if err := h.record(txCtx, habit, entry, cmd.OwnerID); err != nil {
			return nil, err
		}
		result.Removed = true
		return habit, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
