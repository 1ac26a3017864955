package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
)

// UndoHabitCompletionCommand clears a habit's completion.
type UndoHabitCompletionCommand struct {
	OwnerID uuid.UUID
	HabitID uuid.UUID
}

// UndoHabitCompletionHandler handles the UndoHabitCompletionCommand.
type UndoHabitCompletionHandler struct {
	handler
}

// NewUndoHabitCompletionHandler creates a new UndoHabitCompletionHandler.
func NewUndoHabitCompletionHandler(deps Dependencies) *UndoHabitCompletionHandler {
	return &UndoHabitCompletionHandler{handler: newHandler(deps)}
}

func (h *UndoHabitCompletionHandler) Handle(ctx context.Context, cmd UndoHabitCompletionCommand) (*domain.Habit, error) {
	return h.execute(ctx, "undo_habit_completion", cmd.OwnerID, func(txCtx context.Context) (*domain.Habit, error) {
		habit, err := h.load(txCtx, cmd.HabitID, cmd.OwnerID, false)
		if err != nil {
			return nil, err
		}

		now, today := h.now()
		entry, err := habit.Undo(now, today)
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
