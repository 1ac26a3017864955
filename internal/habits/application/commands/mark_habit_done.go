package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

// MsgAlreadyDoneToday is the conflict reported for a second completion on one day.
const MsgAlreadyDoneToday = "Already marked as done today"

// MarkHabitDoneCommand marks a habit completed for today.
type MarkHabitDoneCommand struct {
	OwnerID uuid.UUID
	HabitID uuid.UUID
}

// MarkHabitDoneHandler handles the MarkHabitDoneCommand.
type MarkHabitDoneHandler struct {
	handler
}

// NewMarkHabitDoneHandler creates a new MarkHabitDoneHandler.
func NewMarkHabitDoneHandler(deps Dependencies) *MarkHabitDoneHandler {
	return &MarkHabitDoneHandler{handler: newHandler(deps)}
}

// Handle appends a Completed entry for today unless today's effective status
// is already Completed. The habit is loaded first so the log is read under
// the habit's write lock.
func (h *MarkHabitDoneHandler) Handle(ctx context.Context, cmd MarkHabitDoneCommand) (*domain.Habit, error) {
	return h.execute(ctx, "mark_habit_done", cmd.OwnerID, func(txCtx context.Context) (*domain.Habit, error) {
		habit, err := h.load(txCtx, cmd.HabitID, cmd.OwnerID, false)
		if err != nil {
			return nil, err
		}

		now, today := h.now()
		last, err := h.Logs.LastForDay(txCtx, cmd.OwnerID, habit.ID(), today)
		if err != nil {
			return nil, err
		}
		if last != nil && last.Action == domain.ActionCompleted {
			return nil, sharedApplication.Failf(sharedApplication.CategoryConflict, MsgAlreadyDoneToday)
		}

		entry, err := habit.MarkDone(now, today)
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
