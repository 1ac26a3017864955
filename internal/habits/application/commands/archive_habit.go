package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
)

// ArchiveHabitCommand contains the data needed to archive or unarchive a habit.
type ArchiveHabitCommand struct {
	OwnerID uuid.UUID
	HabitID uuid.UUID
}

// ArchiveHabitHandler hides a habit from day-to-day views.
type ArchiveHabitHandler struct {
	handler
}

// NewArchiveHabitHandler creates a new ArchiveHabitHandler.
func NewArchiveHabitHandler(deps Dependencies) *ArchiveHabitHandler {
	return &ArchiveHabitHandler{handler: newHandler(deps)}
}

func (h *ArchiveHabitHandler) Handle(ctx context.Context, cmd ArchiveHabitCommand) (*domain.Habit, error) {
	return h.transition(ctx, "archive_habit", cmd, (*domain.Habit).Archive)
}

// UnarchiveHabitHandler restores an archived habit.
type UnarchiveHabitHandler struct {
	handler
}

// NewUnarchiveHabitHandler creates a new UnarchiveHabitHandler.
func NewUnarchiveHabitHandler(deps Dependencies) *UnarchiveHabitHandler {
	return &UnarchiveHabitHandler{handler: newHandler(deps)}
}

func (h *UnarchiveHabitHandler) Handle(ctx context.Context, cmd ArchiveHabitCommand) (*domain.Habit, error) {
	return h.transition(ctx, "unarchive_habit", cmd, (*domain.Habit).Unarchive)
}

type habitTransition func(h *domain.Habit, now time.Time, today domain.Date) (domain.LogEntry, error)

func (h handler) transition(ctx context.Context, command string, cmd ArchiveHabitCommand, apply habitTransition) (*domain.Habit, error) {
	return h.execute(ctx, command, cmd.OwnerID, func(txCtx context.Context) (*domain.Habit, error) {
		habit, err := h.load(txCtx, cmd.HabitID, cmd.OwnerID, false)
		if err != nil {
			return nil, err
		}

		now, today := h.now()
		entry, err := apply(habit, now, today)
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
