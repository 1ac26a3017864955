package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

// CreateHabitCommand contains the data needed to create a habit. Empty
// Priority and RepeatPeriod mean none. A nil RepeatInterval means absent.
type CreateHabitCommand struct {
	OwnerID        uuid.UUID
	Title          string
	Description    string
	CategoryID     *uuid.UUID
	Priority       string
	RepeatPeriod   string
	RepeatInterval *int
	RepeatCount    int
	Duration       time.Duration
}

func (cmd CreateHabitCommand) details() (domain.HabitDetails, error) {
	priority, err := domain.ParsePriority(cmd.Priority)
	if err != nil {
		return domain.HabitDetails{}, err
	}
	period, err := domain.ParseRepeatPeriod(cmd.RepeatPeriod)
	if err != nil {
		return domain.HabitDetails{}, err
	}
	interval, err := repeatInterval(cmd.RepeatInterval)
	if err != nil {
		return domain.HabitDetails{}, err
	}

	details := domain.HabitDetails{
		Title:          cmd.Title,
		Description:    cmd.Description,
		CategoryID:     cmd.CategoryID,
		Priority:       priority,
		RepeatPeriod:   period,
		RepeatInterval: interval,
		RepeatCount:    cmd.RepeatCount,
		Duration:       cmd.Duration,
	}.Normalize()
	return details, details.Validate()
}

// repeatInterval rejects an explicit interval below one.
func repeatInterval(v *int) (int, error) {
	if v == nil {
		return 0, nil
	}
	if *v <= 0 {
		return 0, domain.ErrHabitInvalidInterval
	}
	return *v, nil
}

// CreateHabitHandler handles the CreateHabitCommand.
type CreateHabitHandler struct {
	handler
}

// NewCreateHabitHandler creates a new CreateHabitHandler.
func NewCreateHabitHandler(deps Dependencies) *CreateHabitHandler {
	return &CreateHabitHandler{handler: newHandler(deps)}
}

// Handle validates the details, rejects a title the owner already uses, and
// stores the habit with its Created entry.
func (h *CreateHabitHandler) Handle(ctx context.Context, cmd CreateHabitCommand) (*domain.Habit, error) {
	details, err := cmd.details()
	if err != nil {
		return nil, services.ToFailure(err)
	}

	return h.execute(ctx, "create_habit", cmd.OwnerID, func(txCtx context.Context) (*domain.Habit, error) {
		existing, err := h.Habits.FindByTitle(txCtx, cmd.OwnerID, details.Title)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrHabitDuplicateTitle
		}

		now, today := h.now()
		habit, entry, err := domain.NewHabit(cmd.OwnerID, details, now, today)
		if err != nil {
			return nil, err
		}
		if err := h.Habits.Add(txCtx, habit); err != nil {
			return nil, err
		}
		if err := h.record(txCtx, habit, entry, cmd.OwnerID); err != nil {
			return nil, err
		}
		return habit, nil
	})
}
