package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
)

// ErrHabitNotFound is returned by Update when the row to change is missing.
var ErrHabitNotFound = errors.New("habit not found")

// habitRecord is the storage shape of a habit shared by every backend.
type habitRecord struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Title           string
	Description     string
	CategoryID      *uuid.UUID
	Priority        string
	RepeatPeriod    string
	RepeatInterval  int
	RepeatCount     int
	Duration        time.Duration
	CreatedOn       domain.Date
	IsCompleted     bool
	LastCompletedAt *time.Time
	IsDeleted       bool
	IsArchived      bool
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r habitRecord) toDomain() (*domain.Habit, error) {
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", r.ID, err)
	}
	period, err := domain.ParseRepeatPeriod(r.RepeatPeriod)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", r.ID, err)
	}

	details := domain.HabitDetails{
		Title:          r.Title,
		Description:    r.Description,
		CategoryID:     r.CategoryID,
		Priority:       priority,
		RepeatPeriod:   period,
		RepeatInterval: r.RepeatInterval,
		RepeatCount:    r.RepeatCount,
		Duration:       r.Duration,
	}
	projection := domain.Projection{
		IsCompleted:     r.IsCompleted,
		LastCompletedAt: r.LastCompletedAt,
		IsDeleted:       r.IsDeleted,
		IsArchived:      r.IsArchived,
	}
	return domain.RehydrateHabit(
		r.ID, r.OwnerID, details, r.CreatedOn, projection,
		r.CreatedAt.UTC(), r.UpdatedAt.UTC(), r.Version,
	), nil
}

// translateWriteError maps the per-owner title index to the domain error.
func translateWriteError(err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", domain.ErrHabitDuplicateTitle, err)
	}
	return err
}

// entryRecord is the storage shape of a log entry.
type entryRecord struct {
	Seq       int64
	ID        uuid.UUID
	HabitID   uuid.UUID
	Date      domain.Date
	Action    string
	CreatedAt time.Time
}

// toDomain decodes the action. An unknown action is corruption and surfaces
// as domain.ErrInvalidActionType.
func (r entryRecord) toDomain() (domain.LogEntry, error) {
	action, err := domain.ParseActionType(r.Action)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("log entry %s: %w", r.ID, err)
	}
	return domain.LogEntry{
		ID:        r.ID,
		HabitID:   r.HabitID,
		Date:      r.Date,
		Action:    action,
		CreatedAt: r.CreatedAt.UTC(),
		Seq:       r.Seq,
	}, nil
}
