package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HabitFilter narrows FindByOwner. Deleted habits are never returned.
type HabitFilter struct {
	Priority        *Priority
	CategoryID      *uuid.UUID
	IncludeArchived bool
}

// Matches applies the filter to a single habit.
func (f HabitFilter) Matches(h *Habit) bool {
	if h.IsDeleted() {
		return false
	}
	if h.IsArchived() && !f.IncludeArchived {
		return false
	}
	if f.Priority != nil && h.Priority() != *f.Priority {
		return false
	}
	if f.CategoryID != nil && (h.CategoryID() == nil || *h.CategoryID() != *f.CategoryID) {
		return false
	}
	return true
}

// HabitStore persists habit aggregates. Lookups return (nil, nil) when absent.
type HabitStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Habit, error)
	// FindByTitle matches case-insensitively among the owner's non-deleted habits.
	FindByTitle(ctx context.Context, ownerID uuid.UUID, title string) (*Habit, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter HabitFilter) ([]*Habit, error)
	Add(ctx context.Context, habit *Habit) error
	Update(ctx context.Context, habit *Habit) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// LogStore is the append-only action log. Every query returns entries ordered
// by (Date, CreatedAt, Seq).
type LogStore interface {
	// Append stores the entry and assigns its Seq.
	Append(ctx context.Context, entry *LogEntry) error
	ByHabit(ctx context.Context, habitID uuid.UUID) ([]LogEntry, error)
	ByOwner(ctx context.Context, ownerID uuid.UUID) ([]LogEntry, error)
	ByDate(ctx context.Context, ownerID uuid.UUID, date Date) ([]LogEntry, error)
	ByDateRange(ctx context.Context, ownerID uuid.UUID, start, end Date) ([]LogEntry, error)
	ByActionType(ctx context.Context, ownerID uuid.UUID, action ActionType, date Date) ([]LogEntry, error)
	// LastForDay returns the effective entry for the habit on date, or nil.
	LastForDay(ctx context.Context, ownerID, habitID uuid.UUID, date Date) (*LogEntry, error)
}
