package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

var (
	ErrHabitTitleEmpty         = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong       = errors.New("habit title exceeds 100 characters")
	ErrHabitDescriptionTooLong = errors.New("habit description exceeds 500 characters")
	ErrHabitInvalidInterval    = errors.New("repeat interval must be positive")
	ErrHabitInvalidRepeatCount = errors.New("repeat count cannot be negative")
	ErrHabitInvalidDuration    = errors.New("duration cannot be negative")
	ErrHabitInvalidPriority    = errors.New("invalid habit priority")
	ErrHabitInvalidPeriod      = errors.New("invalid repeat period")
	ErrHabitDeleted            = errors.New("habit is deleted")
	ErrHabitNotCompleted       = errors.New("habit is not marked as completed")
	ErrHabitAlreadyArchived    = errors.New("habit is already archived")
	ErrHabitNotArchived        = errors.New("habit is not archived")
	ErrHabitDuplicateTitle     = errors.New("habit title already used by owner")
)

// Priority ranks habits for listing.
type Priority string

const (
	PriorityNone     Priority = "none"
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityVeryHigh Priority = "very-high"
)

// ParsePriority accepts the stored names; empty means none.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNone, nil
	}
	p := Priority(strings.ToLower(s))
	if p.Rank() < 0 {
		return "", ErrHabitInvalidPriority
	}
	return p, nil
}

// Rank orders priorities from none (0) to very-high (4). Unknown values return -1.
func (p Priority) Rank() int {
	switch p {
	case PriorityNone:
		return 0
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityVeryHigh:
		return 4
	default:
		return -1
	}
}

// RepeatPeriod is the unit a habit recurs on.
type RepeatPeriod string

const (
	RepeatNone    RepeatPeriod = ""
	RepeatDaily   RepeatPeriod = "daily"
	RepeatWeekly  RepeatPeriod = "weekly"
	RepeatMonthly RepeatPeriod = "monthly"
)

// ParseRepeatPeriod accepts daily, weekly, monthly, or empty/none.
func ParseRepeatPeriod(s string) (RepeatPeriod, error) {
	switch p := RepeatPeriod(strings.ToLower(s)); p {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return p, nil
	case "none":
		return RepeatNone, nil
	default:
		return "", ErrHabitInvalidPeriod
	}
}

// HabitDetails are the user-editable attributes of a habit.
type HabitDetails struct {
	Title          string
	Description    string
	CategoryID     *uuid.UUID
	Priority       Priority
	RepeatPeriod   RepeatPeriod
	RepeatInterval int // 0 when absent
	RepeatCount    int
	Duration       time.Duration // 0 when absent
}

// Normalize trims text and defaults the priority.
func (d HabitDetails) Normalize() HabitDetails {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Priority == "" {
		d.Priority = PriorityNone
	}
	return d
}

// Validate checks a normalized set of details.
func (d HabitDetails) Validate() error {
	if d.Title == "" {
		return ErrHabitTitleEmpty
	}
	if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		return ErrHabitTitleTooLong
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		return ErrHabitDescriptionTooLong
	}
	if d.Priority.Rank() < 0 {
		return ErrHabitInvalidPriority
	}
	if _, err := ParseRepeatPeriod(string(d.RepeatPeriod)); err != nil {
		return err
	}
	if d.RepeatInterval < 0 {
		return ErrHabitInvalidInterval
	}
	if d.RepeatCount < 0 {
		return ErrHabitInvalidRepeatCount
	}
	if d.Duration < 0 {
		return ErrHabitInvalidDuration
	}
	return nil
}

// Habit is the mutable projection of a habit's log.
type Habit struct {
	sharedDomain.BaseAggregateRoot
	ownerID    uuid.UUID
	details    HabitDetails
	createdOn  Date
	projection Projection
}

// NewHabit creates a habit and records its Created entry.
func NewHabit(ownerID uuid.UUID, details HabitDetails, now time.Time, today Date) (*Habit, LogEntry, error) {
	details = details.Normalize()
	if err := details.Validate(); err != nil {
		return nil, LogEntry{}, err
	}

	habit := &Habit{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(sharedDomain.NewBaseEntity(now)),
		ownerID:           ownerID,
		details:           details,
		createdOn:         today,
	}
	entry := habit.record(ActionCreated, now, today)
	return habit, entry, nil
}

// RehydrateHabit recreates a habit from persisted state without recording anything.
func RehydrateHabit(
	id uuid.UUID,
	ownerID uuid.UUID,
	details HabitDetails,
	createdOn Date,
	projection Projection,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) *Habit {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Habit{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, version),
		ownerID:           ownerID,
		details:           details,
		createdOn:         createdOn,
		projection:        projection,
	}
}

func (h *Habit) OwnerID() uuid.UUID          { return h.ownerID }
func (h *Habit) Title() string               { return h.details.Title }
func (h *Habit) Description() string         { return h.details.Description }
func (h *Habit) CategoryID() *uuid.UUID      { return h.details.CategoryID }
func (h *Habit) Priority() Priority          { return h.details.Priority }
func (h *Habit) RepeatPeriod() RepeatPeriod  { return h.details.RepeatPeriod }
func (h *Habit) RepeatInterval() int         { return h.details.RepeatInterval }
func (h *Habit) RepeatCount() int            { return h.details.RepeatCount }
func (h *Habit) Duration() time.Duration     { return h.details.Duration }
func (h *Habit) Details() HabitDetails       { return h.details }
func (h *Habit) CreatedOn() Date             { return h.createdOn }
func (h *Habit) Projection() Projection      { return h.projection }
func (h *Habit) IsCompleted() bool           { return h.projection.IsCompleted }
func (h *Habit) LastCompletedAt() *time.Time { return h.projection.LastCompletedAt }
func (h *Habit) IsDeleted() bool             { return h.projection.IsDeleted }
func (h *Habit) IsArchived() bool            { return h.projection.IsArchived }

// IsOwnedBy reports whether userID owns the habit.
func (h *Habit) IsOwnedBy(userID uuid.UUID) bool {
	return h.ownerID == userID
}

// IsActive reports whether the habit shows up in day-to-day views.
func (h *Habit) IsActive() bool {
	return !h.projection.IsDeleted && !h.projection.IsArchived
}

// HasTitle compares titles case-insensitively.
func (h *Habit) HasTitle(title string) bool {
	return TitleKey(h.details.Title) == TitleKey(title)
}

// TitleKey is the case-folded form of a title. Two titles collide for one
// owner exactly when their keys are equal.
func TitleKey(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// MarkDone records a completion for today. Same-day idempotency is checked
// against the log by the caller.
func (h *Habit) MarkDone(now time.Time, today Date) (LogEntry, error) {
	if h.projection.IsDeleted {
		return LogEntry{}, ErrHabitDeleted
	}
	return h.record(ActionCompleted, now, today), nil
}

// Undo clears the cached completion.
func (h *Habit) Undo(now time.Time, today Date) (LogEntry, error) {
	if h.projection.IsDeleted {
		return LogEntry{}, ErrHabitDeleted
	}
	if !h.projection.IsCompleted {
		return LogEntry{}, ErrHabitNotCompleted
	}
	return h.record(ActionUndone, now, today), nil
}

// Update replaces the editable details.
func (h *Habit) Update(details HabitDetails, now time.Time, today Date) (LogEntry, error) {
	if h.projection.IsDeleted {
		return LogEntry{}, ErrHabitDeleted
	}
	details = details.Normalize()
	if err := details.Validate(); err != nil {
		return LogEntry{}, err
	}
	h.details = details
	return h.record(ActionUpdated, now, today), nil
}

// Remove soft-deletes the habit. The second return is false when it was
// already deleted and nothing was recorded.
func (h *Habit) Remove(now time.Time, today Date) (LogEntry, bool) {
	if h.projection.IsDeleted {
		return LogEntry{}, false
	}
	return h.record(ActionRemoved, now, today), true
}

// Archive hides the habit from day-to-day views.
func (h *Habit) Archive(now time.Time, today Date) (LogEntry, error) {
	if h.projection.IsDeleted {
		return LogEntry{}, ErrHabitDeleted
	}
	if h.projection.IsArchived {
		return LogEntry{}, ErrHabitAlreadyArchived
	}
	return h.record(ActionArchived, now, today), nil
}

// Unarchive restores an archived habit.
func (h *Habit) Unarchive(now time.Time, today Date) (LogEntry, error) {
	if h.projection.IsDeleted {
		return LogEntry{}, ErrHabitDeleted
	}
	if !h.projection.IsArchived {
		return LogEntry{}, ErrHabitNotArchived
	}
	return h.record(ActionUnarchived, now, today), nil
}

// Apply folds entry into the cached projection through the same step the log
// reducer uses.
func (h *Habit) Apply(entry LogEntry) {
	h.projection = h.projection.Step(entry)
}

// record builds the entry for action and applies it.
func (h *Habit) record(action ActionType, now time.Time, today Date) LogEntry {
	entry := NewLogEntry(h.ID(), today, action, now)
	h.Apply(entry)
	h.Touch(now)
	h.IncrementVersion()
	h.AddDomainEvent(newHabitEvent(h, entry))
	return entry
}
