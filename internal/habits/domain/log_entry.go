package domain

import (
	"bytes"
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one immutable record in a habit's action log. It refers to its
// habit by ID only; owners are resolved by the store.
type LogEntry struct {
	ID        uuid.UUID
	HabitID   uuid.UUID
	Date      Date
	Action    ActionType
	CreatedAt time.Time
	// Seq is the store-assigned insertion order. Zero until appended.
	Seq int64
}

// NewLogEntry creates an entry with a time-ordered identifier.
func NewLogEntry(habitID uuid.UUID, date Date, action ActionType, createdAt time.Time) LogEntry {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return LogEntry{
		ID:        id,
		HabitID:   habitID,
		Date:      date,
		Action:    action,
		CreatedAt: createdAt.UTC(),
	}
}

// Description returns the history line for the entry.
func (e LogEntry) Description() string {
	return e.Action.Description()
}

// compareRecorded orders entries by when they were recorded: CreatedAt, then
// insertion sequence, then identity.
func compareRecorded(a, b LogEntry) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// CompareEntries is the canonical store ordering: Date, then recording order.
func CompareEntries(a, b LogEntry) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return compareRecorded(a, b)
}

// SortEntries sorts entries in place by CompareEntries.
func SortEntries(entries []LogEntry) {
	slices.SortStableFunc(entries, CompareEntries)
}

// DayKey identifies one habit on one calendar day.
type DayKey struct {
	HabitID uuid.UUID
	Date    Date
}

// EffectiveStatuses resolves the last-written entry for every (habit, day).
// Input order does not matter.
func EffectiveStatuses(entries []LogEntry) map[DayKey]LogEntry {
	effective := make(map[DayKey]LogEntry, len(entries))
	for _, e := range entries {
		key := DayKey{HabitID: e.HabitID, Date: e.Date}
		current, ok := effective[key]
		if !ok || compareRecorded(e, current) > 0 {
			effective[key] = e
		}
	}
	return effective
}

// EffectiveStatusOn returns the effective entry for one habit on one day.
func EffectiveStatusOn(entries []LogEntry, habitID uuid.UUID, date Date) (LogEntry, bool) {
	var (
		latest LogEntry
		found  bool
	)
	for _, e := range entries {
		if e.HabitID != habitID || !e.Date.Equal(date) {
			continue
		}
		if !found || compareRecorded(e, latest) > 0 {
			latest, found = e, true
		}
	}
	return latest, found
}

// FilterRange keeps entries whose Date lies in [start, end].
func FilterRange(entries []LogEntry, start, end Date) []LogEntry {
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Between(start, end) {
			out = append(out, e)
		}
	}
	return out
}

// FilterHabit keeps entries for one habit.
func FilterHabit(entries []LogEntry, habitID uuid.UUID) []LogEntry {
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.HabitID == habitID {
			out = append(out, e)
		}
	}
	return out
}
