package domain

import (
	"github.com/google/uuid"
	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
)

const (
	aggregateType = "Habit"

	// RoutingKeyPrefix prefixes every habit event routing key.
	RoutingKeyPrefix = "habits.habit."
)

// RoutingKeyFor returns the routing key published for an action.
func RoutingKeyFor(action ActionType) string {
	return RoutingKeyPrefix + string(action)
}

// HabitEvent is emitted once per log entry.
type HabitEvent struct {
	sharedDomain.BaseEvent
	HabitID   uuid.UUID  `json:"habit_id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	EntryID   uuid.UUID  `json:"entry_id"`
	Action    ActionType `json:"action"`
	Date      Date       `json:"date"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
}

func newHabitEvent(h *Habit, entry LogEntry) *HabitEvent {
	return &HabitEvent{
		BaseEvent: sharedDomain.NewBaseEvent(h.ID(), aggregateType, RoutingKeyFor(entry.Action), entry.CreatedAt),
		HabitID:   h.ID(),
		OwnerID:   h.OwnerID(),
		EntryID:   entry.ID,
		Action:    entry.Action,
		Date:      entry.Date,
		Title:     h.Title(),
		Completed: h.IsCompleted(),
	}
}
