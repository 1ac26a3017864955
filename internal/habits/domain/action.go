package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidActionType signals a stored action that no longer decodes. It is
// treated as data corruption, not as a business-rule failure.
var ErrInvalidActionType = errors.New("invalid action type")

// ActionType is the kind of change a log entry records.
type ActionType string

const (
	ActionCreated    ActionType = "created"
	ActionCompleted  ActionType = "completed"
	ActionUndone     ActionType = "undone"
	ActionUpdated    ActionType = "updated"
	ActionRemoved    ActionType = "removed"
	ActionArchived   ActionType = "archived"
	ActionUnarchived ActionType = "unarchived"
)

// ActionTypes lists every action in declaration order.
var ActionTypes = []ActionType{
	ActionCreated,
	ActionCompleted,
	ActionUndone,
	ActionUpdated,
	ActionRemoved,
	ActionArchived,
	ActionUnarchived,
}

// ParseActionType decodes a stored or user-supplied action.
func ParseActionType(s string) (ActionType, error) {
	a := ActionType(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidActionType, s)
	}
	return a, nil
}

// IsValid checks if the action type is known.
func (a ActionType) IsValid() bool {
	switch a {
	case ActionCreated, ActionCompleted, ActionUndone, ActionUpdated,
		ActionRemoved, ActionArchived, ActionUnarchived:
		return true
	default:
		return false
	}
}

// Description is the history line shown for the action.
func (a ActionType) Description() string {
	switch a {
	case ActionCreated:
		return "Habit was created."
	case ActionCompleted:
		return "Habit was marked as completed."
	case ActionUndone:
		return "Habit was unmarked as completed."
	case ActionUpdated:
		return "Habit was updated."
	case ActionRemoved:
		return "Habit was deleted."
	case ActionArchived:
		return "Habit was archived."
	case ActionUnarchived:
		return "Habit was unarchived."
	default:
		return "Unknown action."
	}
}

func (a ActionType) String() string { return string(a) }
