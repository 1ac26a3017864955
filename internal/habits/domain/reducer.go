package domain

import (
	"slices"
	"time"
)

// Projection is the current state of a habit as implied by its log.
type Projection struct {
	IsCompleted     bool
	LastCompletedAt *time.Time
	IsDeleted       bool
	IsArchived      bool
}

// Step applies one entry. Created and Updated carry the state forward.
func (p Projection) Step(e LogEntry) Projection {
	switch e.Action {
	case ActionCompleted:
		at := e.CreatedAt
		p.IsCompleted = true
		p.LastCompletedAt = &at
	case ActionUndone:
		p.IsCompleted = false
		p.LastCompletedAt = nil
	case ActionRemoved:
		p.IsDeleted = true
	case ActionArchived:
		p.IsArchived = true
	case ActionUnarchived:
		p.IsArchived = false
	}
	return p
}

// Reduce folds a habit's log, in recording order, into its projection.
func Reduce(entries []LogEntry) Projection {
	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, compareRecorded)

	var p Projection
	for _, e := range ordered {
		p = p.Step(e)
	}
	return p
}

// Equal compares two projections by value.
func (p Projection) Equal(other Projection) bool {
	if p.IsCompleted != other.IsCompleted || p.IsDeleted != other.IsDeleted || p.IsArchived != other.IsArchived {
		return false
	}
	switch {
	case p.LastCompletedAt == nil && other.LastCompletedAt == nil:
		return true
	case p.LastCompletedAt == nil || other.LastCompletedAt == nil:
		return false
	default:
		return p.LastCompletedAt.Equal(*other.LastCompletedAt)
	}
}
