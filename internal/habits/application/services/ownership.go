package services

import (
	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

const (
	MsgHabitNotFound = "Habit not found"
	MsgNotAuthorized = "Not authorized"
)

// OwnershipGuard keeps "does not exist" and "is not yours" apart. Every
// command and query calls it before touching or returning a habit.
type OwnershipGuard struct{}

// Authorize fails with NotFound when habit is nil and with Unauthorized when
// callerID does not own it. Deleted habits pass.
func (OwnershipGuard) Authorize(habit *domain.Habit, callerID uuid.UUID) error {
	if habit == nil {
		return sharedApplication.Failf(sharedApplication.CategoryNotFound, MsgHabitNotFound)
	}
	if !habit.IsOwnedBy(callerID) {
		return sharedApplication.Failf(sharedApplication.CategoryUnauthorized, MsgNotAuthorized)
	}
	return nil
}

// AuthorizeLive is Authorize with soft-deleted habits reported as NotFound.
func (g OwnershipGuard) AuthorizeLive(habit *domain.Habit, callerID uuid.UUID) error {
	if habit != nil && habit.IsDeleted() {
		return sharedApplication.Failf(sharedApplication.CategoryNotFound, MsgHabitNotFound)
	}
	return g.Authorize(habit, callerID)
}
