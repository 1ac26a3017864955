package services

import (
	"errors"

	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

var failureMessages = []struct {
	err      error
	category sharedApplication.Category
	message  string
}{
	{domain.ErrHabitTitleEmpty, sharedApplication.CategoryValidation, "Title can not be empty"},
	{domain.ErrHabitTitleTooLong, sharedApplication.CategoryValidation, "Title can not exceed 100 characters"},
	{domain.ErrHabitDescriptionTooLong, sharedApplication.CategoryValidation, "Description can not exceed 500 characters"},
	{domain.ErrHabitInvalidInterval, sharedApplication.CategoryValidation, "Repeat interval must be greater than zero"},
	{domain.ErrHabitInvalidRepeatCount, sharedApplication.CategoryValidation, "Repeat count can not be negative"},
	{domain.ErrHabitInvalidDuration, sharedApplication.CategoryValidation, "Duration can not be negative"},
	{domain.ErrHabitInvalidPriority, sharedApplication.CategoryValidation, "Priority must be one of none, low, medium, high, very-high"},
	{domain.ErrHabitInvalidPeriod, sharedApplication.CategoryValidation, "Repeat period must be one of none, daily, weekly, monthly"},
	{domain.ErrInvalidDateRange, sharedApplication.CategoryValidation, "Start date cannot be greater than end date."},
	{domain.ErrHabitDuplicateTitle, sharedApplication.CategoryConflict, "Already exists a habit with the same title"},
	{domain.ErrHabitNotCompleted, sharedApplication.CategoryConflict, "Habit is not marked as completed"},
	{domain.ErrHabitAlreadyArchived, sharedApplication.CategoryConflict, "Habit is already archived"},
	{domain.ErrHabitNotArchived, sharedApplication.CategoryConflict, "Habit is not archived"},
	{domain.ErrHabitDeleted, sharedApplication.CategoryNotFound, MsgHabitNotFound},
}

// ToFailure maps domain rejections to their categorized failure. Corrupted
// actions and missing identities stay exceptional. Anything else is a
// persistence failure.
func ToFailure(err error) error {
	if err == nil || sharedApplication.IsFailure(err) {
		return err
	}
	if errors.Is(err, domain.ErrInvalidActionType) || errors.Is(err, sharedApplication.ErrUnauthenticated) {
		return err
	}
	for _, m := range failureMessages {
		if errors.Is(err, m.err) {
			return &sharedApplication.Failure{Category: m.category, Message: m.message, Err: err}
		}
	}
	return sharedApplication.Persistence(err)
}
