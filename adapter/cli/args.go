package cli

import (
	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

// ParseHabitID parses a habit id argument.
func ParseHabitID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, sharedApplication.Failf(sharedApplication.CategoryValidation, "Invalid habit id %q", s)
	}
	return id, nil
}

// OptionalHabitID parses s when set.
func OptionalHabitID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := ParseHabitID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseDate parses a YYYY-MM-DD flag value.
func ParseDate(flag, s string) (domain.Date, error) {
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, sharedApplication.Failf(sharedApplication.CategoryValidation, "Invalid --%s date %q, want YYYY-MM-DD", flag, s)
	}
	return d, nil
}

// OptionalDate parses s when set.
func OptionalDate(flag, s string) (*domain.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ParseDate(flag, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
