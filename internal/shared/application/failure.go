package application

import (
	"errors"
	"fmt"
)

// Category classifies an expected business-rule rejection.
type Category string

const (
	CategoryValidation   Category = "validation"
	CategoryNotFound     Category = "not_found"
	CategoryUnauthorized Category = "unauthorized"
	CategoryConflict     Category = "conflict"
	CategoryPersistence  Category = "persistence"
)

// ErrUnauthenticated is returned when no caller identity is available.
// It is exceptional and never wrapped in a Failure.
var ErrUnauthenticated = errors.New("unauthenticated")

// Failure is an expected rejection returned by command and query handlers.
// Callers branch on Category instead of matching messages.
type Failure struct {
	Category Category
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is lets errors.Is match a Failure against a bare category sentinel.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Message == "" && t.Category == f.Category
}

// Sentinels for errors.Is(err, application.ErrConflict) style checks.
var (
	ErrValidation   = &Failure{Category: CategoryValidation}
	ErrNotFound     = &Failure{Category: CategoryNotFound}
	ErrUnauthorized = &Failure{Category: CategoryUnauthorized}
	ErrConflict     = &Failure{Category: CategoryConflict}
	ErrPersistence  = &Failure{Category: CategoryPersistence}
)

// Fail builds a failure carrying cause's message.
func Fail(category Category, cause error) *Failure {
	return &Failure{Category: category, Message: cause.Error(), Err: cause}
}

// Failf builds a failure with a formatted message and no underlying cause.
func Failf(category Category, format string, args ...any) *Failure {
	return &Failure{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a store error. Existing failures pass through untouched.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return err
	}
	if errors.Is(err, ErrUnauthenticated) {
		return err
	}
	return &Failure{Category: CategoryPersistence, Message: "persistence failure: " + err.Error(), Err: err}
}

// CategoryOf returns the failure category of err, or "" for exceptional errors.
func CategoryOf(err error) Category {
	var f *Failure
	if errors.As(err, &f) {
		return f.Category
	}
	return ""
}

// IsFailure reports whether err is an expected rejection.
func IsFailure(err error) bool {
	return CategoryOf(err) != ""
}
