package application

import (
	"context"

	"github.com/google/uuid"
)

// UserContext resolves the acting user.
type UserContext interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, error)
}

// StaticUserContext always returns a configured user. Used by the CLI.
type StaticUserContext struct {
	UserID uuid.UUID
}

func (s StaticUserContext) CurrentUserID(context.Context) (uuid.UUID, error) {
	if s.UserID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return s.UserID, nil
}

type userIDKey struct{}

// WithUserID attaches an authenticated user to ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// ContextUserContext reads the user placed on the context by WithUserID.
type ContextUserContext struct{}

func (ContextUserContext) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}
