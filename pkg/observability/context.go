package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// CorrelationIDKey is the log attribute carrying the correlation ID.
const CorrelationIDKey = "correlation_id"

// WithCorrelationID tags ctx with id, generating one when id is empty. Every
// log line and event recorded under ctx carries it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID, or "" when ctx has none.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
