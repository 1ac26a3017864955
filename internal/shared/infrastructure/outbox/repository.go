package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. Save and SaveBatch join the unit of
// work carried by ctx.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns pending messages whose retry time has come,
	// oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// GetFailed returns retrying messages still under maxRetries.
	GetFailed(ctx context.Context, maxRetries, limit int) ([]*Message, error)

	// DeleteOld removes messages published more than olderThanDays ago.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
