package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

func TestInMemoryRepository_RollbackDiscardsMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	uow := persistence.NewMemoryUnitOfWork(repo)

	kept, err := NewMessage(newTestEvent(uuid.New(), "Read"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, kept))

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	dropped, err := NewMessage(newTestEvent(uuid.New(), "Walk"))
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, []*Message{dropped}))
	require.NoError(t, repo.MarkPublished(txCtx, kept.ID))
	require.NoError(t, uow.Rollback(txCtx))

	all := repo.All()
	require.Len(t, all, 1)
	assert.Equal(t, kept.EventID, all[0].EventID)
	assert.Nil(t, all[0].PublishedAt)
}

func TestInMemoryRepository_DeleteOld(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	now := testOccurredAt
	repo.now = func() time.Time { return now }

	msg, err := NewMessage(newTestEvent(uuid.New(), "Read"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkPublished(ctx, msg.ID))

	deleted, err := repo.DeleteOld(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	now = now.AddDate(0, 0, 8)
	deleted, err = repo.DeleteOld(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Empty(t, repo.All())
}

func TestInMemoryRepository_GetFailedHonorsMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	msg, err := NewMessage(newTestEvent(uuid.New(), "Read"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, msg))
	past := time.Now().Add(-time.Minute)
	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "boom", past))
	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "boom", past))

	failed, err := repo.GetFailed(ctx, 3, 10)
	require.NoError(t, err)
	assert.Len(t, failed, 1)

	failed, err = repo.GetFailed(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, failed)
}
