package persistence_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/habits/infrastructure/persistence"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/database/sqlite"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/habitrack/habitrack/internal/shared/infrastructure/persistence"
)

var (
	testNow   = time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	testToday = domain.NewDate(2026, 1, 10)
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(ctx, conn.DB()))
	return conn.DB()
}

func newHabit(t *testing.T, ownerID uuid.UUID, title string) (*domain.Habit, domain.LogEntry) {
	t.Helper()
	habit, entry, err := domain.NewHabit(ownerID, domain.HabitDetails{
		Title:          title,
		Description:    "every morning",
		Priority:       domain.PriorityHigh,
		RepeatPeriod:   domain.RepeatDaily,
		RepeatInterval: 2,
		Duration:       15 * time.Minute,
	}, testNow, testToday)
	require.NoError(t, err)
	return habit, entry
}

func TestSQLiteHabitRepository_AddAndFindByID(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))

	categoryID := uuid.New()
	habit, _, err := domain.NewHabit(uuid.New(), domain.HabitDetails{
		Title:        "Read",
		CategoryID:   &categoryID,
		RepeatPeriod: domain.RepeatWeekly,
		RepeatCount:  3,
	}, testNow, testToday)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, habit))

	found, err := repo.FindByID(ctx, habit.ID())
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, habit.ID(), found.ID())
	assert.Equal(t, habit.OwnerID(), found.OwnerID())
	assert.Equal(t, habit.Details(), found.Details())
	assert.Equal(t, testToday, found.CreatedOn())
	assert.Equal(t, habit.Version(), found.Version())
	assert.True(t, habit.CreatedAt().Equal(found.CreatedAt()))
	assert.Empty(t, found.DomainEvents())
}

func TestSQLiteHabitRepository_FindByIDMissing(t *testing.T) {
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLiteHabitRepository_UpdatePersistsProjection(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))

	habit, _ := newHabit(t, uuid.New(), "Meditate")
	require.NoError(t, repo.Add(ctx, habit))

	doneAt := testNow.Add(time.Hour)
	_, err := habit.MarkDone(doneAt, testToday)
	require.NoError(t, err)
	_, err = habit.Archive(doneAt.Add(time.Minute), testToday)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, habit))

	found, err := repo.FindByID(ctx, habit.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsCompleted())
	assert.True(t, found.IsArchived())
	require.NotNil(t, found.LastCompletedAt())
	assert.True(t, doneAt.Equal(*found.LastCompletedAt()))
	assert.Equal(t, habit.Version(), found.Version())
}

func TestSQLiteHabitRepository_UpdateMissing(t *testing.T) {
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))
	habit, _ := newHabit(t, uuid.New(), "Ghost")

	err := repo.Update(context.Background(), habit)
	assert.ErrorIs(t, err, persistence.ErrHabitNotFound)
}

func TestSQLiteHabitRepository_FindByTitle(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))
	ownerID := uuid.New()

	habit, _ := newHabit(t, ownerID, "Drink Water")
	require.NoError(t, repo.Add(ctx, habit))

	found, err := repo.FindByTitle(ctx, ownerID, "drink water")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, habit.ID(), found.ID())

	other, err := repo.FindByTitle(ctx, uuid.New(), "Drink Water")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, repo.SoftDelete(ctx, habit.ID(), testNow.Add(time.Hour)))
	gone, err := repo.FindByTitle(ctx, ownerID, "Drink Water")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSQLiteHabitRepository_DuplicateTitle(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))
	ownerID := uuid.New()

	first, _ := newHabit(t, ownerID, "Stretch")
	require.NoError(t, repo.Add(ctx, first))

	second, _ := newHabit(t, ownerID, "STRETCH")
	err := repo.Add(ctx, second)
	assert.ErrorIs(t, err, domain.ErrHabitDuplicateTitle)
}

func TestSQLiteHabitRepository_NonASCIITitleCase(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))
	ownerID := uuid.New()

	eclair, _ := newHabit(t, ownerID, "Éclair")
	require.NoError(t, repo.Add(ctx, eclair))

	found, err := repo.FindByTitle(ctx, ownerID, "éclair")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, eclair.ID(), found.ID())

	dup, _ := newHabit(t, ownerID, "éCLAIR")
	assert.ErrorIs(t, repo.Add(ctx, dup), domain.ErrHabitDuplicateTitle)

	strasse, _ := newHabit(t, ownerID, "Straße")
	require.NoError(t, repo.Add(ctx, strasse))
	renamed, _ := newHabit(t, ownerID, "Walk")
	require.NoError(t, repo.Add(ctx, renamed))
	_, err = renamed.Update(domain.HabitDetails{Title: "STRASSE", RepeatPeriod: domain.RepeatDaily, RepeatInterval: 1}, testNow, testToday)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Update(ctx, renamed), domain.ErrHabitDuplicateTitle)
}

func TestSQLiteHabitRepository_FindByOwner(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))
	ownerID := uuid.New()

	active, _ := newHabit(t, ownerID, "Active")
	archived, _ := newHabit(t, ownerID, "Archived")
	deleted, _ := newHabit(t, ownerID, "Deleted")
	foreign, _ := newHabit(t, uuid.New(), "Foreign")
	for _, h := range []*domain.Habit{active, archived, deleted, foreign} {
		require.NoError(t, repo.Add(ctx, h))
	}
	_, err := archived.Archive(testNow.Add(time.Minute), testToday)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, archived))
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID(), testNow.Add(time.Minute)))

	habits, err := repo.FindByOwner(ctx, ownerID, domain.HabitFilter{})
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, active.ID(), habits[0].ID())

	habits, err = repo.FindByOwner(ctx, ownerID, domain.HabitFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, habits, 2)

	low := domain.PriorityLow
	habits, err = repo.FindByOwner(ctx, ownerID, domain.HabitFilter{Priority: &low})
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestSQLiteHabitRepository_SoftDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLiteHabitRepository(setupSQLite(t))

	habit, _ := newHabit(t, uuid.New(), "Journal")
	require.NoError(t, repo.Add(ctx, habit))

	require.NoError(t, repo.SoftDelete(ctx, habit.ID(), testNow.Add(time.Hour)))
	require.NoError(t, repo.SoftDelete(ctx, habit.ID(), testNow.Add(2*time.Hour)))

	found, err := repo.FindByID(ctx, habit.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsDeleted())
	assert.Equal(t, habit.Version()+1, found.Version())
	assert.True(t, testNow.Add(time.Hour).Equal(found.UpdatedAt()))
}

func TestSQLiteStores_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	habits := persistence.NewSQLiteHabitRepository(db)
	logs := persistence.NewSQLiteLogStore(db)
	uow := sharedPersistence.NewSQLiteUnitOfWork(db)

	habit, entry := newHabit(t, uuid.New(), "Run")

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, habits.Add(txCtx, habit))
	require.NoError(t, logs.Append(txCtx, &entry))
	require.NoError(t, uow.Rollback(txCtx))

	found, err := habits.FindByID(ctx, habit.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	entries, err := logs.ByHabit(ctx, habit.ID())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
