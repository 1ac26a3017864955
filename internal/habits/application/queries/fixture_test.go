package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/domain"
	"github.com/habitrack/habitrack/internal/habits/infrastructure/persistence"
	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
)

var (
	// A Saturday.
	testNow   = time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	testToday = domain.NewDate(2026, time.January, 10)
)

type world struct {
	habits *persistence.MemoryHabitRepository
	logs   *persistence.MemoryLogStore
	clock  *sharedDomain.FixedClock
	cache  *fakeCache
}

func newWorld() *world {
	habits := persistence.NewMemoryHabitRepository()
	return &world{
		habits: habits,
		logs:   persistence.NewMemoryLogStore(habits),
		clock:  sharedDomain.NewFixedClock(testNow),
	}
}

func (w *world) deps() queries.Dependencies {
	deps := queries.Dependencies{Habits: w.habits, Logs: w.logs, Clock: w.clock}
	if w.cache != nil {
		deps.Cache = w.cache
	}
	return deps
}

// at returns 09:00 UTC on day plus offset.
func at(day domain.Date, offset time.Duration) time.Time {
	return day.Time().Add(9*time.Hour + offset)
}

func (w *world) habit(t *testing.T, ownerID uuid.UUID, details domain.HabitDetails, createdOn domain.Date) *domain.Habit {
	t.Helper()
	habit, created, err := domain.NewHabit(ownerID, details, at(createdOn, 0), createdOn)
	require.NoError(t, err)
	require.NoError(t, w.habits.Add(context.Background(), habit))
	require.NoError(t, w.logs.Append(context.Background(), &created))
	habit.ClearDomainEvents()
	return habit
}

func (w *world) daily(t *testing.T, ownerID uuid.UUID, title string) *domain.Habit {
	t.Helper()
	return w.habit(t, ownerID, domain.HabitDetails{Title: title, RepeatPeriod: domain.RepeatDaily, RepeatInterval: 1}, testToday.AddDays(-30))
}

// apply runs a transition and persists both the habit and its entry.
func (w *world) apply(t *testing.T, habit *domain.Habit, fn func(time.Time, domain.Date) (domain.LogEntry, error), day domain.Date, offset time.Duration) domain.LogEntry {
	t.Helper()
	entry, err := fn(at(day, offset), day)
	require.NoError(t, err)
	require.NoError(t, w.habits.Update(context.Background(), habit))
	require.NoError(t, w.logs.Append(context.Background(), &entry))
	habit.ClearDomainEvents()
	return entry
}

func (w *world) complete(t *testing.T, habit *domain.Habit, day domain.Date) domain.LogEntry {
	t.Helper()
	return w.apply(t, habit, habit.MarkDone, day, time.Minute)
}

func (w *world) undo(t *testing.T, habit *domain.Habit, day domain.Date) domain.LogEntry {
	t.Helper()
	return w.apply(t, habit, habit.Undo, day, 2*time.Minute)
}

type fakeCache struct {
	stats     map[uuid.UUID]domain.HabitStats
	summaries map[uuid.UUID]domain.TodaySummary
	hits      int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		stats:     make(map[uuid.UUID]domain.HabitStats),
		summaries: make(map[uuid.UUID]domain.TodaySummary),
	}
}

func (c *fakeCache) HabitStats(_ context.Context, habitID uuid.UUID, _ domain.Date) (domain.HabitStats, bool) {
	stats, ok := c.stats[habitID]
	if ok {
		c.hits++
	}
	return stats, ok
}

func (c *fakeCache) PutHabitStats(_ context.Context, _ domain.Date, stats domain.HabitStats) {
	c.stats[stats.HabitID] = stats
}

func (c *fakeCache) TodaySummary(_ context.Context, ownerID uuid.UUID, _ domain.Date) (domain.TodaySummary, bool) {
	summary, ok := c.summaries[ownerID]
	if ok {
		c.hits++
	}
	return summary, ok
}

func (c *fakeCache) PutTodaySummary(_ context.Context, ownerID uuid.UUID, summary domain.TodaySummary) {
	c.summaries[ownerID] = summary
}
