package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
)

// StatsCache holds derived statistics between reads. A miss, including one
// caused by an unavailable backend, is reported as ok == false.
type StatsCache interface {
	HabitStats(ctx context.Context, habitID uuid.UUID, today domain.Date) (domain.HabitStats, bool)
	PutHabitStats(ctx context.Context, today domain.Date, stats domain.HabitStats)
	TodaySummary(ctx context.Context, ownerID uuid.UUID, today domain.Date) (domain.TodaySummary, bool)
	PutTodaySummary(ctx context.Context, ownerID uuid.UUID, summary domain.TodaySummary)
}

// Dependencies are the collaborators shared by the read handlers. Cache is
// optional. Clock and Location have defaults.
type Dependencies struct {
	Habits   domain.HabitStore
	Logs     domain.LogStore
	Cache    StatsCache
	Clock    sharedDomain.Clock
	Location *time.Location
}

type reader struct {
	Dependencies
	guard services.OwnershipGuard
}

func newReader(deps Dependencies) reader {
	if deps.Clock == nil {
		deps.Clock = sharedDomain.SystemClock{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return reader{Dependencies: deps}
}

func (r reader) today() domain.Date {
	return domain.Today(r.Clock, r.Location)
}

// load fetches a live habit owned by ownerID.
func (r reader) load(ctx context.Context, habitID, ownerID uuid.UUID) (*domain.Habit, error) {
	habit, err := r.Habits.FindByID(ctx, habitID)
	if err != nil {
		return nil, services.ToFailure(err)
	}
	if err := r.guard.AuthorizeLive(habit, ownerID); err != nil {
		return nil, err
	}
	return habit, nil
}

// entries returns one habit's log when habitID is set and the owner's whole
// log otherwise.
func (r reader) entries(ctx context.Context, ownerID uuid.UUID, habitID *uuid.UUID) ([]domain.LogEntry, error) {
	var (
		entries []domain.LogEntry
		err     error
	)
	if habitID != nil {
		if _, err := r.load(ctx, *habitID, ownerID); err != nil {
			return nil, err
		}
		entries, err = r.Logs.ByHabit(ctx, *habitID)
	} else {
		entries, err = r.Logs.ByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, services.ToFailure(err)
	}
	return entries, nil
}
