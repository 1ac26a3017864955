package app

import (
	"context"
	"errors"
	"fmt"

	habitQueries "github.com/habitrack/habitrack/internal/habits/application/queries"
)

// WarmResult counts what a warm-up pass computed.
type WarmResult struct {
	Habits int
	Failed int
}

// WarmStats computes today's statistics for every habit of the configured
// owner, archived ones included, so the first reads of the day hit the cache.
// Without a cache it only checks that the statistics can be built.
func (c *Container) WarmStats(ctx context.Context) (WarmResult, error) {
	habits, err := c.ListHabitsHandler.Handle(ctx, habitQueries.ListHabitsQuery{
		OwnerID:         c.Owner,
		IncludeArchived: true,
	})
	if err != nil {
		return WarmResult{}, err
	}

	var (
		result WarmResult
		errs   []error
	)
	for _, h := range habits {
		_, err := c.GetHabitStatsHandler.Handle(ctx, habitQueries.GetHabitStatsQuery{
			OwnerID: c.Owner,
			HabitID: h.ID,
		})
		if err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("habit %s: %w", h.ID, err))
			continue
		}
		result.Habits++
	}

	if _, err := c.GetTodaySummaryHandler.Handle(ctx, habitQueries.GetTodaySummaryQuery{OwnerID: c.Owner}); err != nil {
		errs = append(errs, fmt.Errorf("today summary: %w", err))
	}
	return result, errors.Join(errs...)
}
