package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

// GetCompletionRateQuery covers one habit when HabitID is set and all of the
// owner's habits otherwise.
type GetCompletionRateQuery struct {
	OwnerID uuid.UUID
	HabitID *uuid.UUID
	Start   domain.Date
	End     domain.Date
}

// CompletionRateDTO is a percentage in [0, 100].
type CompletionRateDTO struct {
	HabitID *uuid.UUID  `json:"habit_id,omitempty" yaml:"habit_id,omitempty"`
	Start   domain.Date `json:"start" yaml:"start"`
	End     domain.Date `json:"end" yaml:"end"`
	Rate    float64     `json:"rate" yaml:"rate"`
}

// GetCompletionRateHandler handles GetCompletionRateQuery.
type GetCompletionRateHandler struct {
	reader
}

// NewGetCompletionRateHandler creates a new GetCompletionRateHandler.
func NewGetCompletionRateHandler(deps Dependencies) *GetCompletionRateHandler {
	return &GetCompletionRateHandler{reader: newReader(deps)}
}

func (h *GetCompletionRateHandler) Handle(ctx context.Context, query GetCompletionRateQuery) (*CompletionRateDTO, error) {
	if query.Start.After(query.End) {
		return nil, services.ToFailure(domain.ErrInvalidDateRange)
	}

	var (
		entries []domain.LogEntry
		err     error
	)
	if query.HabitID != nil {
		entries, err = h.entries(ctx, query.OwnerID, query.HabitID)
	} else {
		entries, err = h.Logs.ByDateRange(ctx, query.OwnerID, query.Start, query.End)
		err = services.ToFailure(err)
	}
	if err != nil {
		return nil, err
	}

	rate, err := domain.CompletionRate(entries, query.Start, query.End)
	if err != nil {
		return nil, services.ToFailure(err)
	}
	return &CompletionRateDTO{HabitID: query.HabitID, Start: query.Start, End: query.End, Rate: rate}, nil
}

// GetStreaksQuery covers one habit when HabitID is set and all of the
// owner's habits otherwise.
type GetStreaksQuery struct {
	OwnerID uuid.UUID
	HabitID *uuid.UUID
}

// StreaksDTO holds the current and longest runs of completed days.
type StreaksDTO struct {
	HabitID *uuid.UUID `json:"habit_id,omitempty" yaml:"habit_id,omitempty"`
	Current int        `json:"current_streak" yaml:"current_streak"`
	Longest int        `json:"longest_streak" yaml:"longest_streak"`
}

// GetStreaksHandler handles GetStreaksQuery.
type GetStreaksHandler struct {
	reader
}

// NewGetStreaksHandler creates a new GetStreaksHandler.
func NewGetStreaksHandler(deps Dependencies) *GetStreaksHandler {
	return &GetStreaksHandler{reader: newReader(deps)}
}

func (h *GetStreaksHandler) Handle(ctx context.Context, query GetStreaksQuery) (*StreaksDTO, error) {
	entries, err := h.entries(ctx, query.OwnerID, query.HabitID)
	if err != nil {
		return nil, err
	}
	return &StreaksDTO{
		HabitID: query.HabitID,
		Current: domain.CurrentStreak(entries, h.today()),
		Longest: domain.LongestStreak(entries),
	}, nil
}

// GetHabitStatsQuery asks for the statistics panel of one habit.
type GetHabitStatsQuery struct {
	OwnerID uuid.UUID
	HabitID uuid.UUID
}

// GetHabitStatsHandler handles GetHabitStatsQuery.
type GetHabitStatsHandler struct {
	reader
}

// NewGetHabitStatsHandler creates a new GetHabitStatsHandler.
func NewGetHabitStatsHandler(deps Dependencies) *GetHabitStatsHandler {
	return &GetHabitStatsHandler{reader: newReader(deps)}
}

// Handle checks ownership before consulting the cache, so a cached panel is
// never served to another user.
func (h *GetHabitStatsHandler) Handle(ctx context.Context, query GetHabitStatsQuery) (*domain.HabitStats, error) {
	habit, err := h.load(ctx, query.HabitID, query.OwnerID)
	if err != nil {
		return nil, err
	}

	today := h.today()
	if h.Cache != nil {
		if stats, ok := h.Cache.HabitStats(ctx, habit.ID(), today); ok {
			return &stats, nil
		}
	}

	entries, err := h.Logs.ByHabit(ctx, habit.ID())
	if err != nil {
		return nil, services.ToFailure(err)
	}
	stats := domain.ComputeHabitStats(habit, entries, today)
	if h.Cache != nil {
		h.Cache.PutHabitStats(ctx, today, stats)
	}
	return &stats, nil
}

// GetTodaySummaryQuery asks for the owner's progress today.
type GetTodaySummaryQuery struct {
	OwnerID uuid.UUID
}

// GetTodaySummaryHandler handles GetTodaySummaryQuery.
type GetTodaySummaryHandler struct {
	reader
}

// NewGetTodaySummaryHandler creates a new GetTodaySummaryHandler.
func NewGetTodaySummaryHandler(deps Dependencies) *GetTodaySummaryHandler {
	return &GetTodaySummaryHandler{reader: newReader(deps)}
}

func (h *GetTodaySummaryHandler) Handle(ctx context.Context, query GetTodaySummaryQuery) (*domain.TodaySummary, error) {
	today := h.today()
	if h.Cache != nil {
		if summary, ok := h.Cache.TodaySummary(ctx, query.OwnerID, today); ok {
			return &summary, nil
		}
	}

	habits, err := h.Habits.FindByOwner(ctx, query.OwnerID, domain.HabitFilter{})
	if err != nil {
		return nil, services.ToFailure(err)
	}
	entries, err := h.Logs.ByOwner(ctx, query.OwnerID)
	if err != nil {
		return nil, services.ToFailure(err)
	}

	summary := domain.ComputeTodaySummary(habits, entries, today)
	if h.Cache != nil {
		h.Cache.PutTodaySummary(ctx, query.OwnerID, summary)
	}
	return &summary, nil
}

// GetUserSummaryQuery summarizes the owner's activity over [Start, End].
type GetUserSummaryQuery struct {
	OwnerID uuid.UUID
	Start   domain.Date
	End     domain.Date
}

// GetUserSummaryHandler handles GetUserSummaryQuery.
type GetUserSummaryHandler struct {
	reader
}

// NewGetUserSummaryHandler creates a new GetUserSummaryHandler.
func NewGetUserSummaryHandler(deps Dependencies) *GetUserSummaryHandler {
	return &GetUserSummaryHandler{reader: newReader(deps)}
}

func (h *GetUserSummaryHandler) Handle(ctx context.Context, query GetUserSummaryQuery) (*domain.UserSummary, error) {
	if query.Start.After(query.End) {
		return nil, services.ToFailure(domain.ErrInvalidDateRange)
	}

	entries, err := h.Logs.ByDateRange(ctx, query.OwnerID, query.Start, query.End)
	if err != nil {
		return nil, services.ToFailure(err)
	}
	summary, err := domain.ComputeUserSummary(entries, query.Start, query.End)
	if err != nil {
		return nil, services.ToFailure(err)
	}
	return &summary, nil
}
