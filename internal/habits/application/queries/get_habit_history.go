package queries

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

// HistoryEntryDTO is one log line as shown to the user.
type HistoryEntryDTO struct {
	ID          uuid.UUID         `json:"id" yaml:"id"`
	HabitID     uuid.UUID         `json:"habit_id" yaml:"habit_id"`
	Date        domain.Date       `json:"date" yaml:"date"`
	Action      domain.ActionType `json:"action" yaml:"action"`
	Description string            `json:"description" yaml:"description"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
}

// GetHabitHistoryQuery selects log entries. Every filter is optional.
type GetHabitHistoryQuery struct {
	OwnerID uuid.UUID
	HabitID *uuid.UUID
	Start   *domain.Date
	End     *domain.Date
	Action  *domain.ActionType
}

// GetHabitHistoryHandler handles GetHabitHistoryQuery.
type GetHabitHistoryHandler struct {
	reader
}

// NewGetHabitHistoryHandler creates a new GetHabitHistoryHandler.
func NewGetHabitHistoryHandler(deps Dependencies) *GetHabitHistoryHandler {
	return &GetHabitHistoryHandler{reader: newReader(deps)}
}

// Handle returns matching entries, newest first.
func (h *GetHabitHistoryHandler) Handle(ctx context.Context, query GetHabitHistoryQuery) ([]HistoryEntryDTO, error) {
	if query.Start != nil && query.End != nil && query.Start.After(*query.End) {
		return nil, services.ToFailure(domain.ErrInvalidDateRange)
	}

	entries, err := h.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntryDTO, 0, len(entries))
	for _, e := range entries {
		if !query.matches(e) {
			continue
		}
		history = append(history, HistoryEntryDTO{
			ID:          e.ID,
			HabitID:     e.HabitID,
			Date:        e.Date,
			Action:      e.Action,
			Description: e.Description(),
			CreatedAt:   e.CreatedAt,
		})
	}
	slices.Reverse(history)
	return history, nil
}

// fetch picks the narrowest store query for the filters. Results may still
// need matches applied.
func (h *GetHabitHistoryHandler) fetch(ctx context.Context, query GetHabitHistoryQuery) ([]domain.LogEntry, error) {
	if query.HabitID != nil {
		return h.entries(ctx, query.OwnerID, query.HabitID)
	}

	var (
		entries []domain.LogEntry
		err     error
	)
	switch {
	case query.singleDay() && query.Action != nil:
		entries, err = h.Logs.ByActionType(ctx, query.OwnerID, *query.Action, *query.Start)
	case query.singleDay():
		entries, err = h.Logs.ByDate(ctx, query.OwnerID, *query.Start)
	case query.Start != nil && query.End != nil:
		entries, err = h.Logs.ByDateRange(ctx, query.OwnerID, *query.Start, *query.End)
	default:
		entries, err = h.Logs.ByOwner(ctx, query.OwnerID)
	}
	if err != nil {
		return nil, services.ToFailure(err)
	}
	return entries, nil
}

func (q GetHabitHistoryQuery) singleDay() bool {
	return q.Start != nil && q.End != nil && q.Start.Equal(*q.End)
}

func (q GetHabitHistoryQuery) matches(e domain.LogEntry) bool {
	if q.Start != nil && e.Date.Before(*q.Start) {
		return false
	}
	if q.End != nil && e.Date.After(*q.End) {
		return false
	}
	return q.Action == nil || e.Action == *q.Action
}
