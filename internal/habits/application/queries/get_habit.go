package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

// HabitDTO is the read model of a habit.
type HabitDTO struct {
	ID               uuid.UUID   `json:"id" yaml:"id"`
	Title            string      `json:"title" yaml:"title"`
	Description      string      `json:"description,omitempty" yaml:"description,omitempty"`
	CategoryID       *uuid.UUID  `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	Priority         string      `json:"priority" yaml:"priority"`
	RepeatPeriod     string      `json:"repeat_period" yaml:"repeat_period"`
	RepeatInterval   int         `json:"repeat_interval,omitempty" yaml:"repeat_interval,omitempty"`
	RepeatCount      int         `json:"repeat_count,omitempty" yaml:"repeat_count,omitempty"`
	DurationMinutes  int         `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
	CreatedOn        domain.Date `json:"created_on" yaml:"created_on"`
	IsCompleted      bool        `json:"is_completed" yaml:"is_completed"`
	IsCompletedToday bool        `json:"is_completed_today" yaml:"is_completed_today"`
	IsDueToday       bool        `json:"is_due_today" yaml:"is_due_today"`
	IsArchived       bool        `json:"is_archived" yaml:"is_archived"`
	LastCompletedAt  *time.Time  `json:"last_completed_at,omitempty" yaml:"last_completed_at,omitempty"`
	Version          int         `json:"version" yaml:"version"`
	CreatedAt        time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" yaml:"updated_at"`
}

// NewHabitDTO builds the read model. todays holds the owner's entries for
// today and decides IsCompletedToday.
func NewHabitDTO(h *domain.Habit, todays []domain.LogEntry, today domain.Date) HabitDTO {
	dto := HabitDTO{
		ID:              h.ID(),
		Title:           h.Title(),
		Description:     h.Description(),
		CategoryID:      h.CategoryID(),
		Priority:        string(h.Priority()),
		RepeatPeriod:    string(h.RepeatPeriod()),
		RepeatInterval:  h.RepeatInterval(),
		RepeatCount:     h.RepeatCount(),
		DurationMinutes: int(h.Duration() / time.Minute),
		CreatedOn:       h.CreatedOn(),
		IsCompleted:     h.IsCompleted(),
		IsDueToday:      h.IsActive() && domain.AppliesToDate(h, today),
		IsArchived:      h.IsArchived(),
		LastCompletedAt: h.LastCompletedAt(),
		Version:         h.Version(),
		CreatedAt:       h.CreatedAt(),
		UpdatedAt:       h.UpdatedAt(),
	}
	if e, ok := domain.EffectiveStatusOn(todays, h.ID(), today); ok {
		dto.IsCompletedToday = e.Action == domain.ActionCompleted
	}
	return dto
}

// GetHabitQuery asks for one habit owned by OwnerID.
type GetHabitQuery struct {
	OwnerID uuid.UUID
	HabitID uuid.UUID
}

// GetHabitHandler handles GetHabitQuery.
type GetHabitHandler struct {
	reader
}

// NewGetHabitHandler creates a new GetHabitHandler.
func NewGetHabitHandler(deps Dependencies) *GetHabitHandler {
	return &GetHabitHandler{reader: newReader(deps)}
}

// Handle fails with NotFound for missing or deleted habits and with
// Unauthorized for someone else's.
func (h *GetHabitHandler) Handle(ctx context.Context, query GetHabitQuery) (*HabitDTO, error) {
	habit, err := h.load(ctx, query.HabitID, query.OwnerID)
	if err != nil {
		return nil, err
	}

	today := h.today()
	todays, err := h.Logs.ByDate(ctx, query.OwnerID, today)
	if err != nil {
		return nil, services.ToFailure(err)
	}
	dto := NewHabitDTO(habit, todays, today)
	return &dto, nil
}
