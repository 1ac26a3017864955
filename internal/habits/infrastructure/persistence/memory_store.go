package persistence

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/domain"
)

// MemoryHabitRepository keeps habits in process memory. Stored values are
// copies, so callers never share aggregates with the store.
type MemoryHabitRepository struct {
	mu     sync.RWMutex
	habits map[uuid.UUID]habitRecord
}

// NewMemoryHabitRepository creates an empty in-memory habit repository.
func NewMemoryHabitRepository() *MemoryHabitRepository {
	return &MemoryHabitRepository{habits: make(map[uuid.UUID]habitRecord)}
}

// Snapshot captures the current habits for MemoryUnitOfWork.
func (r *MemoryHabitRepository) Snapshot() func() {
	r.mu.RLock()
	saved := maps.Clone(r.habits)
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		r.habits = saved
		r.mu.Unlock()
	}
}

func (r *MemoryHabitRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.habits[id]
	if !ok {
		return nil, nil
	}
	return rec.toDomain()
}

func (r *MemoryHabitRepository) FindByTitle(_ context.Context, ownerID uuid.UUID, title string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.TitleKey(title)
	for _, rec := range r.habits {
		if rec.OwnerID == ownerID && !rec.IsDeleted && domain.TitleKey(rec.Title) == key {
			return rec.toDomain()
		}
	}
	return nil, nil
}

func (r *MemoryHabitRepository) FindByOwner(_ context.Context, ownerID uuid.UUID, filter domain.HabitFilter) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, rec := range r.habits {
		if rec.OwnerID != ownerID {
			continue
		}
		habit, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		if filter.Matches(habit) {
			habits = append(habits, habit)
		}
	}
	slices.SortFunc(habits, func(a, b *domain.Habit) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return habits, nil
}

func (r *MemoryHabitRepository) Add(_ context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.habits[habit.ID()]; exists {
		return fmt.Errorf("habit %s already stored", habit.ID())
	}
	rec := recordOf(habit)
	if err := r.checkTitle(rec); err != nil {
		return err
	}
	r.habits[rec.ID] = rec
	return nil
}

func (r *MemoryHabitRepository) Update(_ context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.habits[habit.ID()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrHabitNotFound, habit.ID())
	}
	rec := recordOf(habit)
	rec.OwnerID = current.OwnerID
	rec.CreatedOn = current.CreatedOn
	rec.CreatedAt = current.CreatedAt
	if err := r.checkTitle(rec); err != nil {
		return err
	}
	r.habits[rec.ID] = rec
	return nil
}

func (r *MemoryHabitRepository) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.habits[id]
	if !ok || rec.IsDeleted {
		return nil
	}
	rec.IsDeleted = true
	rec.Version++
	rec.UpdatedAt = at.UTC()
	r.habits[id] = rec
	return nil
}

// checkTitle mirrors the per-owner unique title index of the SQL backends.
func (r *MemoryHabitRepository) checkTitle(rec habitRecord) error {
	if rec.IsDeleted {
		return nil
	}
	for _, other := range r.habits {
		if other.ID == rec.ID || other.OwnerID != rec.OwnerID || other.IsDeleted {
			continue
		}
		if domain.TitleKey(other.Title) == domain.TitleKey(rec.Title) {
			return domain.ErrHabitDuplicateTitle
		}
	}
	return nil
}

func (r *MemoryHabitRepository) ownerOf(habitID uuid.UUID) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.habits[habitID]
	return rec.OwnerID, ok
}

func recordOf(h *domain.Habit) habitRecord {
	rec := habitRecord{
		ID:             h.ID(),
		OwnerID:        h.OwnerID(),
		Title:          h.Title(),
		Description:    h.Description(),
		Priority:       string(h.Priority()),
		RepeatPeriod:   string(h.RepeatPeriod()),
		RepeatInterval: h.RepeatInterval(),
		RepeatCount:    h.RepeatCount(),
		Duration:       h.Duration(),
		CreatedOn:      h.CreatedOn(),
		IsCompleted:    h.IsCompleted(),
		IsDeleted:      h.IsDeleted(),
		IsArchived:     h.IsArchived(),
		Version:        h.Version(),
		CreatedAt:      h.CreatedAt(),
		UpdatedAt:      h.UpdatedAt(),
	}
	if id := h.CategoryID(); id != nil {
		cid := *id
		rec.CategoryID = &cid
	}
	if at := h.LastCompletedAt(); at != nil {
		t := *at
		rec.LastCompletedAt = &t
	}
	return rec
}

// MemoryLogStore keeps the action log in process memory. Owners are resolved
// through the habit repository.
type MemoryLogStore struct {
	mu      sync.RWMutex
	habits  *MemoryHabitRepository
	entries []domain.LogEntry
	seq     int64
}

// NewMemoryLogStore creates an empty log resolving owners through habits.
func NewMemoryLogStore(habits *MemoryHabitRepository) *MemoryLogStore {
	return &MemoryLogStore{habits: habits}
}

// Snapshot captures the log for MemoryUnitOfWork.
func (s *MemoryLogStore) Snapshot() func() {
	s.mu.RLock()
	saved := slices.Clone(s.entries)
	seq := s.seq
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.entries = saved
		s.seq = seq
		s.mu.Unlock()
	}
}

func (s *MemoryLogStore) Append(_ context.Context, entry *domain.LogEntry) error {
	if _, ok := s.habits.ownerOf(entry.HabitID); !ok {
		return fmt.Errorf("%w: %s", ErrHabitNotFound, entry.HabitID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == entry.ID {
			return fmt.Errorf("log entry %s already stored", entry.ID)
		}
	}
	s.seq++
	entry.Seq = s.seq
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MemoryLogStore) ByHabit(_ context.Context, habitID uuid.UUID) ([]domain.LogEntry, error) {
	return s.collect(func(e domain.LogEntry) bool {
		return e.HabitID == habitID
	}), nil
}

func (s *MemoryLogStore) ByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.LogEntry, error) {
	return s.collect(s.ownedBy(ownerID)), nil
}

func (s *MemoryLogStore) ByDate(_ context.Context, ownerID uuid.UUID, date domain.Date) ([]domain.LogEntry, error) {
	owned := s.ownedBy(ownerID)
	return s.collect(func(e domain.LogEntry) bool {
		return e.Date.Equal(date) && owned(e)
	}), nil
}

func (s *MemoryLogStore) ByDateRange(_ context.Context, ownerID uuid.UUID, start, end domain.Date) ([]domain.LogEntry, error) {
	owned := s.ownedBy(ownerID)
	return s.collect(func(e domain.LogEntry) bool {
		return e.Date.Between(start, end) && owned(e)
	}), nil
}

func (s *MemoryLogStore) ByActionType(_ context.Context, ownerID uuid.UUID, action domain.ActionType, date domain.Date) ([]domain.LogEntry, error) {
	owned := s.ownedBy(ownerID)
	return s.collect(func(e domain.LogEntry) bool {
		return e.Action == action && e.Date.Equal(date) && owned(e)
	}), nil
}

func (s *MemoryLogStore) LastForDay(_ context.Context, ownerID, habitID uuid.UUID, date domain.Date) (*domain.LogEntry, error) {
	if owner, ok := s.habits.ownerOf(habitID); !ok || owner != ownerID {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := domain.EffectiveStatusOn(s.entries, habitID, date)
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *MemoryLogStore) ownedBy(ownerID uuid.UUID) func(domain.LogEntry) bool {
	owners := make(map[uuid.UUID]bool)
	return func(e domain.LogEntry) bool {
		owned, seen := owners[e.HabitID]
		if !seen {
			owner, ok := s.habits.ownerOf(e.HabitID)
			owned = ok && owner == ownerID
			owners[e.HabitID] = owned
		}
		return owned
	}
}

func (s *MemoryLogStore) collect(keep func(domain.LogEntry) bool) []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.LogEntry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	domain.SortEntries(out)
	return out
}
