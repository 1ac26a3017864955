package commands

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/outbox"
)

var (
	testNow   = time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	testToday = domain.NewDate(2026, 1, 10)
)

// mockHabitStore is a mock implementation of domain.HabitStore.
type mockHabitStore struct {
	mock.Mock
}

func (m *mockHabitStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *mockHabitStore) FindByTitle(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Habit, error) {
	args := m.Called(ctx, ownerID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *mockHabitStore) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter domain.HabitFilter) ([]*domain.Habit, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *mockHabitStore) Add(ctx context.Context, habit *domain.Habit) error {
	args := m.Called(ctx, habit)
	return args.Error(0)
}

func (m *mockHabitStore) Update(ctx context.Context, habit *domain.Habit) error {
	args := m.Called(ctx, habit)
	return args.Error(0)
}

func (m *mockHabitStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// mockLogStore is a mock implementation of domain.LogStore.
type mockLogStore struct {
	mock.Mock
}

func (m *mockLogStore) Append(ctx context.Context, entry *domain.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLogStore) entries(args mock.Arguments) ([]domain.LogEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LogEntry), args.Error(1)
}

func (m *mockLogStore) ByHabit(ctx context.Context, habitID uuid.UUID) ([]domain.LogEntry, error) {
	return m.entries(m.Called(ctx, habitID))
}

func (m *mockLogStore) ByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.LogEntry, error) {
	return m.entries(m.Called(ctx, ownerID))
}

func (m *mockLogStore) ByDate(ctx context.Context, ownerID uuid.UUID, date domain.Date) ([]domain.LogEntry, error) {
	return m.entries(m.Called(ctx, ownerID, date))
}

func (m *mockLogStore) ByDateRange(ctx context.Context, ownerID uuid.UUID, start, end domain.Date) ([]domain.LogEntry, error) {
	return m.entries(m.Called(ctx, ownerID, start, end))
}

func (m *mockLogStore) ByActionType(ctx context.Context, ownerID uuid.UUID, action domain.ActionType, date domain.Date) ([]domain.LogEntry, error) {
	return m.entries(m.Called(ctx, ownerID, action, date))
}

func (m *mockLogStore) LastForDay(ctx context.Context, ownerID, habitID uuid.UUID, date domain.Date) (*domain.LogEntry, error) {
	args := m.Called(ctx, ownerID, habitID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LogEntry), args.Error(1)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetFailed(ctx context.Context, maxRetries, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, maxRetries, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockPublisher is a mock implementation of EventPublisher.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishDomainEvents(ctx context.Context, events []sharedDomain.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type fixture struct {
	habits    *mockHabitStore
	logs      *mockLogStore
	outbox    *mockOutboxRepo
	uow       *mockUnitOfWork
	publisher *mockPublisher
	clock     *sharedDomain.FixedClock
}

func newFixture() *fixture {
	return &fixture{
		habits:    new(mockHabitStore),
		logs:      new(mockLogStore),
		outbox:    new(mockOutboxRepo),
		uow:       new(mockUnitOfWork),
		publisher: new(mockPublisher),
		clock:     sharedDomain.NewFixedClock(testNow.Add(time.Hour)),
	}
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		Habits:     f.habits,
		Logs:       f.logs,
		Outbox:     f.outbox,
		UnitOfWork: f.uow,
		Clock:      f.clock,
		Location:   time.UTC,
		Publisher:  f.publisher,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// expectCommit sets up a unit of work that commits.
func (f *fixture) expectCommit(ctx context.Context) {
	f.uow.On("Begin", ctx).Return(ctx, nil)
	f.uow.On("Commit", ctx).Return(nil)
}

// expectRollback sets up a unit of work that rolls back.
func (f *fixture) expectRollback(ctx context.Context) {
	f.uow.On("Begin", ctx).Return(ctx, nil)
	f.uow.On("Rollback", ctx).Return(nil)
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.habits.AssertExpectations(t)
	f.logs.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func existingHabit(ownerID uuid.UUID, title string) *domain.Habit {
	habit, _, err := domain.NewHabit(ownerID, domain.HabitDetails{Title: title}, testNow, testToday)
	if err != nil {
		panic(err)
	}
	habit.ClearDomainEvents()
	return habit
}
