package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/outbox"
)

// EventPublisher receives a command's domain events once its unit of work has
// committed.
type EventPublisher interface {
	PublishDomainEvents(ctx context.Context, events []sharedDomain.DomainEvent) error
}

// Dependencies are the collaborators shared by every command handler.
// Publisher is optional. Clock, Location and Logger have defaults.
type Dependencies struct {
	Habits     domain.HabitStore
	Logs       domain.LogStore
	Outbox     outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork
	Clock      sharedDomain.Clock
	Location   *time.Location
	Publisher  EventPublisher
	Logger     *slog.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Clock == nil {
		d.Clock = sharedDomain.SystemClock{}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

type handler struct {
	Dependencies
	guard services.OwnershipGuard
}

func newHandler(deps Dependencies) handler {
	return handler{Dependencies: deps.withDefaults()}
}

// now returns the current instant and the calendar day it falls on.
func (h handler) now() (time.Time, domain.Date) {
	now := h.Clock.Now()
	return now, domain.DateOf(now, h.Location)
}

// load fetches the habit and runs the ownership check. Soft-deleted habits
// are NotFound unless allowDeleted is set.
func (h handler) load(ctx context.Context, habitID, ownerID uuid.UUID, allowDeleted bool) (*domain.Habit, error) {
	habit, err := h.Habits.FindByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if allowDeleted {
		return habit, h.guard.Authorize(habit, ownerID)
	}
	return habit, h.guard.AuthorizeLive(habit, ownerID)
}

// record appends the entry and queues the habit's events in the outbox. The
// habit row must already be written.
func (h handler) record(ctx context.Context, habit *domain.Habit, entry domain.LogEntry, ownerID uuid.UUID) error {
	if err := h.Logs.Append(ctx, &entry); err != nil {
		return err
	}

	events := habit.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, ownerID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return h.Outbox.SaveBatch(ctx, msgs)
}

// execute runs fn as one unit of work. Errors become failures. On success the
// habit's events are handed to the publisher.
func (h handler) execute(
	ctx context.Context,
	command string,
	ownerID uuid.UUID,
	fn func(txCtx context.Context) (*domain.Habit, error),
) (*domain.Habit, error) {
	habit, err := sharedApplication.InUnitOfWork(ctx, h.UnitOfWork, fn)
	if err != nil {
		err = services.ToFailure(err)
		if sharedApplication.CategoryOf(err) == sharedApplication.CategoryPersistence {
			h.Logger.WarnContext(ctx, "command failed",
				"command", command,
				"user_id", ownerID,
				"error", err,
			)
		}
		return nil, err
	}

	if habit != nil {
		events := habit.DomainEvents()
		habit.ClearDomainEvents()
		h.publish(ctx, command, events)
		h.Logger.DebugContext(ctx, "command succeeded",
			"command", command,
			"user_id", ownerID,
			"habit_id", habit.ID(),
		)
	}
	return habit, nil
}

func (h handler) publish(ctx context.Context, command string, events []sharedDomain.DomainEvent) {
	if h.Publisher == nil || len(events) == 0 {
		return
	}
	if err := h.Publisher.PublishDomainEvents(ctx, events); err != nil {
		h.Logger.WarnContext(ctx, "publishing events failed",
			"command", command,
			"events", len(events),
			"error", err,
		)
	}
}
