package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	internalApp "github.com/habitrack/habitrack/internal/app"
	habitCommands "github.com/habitrack/habitrack/internal/habits/application/commands"
	habitQueries "github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/pkg/observability"
)

// ErrNotInitialized is returned when a command runs without an App.
var ErrNotInitialized = errors.New("habitrack is not initialized")

// App holds the CLI application dependencies.
type App struct {
	// Habit Command Handlers
	CreateHabitHandler         *habitCommands.CreateHabitHandler
	MarkHabitDoneHandler       *habitCommands.MarkHabitDoneHandler
	UndoHabitCompletionHandler *habitCommands.UndoHabitCompletionHandler
	UpdateHabitHandler         *habitCommands.UpdateHabitHandler
	RemoveHabitHandler         *habitCommands.RemoveHabitHandler
	ArchiveHabitHandler        *habitCommands.ArchiveHabitHandler
	UnarchiveHabitHandler      *habitCommands.UnarchiveHabitHandler

	// Habit Query Handlers
	GetHabitHandler          *habitQueries.GetHabitHandler
	ListHabitsHandler        *habitQueries.ListHabitsHandler
	ListTodayHabitsHandler   *habitQueries.ListTodayHabitsHandler
	GetHabitHistoryHandler   *habitQueries.GetHabitHistoryHandler
	GetCompletionRateHandler *habitQueries.GetCompletionRateHandler
	GetStreaksHandler        *habitQueries.GetStreaksHandler
	GetHabitStatsHandler     *habitQueries.GetHabitStatsHandler
	GetTodaySummaryHandler   *habitQueries.GetTodaySummaryHandler
	GetUserSummaryHandler    *habitQueries.GetUserSummaryHandler

	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Current user (configured per environment, overridable with --user)
	CurrentUserID uuid.UUID
}

// NewApp copies the handlers out of a wired container.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateHabitHandler:         c.CreateHabitHandler,
		MarkHabitDoneHandler:       c.MarkHabitDoneHandler,
		UndoHabitCompletionHandler: c.UndoHabitCompletionHandler,
		UpdateHabitHandler:         c.UpdateHabitHandler,
		RemoveHabitHandler:         c.RemoveHabitHandler,
		ArchiveHabitHandler:        c.ArchiveHabitHandler,
		UnarchiveHabitHandler:      c.UnarchiveHabitHandler,
		GetHabitHandler:            c.GetHabitHandler,
		ListHabitsHandler:          c.ListHabitsHandler,
		ListTodayHabitsHandler:     c.ListTodayHabitsHandler,
		GetHabitHistoryHandler:     c.GetHabitHistoryHandler,
		GetCompletionRateHandler:   c.GetCompletionRateHandler,
		GetStreaksHandler:          c.GetStreaksHandler,
		GetHabitStatsHandler:       c.GetHabitStatsHandler,
		GetTodaySummaryHandler:     c.GetTodaySummaryHandler,
		GetUserSummaryHandler:      c.GetUserSummaryHandler,
		Logger:                     c.Logger,
		Metrics:                    c.Metrics,
		Health:                     c.Health,
		CurrentUserID:              c.Owner,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// BootstrapOptions carries the root flags that shape the App.
type BootstrapOptions struct {
	ConfigPath string
	Verbose    bool
}

// Bootstrap builds the App after flags are parsed. The returned func
// releases whatever it opened.
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*App, func(), error)
