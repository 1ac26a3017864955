package habit

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/internal/habits/application/commands"
)

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [habit-id]",
		Short: "Mark a habit done for today",
		Long: `Record today's completion. A habit can be completed once per day;
use "habit undo" to take it back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			return cli.Run(cmd, "habit.done", func(ctx context.Context, app *cli.App) error {
				habit, err := app.MarkHabitDoneHandler.Handle(ctx, commands.MarkHabitDoneCommand{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}
				return renderResult(cmd, "done", habit)
			})
		},
	}
}

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo [habit-id]",
		Short: "Take back a habit's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			return cli.Run(cmd, "habit.undo", func(ctx context.Context, app *cli.App) error {
				habit, err := app.UndoHabitCompletionHandler.Handle(ctx, commands.UndoHabitCompletionCommand{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}
				return renderResult(cmd, "undone", habit)
			})
		},
	}
}
