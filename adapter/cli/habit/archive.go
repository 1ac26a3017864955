package habit

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/internal/habits/application/commands"
)

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive [habit-id]",
		Short: "Hide a habit from daily views",
		Long: `Archive a habit. It leaves the today list and summary but keeps its
history and statistics. Restore it with "habit unarchive".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			return cli.Run(cmd, "habit.archive", func(ctx context.Context, app *cli.App) error {
				habit, err := app.ArchiveHabitHandler.Handle(ctx, commands.ArchiveHabitCommand{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}
				return renderResult(cmd, "archived", habit)
			})
		},
	}
}

func newUnarchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive [habit-id]",
		Short: "Restore an archived habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			return cli.Run(cmd, "habit.unarchive", func(ctx context.Context, app *cli.App) error {
				habit, err := app.UnarchiveHabitHandler.Handle(ctx, commands.ArchiveHabitCommand{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}
				return renderResult(cmd, "active", habit)
			})
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [habit-id]",
		Short:   "Delete a habit",
		Long:    `Delete a habit. Its log is kept, and its title can be reused.`,
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			return cli.Run(cmd, "habit.remove", func(ctx context.Context, app *cli.App) error {
				res, err := app.RemoveHabitHandler.Handle(ctx, commands.RemoveHabitCommand{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}

				status := "removed"
				if !res.Removed {
					status = "already removed"
				}
				out := struct {
					ID      string `json:"id" yaml:"id"`
					Removed bool   `json:"removed" yaml:"removed"`
				}{res.HabitID.String(), res.Removed}
				return cli.Render(cmd, out, cli.Table{
					Headers: []string{"ID", "STATUS"},
					Rows:    [][]string{{res.HabitID.String(), status}},
				})
			})
		},
	}
}
