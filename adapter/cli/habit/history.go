package habit

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/domain"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

func newHistoryCmd() *cobra.Command {
	var (
		habit  string
		from   string
		to     string
		on     string
		action string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the habit log",
		Long: `Show recorded actions, newest first.

Examples:
  habitrack habit history
  habitrack habit history --habit <id>
  habitrack habit history --from 2024-03-01 --to 2024-03-31
  habitrack habit history --on 2024-03-15 --action completed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := queries.GetHabitHistoryQuery{}
			var err error
			if query.HabitID, err = cli.OptionalHabitID(habit); err != nil {
				return err
			}
			if on != "" {
				from, to = on, on
			}
			if query.Start, err = cli.OptionalDate("from", from); err != nil {
				return err
			}
			if query.End, err = cli.OptionalDate("to", to); err != nil {
				return err
			}
			if action != "" {
				a, err := domain.ParseActionType(action)
				if err != nil {
					return sharedApplication.Failf(sharedApplication.CategoryValidation, "Unknown action %q", action)
				}
				query.Action = &a
			}

			return cli.Run(cmd, "habit.history", func(ctx context.Context, app *cli.App) error {
				query.OwnerID = app.CurrentUserID
				entries, err := app.GetHabitHistoryHandler.Handle(ctx, query)
				if err != nil {
					return err
				}

				t := cli.Table{
					Headers: []string{"DATE", "TIME", "HABIT", "ACTION"},
					Empty:   "No history.",
				}
				for _, e := range entries {
					t.Rows = append(t.Rows, []string{
						e.Date.String(),
						e.CreatedAt.Format("15:04:05"),
						e.HabitID.String(),
						e.Description,
					})
				}
				return cli.Render(cmd, entries, t)
			})
		},
	}

	cmd.Flags().StringVar(&habit, "habit", "", "only this habit id")
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&on, "on", "", "a single day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&action, "action", "", "only this action (created, completed, undone, updated, removed, archived, unarchived)")
	return cmd
}
