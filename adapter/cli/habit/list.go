package habit

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/application/services"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

func newListCmd() *cobra.Command {
	var (
		priority string
		category string
		archived bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Long: `List your habits, highest priority first.

Examples:
  habitrack habit list
  habitrack habit list --priority high
  habitrack habit list --archived -o json`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := queries.ListHabitsQuery{IncludeArchived: archived}
			if priority != "" {
				p, err := domain.ParsePriority(priority)
				if err != nil {
					return services.ToFailure(err)
				}
				query.Priority = &p
			}
			categoryID, err := parseCategory(category)
			if err != nil {
				return err
			}
			query.CategoryID = categoryID

			return cli.Run(cmd, "habit.list", func(ctx context.Context, app *cli.App) error {
				query.OwnerID = app.CurrentUserID
				habits, err := app.ListHabitsHandler.Handle(ctx, query)
				if err != nil {
					return err
				}
				return cli.Render(cmd, habits, habitsTable(habits,
					`No habits found. Create one with: habitrack habit create "Habit name"`))
			})
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only this priority")
	cmd.Flags().StringVar(&category, "category", "", "only this category id")
	cmd.Flags().BoolVarP(&archived, "archived", "a", false, "include archived habits")
	return cmd
}

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List habits due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.Run(cmd, "habit.today", func(ctx context.Context, app *cli.App) error {
				habits, err := app.ListTodayHabitsHandler.Handle(ctx, queries.ListTodayHabitsQuery{
					OwnerID: app.CurrentUserID,
				})
				if err != nil {
					return err
				}
				return cli.Render(cmd, habits, habitsTable(habits, "Nothing due today."))
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [habit-id]",
		Short: "Show one habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			return cli.Run(cmd, "habit.show", func(ctx context.Context, app *cli.App) error {
				habit, err := app.GetHabitHandler.Handle(ctx, queries.GetHabitQuery{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}
				return cli.Render(cmd, habit, habitDetail(*habit))
			})
		},
	}
}
