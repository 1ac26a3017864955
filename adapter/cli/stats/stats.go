package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

// NewCommand builds the stats command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stats",
		Short:   "Show habit statistics",
		Long:    `Completion rates, streaks and summaries derived from the habit log.`,
		Aliases: []string{"insights"},
	}
	cmd.AddCommand(
		newRateCmd(),
		newStreaksCmd(),
		newHabitCmd(),
		newTodayCmd(),
		newSummaryCmd(),
	)
	return cmd
}

type rangeFlags struct {
	from string
	to   string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

func newRateCmd() *cobra.Command {
	var (
		span  rangeFlags
		habit string
	)

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Completion rate over a date range",
		Long: `Percentage of days in the range with a completion. Without --habit
every habit counts.

Examples:
  habitrack stats rate --from 2024-03-01 --to 2024-03-31
  habitrack stats rate --habit <id> --from 2024-03-01 --to 2024-03-07`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			habitID, err := cli.OptionalHabitID(habit)
			if err != nil {
				return err
			}
			start, err := cli.ParseDate("from", span.from)
			if err != nil {
				return err
			}
			end, err := cli.ParseDate("to", span.to)
			if err != nil {
				return err
			}

			return cli.Run(cmd, "stats.rate", func(ctx context.Context, app *cli.App) error {
				rate, err := app.GetCompletionRateHandler.Handle(ctx, queries.GetCompletionRateQuery{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
					Start:   start,
					End:     end,
				})
				if err != nil {
					return err
				}
				return cli.Render(cmd, rate, cli.KeyValues(
					"From", rate.Start.String(),
					"To", rate.End.String(),
					"Completion rate", percent(rate.Rate),
				))
			})
		},
	}

	span.register(cmd)
	cmd.Flags().StringVar(&habit, "habit", "", "only this habit id")
	return cmd
}

func newStreaksCmd() *cobra.Command {
	var habit string

	cmd := &cobra.Command{
		Use:   "streaks",
		Short: "Current and longest streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			habitID, err := cli.OptionalHabitID(habit)
			if err != nil {
				return err
			}
			return cli.Run(cmd, "stats.streaks", func(ctx context.Context, app *cli.App) error {
				streaks, err := app.GetStreaksHandler.Handle(ctx, queries.GetStreaksQuery{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}
				return cli.Render(cmd, streaks, cli.KeyValues(
					"Current streak", days(streaks.Current),
					"Longest streak", days(streaks.Longest),
				))
			})
		},
	}

	cmd.Flags().StringVar(&habit, "habit", "", "only this habit id")
	return cmd
}

func newHabitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "habit [habit-id]",
		Short: "Statistics for one habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			return cli.Run(cmd, "stats.habit", func(ctx context.Context, app *cli.App) error {
				stats, err := app.GetHabitStatsHandler.Handle(ctx, queries.GetHabitStatsQuery{
					OwnerID: app.CurrentUserID,
					HabitID: habitID,
				})
				if err != nil {
					return err
				}

				since := "never completed"
				if stats.DaysSinceLastCompletion >= 0 {
					since = days(stats.DaysSinceLastCompletion)
				}
				return cli.Render(cmd, stats, cli.KeyValues(
					"Habit", stats.HabitID.String(),
					"Total completions", strconv.Itoa(stats.TotalCompletions),
					"Current streak", days(stats.CurrentStreak),
					"Longest streak", days(stats.LongestStreak),
					"Last 7 days", percent(stats.Last7DaysRate),
					"Tracked for", days(stats.TotalTrackedDays),
					"Since last completion", since,
				))
			})
		},
	}
}

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Today's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.Run(cmd, "stats.today", func(ctx context.Context, app *cli.App) error {
				summary, err := app.GetTodaySummaryHandler.Handle(ctx, queries.GetTodaySummaryQuery{
					OwnerID: app.CurrentUserID,
				})
				if err != nil {
					return err
				}

				first := "-"
				if summary.FirstCompletionAt != nil {
					first = summary.FirstCompletionAt.Format("15:04")
				}
				return cli.Render(cmd, summary, cli.KeyValues(
					"Date", summary.Date.String(),
					"Done", fmt.Sprintf("%d of %d", summary.CompletedHabitsToday, summary.TotalHabitsToday),
					"Completion rate", percent(summary.CompletionRateToday),
					"Current streak", days(summary.CurrentStreak),
					"First completion", first,
				))
			})
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var span rangeFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Activity over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := cli.ParseDate("from", span.from)
			if err != nil {
				return err
			}
			end, err := cli.ParseDate("to", span.to)
			if err != nil {
				return err
			}

			return cli.Run(cmd, "stats.summary", func(ctx context.Context, app *cli.App) error {
				summary, err := app.GetUserSummaryHandler.Handle(ctx, queries.GetUserSummaryQuery{
					OwnerID: app.CurrentUserID,
					Start:   start,
					End:     end,
				})
				if err != nil {
					return err
				}

				pairs := []string{
					"From", summary.Start.String(),
					"To", summary.End.String(),
					"Total completions", strconv.Itoa(summary.TotalCompletions),
					"Longest streak", days(summary.LongestStreak),
					"Weekly average", fmt.Sprintf("%.1f", summary.WeeklyAverage),
					"Completion rate", percent(summary.CompletionRate),
				}
				for _, a := range domain.ActionTypes {
					if n := summary.ActionCounts[a]; n > 0 {
						pairs = append(pairs, "  "+a.String(), strconv.Itoa(n))
					}
				}
				return cli.Render(cmd, summary, cli.KeyValues(pairs...))
			})
		},
	}

	span.register(cmd)
	return cmd
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return strconv.Itoa(n) + " days"
}
