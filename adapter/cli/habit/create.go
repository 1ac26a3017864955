package habit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/internal/habits/application/commands"
	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
)

// detailFlags are the editable attributes shared by create and update.
type detailFlags struct {
	description string
	category    string
	priority    string
	repeat      string
	interval    int
	count       int
	duration    int
}

func (f *detailFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.description, "description", "d", "", "habit description")
	fs.StringVar(&f.category, "category", "", "category id")
	fs.StringVarP(&f.priority, "priority", "p", "", "priority (none, low, medium, high, very-high)")
	fs.StringVarP(&f.repeat, "repeat", "r", "", "repeat period (none, daily, weekly, monthly)")
	fs.IntVar(&f.interval, "interval", 0, "repeat every N periods")
	fs.IntVar(&f.count, "count", 0, "times per period")
	fs.IntVar(&f.duration, "duration", 0, "session length in minutes")
}

func parseCategory(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, sharedApplication.Failf(sharedApplication.CategoryValidation, "Invalid category id %q", s)
	}
	return &id, nil
}

func newCreateCmd() *cobra.Command {
	var flags detailFlags

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new habit",
		Long: `Create a habit to track.

Repeat periods:
  daily     - every day, or every --interval days
  weekly    - on the weekday it was created
  monthly   - stored, but never due until monthly rules are defined
  none      - a one-off, due on the day it was created

Examples:
  habitrack habit create "Meditate" -r daily --duration 15
  habitrack habit create "Long run" -r weekly -p high
  habitrack habit create "Water plants" -r daily --interval 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(flags.category)
			if err != nil {
				return err
			}

			return cli.Run(cmd, "habit.create", func(ctx context.Context, app *cli.App) error {
				create := commands.CreateHabitCommand{
					OwnerID:      app.CurrentUserID,
					Title:        args[0],
					Description:  flags.description,
					CategoryID:   category,
					Priority:     flags.priority,
					RepeatPeriod: flags.repeat,
					RepeatCount:  flags.count,
					Duration:     time.Duration(flags.duration) * time.Minute,
				}
				if cmd.Flags().Changed("interval") {
					create.RepeatInterval = &flags.interval
				}

				habit, err := app.CreateHabitHandler.Handle(ctx, create)
				if err != nil {
					return err
				}
				return renderResult(cmd, "created", habit)
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var (
		flags         detailFlags
		title         string
		clearCategory bool
	)

	cmd := &cobra.Command{
		Use:   "update [habit-id]",
		Short: "Edit a habit",
		Long: `Change a habit's details. Only the flags you pass are changed.

Examples:
  habitrack habit update <id> --title "Meditate 20m" --duration 20
  habitrack habit update <id> --priority none --clear-category`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habitID, err := cli.ParseHabitID(args[0])
			if err != nil {
				return err
			}
			category, err := parseCategory(flags.category)
			if err != nil {
				return err
			}

			update := commands.UpdateHabitCommand{
				HabitID:       habitID,
				CategoryID:    category,
				ClearCategory: clearCategory,
			}
			changed := cmd.Flags().Changed
			if changed("title") {
				update.Title = &title
			}
			if changed("description") {
				update.Description = &flags.description
			}
			if changed("priority") {
				update.Priority = &flags.priority
			}
			if changed("repeat") {
				update.RepeatPeriod = &flags.repeat
			}
			if changed("interval") {
				update.RepeatInterval = &flags.interval
			}
			if changed("count") {
				update.RepeatCount = &flags.count
			}
			if changed("duration") {
				d := time.Duration(flags.duration) * time.Minute
				update.Duration = &d
			}

			return cli.Run(cmd, "habit.update", func(ctx context.Context, app *cli.App) error {
				update.OwnerID = app.CurrentUserID
				habit, err := app.UpdateHabitHandler.Handle(ctx, update)
				if err != nil {
					return err
				}
				return renderResult(cmd, "updated", habit)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().BoolVar(&clearCategory, "clear-category", false, "remove the category")
	flags.register(cmd.Flags())
	return cmd
}
