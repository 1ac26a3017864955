package habit

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/internal/habits/application/queries"
	"github.com/habitrack/habitrack/internal/habits/domain"
)

// NewCommand builds the habit command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits",
		Long:  `Create, complete, edit and review your habits.`,
	}

	cmd.AddCommand(
		newCreateCmd(),
		newDoneCmd(),
		newUndoCmd(),
		newUpdateCmd(),
		newRemoveCmd(),
		newArchiveCmd(),
		newUnarchiveCmd(),
		newShowCmd(),
		newListCmd(),
		newTodayCmd(),
		newHistoryCmd(),
	)
	return cmd
}

// result is what mutating commands print.
type result struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	IsCompleted bool      `json:"is_completed" yaml:"is_completed"`
	IsArchived  bool      `json:"is_archived" yaml:"is_archived"`
	IsDeleted   bool      `json:"is_deleted" yaml:"is_deleted"`
	Version     int       `json:"version" yaml:"version"`
}

func newResult(h *domain.Habit) result {
	return result{
		ID:          h.ID(),
		Title:       h.Title(),
		IsCompleted: h.IsCompleted(),
		IsArchived:  h.IsArchived(),
		IsDeleted:   h.IsDeleted(),
		Version:     h.Version(),
	}
}

func renderResult(cmd *cobra.Command, verb string, h *domain.Habit) error {
	return cli.Render(cmd, newResult(h), cli.Table{
		Headers: []string{"ID", "TITLE", "STATUS"},
		Rows:    [][]string{{h.ID().String(), h.Title(), verb}},
	})
}

func habitsTable(habits []queries.HabitDTO, empty string) cli.Table {
	t := cli.Table{
		Headers: []string{"ID", "TITLE", "PRIORITY", "REPEAT", "TODAY"},
		Empty:   empty,
	}
	for _, h := range habits {
		title := h.Title
		if h.IsArchived {
			title += " [archived]"
		}
		t.Rows = append(t.Rows, []string{
			h.ID.String(),
			title,
			h.Priority,
			repeatLabel(h),
			todayLabel(h),
		})
	}
	return t
}

func habitDetail(h queries.HabitDTO) cli.Table {
	last := "never"
	if h.LastCompletedAt != nil {
		last = h.LastCompletedAt.Format("2006-01-02 15:04")
	}
	pairs := []string{
		"ID", h.ID.String(),
		"Title", h.Title,
		"Description", h.Description,
		"Priority", h.Priority,
		"Repeat", repeatLabel(h),
		"Duration", durationLabel(h.DurationMinutes),
		"Created", h.CreatedOn.String(),
		"Today", todayLabel(h),
		"Last completed", last,
		"Archived", strconv.FormatBool(h.IsArchived),
		"Version", strconv.Itoa(h.Version),
	}
	if h.CategoryID != nil {
		pairs = append(pairs, "Category", h.CategoryID.String())
	}
	return cli.KeyValues(pairs...)
}

func repeatLabel(h queries.HabitDTO) string {
	unit := map[string]string{"daily": "day", "weekly": "week", "monthly": "month"}[h.RepeatPeriod]
	var label string
	switch {
	case unit == "":
		label = "once"
	case h.RepeatInterval > 1:
		label = fmt.Sprintf("every %d %ss", h.RepeatInterval, unit)
	default:
		label = h.RepeatPeriod
	}
	if h.RepeatCount > 0 {
		label += fmt.Sprintf(" x%d", h.RepeatCount)
	}
	return label
}

func todayLabel(h queries.HabitDTO) string {
	switch {
	case h.IsCompletedToday:
		return "[x]"
	case h.IsDueToday:
		return "[ ]"
	default:
		return "[-]"
	}
}

func durationLabel(minutes int) string {
	if minutes == 0 {
		return "-"
	}
	return fmt.Sprintf("%dm", minutes)
}
