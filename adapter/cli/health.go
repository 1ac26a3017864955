package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
	"github.com/habitrack/habitrack/pkg/observability"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the database and cache connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd, "health", func(ctx context.Context, app *App) error {
				if app.Health == nil {
					return ErrNotInitialized
				}
				health := app.Health.GetOverallHealth(ctx)

				t := Table{Headers: []string{"CHECK", "STATUS", "MESSAGE"}, Empty: "No checks registered."}
				names := make([]string, 0, len(health.Checks))
				for name := range health.Checks {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					res := health.Checks[name]
					t.Rows = append(t.Rows, []string{name, string(res.Status), res.Message})
				}
				if err := Render(cmd, health, t); err != nil {
					return err
				}

				if health.Status == observability.HealthStatusUnhealthy {
					failing := health.Failing()
					slices.Sort(failing)
					return sharedApplication.Failf(sharedApplication.CategoryPersistence,
						"Unhealthy: %s", strings.Join(failing, ", "))
				}
				return nil
			})
		},
	}
}
