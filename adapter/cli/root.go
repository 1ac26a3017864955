package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
	"github.com/habitrack/habitrack/pkg/observability"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitFailure = 1 // a rejected command or query
	ExitError   = 2 // usage and unexpected errors
)

// skipAppAnnotation marks commands that run without opening the database.
const skipAppAnnotation = "habitrack/skip-app"

// RootOptions configures NewRootCommand. App is used as is when set;
// otherwise Bootstrap builds it on first use.
type RootOptions struct {
	App       *App
	Bootstrap Bootstrap
	Logger    *slog.Logger
}

type session struct {
	app       *App
	output    OutputFormat
	startedAt time.Time
}

type sessionKey struct{}

// Root is a habitrack command tree and the state its commands share.
type Root struct {
	Cmd *cobra.Command

	opts    RootOptions
	release func()

	cfgFile string
	verbose bool
	user    string
	output  string
}

// NewRootCommand builds the habitrack command tree with children attached.
func NewRootCommand(opts RootOptions, children ...*cobra.Command) *Root {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := &Root{opts: opts}

	r.Cmd = &cobra.Command{
		Use:   "habitrack",
		Short: "habitrack - personal habit tracking",
		Long: `habitrack records habits and every change made to them in an
append-only log, and derives streaks and completion rates from it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.preRun,
		PersistentPostRun: r.postRun,
	}

	flags := r.Cmd.PersistentFlags()
	flags.StringVarP(&r.cfgFile, "config", "c", "", "config file path")
	flags.BoolVarP(&r.verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&r.user, "user", "", "act as this user id")
	flags.StringVarP(&r.output, "output", "o", string(OutputTable), "output format (table, json, yaml)")

	r.Cmd.AddCommand(newVersionCmd(), newHealthCmd())
	r.Cmd.AddCommand(children...)
	return r
}

func (r *Root) preRun(cmd *cobra.Command, _ []string) error {
	format, err := ParseOutputFormat(r.output)
	if err != nil {
		return err
	}

	s := session{output: format, startedAt: time.Now()}
	ctx := observability.WithCorrelationID(cmd.Context(), uuid.NewString())

	if cmd.Annotations[skipAppAnnotation] == "" {
		app, err := r.app(ctx)
		if err != nil {
			return err
		}
		if r.user != "" {
			id, err := uuid.Parse(r.user)
			if err != nil {
				return sharedApplication.Failf(sharedApplication.CategoryValidation, "Invalid user id %q", r.user)
			}
			scoped := *app
			scoped.SetCurrentUserID(id)
			app = &scoped
		}
		s.app = app
	}

	cmd.SetContext(context.WithValue(ctx, sessionKey{}, s))
	r.opts.Logger.DebugContext(ctx, "command start", "command", cmd.CommandPath())
	return nil
}

func (r *Root) postRun(cmd *cobra.Command, _ []string) {
	s, ok := cmd.Context().Value(sessionKey{}).(session)
	if !ok {
		return
	}
	r.opts.Logger.DebugContext(cmd.Context(), "command end",
		"command", cmd.CommandPath(),
		"duration_ms", time.Since(s.startedAt).Milliseconds(),
	)
}

func (r *Root) app(ctx context.Context) (*App, error) {
	if r.opts.App != nil {
		return r.opts.App, nil
	}
	if r.opts.Bootstrap == nil {
		return nil, ErrNotInitialized
	}
	app, release, err := r.opts.Bootstrap(ctx, BootstrapOptions{ConfigPath: r.cfgFile, Verbose: r.verbose})
	if err != nil {
		return nil, err
	}
	r.opts.App = app
	r.release = release
	return app, nil
}

// Execute runs the tree, prints any error to its error stream and returns
// the process exit code. A rejected operation prints just its message.
func (r *Root) Execute(ctx context.Context) int {
	err := r.Cmd.ExecuteContext(ctx)
	if r.release != nil {
		r.release()
		r.release = nil
	}
	if err == nil {
		return ExitOK
	}

	if sharedApplication.IsFailure(err) {
		fmt.Fprintln(r.Cmd.ErrOrStderr(), err.Error())
		return ExitFailure
	}
	fmt.Fprintf(r.Cmd.ErrOrStderr(), "Error: %v\n", err)
	return ExitError
}

// Run times fn under operation and hands it the session's App.
func Run(cmd *cobra.Command, operation string, fn func(ctx context.Context, app *App) error) error {
	s, ok := cmd.Context().Value(sessionKey{}).(session)
	if !ok || s.app == nil {
		return ErrNotInitialized
	}

	timer := observability.StartTimer(operation).WithMetrics(s.app.Metrics)
	err := fn(cmd.Context(), s.app)
	duration := timer.StopWithError(err)
	if s.app.Logger != nil {
		s.app.Logger.DebugContext(cmd.Context(), "operation finished",
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
	}
	return err
}

// Render prints v in the session's output format, using tbl for table output.
func Render(cmd *cobra.Command, v any, tbl Table) error {
	format := OutputTable
	if s, ok := cmd.Context().Value(sessionKey{}).(session); ok {
		format = s.output
	}
	return render(cmd.OutOrStdout(), format, v, tbl)
}

// Println writes a status line. Structured formats stay silent so their
// output remains parseable.
func Println(cmd *cobra.Command, a ...any) {
	if s, ok := cmd.Context().Value(sessionKey{}).(session); ok && s.output != OutputTable {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), a...)
}
