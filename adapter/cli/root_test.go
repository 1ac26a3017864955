package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedApplication "github.com/habitrack/habitrack/internal/shared/application"
	"github.com/habitrack/habitrack/pkg/observability"
)

type point struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func probeCmd(fn func(ctx context.Context, app *App) error) *cobra.Command {
	return &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd, "test.probe", fn)
		},
	}
}

func execute(t *testing.T, opts RootOptions, child *cobra.Command, args ...string) (int, string, string) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	root := NewRootCommand(opts, child)
	var stdout, stderr bytes.Buffer
	root.Cmd.SetOut(&stdout)
	root.Cmd.SetErr(&stderr)
	root.Cmd.SetArgs(args)
	return root.Execute(context.Background()), stdout.String(), stderr.String()
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputTable, false},
		{"table", OutputTable, false},
		{"JSON", OutputJSON, false},
		{"yaml", OutputYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	v := []point{{"a", 1}, {"b", 2}}
	tbl := Table{Headers: []string{"NAME", "COUNT"}, Rows: [][]string{{"a", "1"}, {"b", "2"}}}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, OutputJSON, v, tbl))
	assert.JSONEq(t, `[{"name":"a","count":1},{"name":"b","count":2}]`, buf.String())

	buf.Reset()
	require.NoError(t, render(&buf, OutputYAML, v, tbl))
	assert.Equal(t, "- name: a\n  count: 1\n- name: b\n  count: 2\n", buf.String())

	buf.Reset()
	require.NoError(t, render(&buf, OutputTable, v, tbl))
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "COUNT")
	assert.Contains(t, out, "╭")
}

func TestRender_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, OutputTable, nil, Table{Headers: []string{"X"}, Empty: "nothing here"}))
	assert.Equal(t, "nothing here\n", buf.String())
}

func TestKeyValues(t *testing.T) {
	tbl := KeyValues("a", "1", "b", "2", "dangling")
	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}}, tbl.Rows)
}

func TestExecute_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"success", nil, ExitOK, ""},
		{"failure", sharedApplication.Failf(sharedApplication.CategoryConflict, "Already marked as done today"), ExitFailure, "Already marked as done today\n"},
		{"unexpected", errors.New("disk on fire"), ExitError, "Error: disk on fire\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := probeCmd(func(context.Context, *App) error { return tt.err })
			code, _, errOut := execute(t, RootOptions{App: &App{}}, cmd, "probe")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErr, errOut)
		})
	}
}

func TestExecute_BootstrapsLazilyAndReleases(t *testing.T) {
	var (
		boots    int
		released bool
		got      BootstrapOptions
	)
	bootstrap := func(_ context.Context, opts BootstrapOptions) (*App, func(), error) {
		boots++
		got = opts
		return &App{}, func() { released = true }, nil
	}

	code, out, _ := execute(t, RootOptions{Bootstrap: bootstrap}, probeCmd(func(context.Context, *App) error { return nil }), "version")
	assert.Equal(t, ExitOK, code)
	assert.True(t, strings.HasPrefix(out, "habitrack "))
	assert.Zero(t, boots)

	code, _, _ = execute(t, RootOptions{Bootstrap: bootstrap}, probeCmd(func(context.Context, *App) error { return nil }),
		"probe", "--config", "habits.yaml", "-v")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, 1, boots)
	assert.True(t, released)
	assert.Equal(t, BootstrapOptions{ConfigPath: "habits.yaml", Verbose: true}, got)
}

func TestExecute_BootstrapError(t *testing.T) {
	bootstrap := func(context.Context, BootstrapOptions) (*App, func(), error) {
		return nil, nil, errors.New("no database")
	}
	code, _, errOut := execute(t, RootOptions{Bootstrap: bootstrap}, probeCmd(func(context.Context, *App) error { return nil }), "probe")
	assert.Equal(t, ExitError, code)
	assert.Equal(t, "Error: no database\n", errOut)
}

func TestExecute_NotInitialized(t *testing.T) {
	code, _, errOut := execute(t, RootOptions{}, probeCmd(func(context.Context, *App) error { return nil }), "probe")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, ErrNotInitialized.Error())
}

func TestExecute_UserOverride(t *testing.T) {
	base := &App{CurrentUserID: uuid.New()}
	other := uuid.New()

	var seen uuid.UUID
	cmd := probeCmd(func(_ context.Context, app *App) error {
		seen = app.CurrentUserID
		return nil
	})
	code, _, _ := execute(t, RootOptions{App: base}, cmd, "probe", "--user", other.String())
	require.Equal(t, ExitOK, code)
	assert.Equal(t, other, seen)
	assert.NotEqual(t, other, base.CurrentUserID)
}

func TestRun_RecordsMetrics(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	app := &App{Metrics: metrics}
	op := observability.T("operation", "test.probe")

	_, _, _ = execute(t, RootOptions{App: app}, probeCmd(func(context.Context, *App) error { return nil }), "probe")
	_, _, _ = execute(t, RootOptions{App: app}, probeCmd(func(context.Context, *App) error {
		return sharedApplication.Failf(sharedApplication.CategoryNotFound, "Habit not found")
	}), "probe")

	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricOperationTotal, op))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricOperationErrors, op))
}

func TestPrintln_QuietForStructuredOutput(t *testing.T) {
	hello := func() *cobra.Command {
		return &cobra.Command{
			Use: "probe",
			RunE: func(cmd *cobra.Command, _ []string) error {
				Println(cmd, "hello")
				return nil
			},
		}
	}

	_, out, _ := execute(t, RootOptions{App: &App{}}, hello(), "probe")
	assert.Equal(t, "hello\n", out)

	_, out, _ = execute(t, RootOptions{App: &App{}}, hello(), "probe", "-o", "json")
	assert.Empty(t, out)
}

func TestHealthCommand(t *testing.T) {
	registry := observability.NewHealthRegistry()
	var dbErr error
	registry.Register("database", observability.DatabaseHealthChecker(func(context.Context) error { return dbErr }))
	registry.Register("redis", observability.RedisHealthChecker(func(context.Context) error { return errors.New("refused") }))
	app := &App{Health: registry}

	code, out, _ := execute(t, RootOptions{App: app}, probeCmd(nil), "health")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "database")
	assert.Contains(t, out, "degraded")

	dbErr = errors.New("no such file")
	code, _, errOut := execute(t, RootOptions{App: app}, probeCmd(nil), "health", "-o", "json")
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "Unhealthy: database\n", errOut)
}
