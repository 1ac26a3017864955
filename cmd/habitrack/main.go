package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/habitrack/habitrack/adapter/cli"
	"github.com/habitrack/habitrack/adapter/cli/habit"
	"github.com/habitrack/habitrack/adapter/cli/stats"
	"github.com/habitrack/habitrack/internal/app"
	"github.com/habitrack/habitrack/pkg/config"
	"github.com/habitrack/habitrack/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := cli.NewRootCommand(cli.RootOptions{Bootstrap: bootstrap},
		habit.NewCommand(),
		stats.NewCommand(),
	)
	code := root.Execute(ctx)
	stop()
	os.Exit(code)
}

// bootstrap loads configuration and wires the container once flags are known.
func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.App, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFile(opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.LogConfig(observability.DefaultLogConfig())
	logCfg.ServiceVersion = cli.Version
	if opts.Verbose {
		logCfg.Level = observability.LogLevelDebug
	}
	logger := observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cli.NewApp(container), container.Close, nil
}
