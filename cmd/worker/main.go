package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/habitrack/habitrack/adapter/api"
	"github.com/habitrack/habitrack/internal/app"
	"github.com/habitrack/habitrack/pkg/config"
	"github.com/habitrack/habitrack/pkg/observability"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, *configPath))
}

func run(ctx context.Context, configPath string) int {
	bootLogger := observability.NewLogger(observability.ProductionLogConfig())

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		bootLogger.Error("failed to load config", "error", err)
		return 1
	}

	logConfig := cfg.LogConfig(observability.ProductionLogConfig())
	logConfig.ServiceName = "habitrack-worker"
	logger := observability.NewLogger(logConfig)
	logger.Info("starting habitrack worker", "driver", cfg.DatabaseDriver, "broker", cfg.BrokerName())

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return 1
	}
	defer container.Close()

	broker, err := app.NewBrokerPublisher(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to broker", "broker", cfg.BrokerName(), "error", err)
		return 1
	}

	worker, err := app.NewWorker(container, broker)
	if err != nil {
		_ = broker.Close()
		logger.Error("failed to build worker", "error", err)
		return 1
	}
	defer worker.Close()

	if cfg.WorkerHealthAddr != "" {
		metrics, _ := container.Metrics.(api.MetricsSnapshot)
		server := api.NewServer(api.DefaultServerConfig(cfg.WorkerHealthAddr),
			worker.Processor(), container.Health, metrics, logger)

		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("status server shutdown error", "error", err)
			}
		}()
	}

	if err := worker.Run(ctx); err != nil {
		logger.Error("worker failed", "error", err)
		return 1
	}

	stats := worker.Processor().GetStats()
	logger.Info("worker stopped",
		"published", stats.PublishedCount,
		"failed", stats.FailedCount,
		"dead", stats.DeadCount,
	)
	return 0
}
