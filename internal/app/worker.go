package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/habitrack/habitrack/internal/habits/infrastructure/cache"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/eventbus"
	"github.com/habitrack/habitrack/internal/shared/infrastructure/outbox"
	"github.com/habitrack/habitrack/pkg/config"
	"github.com/habitrack/habitrack/pkg/observability"
)

// Worker relays outbox messages to the broker and runs the periodic jobs:
// purging published messages and warming the statistics cache.
type Worker struct {
	container *Container
	broker    Broker
	processor *outbox.Processor
	consumer  *eventbus.RabbitMQConsumer
	logger    *slog.Logger
}

// NewWorker builds a worker on c that publishes through broker. With RabbitMQ
// and a stats cache configured it also consumes habit events to evict
// cached statistics.
func NewWorker(c *Container, broker Broker) (*Worker, error) {
	cfg := c.Config

	processorConfig := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorConfig.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorConfig.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorConfig.MaxRetries = cfg.OutboxMaxRetries
	}

	w := &Worker{
		container: c,
		broker:    broker,
		processor: outbox.NewProcessor(c.Outbox, broker, processorConfig, c.Logger).WithMetrics(c.Metrics),
		logger:    c.Logger,
	}
	c.Health.Register("broker", observability.BrokerHealthChecker(cfg.BrokerName(), broker.Ping))
	c.Health.Register("outbox", observability.OutboxHealthChecker(w.relayState, cfg.OutboxMaxLag))

	if cfg.BrokerName() == config.BrokerRabbitMQ && c.StatsCache != nil {
		registry := eventbus.NewConsumerRegistry(c.Logger)
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:    cfg.RabbitMQURL,
			Logger: c.Logger,
		}, registry)
		if err != nil {
			return nil, fmt.Errorf("start stats cache consumer: %w", err)
		}
		consumer.RegisterConsumer(cache.NewStatsCacheInvalidator(c.StatsCache, c.Logger))
		w.consumer = consumer
	}

	return w, nil
}

func (w *Worker) relayState() observability.OutboxRelayState {
	stats := w.processor.GetStats()
	return observability.OutboxRelayState{
		Running: stats.IsRunning,
		Lag:     time.Duration(stats.LagSeconds * float64(time.Second)),
		Dead:    stats.DeadCount,
	}
}

// Processor exposes the outbox relay for status reporting.
func (w *Worker) Processor() *outbox.Processor {
	return w.processor
}

// Run starts the relay, the scheduler and the consumer, and blocks until ctx
// is cancelled. It waits for in-flight jobs before returning.
func (w *Worker) Run(ctx context.Context) error {
	scheduler, err := w.schedule(ctx)
	if err != nil {
		return err
	}

	if err := w.processor.Start(ctx); err != nil {
		return err
	}
	scheduler.Start()

	if w.consumer != nil {
		go func() {
			if err := w.consumer.Start(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("stats cache consumer stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	w.logger.Info("shutting down worker")

	<-scheduler.Stop().Done()
	w.processor.Stop()
	return nil
}

// Close releases the consumer and broker connections.
func (w *Worker) Close() {
	if w.consumer != nil {
		if err := w.consumer.Close(); err != nil {
			w.logger.Warn("failed to close consumer", "error", err)
		}
	}
	if err := w.broker.Close(); err != nil {
		w.logger.Warn("failed to close broker publisher", "error", err)
	}
}

// CleanupOutbox purges messages published before the retention window.
func (w *Worker) CleanupOutbox(ctx context.Context) (int64, error) {
	return w.processor.Cleanup(ctx, w.container.Config.OutboxRetentionDays)
}

func (w *Worker) schedule(ctx context.Context) (*cron.Cron, error) {
	cfg := w.container.Config
	scheduler := cron.New(
		cron.WithLocation(w.container.Location),
		cron.WithLogger(cronLogger{w.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.logger})),
	)

	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"outbox_cleanup", cfg.OutboxCleanupSchedule, func() {
			_, _ = w.CleanupOutbox(ctx)
		}},
		{"stats_warmup", cfg.StatsWarmupSchedule, func() {
			res, err := w.container.WarmStats(ctx)
			if err != nil {
				w.logger.Warn("stats warmup incomplete", "habits", res.Habits, "failed", res.Failed, "error", err)
				return
			}
			w.logger.Info("stats warmed", "habits", res.Habits)
		}},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := scheduler.AddFunc(job.spec, job.run); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", job.name, job.spec, err)
		}
		w.logger.Info("job scheduled", "job", job.name, "schedule", job.spec)
	}
	return scheduler, nil
}

// cronLogger routes scheduler logs through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
