package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/habitrack/habitrack/internal/shared/infrastructure/eventbus"
	"github.com/habitrack/habitrack/pkg/config"
)

// Broker is an outbox publisher whose connection can be probed.
type Broker interface {
	eventbus.Publisher
	Ping(ctx context.Context) error
}

// NewBrokerPublisher connects to the broker named in cfg. With no broker
// configured, relayed messages are dropped by a noop publisher.
func NewBrokerPublisher(cfg *config.Config, logger *slog.Logger) (Broker, error) {
	switch cfg.BrokerName() {
	case config.BrokerNone:
		return eventbus.NewNoopPublisher(logger), nil
	case config.BrokerRabbitMQ:
		p, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BrokerNATS:
		p, err := eventbus.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown broker %q", cfg.Broker)
	}
}
