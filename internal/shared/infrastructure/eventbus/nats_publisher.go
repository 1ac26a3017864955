package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

const (
	// StreamName is the JetStream stream habit events are stored in.
	StreamName = "HABITRACK_EVENTS"
	// SubjectPrefix namespaces routing keys as NATS subjects.
	SubjectPrefix = "habitrack."
)

// JetStream is the subset of nats.JetStreamContext the publisher uses.
type JetStream interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// NATSPublisher publishes envelopes to a JetStream stream. Routing keys map
// to subjects under SubjectPrefix.
type NATSPublisher struct {
	conn   *nats.Conn
	js     JetStream
	logger *slog.Logger
}

// NewNATSPublisher connects to url and makes sure the stream exists.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("habitrack-worker"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, fmt.Errorf("failed to open JetStream context: %w", err)
	}

	p, err := NewNATSPublisherWithJetStream(js, logger)
	if err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewNATSPublisherWithJetStream builds a publisher on an existing context.
func NewNATSPublisherWithJetStream(js JetStream, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ensureStream(js); err != nil {
		return nil, err
	}
	logger.Info("NATS publisher connected", "stream", StreamName)
	return &NATSPublisher{js: js, logger: logger}, nil
}

func ensureStream(js JetStream) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// Publish stores the payload on the stream and waits for the ack.
func (p *NATSPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	subject := SubjectPrefix + routingKey
	if _, err := p.js.Publish(subject, payload, nats.Context(ctx)); err != nil {
		p.logger.Error("failed to publish message",
			"subject", subject,
			"error", err,
		)
		return err
	}
	p.logger.Debug("message published",
		"subject", subject,
		"size", len(payload),
	)
	return nil
}

// Ping reports whether the NATS connection is up. A publisher built on an
// injected JetStream context has no connection to probe.
func (p *NATSPublisher) Ping(context.Context) error {
	if p.conn == nil {
		return nil
	}
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection is %s", p.conn.Status())
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	p.conn.Close()
	return err
}
