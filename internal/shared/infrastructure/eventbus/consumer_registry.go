package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

type registration struct {
	pattern  string
	consumer EventConsumer
}

// ConsumerRegistry matches routing keys against consumer patterns.
type ConsumerRegistry struct {
	registrations []registration
	mu            sync.RWMutex
	logger        *slog.Logger
}

// NewConsumerRegistry creates a new consumer registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register adds a consumer under each of its patterns.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range consumer.EventTypes() {
		r.registrations = append(r.registrations, registration{pattern: pattern, consumer: consumer})
		r.logger.Debug("registered consumer for event type",
			"event_type", pattern,
		)
	}
}

// GetConsumers returns the consumers whose patterns match routingKey. A
// consumer matched by several patterns is returned once.
func (r *ConsumerRegistry) GetConsumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []EventConsumer
	seen := make(map[EventConsumer]bool)
	for _, reg := range r.registrations {
		if seen[reg.consumer] || !MatchRoutingKey(reg.pattern, routingKey) {
			continue
		}
		seen[reg.consumer] = true
		matched = append(matched, reg.consumer)
	}
	return matched
}

// GetAllEventTypes returns every registered pattern once.
func (r *ConsumerRegistry) GetAllEventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	types := make([]string, 0, len(r.registrations))
	for _, reg := range r.registrations {
		if !seen[reg.pattern] {
			seen[reg.pattern] = true
			types = append(types, reg.pattern)
		}
	}
	return types
}

// Dispatch delivers the event to every matching consumer. A failing consumer
// does not stop delivery to the rest; all failures are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.GetConsumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event type",
			"routing_key", event.RoutingKey,
		)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConsumerCount returns the number of registrations.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations)
}

// MatchRoutingKey reports whether key matches an AMQP topic pattern, where
// "*" stands for exactly one word and "#" for zero or more words.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || pattern[0] != key[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
