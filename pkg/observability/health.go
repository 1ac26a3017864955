package observability

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// HealthStatus is the state of one dependency, or of all of them.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one wins.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthCheckResult is what a single check reports.
type HealthCheckResult struct {
	Status    HealthStatus  `json:"status" yaml:"status"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
}

// HealthChecker checks one dependency.
type HealthChecker func(ctx context.Context) HealthCheckResult

// OverallHealth is the aggregate of every registered check.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status" yaml:"status"`
	Timestamp time.Time                    `json:"timestamp" yaml:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks" yaml:"checks"`
}

// Failing lists the checks that report unhealthy.
func (h OverallHealth) Failing() []string {
	var names []string
	for name, res := range h.Checks {
		if res.Status == HealthStatusUnhealthy {
			names = append(names, name)
		}
	}
	return names
}

// DefaultCheckTimeout bounds a single check that does not finish on its own.
const DefaultCheckTimeout = 2 * time.Second

// HealthRegistry holds the checks the CLI and the worker report on.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	timeout  time.Duration
}

// NewHealthRegistry creates a registry with DefaultCheckTimeout.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{
		checkers: make(map[string]HealthChecker),
		timeout:  DefaultCheckTimeout,
	}
}

// Register adds or replaces the check called name.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Check runs every check concurrently, each under its own timeout.
func (r *HealthRegistry) Check(ctx context.Context) map[string]HealthCheckResult {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, checker := range r.checkers {
		checkers[name] = checker
	}
	timeout := r.timeout
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			result := checker(checkCtx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

// GetOverallHealth runs the checks and reports the worst status among them.
// No checks means healthy.
func (r *HealthRegistry) GetOverallHealth(ctx context.Context) OverallHealth {
	checks := r.Check(ctx)
	status := HealthStatusHealthy
	for _, res := range checks {
		if res.Status.severity() > status.severity() {
			status = res.Status
		}
	}
	return OverallHealth{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// pingChecker reports failing pings with the given status.
func pingChecker(name string, onFailure HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{Status: onFailure, Message: name + " connection failed: " + err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: name + " connection healthy"}
	}
}

// DatabaseHealthChecker reports the habit store. Nothing works without it.
func DatabaseHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("database", HealthStatusUnhealthy, ping)
}

// RedisHealthChecker reports the stats cache. A down cache degrades reads
// to the database rather than failing them.
func RedisHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("redis", HealthStatusDegraded, ping)
}

// BrokerHealthChecker reports a message broker as degraded when unreachable;
// commands keep working because events wait in the outbox.
func BrokerHealthChecker(name string, ping func(ctx context.Context) error) HealthChecker {
	return pingChecker(name, HealthStatusDegraded, ping)
}

// OutboxRelayState is what the relay check needs from the outbox processor.
type OutboxRelayState struct {
	Running bool
	Lag     time.Duration
	Dead    uint64
}

// OutboxHealthChecker reports the outbox relay. A stopped relay is unhealthy.
// Lag beyond maxLag, or dead-lettered events, degrade it. A zero maxLag
// disables the lag check.
func OutboxHealthChecker(state func() OutboxRelayState, maxLag time.Duration) HealthChecker {
	return func(context.Context) HealthCheckResult {
		s := state()
		switch {
		case !s.Running:
			return HealthCheckResult{Status: HealthStatusUnhealthy, Message: "outbox relay is not running"}
		case maxLag > 0 && s.Lag > maxLag:
			return HealthCheckResult{
				Status:  HealthStatusDegraded,
				Message: fmt.Sprintf("oldest unpublished event is %s old (limit %s)", s.Lag.Round(time.Second), maxLag),
			}
		case s.Dead > 0:
			return HealthCheckResult{
				Status:  HealthStatusDegraded,
				Message: fmt.Sprintf("%d events dead-lettered", s.Dead),
			}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: "outbox relay healthy"}
	}
}
