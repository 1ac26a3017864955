package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := NewInMemoryMetrics()

	err := TimeOperation(logger, metrics, "habit.done", func() error { return nil })
	assert.NoError(t, err)

	errFailed := errors.New("store offline")
	err = TimeOperation(logger, metrics, "habit.done", func() error { return errFailed })
	assert.ErrorIs(t, err, errFailed)

	tag := T("operation", "habit.done")
	assert.Equal(t, int64(2), metrics.GetCounter(MetricOperationTotal, tag))
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, tag))
	assert.Len(t, metrics.GetTimings(MetricOperationDuration, tag), 2)
	assert.Contains(t, buf.String(), "operation failed")
}
