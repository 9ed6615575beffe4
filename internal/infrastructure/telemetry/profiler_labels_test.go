package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+10)

	pairs := sanitizeLabels(map[string]string{
		"Route":      "/api/v1/orders",
		"http-verb":  "POST",
		"order_id":   "2f1c",
		"request_id": "abc",
		"empty":      "",
		"payload":    long,
		"!!!":        "dropped",
	})

	// Ordered by the original key.
	assert.Equal(t, []string{
		"route", "/api/v1/orders",
		"http_verb", "POST",
		"payload", long[:MaxLabelValueLength],
	}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels are visible inside fn", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), HTTPRequestLabels("/api/v1/orders", "GET"), func(ctx context.Context) {
			called = true
			route, ok := pprof.Label(ctx, ProfilingLabelRoute)
			assert.True(t, ok)
			assert.Equal(t, "/api/v1/orders", route)
		})
		assert.True(t, called)
	})

	t.Run("no usable labels still runs fn", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), map[string]string{"trace_id": "x"}, func(ctx context.Context) {
			called = true
			_, ok := pprof.Label(ctx, "trace_id")
			assert.False(t, ok)
		})
		assert.True(t, called)
	})
}

func TestLabelHelpers(t *testing.T) {
	assert.Equal(t, map[string]string{"method": "GET"}, HTTPRequestLabels("", "GET"))
	assert.Equal(t, map[string]string{"operation": "low_stock_sweep"}, OperationLabels("low_stock_sweep"))
}
