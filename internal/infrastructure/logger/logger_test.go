package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("builds a logger for stdout", func(t *testing.T) {
		l, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("writes json to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)

		l.Info("stock adjusted", zap.String("product_id", "p-1"))
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"stock adjusted"`)
		assert.Contains(t, string(data), `"product_id":"p-1"`)
	})

	t.Run("fails on unwritable output", func(t *testing.T) {
		_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		require.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestContextHelpers(t *testing.T) {
	t.Run("FromContext falls back to a no-op logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("WithRequestID stores id and enriched logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		ctx, l := WithRequestID(context.Background(), zap.New(core), "req-42")
		assert.Equal(t, "req-42", GetRequestID(ctx))
		assert.Same(t, l, FromContext(ctx))

		l.Info("hello")
		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "req-42", recorded.All()[0].ContextMap()["request_id"])
	})

	t.Run("L adds request and trace ids", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{0x01, 0x02},
			SpanID:     trace.SpanID{0x03},
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)
		ctx, _ = WithRequestID(ctx, zap.NewNop(), "req-7")

		L(ctx, zap.New(core)).Info("order completed")

		require.Equal(t, 1, recorded.Len())
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-7", fields["request_id"])
		assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
		assert.Equal(t, sc.SpanID().String(), fields["span_id"])
		assert.Equal(t, sc.TraceID().String(), GetTraceID(ctx))
	})

	t.Run("L tolerates a nil base and bare context", func(t *testing.T) {
		assert.NotNil(t, L(context.Background(), nil))
		assert.Empty(t, GetTraceID(context.Background()))
	})
}
