package telemetry

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PoolStatsSource exposes connection pool statistics. *sql.DB satisfies it.
type PoolStatsSource interface {
	Stats() sql.DBStats
}

// DBPoolMetrics observes connection pool statistics on each collection cycle.
type DBPoolMetrics struct {
	registration metric.Registration
	logger       *zap.Logger
}

// NewDBPoolMetrics registers pool gauges backed by src on meter.
func NewDBPoolMetrics(meter metric.Meter, src PoolStatsSource, logger *zap.Logger) (*DBPoolMetrics, error) {
	if meter == nil {
		return nil, &MetricsError{Op: "NewDBPoolMetrics", Err: "meter cannot be nil"}
	}
	if src == nil {
		return nil, &MetricsError{Op: "NewDBPoolMetrics", Err: "stats source cannot be nil"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Open connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return nil, err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return nil, err
	}
	waitCount, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"))
	if err != nil {
		return nil, err
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := src.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waitCount, stats.WaitCount)
		return nil
	}, connections, maxOpen, waitCount)
	if err != nil {
		return nil, err
	}

	return &DBPoolMetrics{registration: reg, logger: logger}, nil
}

// Stop unregisters the pool callback. It is safe to call more than once.
func (m *DBPoolMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	err := m.registration.Unregister()
	m.registration = nil
	if err != nil {
		m.logger.Warn("Failed to unregister pool metrics", zap.Error(err))
		return err
	}
	return nil
}
