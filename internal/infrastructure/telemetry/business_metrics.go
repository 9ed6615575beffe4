package telemetry

import (
	"context"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	apptrade "github.com/erp/stockflow/internal/application/trade"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics records order and stock activity.
// It satisfies the metric ports of the inventory and trade services.
type BusinessMetrics struct {
	logger *zap.Logger

	ordersCreated     *Counter
	orderAmount       *Histogram
	orderTransitions  *Counter
	stockAdjustments  *Counter
	stockUnitsMoved   *Counter
	lowStockAlerts    *Counter
	lowStockRegistrar metric.Registration
}

var (
	_ appinventory.StockMetrics = (*BusinessMetrics)(nil)
	_ apptrade.OrderMetrics     = (*BusinessMetrics)(nil)
)

// StockLevelProvider reports how many products currently sit at or below a threshold.
type StockLevelProvider interface {
	CountAtOrBelow(ctx context.Context, threshold int64) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger

	// Optional. When set, a gauge of products at or below CriticalThreshold
	// is observed on every collection cycle.
	StockLevels       StockLevelProvider
	CriticalThreshold int64
}

// OrderAmountBuckets are bucket boundaries for order totals in currency units.
var OrderAmountBuckets = []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000}

// NewBusinessMetrics creates the business instruments on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger}

	var err error
	if bm.ordersCreated, err = NewCounter(cfg.Meter,
		"stockflow_orders_created_total", "Total number of orders created", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderAmount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "stockflow_order_amount",
		Description: "Distribution of order totals at creation",
		Unit:        "{currency}",
		Boundaries:  OrderAmountBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.orderTransitions, err = NewCounter(cfg.Meter,
		"stockflow_order_transitions_total", "Order status transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if bm.stockAdjustments, err = NewCounter(cfg.Meter,
		"stockflow_stock_adjustments_total", "Committed stock adjustments", "{adjustments}"); err != nil {
		return nil, err
	}
	if bm.stockUnitsMoved, err = NewCounter(cfg.Meter,
		"stockflow_stock_units_moved_total", "Absolute units moved by stock adjustments", "{units}"); err != nil {
		return nil, err
	}
	if bm.lowStockAlerts, err = NewCounter(cfg.Meter,
		"stockflow_low_stock_alerts_total", "Low stock notifications emitted", "{alerts}"); err != nil {
		return nil, err
	}

	if cfg.StockLevels != nil {
		if err := bm.observeStockLevels(cfg); err != nil {
			return nil, err
		}
	}

	return bm, nil
}

func (bm *BusinessMetrics) observeStockLevels(cfg BusinessMetricsConfig) error {
	gauge, err := cfg.Meter.Int64ObservableGauge(
		"stockflow_products_low_stock",
		metric.WithDescription("Products at or below the critical stock threshold"),
		metric.WithUnit("{products}"),
	)
	if err != nil {
		return &MetricsError{Op: "NewBusinessMetrics", Err: err.Error()}
	}

	reg, err := cfg.Meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		count, err := cfg.StockLevels.CountAtOrBelow(ctx, cfg.CriticalThreshold)
		if err != nil {
			bm.logger.Warn("Failed to collect low stock count", zap.Error(err))
			return nil
		}
		o.ObserveInt64(gauge, count)
		return nil
	}, gauge)
	if err != nil {
		return &MetricsError{Op: "NewBusinessMetrics", Err: err.Error()}
	}

	bm.lowStockRegistrar = reg
	return nil
}

// RecordOrderCreated counts a new order and records its total
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, orderType string, amount decimal.Decimal) {
	bm.ordersCreated.Inc(ctx, AttrOrderType.String(orderType))
	bm.orderAmount.Record(ctx, amount.InexactFloat64(), AttrOrderType.String(orderType))
}

// RecordOrderTransition counts an order reaching status
func (bm *BusinessMetrics) RecordOrderTransition(ctx context.Context, orderType, status string) {
	bm.orderTransitions.Inc(ctx, AttrOrderType.String(orderType), AttrOrderStatus.String(status))
}

// RecordStockAdjusted counts one committed adjustment and the units it moved.
func (bm *BusinessMetrics) RecordStockAdjusted(ctx context.Context, sourceType string, delta int64) {
	direction := "in"
	units := delta
	if delta < 0 {
		direction = "out"
		units = -delta
	}
	bm.stockAdjustments.Inc(ctx, AttrSourceType.String(sourceType), AttrDirection.String(direction))
	bm.stockUnitsMoved.Add(ctx, units, AttrSourceType.String(sourceType), AttrDirection.String(direction))
}

func (bm *BusinessMetrics) RecordLowStockAlert(ctx context.Context) {
	bm.lowStockAlerts.Inc(ctx)
}

// Stop unregisters the low stock gauge callback.
func (bm *BusinessMetrics) Stop() {
	if bm.lowStockRegistrar == nil {
		return
	}
	if err := bm.lowStockRegistrar.Unregister(); err != nil {
		bm.logger.Warn("Failed to unregister low stock gauge", zap.Error(err))
	}
	bm.lowStockRegistrar = nil
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
