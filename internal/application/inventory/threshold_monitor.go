package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default thresholds
const (
	DefaultLowStockThreshold      int64 = 10
	DefaultCriticalStockThreshold int64 = 5
	DefaultAlertDedupWindow             = 24 * time.Hour
	alertLockTTL                        = 10 * time.Second
)

// ThresholdConfig configures the low-stock monitor
type ThresholdConfig struct {
	// LowStock is the warning threshold used by listings (strictly below)
	LowStock int64
	// Critical is the alert threshold (at or below)
	Critical int64
	// DedupWindow is how long an alert for one product suppresses the next
	DedupWindow time.Duration
}

// DefaultThresholdConfig returns the standard thresholds
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		LowStock:    DefaultLowStockThreshold,
		Critical:    DefaultCriticalStockThreshold,
		DedupWindow: DefaultAlertDedupWindow,
	}
}

// AlertNotifier is the part of the notification module the monitor needs
type AlertNotifier interface {
	Create(ctx context.Context, t notification.Type, message string, relatedID *uuid.UUID) (*notification.Notification, error)
	ExistsSince(ctx context.Context, t notification.Type, relatedID uuid.UUID, since time.Time) (bool, error)
}

// StockThresholdMonitor raises at most one low_stock notification per product per window.
// It is driven by StockAdjusted events and by explicit scans, never by reads.
type StockThresholdMonitor struct {
	products inventory.ProductRepository
	notifier AlertNotifier
	guard    AlertGuard
	config   ThresholdConfig
	now      func() time.Time
	logger   *zap.Logger
	metrics  StockMetrics
}

// MonitorOption configures a StockThresholdMonitor
type MonitorOption func(*StockThresholdMonitor)

// WithClock overrides the time source
func WithClock(now func() time.Time) MonitorOption {
	return func(m *StockThresholdMonitor) {
		m.now = now
	}
}

// WithMonitorLogger sets the logger
func WithMonitorLogger(logger *zap.Logger) MonitorOption {
	return func(m *StockThresholdMonitor) {
		m.logger = logger
	}
}

// WithMonitorMetrics sets the metrics sink
func WithMonitorMetrics(metrics StockMetrics) MonitorOption {
	return func(m *StockThresholdMonitor) {
		m.metrics = metrics
	}
}

// NewStockThresholdMonitor creates a monitor
func NewStockThresholdMonitor(products inventory.ProductRepository, notifier AlertNotifier, guard AlertGuard, config ThresholdConfig, opts ...MonitorOption) *StockThresholdMonitor {
	if config.Critical <= 0 {
		config.Critical = DefaultCriticalStockThreshold
	}
	if config.LowStock <= 0 {
		config.LowStock = DefaultLowStockThreshold
	}
	if config.DedupWindow <= 0 {
		config.DedupWindow = DefaultAlertDedupWindow
	}

	m := &StockThresholdMonitor{
		products: products,
		notifier: notifier,
		guard:    guard,
		config:   config,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   zap.NewNop(),
		metrics:  nopStockMetrics{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the active thresholds
func (m *StockThresholdMonitor) Config() ThresholdConfig {
	return m.config
}

// EventTypes returns the event types this handler is interested in
func (m *StockThresholdMonitor) EventTypes() []string {
	return []string{inventory.EventTypeStockAdjusted}
}

// Handle evaluates the product of a StockAdjusted event when stock went down
func (m *StockThresholdMonitor) Handle(ctx context.Context, event shared.DomainEvent) error {
	adjusted, ok := event.(*inventory.StockAdjustedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockAdjusted, event.EventType())
	}
	if !adjusted.IsDecrease() {
		return nil
	}
	_, err := m.Evaluate(ctx, adjusted.ProductID)
	return err
}

// Evaluate checks the given products and creates missing alerts.
// It returns the number of notifications created. Failures for one product do
// not stop the others; they are joined into the returned error.
func (m *StockThresholdMonitor) Evaluate(ctx context.Context, productIDs ...uuid.UUID) (int, error) {
	created := 0
	var errs []error
	for _, id := range inventory.SortedProductIDs(productIDs) {
		ok, err := m.evaluateOne(ctx, id)
		if err != nil {
			m.logger.Error("low stock evaluation failed",
				zap.String("product_id", id.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, errors.Join(errs...)
}

// Scan evaluates every product currently at or below the critical threshold
func (m *StockThresholdMonitor) Scan(ctx context.Context) (int, error) {
	products, err := m.products.FindAtOrBelow(ctx, m.config.Critical)
	if err != nil {
		return 0, err
	}
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	created, err := m.Evaluate(ctx, ids...)
	m.logger.Info("low stock scan finished",
		zap.Int("candidates", len(ids)),
		zap.Int("alerts_created", created),
	)
	return created, err
}

func (m *StockThresholdMonitor) evaluateOne(ctx context.Context, productID uuid.UUID) (bool, error) {
	unlock, err := m.guard.Lock(ctx, "low_stock:"+productID.String(), alertLockTTL)
	if err != nil {
		return false, err
	}
	defer unlock()

	// Read after locking so the quantity reflects every committed adjustment before ours.
	product, err := m.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			m.logger.Debug("product vanished before evaluation", zap.String("product_id", productID.String()))
			return false, nil
		}
		return false, err
	}
	if !product.IsAtOrBelow(m.config.Critical) {
		return false, nil
	}

	since := m.now().Add(-m.config.DedupWindow)
	exists, err := m.notifier.ExistsSince(ctx, notification.TypeLowStock, productID, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	message := fmt.Sprintf("Low stock alert: %s has only %d units remaining", product.Name, product.Quantity)
	if _, err := m.notifier.Create(ctx, notification.TypeLowStock, message, &productID); err != nil {
		return false, err
	}

	m.metrics.RecordLowStockAlert(ctx)
	m.logger.Warn("low stock alert raised",
		zap.String("product_id", productID.String()),
		zap.String("product_name", product.Name),
		zap.Int64("quantity", product.Quantity),
	)
	return true, nil
}

var _ shared.EventHandler = (*StockThresholdMonitor)(nil)
