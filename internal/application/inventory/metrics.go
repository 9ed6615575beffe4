package inventory

import "context"

// StockMetrics receives ledger and alerting measurements
type StockMetrics interface {
	RecordStockAdjusted(ctx context.Context, sourceType string, delta int64)
	RecordLowStockAlert(ctx context.Context)
}

type nopStockMetrics struct{}

func (nopStockMetrics) RecordStockAdjusted(context.Context, string, int64) {}
func (nopStockMetrics) RecordLowStockAlert(context.Context) {}
