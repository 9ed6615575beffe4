package trade

import (
	"context"

	"github.com/shopspring/decimal"
)

// Order types used for metric labels
const (
	OrderTypePurchase = "purchase"
	OrderTypeSales    = "sales"
)

// OrderMetrics receives order lifecycle measurements
type OrderMetrics interface {
	RecordOrderCreated(ctx context.Context, orderType string, amount decimal.Decimal)
	RecordOrderTransition(ctx context.Context, orderType, status string)
}

type nopOrderMetrics struct{}

func (nopOrderMetrics) RecordOrderCreated(context.Context, string, decimal.Decimal) {}
func (nopOrderMetrics) RecordOrderTransition(context.Context, string, string) {}
