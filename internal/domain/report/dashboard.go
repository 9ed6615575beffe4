package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityCounts holds the headline row counts shown on the dashboard
type EntityCounts struct {
	Products       int64 `json:"products"`
	Customers      int64 `json:"customers"`
	Suppliers      int64 `json:"suppliers"`
	PurchaseOrders int64 `json:"purchase_orders"`
	SalesOrders    int64 `json:"sales_orders"`
}

// LowStockItem is a product whose quantity is under the warning threshold
type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
}

// DashboardStats is a read model for the landing dashboard
type DashboardStats struct {
	EntityCounts
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	LowStock     []LowStockItem  `json:"low_stock"`
}

// ActivityKind distinguishes the order type in the activity feed
type ActivityKind string

const (
	ActivitySale     ActivityKind = "sale"
	ActivityPurchase ActivityKind = "purchase"
)

// ActivityEntry is one order in the recent activity feed
type ActivityEntry struct {
	Kind        ActivityKind    `json:"kind"`
	OrderID     uuid.UUID       `json:"order_id"`
	PartnerID   *uuid.UUID      `json:"partner_id,omitempty"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RevenueEntry is the amount and completion time of one completed sales order
type RevenueEntry struct {
	CompletedAt time.Time
	Amount      decimal.Decimal
}

// MonthlyRevenue is the completed sales revenue for one calendar month
type MonthlyRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Start   time.Time       `json:"start"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// DashboardRepository defines the read-only queries behind the dashboard.
// Implementations must not modify any state.
type DashboardRepository interface {
	// Counts returns the headline row counts
	Counts(ctx context.Context) (*EntityCounts, error)

	// CompletedSalesRevenue sums total_amount over completed sales orders
	CompletedSalesRevenue(ctx context.Context) (decimal.Decimal, error)

	// ProductsBelow returns products with quantity < threshold, lowest first
	ProductsBelow(ctx context.Context, threshold int64) ([]LowStockItem, error)

	// RecentSales returns the newest sales orders
	RecentSales(ctx context.Context, limit int) ([]ActivityEntry, error)

	// RecentPurchases returns the newest purchase orders
	RecentPurchases(ctx context.Context, limit int) ([]ActivityEntry, error)

	// CompletedSalesSince returns completed sales orders whose completion time is >= since
	CompletedSalesSince(ctx context.Context, since time.Time) ([]RevenueEntry, error)
}
