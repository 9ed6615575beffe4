package persistence

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/report"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDashboardRepository implements report.DashboardRepository with read-only queries
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Counts returns the headline row counts
func (r *GormDashboardRepository) Counts(ctx context.Context) (*report.EntityCounts, error) {
	var counts report.EntityCounts
	targets := []struct {
		model any
		dest  *int64
	}{
		{&models.ProductModel{}, &counts.Products},
		{&models.CustomerModel{}, &counts.Customers},
		{&models.SupplierModel{}, &counts.Suppliers},
		{&models.PurchaseOrderModel{}, &counts.PurchaseOrders},
		{&models.SalesOrderModel{}, &counts.SalesOrders},
	}
	for _, target := range targets {
		if err := r.db.WithContext(ctx).Model(target.model).Count(target.dest).Error; err != nil {
			return nil, translateError("count dashboard entities", err)
		}
	}
	return &counts, nil
}

// CompletedSalesRevenue sums total_amount over completed sales orders
func (r *GormDashboardRepository) CompletedSalesRevenue(ctx context.Context) (decimal.Decimal, error) {
	revenue := decimal.Zero
	row := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status = ?", trade.OrderStatusCompleted).
		Row()
	if err := row.Err(); err != nil {
		return decimal.Zero, translateError("sum completed sales", err)
	}
	if err := row.Scan(&revenue); err != nil {
		return decimal.Zero, translateError("sum completed sales", err)
	}
	return revenue, nil
}

// ProductsBelow returns products with quantity < threshold, lowest first
func (r *GormDashboardRepository) ProductsBelow(ctx context.Context, threshold int64) ([]report.LowStockItem, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Select("id", "name", "quantity").
		Where("quantity < ?", threshold).
		Order("quantity ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find products below threshold", err)
	}

	items := make([]report.LowStockItem, len(rows))
	for i, row := range rows {
		items[i] = report.LowStockItem{ProductID: row.ID, Name: row.Name, Quantity: row.Quantity}
	}
	return items, nil
}

// RecentSales returns the newest sales orders
func (r *GormDashboardRepository) RecentSales(ctx context.Context, limit int) ([]report.ActivityEntry, error) {
	var rows []models.SalesOrderModel
	if err := r.recent(ctx, limit).Find(&rows).Error; err != nil {
		return nil, translateError("find recent sales", err)
	}

	entries := make([]report.ActivityEntry, len(rows))
	for i, row := range rows {
		entries[i] = report.ActivityEntry{
			Kind:        report.ActivitySale,
			OrderID:     row.ID,
			PartnerID:   row.CustomerID,
			Status:      row.Status.String(),
			TotalAmount: row.TotalAmount,
			CreatedAt:   row.CreatedAt.UTC(),
		}
	}
	return entries, nil
}

// RecentPurchases returns the newest purchase orders
func (r *GormDashboardRepository) RecentPurchases(ctx context.Context, limit int) ([]report.ActivityEntry, error) {
	var rows []models.PurchaseOrderModel
	if err := r.recent(ctx, limit).Find(&rows).Error; err != nil {
		return nil, translateError("find recent purchases", err)
	}

	entries := make([]report.ActivityEntry, len(rows))
	for i, row := range rows {
		supplierID := row.SupplierID
		entries[i] = report.ActivityEntry{
			Kind:        report.ActivityPurchase,
			OrderID:     row.ID,
			PartnerID:   &supplierID,
			Status:      row.Status.String(),
			TotalAmount: row.TotalAmount,
			CreatedAt:   row.CreatedAt.UTC(),
		}
	}
	return entries, nil
}

// CompletedSalesSince returns completion time and amount of sales completed at or after since
func (r *GormDashboardRepository) CompletedSalesSince(ctx context.Context, since time.Time) ([]report.RevenueEntry, error) {
	var rows []models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Select("id", "completed_at", "total_amount").
		Where("status = ? AND completed_at >= ?", trade.OrderStatusCompleted, since.UTC()).
		Order("completed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find completed sales", err)
	}

	entries := make([]report.RevenueEntry, 0, len(rows))
	for _, row := range rows {
		if row.CompletedAt == nil {
			continue
		}
		entries = append(entries, report.RevenueEntry{
			CompletedAt: row.CompletedAt.UTC(),
			Amount:      row.TotalAmount,
		})
	}
	return entries, nil
}

func (r *GormDashboardRepository) recent(ctx context.Context, limit int) *gorm.DB {
	return r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
}

var _ report.DashboardRepository = (*GormDashboardRepository)(nil)
