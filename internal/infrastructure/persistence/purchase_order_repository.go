package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find purchase order", "PurchaseOrder", id, err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the order row, then loads its items
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", orderedItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("lock purchase order", "PurchaseOrder", id, err)
	}
	return model.ToDomain(), nil
}

// Create inserts the order and its items
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError("create purchase order", err)
	}
	return nil
}

// UpdateStatus persists a transition guarded by the order version
func (r *GormPurchaseOrderRepository) UpdateStatus(ctx context.Context, order *trade.PurchaseOrder) error {
	return updateOrderStatus(ctx, r.db, &models.PurchaseOrderModel{}, "PurchaseOrder", statusValues{
		id:      order.ID,
		version: order.Version,
		values: map[string]any{
			"status":       order.Status,
			"completed_at": order.CompletedAt,
			"cancelled_at": order.CancelledAt,
			"version":      order.Version,
			"updated_at":   order.UpdatedAt,
		},
	})
}

// List returns one page of purchase orders and the total count
func (r *GormPurchaseOrderRepository) List(ctx context.Context, filter trade.OrderFilter) ([]trade.PurchaseOrder, int64, error) {
	var total int64
	if err := orderListQuery(ctx, r.db, &models.PurchaseOrderModel{}, filter).
		Count(&total).Error; err != nil {
		return nil, 0, translateError("count purchase orders", err)
	}

	var rows []models.PurchaseOrderModel
	if err := applyPage(orderListQuery(ctx, r.db, &models.PurchaseOrderModel{}, filter), filter.Filter, OrderSortFields).
		Preload("Items", orderedItems).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError("list purchase orders", err)
	}

	orders := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
