package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order with its items
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find sales order", "SalesOrder", id, err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the order row, then loads its items
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", orderedItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("lock sales order", "SalesOrder", id, err)
	}
	return model.ToDomain(), nil
}

// Create inserts the order and its items
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *trade.SalesOrder) error {
	model := models.SalesOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError("create sales order", err)
	}
	return nil
}

// UpdateStatus persists a transition guarded by the order version
func (r *GormSalesOrderRepository) UpdateStatus(ctx context.Context, order *trade.SalesOrder) error {
	return updateOrderStatus(ctx, r.db, &models.SalesOrderModel{}, "SalesOrder", statusValues{
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

// List returns one page of sales orders and the total count
func (r *GormSalesOrderRepository) List(ctx context.Context, filter trade.OrderFilter) ([]trade.SalesOrder, int64, error) {
	var total int64
	if err := orderListQuery(ctx, r.db, &models.SalesOrderModel{}, filter).
		Count(&total).Error; err != nil {
		return nil, 0, translateError("count sales orders", err)
	}

	var rows []models.SalesOrderModel
	if err := applyPage(orderListQuery(ctx, r.db, &models.SalesOrderModel{}, filter), filter.Filter, OrderSortFields).
		Preload("Items", orderedItems).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError("list sales orders", err)
	}

	orders := make([]trade.SalesOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
