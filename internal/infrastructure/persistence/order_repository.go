package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// statusValues holds the columns rewritten by a status transition
type statusValues struct {
	id      uuid.UUID
	version int
	values  map[string]any
}

// updateOrderStatus writes a transition only if the stored version is the one
// the caller read. Zero rows affected means the order is gone or someone else won.
func updateOrderStatus(ctx context.Context, db *gorm.DB, model any, resource string, sv statusValues) error {
	op := "update " + resource + " status"
	result := db.WithContext(ctx).Model(model).
		Where("id = ? AND version = ?", sv.id, sv.version-1).
		Updates(sv.values)
	if result.Error != nil {
		return translateError(op, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", sv.id).Count(&count).Error; err != nil {
		return translateError(op, err)
	}
	if count == 0 {
		return shared.NotFoundError(resource, sv.id)
	}
	return shared.ConflictError("%s %s was modified concurrently", resource, sv.id).
		WithDetail("expected_version", sv.version-1)
}

// orderListQuery applies the status filter shared by both order listings
func orderListQuery(ctx context.Context, db *gorm.DB, model any, filter trade.OrderFilter) *gorm.DB {
	query := db.WithContext(ctx).Model(model)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// orderedItems loads order lines in the order they were submitted
func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC, id ASC")
}
