package telemetry

import (
	"context"

	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockLevelProvider implements StockLevelProvider using GORM.
type GormStockLevelProvider struct {
	db *gorm.DB
}

// NewGormStockLevelProvider creates a new GormStockLevelProvider.
func NewGormStockLevelProvider(db *gorm.DB) *GormStockLevelProvider {
	return &GormStockLevelProvider{db: db}
}

// CountAtOrBelow counts products with quantity <= threshold.
func (p *GormStockLevelProvider) CountAtOrBelow(ctx context.Context, threshold int64) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("quantity <= ?", threshold).
		Count(&count).Error
	return count, err
}
