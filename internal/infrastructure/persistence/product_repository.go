package persistence

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find product", "Product", id, err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds products by IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	if len(ids) == 0 {
		return []inventory.Product{}, nil
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find products", err)
	}
	return productsToDomain(rows), nil
}

// LockForUpdate takes row locks in ascending id order so that two transactions
// touching overlapping products always lock them in the same sequence.
func (r *GormProductRepository) LockForUpdate(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	sorted := uniqueSortedIDs(ids)
	if len(sorted) == 0 {
		return []inventory.Product{}, nil
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("lock products", err)
	}

	if len(rows) != len(sorted) {
		found := make(map[uuid.UUID]struct{}, len(rows))
		for _, row := range rows {
			found[row.ID] = struct{}{}
		}
		for _, id := range sorted {
			if _, ok := found[id]; !ok {
				return nil, shared.NotFoundError("Product", id)
			}
		}
	}
	return productsToDomain(rows), nil
}

// AdjustQuantity applies quantity += delta with the non-negative guard in the WHERE clause
func (r *GormProductRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&models.ProductModel{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, translateError("adjust product quantity", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return 0, translateError("adjust product quantity", err)
		}
		if count == 0 {
			return 0, shared.NotFoundError("Product", id)
		}
		return 0, shared.InvariantViolationError(
			"adjusting product %s by %d would make its quantity negative", id, delta)
	}

	var model models.ProductModel
	if err := db.Select("quantity").First(&model, "id = ?", id).Error; err != nil {
		return 0, notFoundOr("read product quantity", "Product", id, err)
	}
	return model.Quantity, nil
}

// FindAtOrBelow returns products with quantity <= threshold, lowest first
func (r *GormProductRepository) FindAtOrBelow(ctx context.Context, threshold int64) ([]inventory.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("quantity <= ?", threshold).
		Order("quantity ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find low stock products", err)
	}
	return productsToDomain(rows), nil
}

// Create inserts a product. Used for seeding and tests.
func (r *GormProductRepository) Create(ctx context.Context, p *inventory.Product) error {
	if err := r.db.WithContext(ctx).Create(models.ProductModelFromDomain(p)).Error; err != nil {
		return translateError("create product", err)
	}
	return nil
}

func productsToDomain(rows []models.ProductModel) []inventory.Product {
	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

func uniqueSortedIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := slices.Clone(ids)
	// bytewise order matches PostgreSQL's uuid ordering
	slices.SortFunc(sorted, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(sorted)
}

var _ inventory.ProductRepository = (*GormProductRepository)(nil)
