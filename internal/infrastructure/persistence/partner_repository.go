package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find supplier", "Supplier", id, err)
	}
	return model.ToDomain(), nil
}

// ExistsByID checks if a supplier exists
func (r *GormSupplierRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, translateError("check supplier", err)
	}
	return count > 0, nil
}

// Create inserts a supplier
func (r *GormSupplierRepository) Create(ctx context.Context, s *partner.Supplier) error {
	if err := r.db.WithContext(ctx).Create(models.SupplierModelFromDomain(s)).Error; err != nil {
		return translateError("create supplier", err)
	}
	return nil
}

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find customer", "Customer", id, err)
	}
	return model.ToDomain(), nil
}

// ExistsByID checks if a customer exists
func (r *GormCustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, translateError("check customer", err)
	}
	return count > 0, nil
}

// Create inserts a customer
func (r *GormCustomerRepository) Create(ctx context.Context, c *partner.Customer) error {
	if err := r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(c)).Error; err != nil {
		return translateError("create customer", err)
	}
	return nil
}

var (
	_ partner.SupplierRepository = (*GormSupplierRepository)(nil)
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
)
