package models

import (
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for products.
// quantity is guarded by a CHECK constraint in addition to the ledger's conditional update.
type ProductModel struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null"`
	Quantity      int64           `gorm:"not null;default:0;check:chk_products_quantity_non_negative,quantity >= 0;index"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		Quantity:      m.Quantity,
		PurchasePrice: m.PurchasePrice,
		SellingPrice:  m.SellingPrice,
		CategoryID:    m.CategoryID,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{
		Name:          p.Name,
		Quantity:      p.Quantity,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		CategoryID:    p.CategoryID,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
