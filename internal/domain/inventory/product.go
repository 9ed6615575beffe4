package inventory

import (
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the stock-keeping view of a catalog product.
// Only the ledger changes Quantity; everything else is owned by master-data management.
type Product struct {
	shared.BaseEntity
	Name          string
	Quantity      int64
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	CategoryID    *uuid.UUID
}

// CanCover reports whether the on-hand quantity covers the requested amount
func (p *Product) CanCover(requested int64) bool {
	return requested <= p.Quantity
}

// IsAtOrBelow reports whether the on-hand quantity is at or below the threshold
func (p *Product) IsAtOrBelow(threshold int64) bool {
	return p.Quantity <= threshold
}

// IsBelow reports whether the on-hand quantity is strictly below the threshold
func (p *Product) IsBelow(threshold int64) bool {
	return p.Quantity < threshold
}
