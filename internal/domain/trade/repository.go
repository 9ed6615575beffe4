package trade

import (
	"context"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows order listings. A nil Status lists every status.
type OrderFilter struct {
	shared.Filter
	Status *OrderStatus
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate loads the order with a row lock held until the transaction ends.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// Create inserts the order and its items
	Create(ctx context.Context, order *PurchaseOrder) error

	// UpdateStatus persists a status transition. The stored version must equal
	// order.Version-1 or CONFLICT is returned.
	UpdateStatus(ctx context.Context, order *PurchaseOrder) error

	// List returns one page of orders, newest first, and the total row count
	List(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, int64, error)
}

// SalesOrderRepository defines the interface for sales order persistence
type SalesOrderRepository interface {
	// FindByID finds a sales order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByIDForUpdate loads the order with a row lock held until the transaction ends.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// Create inserts the order and its items
	Create(ctx context.Context, order *SalesOrder) error

	// UpdateStatus persists a status transition with the same version rule as purchase orders
	UpdateStatus(ctx context.Context, order *SalesOrder) error

	// List returns one page of orders, newest first, and the total row count
	List(ctx context.Context, filter OrderFilter) ([]SalesOrder, int64, error)
}
