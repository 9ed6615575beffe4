package trade

import (
	"time"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrder is the aggregate root for goods coming in from a supplier
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	SupplierID  uuid.UUID
	Status      OrderStatus
	TotalAmount decimal.Decimal
	CompletedAt *time.Time
	CancelledAt *time.Time
	Items       []OrderItem
}

// NewPurchaseOrder creates a pending purchase order.
// The total is computed once from the caller-supplied prices and never changes afterwards.
func NewPurchaseOrder(supplierID uuid.UUID, lines []LineInput) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.InvalidArgumentError("supplier id cannot be empty")
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Status:            OrderStatusPending,
	}
	items, err := newOrderItems(order.ID, lines)
	if err != nil {
		return nil, err
	}
	total, err := orderTotal(items)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.TotalAmount = total

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// TransitionTo moves the order to the target status
func (o *PurchaseOrder) TransitionTo(target OrderStatus) error {
	switch target {
	case OrderStatusCompleted:
		return o.Complete()
	case OrderStatusCancelled:
		return o.Cancel()
	}
	return shared.InvalidArgumentError("invalid target status %q", target)
}

// Complete marks the order completed. The caller applies StockAdjustments in the same transaction.
func (o *PurchaseOrder) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return transitionConflict("purchase order", o.Status, OrderStatusCompleted)
	}

	now := time.Now().UTC()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderCompletedEvent(o))
	return nil
}

// Cancel cancels a pending order without touching stock
func (o *PurchaseOrder) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return transitionConflict("purchase order", o.Status, OrderStatusCancelled)
	}

	now := time.Now().UTC()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o))
	return nil
}

// StockAdjustments returns the incoming quantities applied on completion
func (o *PurchaseOrder) StockAdjustments() []inventory.StockAdjustment {
	return stockAdjustments(o.Items, 1)
}

// ProductIDs returns the distinct products on the order in lock order
func (o *PurchaseOrder) ProductIDs() []uuid.UUID {
	return ProductIDs(o.Items)
}

// IsPending returns true if the order can still transition
func (o *PurchaseOrder) IsPending() bool {
	return o.Status == OrderStatusPending
}

// ItemCount returns the number of order lines
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}
