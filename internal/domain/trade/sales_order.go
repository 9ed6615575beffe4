package trade

import (
	"time"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrder is the aggregate root for goods going out to a customer
type SalesOrder struct {
	shared.BaseAggregateRoot
	CustomerID  *uuid.UUID
	Status      OrderStatus
	TotalAmount decimal.Decimal
	CompletedAt *time.Time
	CancelledAt *time.Time
	Items       []OrderItem
}

// NewSalesOrder creates a pending sales order. The customer is optional (walk-in sale).
func NewSalesOrder(customerID *uuid.UUID, lines []LineInput) (*SalesOrder, error) {
	if customerID != nil && *customerID == uuid.Nil {
		customerID = nil
	}

	order := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
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

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))
	return order, nil
}

// VerifyTotal rejects a caller-declared total that differs from the computed one
func (o *SalesOrder) VerifyTotal(declared *decimal.Decimal) error {
	if declared == nil || declared.Equal(o.TotalAmount) {
		return nil
	}
	return shared.InvalidArgumentError("total_amount %s does not match computed total %s", declared.String(), o.TotalAmount.String()).
		WithDetail("declared_total", declared.String()).
		WithDetail("computed_total", o.TotalAmount.String())
}

// EnsureAvailable checks the requested quantities against the given products.
// Quantities for the same product on several lines are summed first.
func (o *SalesOrder) EnsureAvailable(products map[uuid.UUID]inventory.Product) error {
	requestedByProduct, err := RequestedQuantities(o.Items)
	if err != nil {
		return err
	}
	for productID, requested := range requestedByProduct {
		product, ok := products[productID]
		if !ok {
			return shared.NotFoundError("product", productID)
		}
		if !product.CanCover(requested) {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				"insufficient stock for product "+product.Name).
				WithDetail("product_id", productID.String()).
				WithDetail("requested", requested).
				WithDetail("available", product.Quantity)
		}
	}
	return nil
}

// TransitionTo moves the order to the target status
func (o *SalesOrder) TransitionTo(target OrderStatus) error {
	switch target {
	case OrderStatusCompleted:
		return o.Complete()
	case OrderStatusCancelled:
		return o.Cancel()
	}
	return shared.InvalidArgumentError("invalid target status %q", target)
}

// Complete marks the order completed. Availability must be re-checked under lock by the caller.
func (o *SalesOrder) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return transitionConflict("sales order", o.Status, OrderStatusCompleted)
	}

	now := time.Now().UTC()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewSalesOrderCompletedEvent(o))
	return nil
}

// Cancel cancels a pending order without touching stock
func (o *SalesOrder) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return transitionConflict("sales order", o.Status, OrderStatusCancelled)
	}

	now := time.Now().UTC()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewSalesOrderCancelledEvent(o))
	return nil
}

// StockAdjustments returns the outgoing quantities applied on completion
func (o *SalesOrder) StockAdjustments() []inventory.StockAdjustment {
	return stockAdjustments(o.Items, -1)
}

// ProductIDs returns the distinct products on the order in lock order
func (o *SalesOrder) ProductIDs() []uuid.UUID {
	return ProductIDs(o.Items)
}

// IsPending returns true if the order can still transition
func (o *SalesOrder) IsPending() bool {
	return o.Status == OrderStatusPending
}

// ItemCount returns the number of order lines
func (o *SalesOrder) ItemCount() int {
	return len(o.Items)
}
