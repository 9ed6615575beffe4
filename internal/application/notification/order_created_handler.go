package notification

import (
	"context"
	"fmt"

	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Creator creates notifications
type Creator interface {
	Create(ctx context.Context, t notification.Type, message string, relatedID *uuid.UUID) (*notification.Notification, error)
}

// OrderCreatedHandler turns order creation events into purchase/sale notifications
type OrderCreatedHandler struct {
	creator Creator
	logger  *zap.Logger
}

// NewOrderCreatedHandler creates a new OrderCreatedHandler
func NewOrderCreatedHandler(creator Creator, logger *zap.Logger) *OrderCreatedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderCreatedHandler{creator: creator, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCreatedHandler) EventTypes() []string {
	return []string{
		trade.EventTypePurchaseOrderCreated,
		trade.EventTypeSalesOrderCreated,
	}
}

// Handle creates the notification for one order event
func (h *OrderCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		t       notification.Type
		message string
		orderID uuid.UUID
	)

	switch e := event.(type) {
	case *trade.PurchaseOrderCreatedEvent:
		t = notification.TypePurchase
		orderID = e.OrderID
		message = fmt.Sprintf("New purchase order created: %d item(s), total %s", e.ItemCount, e.TotalAmount.StringFixed(2))
	case *trade.SalesOrderCreatedEvent:
		t = notification.TypeSale
		orderID = e.OrderID
		message = fmt.Sprintf("New sales order created: %d item(s), total %s", e.ItemCount, e.TotalAmount.StringFixed(2))
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if _, err := h.creator.Create(ctx, t, message, &orderID); err != nil {
		h.logger.Error("failed to create order notification",
			zap.String("order_id", orderID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*OrderCreatedHandler)(nil)
