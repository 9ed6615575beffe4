package trade

import (
	"context"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo      trade.PurchaseOrderRepository
	txScope        TransactionScope
	ledger         *appinventory.Ledger
	eventPublisher shared.EventPublisher
	metrics        OrderMetrics
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo trade.PurchaseOrderRepository, txScope TransactionScope, ledger *appinventory.Ledger, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		ledger:    ledger,
		metrics:   nopOrderMetrics{},
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the order metrics collector
func (s *PurchaseOrderService) SetMetrics(metrics OrderMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// Create creates a new pending purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := trade.NewPurchaseOrder(req.SupplierID, toLineInputs(req.Items))
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.SupplierRepo().ExistsByID(ctx, order.SupplierID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NotFoundError("supplier", order.SupplierID)
		}

		ids := order.ProductIDs()
		products, err := repos.ProductRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if missing, ok := missingProduct(ids, products); ok {
			return shared.NotFoundError("product", missing)
		}

		return repos.PurchaseOrderRepo().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	s.metrics.RecordOrderCreated(ctx, OrderTypePurchase, order.TotalAmount)

	s.logger.Info("purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("supplier_id", order.SupplierID.String()),
		zap.String("total_amount", order.TotalAmount.String()),
	)

	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves a purchase order with its items
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// List retrieves one page of purchase orders, newest first
func (s *PurchaseOrderService) List(ctx context.Context, query OrderListQuery) (*OrderListResponse[PurchaseOrderResponse], error) {
	filter, err := toOrderFilter(query)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		items[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return &OrderListResponse[PurchaseOrderResponse]{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Transition moves a pending purchase order to completed or cancelled.
// Completion adds every item quantity to stock in the same transaction as the status change.
func (s *PurchaseOrderService) Transition(ctx context.Context, orderID uuid.UUID, req TransitionRequest) (*PurchaseOrderResponse, error) {
	target, err := trade.ParseTransitionTarget(req.Status)
	if err != nil {
		return nil, err
	}

	var (
		order   *trade.PurchaseOrder
		changes []inventory.StockChange
	)
	source := inventory.StockSource{Type: inventory.SourceTypePurchaseOrder, ID: orderID}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.TransitionTo(target); err != nil {
			return err
		}

		if target == trade.OrderStatusCompleted {
			changes, err = s.ledger.Apply(ctx, repos.ProductRepo(), order.StockAdjustments(), source)
			if err != nil {
				return err
			}
		}

		return repos.PurchaseOrderRepo().UpdateStatus(ctx, order)
	})
	if err != nil {
		s.logger.Warn("purchase order transition failed",
			zap.String("order_id", orderID.String()),
			zap.String("target_status", target.String()),
			zap.Error(err),
		)
		return nil, err
	}

	events := append(order.GetDomainEvents(), inventory.StockAdjustedEvents(changes, source)...)
	s.publish(ctx, events)
	order.ClearDomainEvents()
	s.metrics.RecordOrderTransition(ctx, OrderTypePurchase, target.String())

	s.logger.Info("purchase order transitioned",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status.String()),
		zap.Int("stock_changes", len(changes)),
	)

	resp := ToPurchaseOrderResponse(order)
	resp.StockChanges = toStockChangeResponses(changes)
	return &resp, nil
}

func (s *PurchaseOrderService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish purchase order events", zap.Error(err))
	}
}
