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

// SalesOrderService handles sales order business operations
type SalesOrderService struct {
	orderRepo      trade.SalesOrderRepository
	txScope        TransactionScope
	ledger         *appinventory.Ledger
	eventPublisher shared.EventPublisher
	metrics        OrderMetrics
	logger         *zap.Logger
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(orderRepo trade.SalesOrderRepository, txScope TransactionScope, ledger *appinventory.Ledger, logger *zap.Logger) *SalesOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesOrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		ledger:    ledger,
		metrics:   nopOrderMetrics{},
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the order metrics collector
func (s *SalesOrderService) SetMetrics(metrics OrderMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// Create creates a new pending sales order.
// Availability is checked without reserving stock; completion checks it again under lock.
func (s *SalesOrderService) Create(ctx context.Context, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	order, err := trade.NewSalesOrder(req.CustomerID, toLineInputs(req.Items))
	if err != nil {
		return nil, err
	}
	if err := order.VerifyTotal(req.TotalAmount); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if order.CustomerID != nil {
			exists, err := repos.CustomerRepo().ExistsByID(ctx, *order.CustomerID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.NotFoundError("customer", *order.CustomerID)
			}
		}

		ids := order.ProductIDs()
		products, err := repos.ProductRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if missing, ok := missingProduct(ids, products); ok {
			return shared.NotFoundError("product", missing)
		}
		if err := order.EnsureAvailable(productMap(products)); err != nil {
			return err
		}

		return repos.SalesOrderRepo().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	s.metrics.RecordOrderCreated(ctx, OrderTypeSales, order.TotalAmount)

	s.logger.Info("sales order created",
		zap.String("order_id", order.ID.String()),
		zap.String("total_amount", order.TotalAmount.String()),
	)

	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves a sales order with its items
func (s *SalesOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// List retrieves one page of sales orders, newest first
func (s *SalesOrderService) List(ctx context.Context, query OrderListQuery) (*OrderListResponse[SalesOrderResponse], error) {
	filter, err := toOrderFilter(query)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		items[i] = ToSalesOrderResponse(&orders[i])
	}
	return &OrderListResponse[SalesOrderResponse]{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Transition moves a pending sales order to completed or cancelled.
// Completion locks the products, re-validates availability and deducts every
// item quantity; if any item cannot be covered nothing is applied.
func (s *SalesOrderService) Transition(ctx context.Context, orderID uuid.UUID, req TransitionRequest) (*SalesOrderResponse, error) {
	target, err := trade.ParseTransitionTarget(req.Status)
	if err != nil {
		return nil, err
	}

	var (
		order   *trade.SalesOrder
		changes []inventory.StockChange
	)
	source := inventory.StockSource{Type: inventory.SourceTypeSalesOrder, ID: orderID}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.SalesOrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.TransitionTo(target); err != nil {
			return err
		}

		if target == trade.OrderStatusCompleted {
			locked, err := repos.ProductRepo().LockForUpdate(ctx, order.ProductIDs())
			if err != nil {
				return err
			}
			if err := order.EnsureAvailable(productMap(locked)); err != nil {
				return err
			}
			changes, err = s.ledger.Apply(ctx, repos.ProductRepo(), order.StockAdjustments(), source)
			if err != nil {
				return err
			}
		}

		return repos.SalesOrderRepo().UpdateStatus(ctx, order)
	})
	if err != nil {
		s.logger.Warn("sales order transition failed",
			zap.String("order_id", orderID.String()),
			zap.String("target_status", target.String()),
			zap.Error(err),
		)
		return nil, err
	}

	events := append(order.GetDomainEvents(), inventory.StockAdjustedEvents(changes, source)...)
	s.publish(ctx, events)
	order.ClearDomainEvents()
	s.metrics.RecordOrderTransition(ctx, OrderTypeSales, target.String())

	s.logger.Info("sales order transitioned",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status.String()),
		zap.Int("stock_changes", len(changes)),
	)

	resp := ToSalesOrderResponse(order)
	resp.StockChanges = toStockChangeResponses(changes)
	return &resp, nil
}

func (s *SalesOrderService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish sales order events", zap.Error(err))
	}
}

func productMap(products []inventory.Product) map[uuid.UUID]inventory.Product {
	out := make(map[uuid.UUID]inventory.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out
}
