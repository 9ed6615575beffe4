package inventory

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxReasonLength is the longest adjustment reason accepted, in characters
const MaxReasonLength = 255

// Ledger is the only writer of product quantities.
// It is stateless; the product repository passed to Apply decides which transaction the writes join.
type Ledger struct {
	logger  *zap.Logger
	metrics StockMetrics
}

// NewLedger creates a Ledger
func NewLedger(logger *zap.Logger, metrics StockMetrics) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopStockMetrics{}
	}
	return &Ledger{logger: logger, metrics: metrics}
}

// Apply merges the adjustments per product, locks the affected rows in ascending
// id order and applies each delta with a conditional update.
// products must be bound to the caller's transaction; any error leaves the
// transaction to be rolled back by the caller.
func (l *Ledger) Apply(ctx context.Context, products inventory.ProductRepository, adjustments []inventory.StockAdjustment, source inventory.StockSource) ([]inventory.StockChange, error) {
	merged, err := inventory.MergeAdjustments(adjustments)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(merged))
	for i, adj := range merged {
		ids[i] = adj.ProductID
	}

	locked, err := products.LockForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]inventory.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}

	changes := make([]inventory.StockChange, 0, len(merged))
	for _, adj := range merged {
		product, ok := byID[adj.ProductID]
		if !ok {
			return nil, shared.NotFoundError("product", adj.ProductID)
		}
		if product.Quantity+adj.Delta < 0 {
			return nil, shared.InvariantViolationError("adjusting %s by %d would make quantity negative", product.Name, adj.Delta).
				WithDetail("product_id", adj.ProductID.String()).
				WithDetail("quantity", product.Quantity).
				WithDetail("delta", adj.Delta)
		}

		after, err := products.AdjustQuantity(ctx, adj.ProductID, adj.Delta)
		if err != nil {
			return nil, err
		}
		if after != product.Quantity+adj.Delta {
			return nil, shared.InvariantViolationError("quantity of product %s changed while locked", adj.ProductID).
				WithDetail("product_id", adj.ProductID.String())
		}

		changes = append(changes, inventory.StockChange{
			ProductID:   adj.ProductID,
			ProductName: product.Name,
			Before:      product.Quantity,
			After:       after,
			Delta:       adj.Delta,
		})
	}

	for _, c := range changes {
		l.metrics.RecordStockAdjusted(ctx, source.Type, c.Delta)
		l.logger.Debug("stock adjusted",
			zap.String("product_id", c.ProductID.String()),
			zap.Int64("before", c.Before),
			zap.Int64("after", c.After),
			zap.String("source_type", source.Type),
			zap.String("source_id", source.ID.String()),
		)
	}
	return changes, nil
}

// LedgerService runs stand-alone manual adjustments in their own transaction
type LedgerService struct {
	ledger         *Ledger
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a LedgerService
func NewLedgerService(ledger *Ledger, txScope TransactionScope, eventPublisher shared.EventPublisher, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		ledger:         ledger,
		txScope:        txScope,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Adjust applies quantity += delta to one product.
// StockAdjusted is published only after the transaction commits.
func (s *LedgerService) Adjust(ctx context.Context, productID uuid.UUID, delta int64, reason string) (*inventory.StockChange, error) {
	if productID == uuid.Nil {
		return nil, shared.InvalidArgumentError("product id cannot be empty")
	}
	if delta == 0 {
		return nil, shared.InvalidArgumentError("delta cannot be zero")
	}
	if delta > inventory.MaxQuantityDelta || delta < -inventory.MaxQuantityDelta {
		return nil, shared.InvalidArgumentError("delta cannot exceed %d in either direction", inventory.MaxQuantityDelta)
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, shared.InvalidArgumentError("reason cannot exceed %d characters", MaxReasonLength)
	}

	source := inventory.StockSource{Type: inventory.SourceTypeManual, ID: uuid.New(), Reason: reason}
	var changes []inventory.StockChange
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		changes, err = s.ledger.Apply(ctx, repos.ProductRepo(), []inventory.StockAdjustment{{ProductID: productID, Delta: delta}}, source)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(changes) != 1 {
		return nil, shared.InvariantViolationError("expected one stock change, got %d", len(changes))
	}

	s.publish(ctx, inventory.StockAdjustedEvents(changes, source))

	s.logger.Info("manual stock adjustment applied",
		zap.String("product_id", productID.String()),
		zap.Int64("delta", delta),
		zap.Int64("quantity", changes[0].After),
		zap.String("reason", reason),
	)
	return &changes[0], nil
}

func (s *LedgerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish stock events", zap.Error(err))
	}
}
