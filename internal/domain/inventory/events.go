package inventory

import (
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeStockAdjusted = "StockAdjusted"
)

// StockAdjustedEvent is raised after a committed ledger adjustment
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	OldQuantity int64     `json:"old_quantity"`
	NewQuantity int64     `json:"new_quantity"`
	Delta       int64     `json:"delta"`
	SourceType  string    `json:"source_type"`
	SourceID    uuid.UUID `json:"source_id"`
	Reason      string    `json:"reason,omitempty"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(change StockChange, source StockSource) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeProduct, change.ProductID),
		ProductID:       change.ProductID,
		ProductName:     change.ProductName,
		OldQuantity:     change.Before,
		NewQuantity:     change.After,
		Delta:           change.Delta,
		SourceType:      source.Type,
		SourceID:        source.ID,
		Reason:          source.Reason,
	}
}

// EventType returns the event type name
func (e *StockAdjustedEvent) EventType() string {
	return EventTypeStockAdjusted
}

// IsDecrease reports whether the adjustment lowered the quantity
func (e *StockAdjustedEvent) IsDecrease() bool {
	return e.Delta < 0
}

// StockAdjustedEvents converts committed changes into events
func StockAdjustedEvents(changes []StockChange, source StockSource) []shared.DomainEvent {
	events := make([]shared.DomainEvent, 0, len(changes))
	for _, change := range changes {
		events = append(events, NewStockAdjustedEvent(change, source))
	}
	return events
}
