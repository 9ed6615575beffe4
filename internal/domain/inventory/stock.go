package inventory

import (
	"bytes"
	"sort"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
)

// Source types recorded on stock movements
const (
	SourceTypePurchaseOrder = "PURCHASE_ORDER"
	SourceTypeSalesOrder    = "SALES_ORDER"
	SourceTypeManual        = "MANUAL_ADJUSTMENT"
)

// MaxQuantityDelta bounds the quantity of one order line or manual adjustment
const MaxQuantityDelta int64 = 1_000_000_000

// AddQuantities returns a+b; ok is false when the sum leaves the int64 range
func AddQuantities(a, b int64) (sum int64, ok bool) {
	sum = a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// StockAdjustment is a signed quantity change requested for one product
type StockAdjustment struct {
	ProductID uuid.UUID
	Delta     int64
}

// StockChange records the effect of one applied adjustment
type StockChange struct {
	ProductID   uuid.UUID
	ProductName string
	Before      int64
	After       int64
	Delta       int64
}

// Decreased reports whether the change lowered the on-hand quantity
func (c StockChange) Decreased() bool {
	return c.Delta < 0
}

// StockSource identifies what caused a batch of adjustments
type StockSource struct {
	Type   string
	ID     uuid.UUID
	Reason string
}

// MergeAdjustments folds adjustments for the same product into one and returns
// them sorted by ascending product id. Row locks must be taken in this order so
// that two transitions touching overlapping products cannot deadlock.
func MergeAdjustments(adjustments []StockAdjustment) ([]StockAdjustment, error) {
	totals := make(map[uuid.UUID]int64, len(adjustments))
	for _, adj := range adjustments {
		if adj.ProductID == uuid.Nil {
			return nil, shared.InvalidArgumentError("product id cannot be empty")
		}
		sum, ok := AddQuantities(totals[adj.ProductID], adj.Delta)
		if !ok {
			return nil, shared.InvalidArgumentError("quantity total for product %s out of range", adj.ProductID).
				WithDetail("product_id", adj.ProductID.String())
		}
		totals[adj.ProductID] = sum
	}

	merged := make([]StockAdjustment, 0, len(totals))
	for id, delta := range totals {
		if delta == 0 {
			continue
		}
		merged = append(merged, StockAdjustment{ProductID: id, Delta: delta})
	}
	sort.Slice(merged, func(i, j int) bool {
		return bytes.Compare(merged[i].ProductID[:], merged[j].ProductID[:]) < 0
	})
	return merged, nil
}

// SortedProductIDs returns the distinct product ids in ascending order
func SortedProductIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
