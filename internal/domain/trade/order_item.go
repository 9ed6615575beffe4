package trade

import (
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Limits that keep order values inside the DECIMAL(18,4) columns
const (
	MaxItemQuantity       = inventory.MaxQuantityDelta
	PriceScale      int32 = 4
)

// MaxAmount is the exclusive upper bound for a price or an order total (10^14)
var MaxAmount = decimal.New(1, 18-PriceScale)

// LineInput is a requested order line before it becomes an immutable item
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int64
	Price     decimal.Decimal
}

// OrderItem is one immutable line of a purchase or sales order.
// LineNo is the 1-based position of the line as submitted.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	LineNo    int
	ProductID uuid.UUID
	Quantity  int64
	Price     decimal.Decimal
}

// Amount returns Quantity * Price
func (i OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// newOrderItems validates the lines and turns them into items owned by orderID
func newOrderItems(orderID uuid.UUID, lines []LineInput) ([]OrderItem, error) {
	if len(lines) == 0 {
		return nil, shared.InvalidArgumentError("order must contain at least one item")
	}

	items := make([]OrderItem, 0, len(lines))
	for idx, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.InvalidArgumentError("item %d: product id cannot be empty", idx).
				WithDetail("item_index", idx)
		}
		if line.Quantity <= 0 {
			return nil, shared.InvalidArgumentError("item %d: quantity must be positive", idx).
				WithDetail("item_index", idx)
		}
		if line.Quantity > MaxItemQuantity {
			return nil, shared.InvalidArgumentError("item %d: quantity cannot exceed %d", idx, MaxItemQuantity).
				WithDetail("item_index", idx)
		}
		if line.Price.IsNegative() {
			return nil, shared.InvalidArgumentError("item %d: price cannot be negative", idx).
				WithDetail("item_index", idx)
		}
		if !line.Price.Equal(line.Price.Truncate(PriceScale)) {
			return nil, shared.InvalidArgumentError("item %d: price cannot have more than %d decimal places", idx, PriceScale).
				WithDetail("item_index", idx)
		}
		if line.Price.GreaterThanOrEqual(MaxAmount) {
			return nil, shared.InvalidArgumentError("item %d: price must be below %s", idx, MaxAmount).
				WithDetail("item_index", idx)
		}
		items = append(items, OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			LineNo:    idx + 1,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return items, nil
}

// TotalOf returns the sum of item amounts
func TotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return total
}

// orderTotal computes the order total and rejects one the amount column cannot hold.
// Prices carry at most PriceScale decimals, so the total is exact at that scale.
func orderTotal(items []OrderItem) (decimal.Decimal, error) {
	total := TotalOf(items)
	if total.GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, shared.InvalidArgumentError("order total %s must be below %s", total, MaxAmount)
	}
	return total, nil
}

// RequestedQuantities sums the item quantities per product
func RequestedQuantities(items []OrderItem) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(items))
	for _, item := range items {
		sum, ok := inventory.AddQuantities(out[item.ProductID], item.Quantity)
		if !ok {
			return nil, shared.InvalidArgumentError("requested quantity for product %s out of range", item.ProductID).
				WithDetail("product_id", item.ProductID.String())
		}
		out[item.ProductID] = sum
	}
	return out, nil
}

// ProductIDs returns the distinct product ids referenced by the items in ascending order
func ProductIDs(items []OrderItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return inventory.SortedProductIDs(ids)
}

func stockAdjustments(items []OrderItem, sign int64) []inventory.StockAdjustment {
	out := make([]inventory.StockAdjustment, 0, len(items))
	for _, item := range items {
		out = append(out, inventory.StockAdjustment{ProductID: item.ProductID, Delta: sign * item.Quantity})
	}
	return out
}
