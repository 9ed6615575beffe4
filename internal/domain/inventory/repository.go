package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository reads products and applies ledger deltas.
// AdjustQuantity is the only write path for Product.Quantity.
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds products by IDs. Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// LockForUpdate loads the given products with row locks, in ascending id order.
	// Must be called inside a transaction. Returns NOT_FOUND if any id is missing.
	LockForUpdate(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// AdjustQuantity applies quantity += delta as a single conditional update and
	// returns the new quantity. Returns NOT_FOUND if the product does not exist and
	// INVARIANT_VIOLATION if the result would be negative.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) (int64, error)

	// FindAtOrBelow returns products with quantity <= threshold, lowest first
	FindAtOrBelow(ctx context.Context, threshold int64) ([]Product, error)
}
