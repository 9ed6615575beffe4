package partner

import (
	"context"

	"github.com/google/uuid"
)

// SupplierRepository defines the supplier lookups the order engine needs
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// ExistsByID checks if a supplier exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
