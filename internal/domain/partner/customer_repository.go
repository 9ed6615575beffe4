package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the customer lookups the order engine needs
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// ExistsByID checks if a customer exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
