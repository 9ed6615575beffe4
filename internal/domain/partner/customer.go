package partner

import (
	"github.com/erp/stockflow/internal/domain/shared"
)

// Customer is the read-only view of a customer that sales orders may reference
type Customer struct {
	shared.BaseEntity
	Name string
}
