package partner

import (
	"github.com/erp/stockflow/internal/domain/shared"
)

// Supplier is the read-only view of a supplier that purchase orders reference.
// Supplier master data is maintained elsewhere.
type Supplier struct {
	shared.BaseEntity
	Name string
}
