package trade

import (
	"context"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/trade"
)

// TransactionScope runs an order operation in one database transaction.
// The status update, the ledger writes and every row lock share that transaction.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to the current transaction
type TransactionalRepositories interface {
	ProductRepo() inventory.ProductRepository
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	SalesOrderRepo() trade.SalesOrderRepository
	SupplierRepo() partner.SupplierRepository
	CustomerRepo() partner.CustomerRepository
}
