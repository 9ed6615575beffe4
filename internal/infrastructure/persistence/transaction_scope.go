package persistence

import (
	"context"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	apptrade "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/trade"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope using GORM transactions
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

// GormTradeTransactionScope implements the trade TransactionScope using GORM transactions.
// Order row locks, product row locks and ledger updates share one transaction.
type GormTradeTransactionScope struct {
	db *gorm.DB
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope
func NewGormTradeTransactionScope(db *gorm.DB) *GormTradeTransactionScope {
	return &GormTradeTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

func runInTransaction(ctx context.Context, db *gorm.DB, fn func(*gormTransactionalRepositories) error) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	// Commit and begin failures come back as raw driver errors
	return translateError("transaction", err)
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductRepo() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// PurchaseOrderRepo returns the purchase order repository scoped to the current transaction
func (r *gormTransactionalRepositories) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// SalesOrderRepo returns the sales order repository scoped to the current transaction
func (r *gormTransactionalRepositories) SalesOrderRepo() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

// SupplierRepo returns the supplier repository scoped to the current transaction
func (r *gormTransactionalRepositories) SupplierRepo() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

// CustomerRepo returns the customer repository scoped to the current transaction
func (r *gormTransactionalRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

var (
	_ appinventory.TransactionScope          = (*GormInventoryTransactionScope)(nil)
	_ apptrade.TransactionScope              = (*GormTradeTransactionScope)(nil)
	_ appinventory.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ apptrade.TransactionalRepositories     = (*gormTransactionalRepositories)(nil)
)
