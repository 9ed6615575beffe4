package persistence

import (
	"context"
	"errors"
	"testing"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	apptrade "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInventoryTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := newSQLiteDB(t)
		p := seedProduct(t, db, "Widget", 5)
		scope := NewGormInventoryTransactionScope(db)

		err := scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			_, err := repos.ProductRepo().AdjustQuantity(ctx, p.ID, 3)
			return err
		})
		require.NoError(t, err)

		reloaded, err := NewGormProductRepository(db).FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), reloaded.Quantity)
	})

	t.Run("rolls back every write when fn fails", func(t *testing.T) {
		db := newSQLiteDB(t)
		a := seedProduct(t, db, "A", 5)
		b := seedProduct(t, db, "B", 1)
		scope := NewGormInventoryTransactionScope(db)

		err := scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			if _, err := repos.ProductRepo().AdjustQuantity(ctx, a.ID, -2); err != nil {
				return err
			}
			_, err := repos.ProductRepo().AdjustQuantity(ctx, b.ID, -2)
			return err
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvariantViolation))

		reloaded, err := NewGormProductRepository(db).FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), reloaded.Quantity)
	})
}

func TestGormTradeTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	supplier := seedSupplier(t, db)
	order := newPurchaseOrder(t, db, supplier.ID, 3)
	scope := NewGormTradeTransactionScope(db)

	sentinel := errors.New("boom")
	err := scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
		locked, err := repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := locked.Complete(); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().UpdateStatus(ctx, locked); err != nil {
			return err
		}
		exists, err := repos.SupplierRepo().ExistsByID(ctx, supplier.ID)
		require.NoError(t, err)
		assert.True(t, exists)
		return sentinel
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrTransient))

	found, err := NewGormPurchaseOrderRepository(db).FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Version)
	assert.True(t, found.IsPending())
}
