package trade

import (
	"errors"
	"testing"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSalesOrder(t *testing.T) {
	customerID := uuid.New()
	order, err := NewSalesOrder(&customerID, []LineInput{line(uuid.New(), 2, "19.99")})
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPending, order.Status)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, customerID, *order.CustomerID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("39.98")))

	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSalesOrderCreated, events[0].EventType())
}

func TestNewSalesOrder_WalkIn(t *testing.T) {
	nilID := uuid.Nil
	order, err := NewSalesOrder(&nilID, []LineInput{line(uuid.New(), 1, "1")})
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)

	order, err = NewSalesOrder(nil, []LineInput{line(uuid.New(), 1, "1")})
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)
}

func TestNewSalesOrder_EmptyItems(t *testing.T) {
	_, err := NewSalesOrder(nil, []LineInput{})
	assert.True(t, errors.Is(err, shared.ErrInvalidArgument))
}

func TestSalesOrder_VerifyTotal(t *testing.T) {
	order, err := NewSalesOrder(nil, []LineInput{line(uuid.New(), 3, "5")})
	require.NoError(t, err)

	assert.NoError(t, order.VerifyTotal(nil))
	match := decimal.RequireFromString("15.00")
	assert.NoError(t, order.VerifyTotal(&match))

	mismatch := decimal.RequireFromString("14.99")
	err = order.VerifyTotal(&mismatch)
	assert.True(t, errors.Is(err, shared.ErrInvalidArgument))
}

func TestSalesOrder_EnsureAvailable(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	order, err := NewSalesOrder(nil, []LineInput{line(a, 3, "1"), line(a, 3, "1"), line(b, 1, "1")})
	require.NoError(t, err)

	products := map[uuid.UUID]inventory.Product{
		a: {Name: "Widget", Quantity: 6},
		b: {Name: "Gadget", Quantity: 1},
	}
	assert.NoError(t, order.EnsureAvailable(products))

	products[a] = inventory.Product{Name: "Widget", Quantity: 5}
	err = order.EnsureAvailable(products)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, int64(6), domainErr.Details["requested"])
	assert.Equal(t, int64(5), domainErr.Details["available"])

	delete(products, b)
	products[a] = inventory.Product{Name: "Widget", Quantity: 100}
	err = order.EnsureAvailable(products)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestSalesOrder_CompleteDeductsStock(t *testing.T) {
	p := uuid.New()
	order, err := NewSalesOrder(nil, []LineInput{line(p, 4, "1")})
	require.NoError(t, err)

	require.NoError(t, order.TransitionTo(OrderStatusCompleted))
	assert.Equal(t, OrderStatusCompleted, order.Status)
	adjustments := order.StockAdjustments()
	require.Len(t, adjustments, 1)
	assert.Equal(t, int64(-4), adjustments[0].Delta)

	err = order.TransitionTo(OrderStatusCancelled)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestSalesOrder_Cancel(t *testing.T) {
	order, err := NewSalesOrder(nil, []LineInput{line(uuid.New(), 1, "1")})
	require.NoError(t, err)
	order.ClearDomainEvents()

	require.NoError(t, order.Cancel())
	assert.Equal(t, OrderStatusCancelled, order.Status)
	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSalesOrderCancelled, events[0].EventType())
}
