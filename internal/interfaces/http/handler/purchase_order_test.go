package handler

import (
	"net/http"
	"testing"

	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPurchaseOrder(t *testing.T, env *testEnv, supplierID, productID uuid.UUID, quantity int64) tradeapp.PurchaseOrderResponse {
	t.Helper()
	w := testutil.PerformRequest(t, env.router, http.MethodPost, "/api/v1/trade/purchase-orders", map[string]any{
		"supplier_id": supplierID.String(),
		"items":       []any{orderItem(productID.String(), quantity, "2.50")},
	})
	return testutil.AssertSuccess[tradeapp.PurchaseOrderResponse](t, w, http.StatusCreated)
}

func TestPurchaseOrderHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	supplier := testutil.SeedSupplier(t, env.db, "Acme")
	product := testutil.SeedProduct(t, env.db, "Widget", 3)

	order := createPurchaseOrder(t, env, supplier.ID, product.ID, 4)

	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, supplier.ID, order.SupplierID)
	assert.True(t, decimal.NewFromInt(10).Equal(order.TotalAmount), "got %s", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Empty(t, order.StockChanges)
	assert.Equal(t, int64(3), testutil.ProductQuantity(t, env.db, product.ID), "creation must not touch stock")
}

func TestPurchaseOrderHandler_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	supplier := testutil.SeedSupplier(t, env.db, "Acme")
	product := testutil.SeedProduct(t, env.db, "Widget", 0)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "missing items",
			body:   map[string]any{"supplier_id": supplier.ID.String()},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "empty items",
			body:   map[string]any{"supplier_id": supplier.ID.String(), "items": []any{}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "malformed supplier id",
			body:   map[string]any{"supplier_id": "nope", "items": []any{orderItem(product.ID.String(), 1, "1")}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "zero quantity",
			body:   map[string]any{"supplier_id": supplier.ID.String(), "items": []any{orderItem(product.ID.String(), 0, "1")}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeInvalidArgument,
		},
		{
			name:   "quantity above limit",
			body:   map[string]any{"supplier_id": supplier.ID.String(), "items": []any{orderItem(product.ID.String(), 1_000_000_001, "1")}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "price with more than four decimals",
			body:   map[string]any{"supplier_id": supplier.ID.String(), "items": []any{orderItem(product.ID.String(), 3, "0.33335")}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeInvalidArgument,
		},
		{
			name:   "total beyond stored precision",
			body:   map[string]any{"supplier_id": supplier.ID.String(), "items": []any{orderItem(product.ID.String(), 1_000_000_000, "1000000")}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeInvalidArgument,
		},
		{
			name:   "unknown supplier",
			body:   map[string]any{"supplier_id": uuid.NewString(), "items": []any{orderItem(product.ID.String(), 1, "1")}},
			status: http.StatusNotFound,
			code:   dto.ErrCodeNotFound,
		},
		{
			name:   "unknown product",
			body:   map[string]any{"supplier_id": supplier.ID.String(), "items": []any{orderItem(uuid.NewString(), 1, "1")}},
			status: http.StatusNotFound,
			code:   dto.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.PerformRequest(t, env.router, http.MethodPost, "/api/v1/trade/purchase-orders", tt.body)
			testutil.AssertError(t, w, tt.status, tt.code)
		})
	}
}

func TestPurchaseOrderHandler_Complete_AddsStock(t *testing.T) {
	env := newTestEnv(t)
	supplier := testutil.SeedSupplier(t, env.db, "Acme")
	product := testutil.SeedProduct(t, env.db, "Widget", 3)
	order := createPurchaseOrder(t, env, supplier.ID, product.ID, 4)

	w := testutil.PerformRequest(t, env.router, http.MethodPost,
		"/api/v1/trade/purchase-orders/"+order.ID.String()+"/transition", map[string]string{"status": "completed"})
	completed := testutil.AssertSuccess[tradeapp.PurchaseOrderResponse](t, w, http.StatusOK)

	assert.Equal(t, "completed", completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	require.Len(t, completed.StockChanges, 1)
	assert.Equal(t, int64(3), completed.StockChanges[0].Before)
	assert.Equal(t, int64(7), completed.StockChanges[0].After)
	assert.Equal(t, int64(7), testutil.ProductQuantity(t, env.db, product.ID))

	t.Run("second completion conflicts and leaves stock alone", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.router, http.MethodPost,
			"/api/v1/trade/purchase-orders/"+order.ID.String()+"/transition", map[string]string{"status": "completed"})
		testutil.AssertError(t, w, http.StatusConflict, dto.ErrCodeConflict)
		assert.Equal(t, int64(7), testutil.ProductQuantity(t, env.db, product.ID))
	})
}

func TestPurchaseOrderHandler_Cancel(t *testing.T) {
	env := newTestEnv(t)
	supplier := testutil.SeedSupplier(t, env.db, "Acme")
	product := testutil.SeedProduct(t, env.db, "Widget", 3)
	order := createPurchaseOrder(t, env, supplier.ID, product.ID, 4)

	w := testutil.PerformRequest(t, env.router, http.MethodPost,
		"/api/v1/trade/purchase-orders/"+order.ID.String()+"/transition", map[string]string{"status": "cancelled"})
	cancelled := testutil.AssertSuccess[tradeapp.PurchaseOrderResponse](t, w, http.StatusOK)

	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Empty(t, cancelled.StockChanges)
	assert.Equal(t, int64(3), testutil.ProductQuantity(t, env.db, product.ID))
}

func TestPurchaseOrderHandler_Transition_Errors(t *testing.T) {
	env := newTestEnv(t)
	supplier := testutil.SeedSupplier(t, env.db, "Acme")
	product := testutil.SeedProduct(t, env.db, "Widget", 3)
	order := createPurchaseOrder(t, env, supplier.ID, product.ID, 4)

	t.Run("invalid target", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.router, http.MethodPost,
			"/api/v1/trade/purchase-orders/"+order.ID.String()+"/transition", map[string]string{"status": "shipped"})
		testutil.AssertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidArgument)
	})

	t.Run("missing status", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.router, http.MethodPost,
			"/api/v1/trade/purchase-orders/"+order.ID.String()+"/transition", map[string]string{})
		testutil.AssertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("unknown order", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.router, http.MethodPost,
			"/api/v1/trade/purchase-orders/"+uuid.NewString()+"/transition", map[string]string{"status": "completed"})
		testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := testutil.PerformRequest(t, env.router, http.MethodPost,
			"/api/v1/trade/purchase-orders/abc/transition", map[string]string{"status": "completed"})
		testutil.AssertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidArgument)
	})
}

func TestPurchaseOrderHandler_GetByID(t *testing.T) {
	env := newTestEnv(t)
	supplier := testutil.SeedSupplier(t, env.db, "Acme")
	product := testutil.SeedProduct(t, env.db, "Widget", 3)
	order := createPurchaseOrder(t, env, supplier.ID, product.ID, 4)

	w := testutil.PerformRequest(t, env.router, http.MethodGet, "/api/v1/trade/purchase-orders/"+order.ID.String(), nil)
	got := testutil.AssertSuccess[tradeapp.PurchaseOrderResponse](t, w, http.StatusOK)
	assert.Equal(t, order.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(4), got.Items[0].Quantity)

	w = testutil.PerformRequest(t, env.router, http.MethodGet, "/api/v1/trade/purchase-orders/"+uuid.NewString(), nil)
	testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestPurchaseOrderHandler_List(t *testing.T) {
	env := newTestEnv(t)
	supplier := testutil.SeedSupplier(t, env.db, "Acme")
	product := testutil.SeedProduct(t, env.db, "Widget", 3)
	first := createPurchaseOrder(t, env, supplier.ID, product.ID, 1)
	createPurchaseOrder(t, env, supplier.ID, product.ID, 2)

	w := testutil.PerformRequest(t, env.router, http.MethodPost,
		"/api/v1/trade/purchase-orders/"+first.ID.String()+"/transition", map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.PerformRequest(t, env.router, http.MethodGet, "/api/v1/trade/purchase-orders?page=1&page_size=10", nil)
	page := testutil.DecodeEnvelope[[]tradeapp.PurchaseOrderResponse](t, w)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, page.Data, 2)
	require.NotNil(t, page.Meta)
	assert.Equal(t, int64(2), page.Meta.Total)

	w = testutil.PerformRequest(t, env.router, http.MethodGet, "/api/v1/trade/purchase-orders?status=cancelled", nil)
	cancelled := testutil.AssertSuccess[[]tradeapp.PurchaseOrderResponse](t, w, http.StatusOK)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)

	w = testutil.PerformRequest(t, env.router, http.MethodGet, "/api/v1/trade/purchase-orders?status=shipped", nil)
	testutil.AssertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}
