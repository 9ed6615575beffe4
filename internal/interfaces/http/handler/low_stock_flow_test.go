package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	notificationapp "github.com/erp/stockflow/internal/application/notification"
	reportapp "github.com/erp/stockflow/internal/application/report"
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/domain/report"
	"github.com/erp/stockflow/internal/infrastructure/cache"
	"github.com/erp/stockflow/internal/infrastructure/event"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// eventClock is a mutable time source shared with the threshold monitor
type eventClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *eventClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *eventClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newEventDrivenEnv wires order completions to low-stock alerts through the
// in-memory event bus the same way the server does.
func newEventDrivenEnv(t *testing.T, clock *eventClock) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	logger := zaptest.NewLogger(t)
	broadcaster := testutil.NewRecordingBroadcaster()

	notificationService := notificationapp.NewNotificationService(persistence.NewGormNotificationRepository(db), broadcaster, logger)
	monitor := inventoryapp.NewStockThresholdMonitor(
		persistence.NewGormProductRepository(db),
		notificationService,
		cache.NewInMemoryAlertGuard(),
		inventoryapp.DefaultThresholdConfig(),
		inventoryapp.WithMonitorLogger(logger),
		inventoryapp.WithClock(clock.Now),
	)

	bus := event.NewInMemoryEventBus(logger)
	bus.Subscribe(monitor)
	bus.Subscribe(notificationapp.NewOrderCreatedHandler(notificationService, logger))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() {
		assert.NoError(t, bus.Stop(context.Background()))
	})

	ledger := inventoryapp.NewLedger(logger, nil)
	salesService := tradeapp.NewSalesOrderService(persistence.NewGormSalesOrderRepository(db), persistence.NewGormTradeTransactionScope(db), ledger, logger)
	salesService.SetEventPublisher(bus)
	ledgerService := inventoryapp.NewLedgerService(ledger, persistence.NewGormInventoryTransactionScope(db), bus, logger)
	dashboardService := reportapp.NewDashboardService(persistence.NewGormDashboardRepository(db), inventoryapp.DefaultLowStockThreshold, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")

	sales := NewSalesOrderHandler(salesService)
	api.POST("/trade/sales-orders", sales.Create)
	api.POST("/trade/sales-orders/:id/transition", sales.Transition)

	inventory := NewInventoryHandler(ledgerService, monitor)
	api.POST("/inventory/products/:id/adjustments", inventory.Adjust)
	api.POST("/inventory/low-stock/scan", inventory.ScanLowStock)

	dashboard := NewDashboardHandler(dashboardService)
	api.GET("/dashboard/stats", dashboard.GetStats)

	return &testEnv{db: db, router: r, broadcaster: broadcaster}
}

func lowStockAlerts(t *testing.T, env *testEnv, productID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&models.NotificationModel{}).
		Where("type = ? AND related_id = ?", notification.TypeLowStock, productID).
		Count(&count).Error)
	return count
}

func sellAndComplete(t *testing.T, env *testEnv, productID uuid.UUID, quantity int64) {
	t.Helper()
	order := createSalesOrder(t, env, map[string]any{
		"items": []any{orderItem(productID.String(), quantity, "2")},
	})
	w := transitionSalesOrder(t, env, order.ID, "completed")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLowStockAlerts_RaisedOncePerWindowFromOrderEvents(t *testing.T) {
	clock := &eventClock{now: time.Now().UTC()}
	env := newEventDrivenEnv(t, clock)
	product := testutil.SeedProduct(t, env.db, "Widget", 5)
	bystander := testutil.SeedProduct(t, env.db, "Gadget", 50)

	sellAndComplete(t, env, product.ID, 1)
	assert.Equal(t, int64(1), lowStockAlerts(t, env, product.ID), "first drop to the critical level alerts")

	sellAndComplete(t, env, product.ID, 1)
	assert.Equal(t, int64(3), testutil.ProductQuantity(t, env.db, product.ID))
	assert.Equal(t, int64(1), lowStockAlerts(t, env, product.ID), "second drop inside the window is deduplicated")
	assert.Equal(t, 1, env.broadcaster.CountType(notification.TypeLowStock))

	w := testutil.PerformRequest(t, env.router, http.MethodPost, "/api/v1/inventory/low-stock/scan", nil)
	scan := testutil.AssertSuccess[inventoryapp.ScanResultResponse](t, w, http.StatusOK)
	assert.Equal(t, 0, scan.AlertsCreated)
	assert.Equal(t, int64(1), lowStockAlerts(t, env, product.ID))

	sellAndComplete(t, env, bystander.ID, 1)
	assert.Zero(t, lowStockAlerts(t, env, bystander.ID), "stock above the critical level never alerts")

	clock.Advance(inventoryapp.DefaultAlertDedupWindow + time.Hour)

	sellAndComplete(t, env, product.ID, 1)
	assert.Equal(t, int64(2), lowStockAlerts(t, env, product.ID), "a drop after the window alerts again")
	assert.Equal(t, 2, env.broadcaster.CountType(notification.TypeLowStock))
}

func TestLowStockAlerts_ManualAdjustmentAlerts(t *testing.T) {
	clock := &eventClock{now: time.Now().UTC()}
	env := newEventDrivenEnv(t, clock)
	product := testutil.SeedProduct(t, env.db, "Widget", 8)

	w := testutil.PerformRequest(t, env.router, http.MethodPost,
		"/api/v1/inventory/products/"+product.ID.String()+"/adjustments",
		map[string]any{"delta": 4, "reason": "restock"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Zero(t, lowStockAlerts(t, env, product.ID), "increases are not evaluated")

	w = testutil.PerformRequest(t, env.router, http.MethodPost,
		"/api/v1/inventory/products/"+product.ID.String()+"/adjustments",
		map[string]any{"delta": -10, "reason": "shrinkage"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), lowStockAlerts(t, env, product.ID))
}

func TestDashboardStats_NeverRaisesAlerts(t *testing.T) {
	clock := &eventClock{now: time.Now().UTC()}
	env := newEventDrivenEnv(t, clock)
	low := testutil.SeedProduct(t, env.db, "Nearly Gone", 1)
	testutil.SeedProduct(t, env.db, "Plenty", 100)

	for i := 0; i < 3; i++ {
		w := testutil.PerformRequest(t, env.router, http.MethodGet, "/api/v1/dashboard/stats", nil)
		stats := testutil.AssertSuccess[report.DashboardStats](t, w, http.StatusOK)
		require.Len(t, stats.LowStock, 1)
		assert.Equal(t, low.ID, stats.LowStock[0].ProductID)
	}

	var count int64
	require.NoError(t, env.db.Model(&models.NotificationModel{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, env.broadcaster.Count())
}
