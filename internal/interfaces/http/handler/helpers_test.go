package handler

import (
	"testing"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	notificationapp "github.com/erp/stockflow/internal/application/notification"
	reportapp "github.com/erp/stockflow/internal/application/report"
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/infrastructure/cache"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv wires real services over an in-memory sqlite database
type testEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	broadcaster *testutil.RecordingBroadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	logger := zaptest.NewLogger(t)
	broadcaster := testutil.NewRecordingBroadcaster()

	productRepo := persistence.NewGormProductRepository(db)
	tradeScope := persistence.NewGormTradeTransactionScope(db)
	ledger := inventoryapp.NewLedger(logger, nil)

	purchaseService := tradeapp.NewPurchaseOrderService(persistence.NewGormPurchaseOrderRepository(db), tradeScope, ledger, logger)
	salesService := tradeapp.NewSalesOrderService(persistence.NewGormSalesOrderRepository(db), tradeScope, ledger, logger)
	notificationService := notificationapp.NewNotificationService(persistence.NewGormNotificationRepository(db), broadcaster, logger)
	ledgerService := inventoryapp.NewLedgerService(ledger, persistence.NewGormInventoryTransactionScope(db), nil, logger)
	monitor := inventoryapp.NewStockThresholdMonitor(
		productRepo,
		notificationService,
		cache.NewInMemoryAlertGuard(),
		inventoryapp.DefaultThresholdConfig(),
		inventoryapp.WithMonitorLogger(logger),
	)
	dashboardService := reportapp.NewDashboardService(persistence.NewGormDashboardRepository(db), inventoryapp.DefaultLowStockThreshold, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")

	purchase := NewPurchaseOrderHandler(purchaseService)
	api.POST("/trade/purchase-orders", purchase.Create)
	api.GET("/trade/purchase-orders", purchase.List)
	api.GET("/trade/purchase-orders/:id", purchase.GetByID)
	api.POST("/trade/purchase-orders/:id/transition", purchase.Transition)

	sales := NewSalesOrderHandler(salesService)
	api.POST("/trade/sales-orders", sales.Create)
	api.GET("/trade/sales-orders", sales.List)
	api.GET("/trade/sales-orders/:id", sales.GetByID)
	api.POST("/trade/sales-orders/:id/transition", sales.Transition)

	inventory := NewInventoryHandler(ledgerService, monitor)
	api.POST("/inventory/products/:id/adjustments", inventory.Adjust)
	api.POST("/inventory/low-stock/scan", inventory.ScanLowStock)

	notifications := NewNotificationHandler(notificationService)
	api.GET("/notifications", notifications.List)
	api.GET("/notifications/unread-count", notifications.UnreadCount)
	api.POST("/notifications", notifications.Create)
	api.PUT("/notifications/read-all", notifications.MarkAllRead)
	api.PUT("/notifications/:id/read", notifications.MarkRead)

	dashboard := NewDashboardHandler(dashboardService)
	api.GET("/dashboard/stats", dashboard.GetStats)
	api.GET("/dashboard/recent-activity", dashboard.GetRecentActivity)
	api.GET("/dashboard/revenue-by-month", dashboard.GetRevenueByMonth)

	return &testEnv{db: db, router: r, broadcaster: broadcaster}
}

func orderItem(productID string, quantity int64, price string) map[string]any {
	return map[string]any{"product_id": productID, "quantity": quantity, "price": price}
}
