package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	notificationapp "github.com/erp/stockflow/internal/application/notification"
	reportapp "github.com/erp/stockflow/internal/application/report"
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/infrastructure/cache"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/erp/stockflow/internal/interfaces/http/handler"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandlers(t *testing.T) Handlers {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	log := zaptest.NewLogger(t)
	ledger := inventoryapp.NewLedger(log, nil)
	tradeScope := persistence.NewGormTradeTransactionScope(db)
	stream := handler.NewNotificationStreamHandler(handler.WithStreamLogger(log))
	t.Cleanup(stream.Stop)

	notifications := notificationapp.NewNotificationService(
		persistence.NewGormNotificationRepository(db),
		notification.MultiBroadcaster{stream},
		log,
	)
	monitor := inventoryapp.NewStockThresholdMonitor(
		persistence.NewGormProductRepository(db),
		notifications,
		cache.NewInMemoryAlertGuard(),
		inventoryapp.DefaultThresholdConfig(),
	)

	return Handlers{
		System: handler.NewSystemHandler(persistence.NewDatabaseFromGorm(db), "test"),
		PurchaseOrders: handler.NewPurchaseOrderHandler(
			tradeapp.NewPurchaseOrderService(persistence.NewGormPurchaseOrderRepository(db), tradeScope, ledger, log)),
		SalesOrders: handler.NewSalesOrderHandler(
			tradeapp.NewSalesOrderService(persistence.NewGormSalesOrderRepository(db), tradeScope, ledger, log)),
		Inventory: handler.NewInventoryHandler(
			inventoryapp.NewLedgerService(ledger, persistence.NewGormInventoryTransactionScope(db), nil, log), monitor),
		Notifications:      handler.NewNotificationHandler(notifications),
		NotificationStream: stream,
		Dashboard: handler.NewDashboardHandler(
			reportapp.NewDashboardService(persistence.NewGormDashboardRepository(db), inventoryapp.DefaultLowStockThreshold, log)),
	}
}

func newTestEngine(t *testing.T, mutate func(*Config)) *gin.Engine {
	t.Helper()

	cfg := Config{
		Logger:      zaptest.NewLogger(t),
		CORS:        middleware.DefaultCORSConfig(),
		Security:    middleware.DefaultSecurityConfig(),
		MaxBodySize: 1 << 20,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	engine, err := NewEngine(cfg, newTestHandlers(t))
	require.NoError(t, err)
	return engine
}

func TestNewEngine_RegistersEveryRoute(t *testing.T) {
	engine := newTestEngine(t, nil)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /api/v1/system/ping",
		"POST /api/v1/trade/purchase-orders",
		"GET /api/v1/trade/purchase-orders",
		"GET /api/v1/trade/purchase-orders/:id",
		"POST /api/v1/trade/purchase-orders/:id/transition",
		"POST /api/v1/trade/sales-orders",
		"GET /api/v1/trade/sales-orders",
		"GET /api/v1/trade/sales-orders/:id",
		"POST /api/v1/trade/sales-orders/:id/transition",
		"POST /api/v1/inventory/products/:id/adjustments",
		"POST /api/v1/inventory/low-stock/scan",
		"GET /api/v1/notifications",
		"GET /api/v1/notifications/unread-count",
		"POST /api/v1/notifications",
		"PUT /api/v1/notifications/:id/read",
		"PUT /api/v1/notifications/read-all",
		"GET /api/v1/notifications/stream",
		"GET /api/v1/dashboard/stats",
		"GET /api/v1/dashboard/recent-activity",
		"GET /api/v1/dashboard/revenue-by-month",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "route %s not registered", route)
	}
	assert.Len(t, engine.Routes(), len(expected))
}

func TestNewEngine_Health(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := testutil.PerformRequest(t, engine, http.MethodGet, "/health", nil)
	resp := testutil.AssertSuccess[handler.HealthResponse](t, w, http.StatusOK)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "test", resp.Version)
}

func TestNewEngine_NoRoute(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/unknown", nil)
	testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeRouteNotFound)

	env := testutil.DecodeEnvelope[any](t, w)
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), env.Error.RequestID, "404s carry the request id")
}

func TestNewEngine_MiddlewareChain(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.CORS.AllowOrigins = []string{"https://shop.example.com"}
		cfg.MaxBodySize = 64
	})

	t.Run("request id echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("security headers", func(t *testing.T) {
		w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/system/ping", nil)
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/notifications", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("body limit", func(t *testing.T) {
		body := `{"type":"system","message":"` + strings.Repeat("x", 200) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		testutil.AssertError(t, w, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge)
	})
}

func TestNewEngine_PartialHandlers(t *testing.T) {
	engine, err := NewEngine(Config{}, Handlers{System: handler.NewSystemHandler(nil, "")})
	require.NoError(t, err)

	assert.Len(t, engine.Routes(), 2)
	w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/dashboard/stats", nil)
	testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeRouteNotFound)
}

func TestRouter(t *testing.T) {
	t.Run("defaults to v1", func(t *testing.T) {
		r := NewRouter(gin.New())
		assert.Equal(t, "v1", r.apiVersion)
		assert.Empty(t, r.registrars)
	})

	t.Run("custom version prefix", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine, WithAPIVersion("v2"))
		r.Register(NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		}))
		r.Setup()

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v2/test/ping", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("trade", "/trade")
		assert.Equal(t, "trade", g.Name())
		assert.Equal(t, "/trade", g.Prefix())
	})

	t.Run("nested groups and group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("trade", "/trade").Use(func(c *gin.Context) {
			c.Header("X-Group", "trade")
			c.Next()
		})
		g.Group("orders", "/orders").
			GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, "put "+c.Param("id")) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/trade/orders", nil)
		assert.Equal(t, "list", w.Body.String())
		assert.Equal(t, "trade", w.Header().Get("X-Group"))

		w = testutil.PerformRequest(t, engine, http.MethodPut, "/api/v1/trade/orders/42", nil)
		assert.Equal(t, "put 42", w.Body.String())
	})
}
