// Package router assembles the gin engine: the middleware chain and every
// /api/v1 route.
package router

import (
	"net/http"

	"github.com/erp/stockflow/internal/infrastructure/logger"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/erp/stockflow/internal/interfaces/http/handler"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Config carries the settings the engine middleware is built from
type Config struct {
	Logger           *zap.Logger
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	MeterProvider    *telemetry.MeterProvider
	CORS             middleware.CORSConfig
	Security         middleware.SecurityConfig
	MaxBodySize      int64
	TrustedProxies   []string
}

// Handlers holds the endpoint handlers. A nil handler leaves its routes unmounted.
type Handlers struct {
	System             *handler.SystemHandler
	PurchaseOrders     *handler.PurchaseOrderHandler
	SalesOrders        *handler.SalesOrderHandler
	Inventory          *handler.InventoryHandler
	Notifications      *handler.NotificationHandler
	NotificationStream *handler.NotificationStreamHandler
	Dashboard          *handler.DashboardHandler
}

// NewEngine builds the gin engine with the full middleware chain and routes.
// Middleware order: recovery, request id, tracing, request logging, metrics,
// profiling labels, CORS, security headers, body limit.
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = middleware.DefaultTracingConfig().ServiceName
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.ProfilingEnabled

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: serviceName, Enabled: cfg.TracingEnabled}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{MeterProvider: cfg.MeterProvider, Logger: log, Enabled: cfg.MeterProvider != nil}),
		middleware.ProfilingWithConfig(profiling),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.SecureWithConfig(cfg.Security),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound,
			"Route "+c.Request.Method+" "+c.Request.URL.Path+" not found",
			middleware.GetRequestID(c),
		))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine)
	for _, group := range apiGroups(h) {
		r.Register(group)
		log.Debug("Route group registered", zap.String("group", group.Name()), zap.String("prefix", group.Prefix()))
	}
	r.Setup()

	return engine, nil
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").
			GET("/ping", h.System.Ping))
	}

	if h.PurchaseOrders != nil || h.SalesOrders != nil {
		trade := NewDomainGroup("trade", "/trade")
		if po := h.PurchaseOrders; po != nil {
			trade.Group("purchase-orders", "/purchase-orders").
				POST("", po.Create).
				GET("", po.List).
				GET("/:id", po.GetByID).
				POST("/:id/transition", po.Transition)
		}
		if so := h.SalesOrders; so != nil {
			trade.Group("sales-orders", "/sales-orders").
				POST("", so.Create).
				GET("", so.List).
				GET("/:id", so.GetByID).
				POST("/:id/transition", so.Transition)
		}
		groups = append(groups, trade)
	}

	if inv := h.Inventory; inv != nil {
		groups = append(groups, NewDomainGroup("inventory", "/inventory").
			POST("/products/:id/adjustments", inv.Adjust).
			POST("/low-stock/scan", inv.ScanLowStock))
	}

	if h.Notifications != nil || h.NotificationStream != nil {
		notifications := NewDomainGroup("notifications", "/notifications")
		if n := h.Notifications; n != nil {
			notifications.
				GET("", n.List).
				GET("/unread-count", n.UnreadCount).
				POST("", n.Create).
				PUT("/read-all", n.MarkAllRead).
				PUT("/:id/read", n.MarkRead)
		}
		if h.NotificationStream != nil {
			notifications.GET("/stream", h.NotificationStream.Stream)
		}
		groups = append(groups, notifications)
	}

	if d := h.Dashboard; d != nil {
		groups = append(groups, NewDomainGroup("dashboard", "/dashboard").
			GET("/stats", d.GetStats).
			GET("/recent-activity", d.GetRecentActivity).
			GET("/revenue-by-month", d.GetRevenueByMonth))
	}

	return groups
}

// DomainGroup collects the routes of one functional area under a prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:   name,
		prefix: prefix,
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
