package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	notificationapp "github.com/erp/stockflow/internal/application/notification"
	reportapp "github.com/erp/stockflow/internal/application/report"
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/infrastructure/cache"
	"github.com/erp/stockflow/internal/infrastructure/config"
	"github.com/erp/stockflow/internal/infrastructure/event"
	"github.com/erp/stockflow/internal/infrastructure/logger"
	"github.com/erp/stockflow/internal/infrastructure/migration"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/internal/infrastructure/scheduler"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/erp/stockflow/internal/interfaces/http/handler"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/erp/stockflow/internal/interfaces/http/router"
	"github.com/erp/stockflow/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Stockflow API
//	@version		1.0
//	@description	Order lifecycle and inventory consistency service
//	@BasePath		/api/v1

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting stockflow",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: log export, tracer, meter, profiler
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init logger provider: %w", err)
	}
	defer shutdown(log, "logger provider", lp.Shutdown)
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer shutdown(log, "tracer provider", tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	defer shutdown(log, "meter provider", mp.Shutdown)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		return fmt.Errorf("init profiler: %w", err)
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && tp.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("dbname", cfg.Database.DBName))

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		return fmt.Errorf("register database tracing: %w", err)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if mp.IsEnabled() {
		poolMetrics, err := telemetry.NewDBPoolMetrics(mp.Meter("stockflow.db"), sqlDB, log)
		if err != nil {
			return fmt.Errorf("init db pool metrics: %w", err)
		}
		defer func() { _ = poolMetrics.Stop() }()
	}

	migrator, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Repositories and transaction scopes
	productRepo := persistence.NewGormProductRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	tradeScope := persistence.NewGormTradeTransactionScope(db.DB)

	// Alert guard: Redis when configured, in-process otherwise
	guard, guardCloser, err := cache.NewAlertGuardFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateGuard()
	if err != nil {
		return err
	}
	defer func() { _ = guardCloser.Close() }()

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             mp.Meter("stockflow.business"),
		Logger:            log,
		StockLevels:       telemetry.NewGormStockLevelProvider(db.DB),
		CriticalThreshold: cfg.Inventory.CriticalStockThreshold,
	})
	if err != nil {
		return fmt.Errorf("init business metrics: %w", err)
	}
	defer businessMetrics.Stop()

	// Notification stream and services
	stream := handler.NewNotificationStreamHandler(
		handler.WithStreamLogger(log),
		handler.WithStreamHeartbeat(cfg.SSE.HeartbeatInterval),
		handler.WithStreamBufferSize(cfg.SSE.ClientBufferSize),
	)
	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	notificationService := notificationapp.NewNotificationService(
		notificationRepo,
		notification.MultiBroadcaster{stream},
		log,
	)

	ledger := inventoryapp.NewLedger(log, businessMetrics)
	monitor := inventoryapp.NewStockThresholdMonitor(
		productRepo,
		notificationService,
		guard,
		inventoryapp.ThresholdConfig{
			LowStock:    cfg.Inventory.LowStockThreshold,
			Critical:    cfg.Inventory.CriticalStockThreshold,
			DedupWindow: cfg.Inventory.AlertDedupWindow,
		},
		inventoryapp.WithMonitorLogger(log),
		inventoryapp.WithMonitorMetrics(businessMetrics),
	)

	eventBus := event.NewInMemoryEventBus(log, event.WithHandlerTimeout(cfg.Event.HandlerTimeout))
	eventBus.Subscribe(monitor)
	eventBus.Subscribe(notificationapp.NewOrderCreatedHandler(notificationService, log))
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	purchaseOrderService := tradeapp.NewPurchaseOrderService(purchaseOrderRepo, tradeScope, ledger, log)
	purchaseOrderService.SetEventPublisher(eventBus)
	purchaseOrderService.SetMetrics(businessMetrics)

	salesOrderService := tradeapp.NewSalesOrderService(salesOrderRepo, tradeScope, ledger, log)
	salesOrderService.SetEventPublisher(eventBus)
	salesOrderService.SetMetrics(businessMetrics)

	ledgerService := inventoryapp.NewLedgerService(ledger, inventoryScope, eventBus, log)
	dashboardService := reportapp.NewDashboardService(dashboardRepo, cfg.Inventory.LowStockThreshold, log)

	sweeper, err := scheduler.NewLowStockSweeper(scheduler.LowStockSweeperConfig{
		Interval: cfg.Inventory.ScanInterval,
	}, monitor, log)
	if err != nil {
		return err
	}
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sweeper.Stop(stopCtx); err != nil {
			log.Error("Error stopping low stock sweeper", zap.Error(err))
		}
	}()

	// HTTP
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.IsProduction()

	engine, err := router.NewEngine(router.Config{
		Logger:           log,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   tp.IsEnabled(),
		ProfilingEnabled: profiler.IsEnabled(),
		MeterProvider:    mp,
		CORS:             corsCfg,
		Security:         securityCfg,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		System:             handler.NewSystemHandler(db, version),
		PurchaseOrders:     handler.NewPurchaseOrderHandler(purchaseOrderService),
		SalesOrders:        handler.NewSalesOrderHandler(salesOrderService),
		Inventory:          handler.NewInventoryHandler(ledgerService, monitor),
		Notifications:      handler.NewNotificationHandler(notificationService),
		NotificationStream: stream,
		Dashboard:          handler.NewDashboardHandler(dashboardService),
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	// Streams never finish on their own; stop them before draining requests.
	stream.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
