package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AlertGuardFactory chooses the alert guard backend from configuration
type AlertGuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// AlertGuardFactoryOption is a functional option for configuring the factory
type AlertGuardFactoryOption func(*AlertGuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) AlertGuardFactoryOption {
	return func(f *AlertGuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the in-process guard.
// Default is true.
func WithInMemoryFallback(allow bool) AlertGuardFactoryOption {
	return func(f *AlertGuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithPingTimeout bounds the startup connectivity check
func WithPingTimeout(d time.Duration) AlertGuardFactoryOption {
	return func(f *AlertGuardFactory) {
		f.pingTimeout = d
	}
}

// NewAlertGuardFactory creates a new factory
func NewAlertGuardFactory(cfg config.RedisConfig, opts ...AlertGuardFactoryOption) *AlertGuardFactory {
	f := &AlertGuardFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisGuard connects to Redis and returns a distributed guard
func (f *AlertGuardFactory) CreateRedisGuard() (*RedisAlertGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	guard := NewRedisAlertGuard(client, WithGuardLogger(f.logger))

	ctx, cancel := context.WithTimeout(context.Background(), f.pingTimeout)
	defer cancel()
	if err := guard.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", f.redisConfig.Addr(), err)
	}
	return guard, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// CreateGuard returns the Redis guard when Redis is configured and reachable,
// otherwise the in-memory guard. The returned closer releases the backend.
// Without Redis, low-stock deduplication holds only within one process.
func (f *AlertGuardFactory) CreateGuard() (appinventory.AlertGuard, io.Closer, error) {
	if !f.redisConfig.Enabled() {
		f.logger.Info("redis not configured, using in-memory alert guard")
		return NewInMemoryAlertGuard(), nopCloser{}, nil
	}

	guard, err := f.CreateRedisGuard()
	if err == nil {
		f.logger.Info("using Redis alert guard", zap.String("addr", f.redisConfig.Addr()))
		return guard, guard, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for alert guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory alert guard. "+
		"Low-stock alerts are only deduplicated within this process.",
		zap.Error(err),
	)
	return NewInMemoryAlertGuard(), nopCloser{}, nil
}
