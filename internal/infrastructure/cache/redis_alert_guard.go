package cache

import (
	"context"
	"fmt"
	"time"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultAlertKeyPrefix = "stockflow:alert-lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock that was re-acquired by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisAlertGuard implements AlertGuard with SET NX PX locks shared by every
// instance connected to the same Redis
type RedisAlertGuard struct {
	client        redis.UniversalClient
	keyPrefix     string
	retryInterval time.Duration
	logger        *zap.Logger
}

// RedisAlertGuardOption configures a RedisAlertGuard
type RedisAlertGuardOption func(*RedisAlertGuard)

// WithKeyPrefix overrides the key namespace
func WithKeyPrefix(prefix string) RedisAlertGuardOption {
	return func(g *RedisAlertGuard) {
		if prefix != "" {
			g.keyPrefix = prefix
		}
	}
}

// WithRetryInterval sets how often a blocked Lock re-attempts acquisition
func WithRetryInterval(d time.Duration) RedisAlertGuardOption {
	return func(g *RedisAlertGuard) {
		if d > 0 {
			g.retryInterval = d
		}
	}
}

// WithGuardLogger sets the logger
func WithGuardLogger(logger *zap.Logger) RedisAlertGuardOption {
	return func(g *RedisAlertGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewRedisAlertGuard creates a guard on an existing client
func NewRedisAlertGuard(client redis.UniversalClient, opts ...RedisAlertGuardOption) *RedisAlertGuard {
	g := &RedisAlertGuard{
		client:        client,
		keyPrefix:     defaultAlertKeyPrefix,
		retryInterval: 25 * time.Millisecond,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Lock blocks until the key is held or ctx ends
func (g *RedisAlertGuard) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := g.keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(g.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := g.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, shared.TransientError("acquire alert lock", ctx.Err())
			}
			return nil, shared.TransientError("acquire alert lock", err)
		}
		if ok {
			return g.releaser(fullKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, shared.TransientError("acquire alert lock", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (g *RedisAlertGuard) releaser(key, token string) func() {
	return func() {
		// Release on a fresh context so a cancelled request still frees the key.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.client, []string{key}, token).Err(); err != nil {
			g.logger.Warn("failed to release alert lock, it will expire",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

// Ping checks the connection
func (g *RedisAlertGuard) Ping(ctx context.Context) error {
	if err := g.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (g *RedisAlertGuard) Close() error {
	return g.client.Close()
}

var _ appinventory.AlertGuard = (*RedisAlertGuard)(nil)
