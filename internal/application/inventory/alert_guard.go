package inventory

import (
	"context"
	"time"
)

// AlertGuard serialises the check-then-create of low-stock alerts per key
// across goroutines and, with a shared backend, across processes.
type AlertGuard interface {
	// Lock blocks until the key is held or ctx ends. The lock expires after ttl
	// even if unlock is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
