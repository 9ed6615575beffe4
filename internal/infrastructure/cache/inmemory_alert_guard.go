package cache

import (
	"context"
	"sync"
	"time"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
)

// InMemoryAlertGuard implements AlertGuard for a single process.
// Each key is a one-slot semaphore; a held slot is freed by unlock or by ttl expiry,
// whichever comes first.
type InMemoryAlertGuard struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewInMemoryAlertGuard creates a new in-memory guard
func NewInMemoryAlertGuard() *InMemoryAlertGuard {
	return &InMemoryAlertGuard{slots: make(map[string]chan struct{})}
}

func (g *InMemoryAlertGuard) slot(key string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		g.slots[key] = ch
	}
	return ch
}

// Lock blocks until the key is held or ctx ends
func (g *InMemoryAlertGuard) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	ch := g.slot(key)

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, shared.TransientError("acquire alert lock", ctx.Err())
	}

	var once sync.Once
	release := func() {
		once.Do(func() { <-ch })
	}

	if ttl > 0 {
		timer := time.AfterFunc(ttl, release)
		return func() {
			timer.Stop()
			release()
		}, nil
	}
	return release, nil
}

var _ appinventory.AlertGuard = (*InMemoryAlertGuard)(nil)
