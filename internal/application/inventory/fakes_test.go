package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
)

// memProductRepo is an in-memory ProductRepository that records lock order
type memProductRepo struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*inventory.Product
	locked    [][]uuid.UUID
	adjustErr error
}

func newMemProductRepo(products ...inventory.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[uuid.UUID]*inventory.Product)}
	for i := range products {
		p := products[i]
		r.products[p.ID] = &p
	}
	return r
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.NotFoundError("product", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) LockForUpdate(_ context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = append(r.locked, append([]uuid.UUID(nil), ids...))
	out := make([]inventory.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := r.products[id]
		if !ok {
			return nil, shared.NotFoundError("product", id)
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) AdjustQuantity(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adjustErr != nil {
		return 0, r.adjustErr
	}
	p, ok := r.products[id]
	if !ok {
		return 0, shared.NotFoundError("product", id)
	}
	if p.Quantity+delta < 0 {
		return 0, shared.InvariantViolationError("negative quantity")
	}
	p.Quantity += delta
	return p.Quantity, nil
}

func (r *memProductRepo) FindAtOrBelow(_ context.Context, threshold int64) ([]inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Product, 0)
	for _, p := range r.products {
		if p.Quantity <= threshold {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (r *memProductRepo) quantity(id uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Quantity
}

// memNotifier stores notifications stamped with a controllable clock
type memNotifier struct {
	mu            sync.Mutex
	now           func() time.Time
	notifications []notification.Notification
}

func newMemNotifier(now func() time.Time) *memNotifier {
	return &memNotifier{now: now}
}

func (n *memNotifier) Create(_ context.Context, t notification.Type, message string, relatedID *uuid.UUID) (*notification.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec := notification.Notification{ID: uuid.New(), Type: t, Message: message, RelatedID: relatedID, CreatedAt: n.now()}
	n.notifications = append(n.notifications, rec)
	return &rec, nil
}

func (n *memNotifier) ExistsSince(_ context.Context, t notification.Type, relatedID uuid.UUID, since time.Time) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, rec := range n.notifications {
		if rec.Type == t && rec.RelatedID != nil && *rec.RelatedID == relatedID && !rec.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (n *memNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notifications)
}

// mutexGuard serialises by key within the process
type mutexGuard struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexGuard() *mutexGuard {
	return &mutexGuard{locks: make(map[string]*sync.Mutex)}
}

func (g *mutexGuard) Lock(_ context.Context, key string, _ time.Duration) (func(), error) {
	g.mu.Lock()
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	g.mu.Unlock()
	l.Lock()
	return l.Unlock, nil
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, 0)
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newProduct(name string, qty int64) inventory.Product {
	return inventory.Product{BaseEntity: shared.NewBaseEntity(), Name: name, Quantity: qty}
}
