package trade

import (
	"context"
	"sync"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
)

// memStore is an in-memory database whose Execute serialises transactions and
// restores the previous state when fn fails.
type memStore struct {
	txMu      sync.Mutex
	products  map[uuid.UUID]inventory.Product
	suppliers map[uuid.UUID]bool
	customers map[uuid.UUID]bool
	purchases map[uuid.UUID]trade.PurchaseOrder
	sales     map[uuid.UUID]trade.SalesOrder

	failUpdateStatus error
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[uuid.UUID]inventory.Product),
		suppliers: make(map[uuid.UUID]bool),
		customers: make(map[uuid.UUID]bool),
		purchases: make(map[uuid.UUID]trade.PurchaseOrder),
		sales:     make(map[uuid.UUID]trade.SalesOrder),
	}
}

func (s *memStore) addProduct(name string, qty int64) inventory.Product {
	p := inventory.Product{BaseEntity: shared.NewBaseEntity(), Name: name, Quantity: qty}
	s.products[p.ID] = p
	return p
}

func (s *memStore) quantity(id uuid.UUID) int64 {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.products[id].Quantity
}

func (s *memStore) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	products := cloneMap(s.products)
	purchases := cloneMap(s.purchases)
	sales := cloneMap(s.sales)
	if err := fn(memRepos{s}); err != nil {
		s.products, s.purchases, s.sales = products, purchases, sales
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memRepos struct{ s *memStore }

func (r memRepos) ProductRepo() inventory.ProductRepository { return memProducts{r.s} }
func (r memRepos) PurchaseOrderRepo() trade.PurchaseOrderRepository { return memPurchases{r.s} }
func (r memRepos) SalesOrderRepo() trade.SalesOrderRepository { return memSales{r.s} }
func (r memRepos) SupplierRepo() partner.SupplierRepository { return memPartners{r.s.suppliers} }
func (r memRepos) CustomerRepo() partner.CustomerRepository { return memCustomers{r.s.customers} }

type memProducts struct{ s *memStore }

func (r memProducts) FindByID(_ context.Context, id uuid.UUID) (*inventory.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, shared.NotFoundError("product", id)
	}
	return &p, nil
}

func (r memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	out := make([]inventory.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) LockForUpdate(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	out, _ := r.FindByIDs(ctx, ids)
	if len(out) != len(ids) {
		for _, id := range ids {
			if _, ok := r.s.products[id]; !ok {
				return nil, shared.NotFoundError("product", id)
			}
		}
	}
	return out, nil
}

func (r memProducts) AdjustQuantity(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	p, ok := r.s.products[id]
	if !ok {
		return 0, shared.NotFoundError("product", id)
	}
	if p.Quantity+delta < 0 {
		return 0, shared.InvariantViolationError("negative quantity")
	}
	p.Quantity += delta
	r.s.products[id] = p
	return p.Quantity, nil
}

func (r memProducts) FindAtOrBelow(_ context.Context, threshold int64) ([]inventory.Product, error) {
	out := make([]inventory.Product, 0)
	for _, p := range r.s.products {
		if p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

type memPurchases struct{ s *memStore }

func (r memPurchases) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	o, ok := r.s.purchases[id]
	if !ok {
		return nil, shared.NotFoundError("purchase order", id)
	}
	o.Items = append([]trade.OrderItem(nil), o.Items...)
	return &o, nil
}

func (r memPurchases) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.FindByID(ctx, id)
}

func (r memPurchases) Create(_ context.Context, o *trade.PurchaseOrder) error {
	stored := *o
	stored.ClearDomainEvents()
	r.s.purchases[o.ID] = stored
	return nil
}

func (r memPurchases) UpdateStatus(_ context.Context, o *trade.PurchaseOrder) error {
	if r.s.failUpdateStatus != nil {
		return r.s.failUpdateStatus
	}
	current, ok := r.s.purchases[o.ID]
	if !ok || current.Version != o.Version-1 {
		return shared.ConflictError("purchase order was modified concurrently")
	}
	stored := *o
	stored.ClearDomainEvents()
	r.s.purchases[o.ID] = stored
	return nil
}

func (r memPurchases) List(_ context.Context, _ trade.OrderFilter) ([]trade.PurchaseOrder, int64, error) {
	out := make([]trade.PurchaseOrder, 0, len(r.s.purchases))
	for _, o := range r.s.purchases {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

type memSales struct{ s *memStore }

func (r memSales) FindByID(_ context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	o, ok := r.s.sales[id]
	if !ok {
		return nil, shared.NotFoundError("sales order", id)
	}
	o.Items = append([]trade.OrderItem(nil), o.Items...)
	return &o, nil
}

func (r memSales) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.FindByID(ctx, id)
}

func (r memSales) Create(_ context.Context, o *trade.SalesOrder) error {
	stored := *o
	stored.ClearDomainEvents()
	r.s.sales[o.ID] = stored
	return nil
}

func (r memSales) UpdateStatus(_ context.Context, o *trade.SalesOrder) error {
	if r.s.failUpdateStatus != nil {
		return r.s.failUpdateStatus
	}
	current, ok := r.s.sales[o.ID]
	if !ok || current.Version != o.Version-1 {
		return shared.ConflictError("sales order was modified concurrently")
	}
	stored := *o
	stored.ClearDomainEvents()
	r.s.sales[o.ID] = stored
	return nil
}

func (r memSales) List(_ context.Context, _ trade.OrderFilter) ([]trade.SalesOrder, int64, error) {
	out := make([]trade.SalesOrder, 0, len(r.s.sales))
	for _, o := range r.s.sales {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

type memPartners struct{ ids map[uuid.UUID]bool }

func (r memPartners) FindByID(_ context.Context, id uuid.UUID) (*partner.Supplier, error) {
	if !r.ids[id] {
		return nil, shared.NotFoundError("supplier", id)
	}
	return &partner.Supplier{BaseEntity: shared.BaseEntity{ID: id}}, nil
}

func (r memPartners) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	return r.ids[id], nil
}

type memCustomers struct{ ids map[uuid.UUID]bool }

func (r memCustomers) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	if !r.ids[id] {
		return nil, shared.NotFoundError("customer", id)
	}
	return &partner.Customer{BaseEntity: shared.BaseEntity{ID: id}}, nil
}

func (r memCustomers) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	return r.ids[id], nil
}

// purchaseReader and salesReader expose the store outside a transaction
func (s *memStore) purchaseReader() trade.PurchaseOrderRepository { return memPurchases{s} }
func (s *memStore) salesReader() trade.SalesOrderRepository { return memSales{s} }

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

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
