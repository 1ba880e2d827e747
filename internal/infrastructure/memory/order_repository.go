package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/gurungd265/webshop/app/internal/domain/order"
)

// OrderRepository is an in-memory order store. Soft-deleted orders stay in
// the map but are filtered out of every lookup.
type OrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	numbers map[string]string // order number -> order id
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:  make(map[string]*domain.Order),
		numbers: make(map[string]string),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order repository: duplicate id %s", order.ID)
	}
	if _, exists := r.numbers[order.Number]; exists {
		return fmt.Errorf("order repository: duplicate order number %s", order.Number)
	}

	r.orders[order.ID] = order.Clone()
	r.numbers[order.Number] = order.ID
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.orders[order.ID]
	if !exists || stored.IsDeleted() {
		return domain.ErrNotFound
	}

	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok || order.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.numbers[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	order, ok := r.orders[id]
	if !ok || order.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userEmail string) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.IsDeleted() || o.UserEmail != userEmail {
			continue
		}
		out = append(out, o.Clone())
	}
	return out, nil
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.IsDeleted() || o.Status != status {
			continue
		}
		out = append(out, o.Clone())
	}
	return out, nil
}

func (r *OrderRepository) SoftDelete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.IsDeleted() {
		return domain.ErrNotFound
	}
	clone := order.Clone()
	clone.MarkDeleted()
	r.orders[id] = clone
	return nil
}
