package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/gurungd265/webshop/app/internal/domain/payment"
)

// PaymentRepository is an in-memory payment store keyed by transaction id.
// Update performs a compare-and-swap on the payment version so lost updates
// surface as ErrConflict.
type PaymentRepository struct {
	mu           sync.RWMutex
	payments     map[string]*domain.Payment // id -> payment
	transactions map[string]string          // transaction id -> payment id
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments:     make(map[string]*domain.Payment),
		transactions: make(map[string]string),
	}
}

func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("payment repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.ID]; exists {
		return fmt.Errorf("payment repository: duplicate id %s", p.ID)
	}
	if _, exists := r.transactions[p.TransactionID]; exists {
		return fmt.Errorf("payment repository: duplicate transaction id %s", p.TransactionID)
	}

	r.payments[p.ID] = p.Clone()
	r.transactions[p.TransactionID] = p.ID
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("payment repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.payments[p.ID]
	if !exists || stored.IsDeleted() {
		return domain.ErrNotFound
	}
	if stored.Version != p.Version {
		return domain.ErrConflict
	}

	clone := p.Clone()
	clone.Version++
	r.payments[p.ID] = clone
	p.Version = clone.Version
	return nil
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.transactions[transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p, ok := r.payments[id]
	if !ok || p.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Payment
	for _, p := range r.payments {
		if p.IsDeleted() || p.OrderID != orderID {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *PaymentRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Payment
	for _, p := range r.payments {
		if p.IsDeleted() || p.Status != status {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *PaymentRepository) SoftDeleteByOrder(ctx context.Context, orderID string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.payments {
		if p.IsDeleted() || p.OrderID != orderID {
			continue
		}
		clone := p.Clone()
		clone.MarkDeleted()
		clone.Version++
		r.payments[id] = clone
	}
	return nil
}
