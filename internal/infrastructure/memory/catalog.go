package memory

import (
	"context"
	"sync"

	domain "github.com/gurungd265/webshop/app/internal/domain/catalog"
)

// Catalog is an in-memory product provider.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]*domain.Product)}
}

func (c *Catalog) Put(p *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = cloneProduct(p)
}

func (c *Catalog) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (c *Catalog) AdjustStock(ctx context.Context, id string, delta int) error {
	_ = ctx

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.StockQuantity += delta
	return nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
