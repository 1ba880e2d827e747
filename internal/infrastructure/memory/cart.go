package memory

import (
	"context"
	"sync"

	domain "github.com/gurungd265/webshop/app/internal/domain/cart"
)

type cartLine struct {
	item     domain.Item
	consumed bool
}

// CartProvider is an in-memory cart store. Clearing marks lines as consumed
// instead of deleting them so the history stays inspectable.
type CartProvider struct {
	mu    sync.Mutex
	lines map[string][]*cartLine // user email -> lines
}

func NewCartProvider() *CartProvider {
	return &CartProvider{lines: make(map[string][]*cartLine)}
}

func (c *CartProvider) Add(userEmail string, item domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[userEmail] = append(c.lines[userEmail], &cartLine{item: item})
}

func (c *CartProvider) GetCart(ctx context.Context, userEmail string) (*domain.Cart, error) {
	_ = ctx

	c.mu.Lock()
	defer c.mu.Unlock()

	cart := &domain.Cart{UserEmail: userEmail}
	for _, line := range c.lines[userEmail] {
		if line.consumed {
			continue
		}
		cart.Items = append(cart.Items, line.item)
	}
	return cart, nil
}

func (c *CartProvider) SoftClear(ctx context.Context, userEmail string) error {
	_ = ctx

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range c.lines[userEmail] {
		line.consumed = true
	}
	return nil
}
