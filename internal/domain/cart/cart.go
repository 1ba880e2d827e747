// Package cart exposes the cart provider consumed by the order core. Carts
// are a source of priced line items; their own CRUD lives elsewhere.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("cart: not found")

// Item is a priced cart line. PriceAtAddition is the unit price captured
// when the line entered the cart.
type Item struct {
	ProductID       string
	ProductName     string
	PriceAtAddition decimal.Decimal
	Quantity        int
}

type Cart struct {
	UserEmail string
	Items     []Item
}

func (c *Cart) Empty() bool { return c == nil || len(c.Items) == 0 }

type Provider interface {
	GetCart(ctx context.Context, userEmail string) (*Cart, error)
	// SoftClear marks the cart lines as consumed rather than deleting them,
	// so the history stays inspectable.
	SoftClear(ctx context.Context, userEmail string) error
}
