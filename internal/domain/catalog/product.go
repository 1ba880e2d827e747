// Package catalog exposes the product provider consumed by the order core.
// The catalog itself is an external collaborator; only the read/adjust
// contract matters here.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("catalog: product not found")

type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	MainImageURL  string
}

type Provider interface {
	FindProduct(ctx context.Context, id string) (*Product, error)
	// AdjustStock shifts the stock counter by delta (negative to deduct,
	// positive to restore).
	AdjustStock(ctx context.Context, id string, delta int) error
}
