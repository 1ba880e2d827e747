package order

import "context"

// Repository stores order aggregates. Implementations must exclude
// soft-deleted orders from every lookup.
type Repository interface {
	Insert(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	ListByUser(ctx context.Context, userEmail string) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	// SoftDelete stamps the deletion timestamp without removing the row.
	SoftDelete(ctx context.Context, id string) error
}
