package payment

import "context"

// Repository stores payment records. Lookups exclude soft-deleted rows.
// Update must reject writes whose version no longer matches the stored row.
type Repository interface {
	Insert(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Payment, error)
	ListByStatus(ctx context.Context, status Status) ([]*Payment, error)
	// SoftDeleteByOrder cascades an order soft delete onto its payments.
	SoftDeleteByOrder(ctx context.Context, orderID string) error
}
