package order

import (
	"context"

	"github.com/shopspring/decimal"

	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
)

// IDGenerator produces surrogate ids and payment transaction ids.
type IDGenerator interface {
	NewID() string
}

// NumberGenerator produces human-readable order numbers.
type NumberGenerator interface {
	NewOrderNumber() string
}

// PaymentOrchestrator is the slice of the payment service the order
// orchestrator depends on.
type PaymentOrchestrator interface {
	CreatePayment(ctx context.Context, userEmail, orderID string, amount decimal.Decimal, methodLabel, transactionID string) (*dompay.Payment, error)
	CancelAllForOrder(ctx context.Context, orderID string) ([]*dompay.Payment, error)
	PaymentsByOrder(ctx context.Context, orderID string) ([]*dompay.Payment, error)
	SoftDeleteForOrder(ctx context.Context, orderID string) error
}
