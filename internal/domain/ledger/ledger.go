// Package ledger defines the balance capability behind each payment method.
package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound     = errors.New("ledger: account not found")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrInvalidAmount       = errors.New("ledger: amount must be greater than zero")
)

// Ledger is an abstract debit/credit account keyed by user identity. One
// instance exists per payment method. Ledger calls are external side effects:
// they are not covered by the order/payment unit of work, so a caller that
// fails after a successful debit must issue a compensating credit.
type Ledger interface {
	Debit(ctx context.Context, userEmail string, amount decimal.Decimal) error
	Credit(ctx context.Context, userEmail string, amount decimal.Decimal) error
}
