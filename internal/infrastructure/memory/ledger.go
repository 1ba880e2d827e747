package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	domain "github.com/gurungd265/webshop/app/internal/domain/ledger"
)

// BalanceLedger is an in-memory debit/credit account book for one payment
// method. Three independent instances exist (card, paypay, points); they are
// never mixed.
type BalanceLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{balances: make(map[string]decimal.Decimal)}
}

// Deposit seeds or tops up an account. Used by wiring and tests.
func (l *BalanceLedger) Deposit(userEmail string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userEmail] = l.balances[userEmail].Add(amount)
}

func (l *BalanceLedger) Balance(userEmail string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userEmail]
}

func (l *BalanceLedger) Debit(ctx context.Context, userEmail string, amount decimal.Decimal) error {
	_ = ctx
	if amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[userEmail]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	l.balances[userEmail] = balance.Sub(amount)
	return nil
}

// Credit never fails for a well-formed amount; an unknown account is created
// on the spot so compensating credits always land.
func (l *BalanceLedger) Credit(ctx context.Context, userEmail string, amount decimal.Decimal) error {
	_ = ctx
	if amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[userEmail] = l.balances[userEmail].Add(amount)
	return nil
}
