package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("payment: not found")
	ErrConflict            = errors.New("payment: concurrent modification")
	ErrInvalidMethod       = errors.New("payment: unsupported payment method")
	ErrAlreadyCanceled     = errors.New("payment: already canceled")
	ErrAlreadyRefunded     = errors.New("payment: already fully refunded")
	ErrRefundExceedsAmount = errors.New("payment: refund exceeds payment amount")
	ErrNoPayments          = errors.New("payment: no payments for order")
)

// RefundFeeRate is withheld from every refund request before crediting.
var RefundFeeRate = decimal.RequireFromString("0.10")

// Payment is one attempt to move money for an order. It is never deleted,
// only status-transitioned, and keeps a cumulative refund total.
type Payment struct {
	ID            string
	OrderID       string
	UserEmail     string
	Amount        decimal.Decimal
	RefundAmount  decimal.Decimal
	Method        Method
	TransactionID string
	Status        Status
	// Version backs the repository's compare-and-swap update.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// New constructs a payment in INITIATED state. The transaction id is
// caller-supplied and serves as the idempotent lookup key.
func New(id, orderID, userEmail string, amount decimal.Decimal, method Method, transactionID string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:            id,
		OrderID:       orderID,
		UserEmail:     userEmail,
		Amount:        amount,
		RefundAmount:  decimal.Zero,
		Method:        method,
		TransactionID: transactionID,
		Status:        StatusInitiated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (p *Payment) MarkCompleted() {
	p.Status = StatusCompleted
	p.touch()
}

func (p *Payment) MarkFailed() {
	p.Status = StatusFailed
	p.touch()
}

func (p *Payment) MarkCanceled() {
	p.Status = StatusCanceled
	p.touch()
}

// RefundBreakdown splits a requested refund into the withheld fee and the
// amount actually credited back to the user.
func RefundBreakdown(requested decimal.Decimal) (fee, credited decimal.Decimal) {
	fee = requested.Mul(RefundFeeRate)
	return fee, requested.Sub(fee)
}

// ApplyRefund records a post-fee refund amount against the payment and
// transitions it to REFUNDED when the cumulative total exactly equals the
// original amount, PARTIALLY_REFUNDED otherwise. The cumulative total may
// never exceed the original amount.
//
// Because the recorded amount is fee-reduced while the comparison target is
// the unreduced original, requests summing to the original amount leave a
// perpetual residual and never reach REFUNDED. That is the observed upstream
// behavior and is kept as is.
func (p *Payment) ApplyRefund(credited decimal.Decimal) (full bool, err error) {
	if p.Status == StatusRefunded {
		return false, ErrAlreadyRefunded
	}
	next := p.RefundAmount.Add(credited)
	if next.Cmp(p.Amount) > 0 {
		return false, ErrRefundExceedsAmount
	}
	p.RefundAmount = next
	full = next.Cmp(p.Amount) == 0
	if full {
		p.Status = StatusRefunded
	} else {
		p.Status = StatusPartiallyRefunded
	}
	p.touch()
	return full, nil
}

func (p *Payment) MarkDeleted() {
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.touch()
}

func (p *Payment) IsDeleted() bool { return p.DeletedAt != nil }

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy for repository hand-out.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		clone.DeletedAt = &t
	}
	return &clone
}
