package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("order: not found")
	ErrForbidden        = errors.New("order: access denied")
	ErrEmptyCart        = errors.New("order: cart is empty")
	ErrInvalidQuantity  = errors.New("order: quantity must be greater than zero")
	ErrInvalidStatus    = errors.New("order: unknown status")
	ErrStatusNotDirect  = errors.New("order: status cannot be set directly")
	ErrCancelNotAllowed = errors.New("order: cancellation window is closed")
)

// ShippingFee is the flat delivery charge applied to every order, in yen.
var ShippingFee = decimal.NewFromInt(600)

// TaxRate is the consumption tax rate applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.10")

// Item is a frozen snapshot of one product line at order time. The unit
// price is captured when the order is built and never follows later catalog
// price changes.
type Item struct {
	ID          string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
	ImageURL    string
}

// Order is the aggregate root for a purchase. It owns its items; payments
// reference the order by id only and live in their own repository.
type Order struct {
	ID                  string
	Number              string
	UserEmail           string
	Status              Status
	PaymentMethod       string
	Items               []Item
	Subtotal            decimal.Decimal
	ShippingFee         decimal.Decimal
	Tax                 decimal.Decimal
	TotalAmount         decimal.Decimal
	ShippingAddressID   string
	BillingAddressID    string
	RequestedDeliveryAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
	DeliveredAt         *time.Time
	CompletedAt         *time.Time
}

// New builds a pending order for the given user with an empty item list.
func New(id, number, userEmail string) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:          id,
		Number:      number,
		UserEmail:   userEmail,
		Status:      StatusPending,
		Subtotal:    decimal.Zero,
		ShippingFee: ShippingFee,
		Tax:         decimal.Zero,
		TotalAmount: ShippingFee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewItem snapshots one product line. The line subtotal is unit price times
// quantity, computed in decimal to avoid drift.
func NewItem(id, productID, productName string, unitPrice decimal.Decimal, quantity int, imageURL string) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	return Item{
		ID:          id,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		ImageURL:    imageURL,
	}, nil
}

// ReplaceItems swaps the owned item list and reprices the order. The total
// is always recomputed from its components, never stored independently.
func (o *Order) ReplaceItems(items []Item) {
	o.Items = items
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	o.reprice(subtotal)
}

// SetSubtotal prices the order from a caller-supplied subtotal when no item
// snapshot is available (explicit order requests may carry only a total).
func (o *Order) SetSubtotal(subtotal decimal.Decimal) {
	o.reprice(subtotal)
}

func (o *Order) reprice(subtotal decimal.Decimal) {
	o.Subtotal = subtotal
	o.ShippingFee = ShippingFee
	o.Tax = subtotal.Mul(TaxRate).Floor()
	o.TotalAmount = o.Subtotal.Add(o.ShippingFee).Add(o.Tax)
	o.touch()
}

// Cancelable reports whether the order may still be cancelled. Once shipment
// begins the window is closed.
func (o *Order) Cancelable() bool {
	switch o.Status {
	case StatusShipped, StatusDelivered, StatusCompleted:
		return false
	}
	return true
}

// SetStatus applies a caller-requested transition. Statuses owned by the
// payment flow (refunds, payment failure) or by cancellation are rejected;
// DELIVERED and COMPLETED stamp their timestamps as a side effect.
func (o *Order) SetStatus(s Status) error {
	if !s.SettableDirectly() {
		return ErrStatusNotDirect
	}
	now := time.Now().UTC()
	switch s {
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
	}
	o.Status = s
	o.touch()
	return nil
}

func (o *Order) MarkCancelled() {
	o.Status = StatusCancelled
	o.touch()
}

func (o *Order) MarkPaymentFailed() {
	o.Status = StatusPaymentFailed
	o.touch()
}

// MarkPaymentCompleted re-affirms PENDING after a successful payment; it does
// not advance the order.
func (o *Order) MarkPaymentCompleted() {
	o.Status = StatusPending
	o.touch()
}

func (o *Order) MarkRefunded(full bool) {
	if full {
		o.Status = StatusRefunded
	} else {
		o.Status = StatusPartiallyRefunded
	}
	o.touch()
}

// MarkDeleted soft-deletes the order. The record is never physically removed;
// repository lookups must skip rows carrying a deletion timestamp.
func (o *Order) MarkDeleted() {
	now := time.Now().UTC()
	o.DeletedAt = &now
	o.touch()
}

func (o *Order) IsDeleted() bool { return o.DeletedAt != nil }

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so repository callers cannot alias stored state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = make([]Item, len(o.Items))
	copy(clone.Items, o.Items)
	clone.RequestedDeliveryAt = cloneTime(o.RequestedDeliveryAt)
	clone.DeletedAt = cloneTime(o.DeletedAt)
	clone.DeliveredAt = cloneTime(o.DeliveredAt)
	clone.CompletedAt = cloneTime(o.CompletedAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
