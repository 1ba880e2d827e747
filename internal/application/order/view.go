package order

import (
	"time"

	"github.com/shopspring/decimal"

	domorder "github.com/gurungd265/webshop/app/internal/domain/order"
	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
	"github.com/gurungd265/webshop/app/internal/domain/user"
)

// View is the order projection handed back to callers. The transport layer
// serializes it as is.
type View struct {
	ID                  string          `json:"id"`
	OrderNumber         string          `json:"orderNumber"`
	Status              string          `json:"status"`
	PaymentMethod       string          `json:"paymentMethod,omitempty"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	ShippingFee         decimal.Decimal `json:"shippingFee"`
	Tax                 decimal.Decimal `json:"tax"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	ShippingAddress     *AddressView    `json:"shippingAddress,omitempty"`
	BillingAddress      *AddressView    `json:"billingAddress,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	DeliveredAt         *time.Time      `json:"deliveredAt,omitempty"`
	CompletedAt         *time.Time      `json:"completedAt,omitempty"`
	RequestedDeliveryAt *time.Time      `json:"requestedDeliveryAt,omitempty"`
	Items               []ItemView      `json:"items"`
	Payments            []PaymentView   `json:"payments"`
}

type ItemView struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type AddressView struct {
	ID         string `json:"id"`
	Type       string `json:"addressType,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

type PaymentView struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	RefundAmount  decimal.Decimal `json:"refundAmount"`
	Method        string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func newView(o *domorder.Order, shipping, billing *user.Address, payments []*dompay.Payment) *View {
	v := &View{
		ID:                  o.ID,
		OrderNumber:         o.Number,
		Status:              o.Status.String(),
		PaymentMethod:       o.PaymentMethod,
		Subtotal:            o.Subtotal,
		ShippingFee:         o.ShippingFee,
		Tax:                 o.Tax,
		TotalAmount:         o.TotalAmount,
		ShippingAddress:     newAddressView(shipping),
		BillingAddress:      newAddressView(billing),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		DeliveredAt:         o.DeliveredAt,
		CompletedAt:         o.CompletedAt,
		RequestedDeliveryAt: o.RequestedDeliveryAt,
		Items:               make([]ItemView, 0, len(o.Items)),
		Payments:            make([]PaymentView, 0, len(payments)),
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, ItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			ImageURL:    it.ImageURL,
		})
	}
	for _, p := range payments {
		v.Payments = append(v.Payments, newPaymentView(p))
	}
	return v
}

func newPaymentView(p *dompay.Payment) PaymentView {
	return PaymentView{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		RefundAmount:  p.RefundAmount,
		Method:        p.Method.String(),
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func newAddressView(a *user.Address) *AddressView {
	if a == nil {
		return nil
	}
	return &AddressView{
		ID:         a.ID,
		Type:       a.Type,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
	}
}
