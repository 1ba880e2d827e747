// Package mocks holds testify doubles for the domain ports.
package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/gurungd265/webshop/app/internal/domain/cart"
	"github.com/gurungd265/webshop/app/internal/domain/catalog"
	domorder "github.com/gurungd265/webshop/app/internal/domain/order"
	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
	"github.com/gurungd265/webshop/app/internal/domain/user"
)

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Insert(ctx context.Context, o *domorder.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *OrderRepository) Update(ctx context.Context, o *domorder.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *OrderRepository) FindByID(ctx context.Context, id string) (*domorder.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*domorder.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) FindByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	args := m.Called(ctx, number)
	if o, ok := args.Get(0).(*domorder.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) ListByUser(ctx context.Context, userEmail string) ([]*domorder.Order, error) {
	args := m.Called(ctx, userEmail)
	if orders, ok := args.Get(0).([]*domorder.Order); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) ListByStatus(ctx context.Context, status domorder.Status) ([]*domorder.Order, error) {
	args := m.Called(ctx, status)
	if orders, ok := args.Get(0).([]*domorder.Order); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Insert(ctx context.Context, p *dompay.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PaymentRepository) Update(ctx context.Context, p *dompay.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*dompay.Payment, error) {
	args := m.Called(ctx, transactionID)
	if p, ok := args.Get(0).(*dompay.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]*dompay.Payment, error) {
	args := m.Called(ctx, orderID)
	if payments, ok := args.Get(0).([]*dompay.Payment); ok {
		return payments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) ListByStatus(ctx context.Context, status dompay.Status) ([]*dompay.Payment, error) {
	args := m.Called(ctx, status)
	if payments, ok := args.Get(0).([]*dompay.Payment); ok {
		return payments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) SoftDeleteByOrder(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

type Ledger struct {
	mock.Mock
}

func (m *Ledger) Debit(ctx context.Context, userEmail string, amount decimal.Decimal) error {
	return m.Called(ctx, userEmail, amount).Error(0)
}

func (m *Ledger) Credit(ctx context.Context, userEmail string, amount decimal.Decimal) error {
	return m.Called(ctx, userEmail, amount).Error(0)
}

type CartProvider struct {
	mock.Mock
}

func (m *CartProvider) GetCart(ctx context.Context, userEmail string) (*cart.Cart, error) {
	args := m.Called(ctx, userEmail)
	if c, ok := args.Get(0).(*cart.Cart); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CartProvider) SoftClear(ctx context.Context, userEmail string) error {
	return m.Called(ctx, userEmail).Error(0)
}

type CatalogProvider struct {
	mock.Mock
}

func (m *CatalogProvider) FindProduct(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*catalog.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogProvider) AdjustStock(ctx context.Context, id string, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

type UserProvider struct {
	mock.Mock
}

func (m *UserProvider) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserProvider) FindAddress(ctx context.Context, id string) (*user.Address, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*user.Address); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type PaymentOrchestrator struct {
	mock.Mock
}

func (m *PaymentOrchestrator) CreatePayment(ctx context.Context, userEmail, orderID string, amount decimal.Decimal, methodLabel, transactionID string) (*dompay.Payment, error) {
	args := m.Called(ctx, userEmail, orderID, amount, methodLabel, transactionID)
	if p, ok := args.Get(0).(*dompay.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentOrchestrator) CancelAllForOrder(ctx context.Context, orderID string) ([]*dompay.Payment, error) {
	args := m.Called(ctx, orderID)
	if payments, ok := args.Get(0).([]*dompay.Payment); ok {
		return payments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentOrchestrator) PaymentsByOrder(ctx context.Context, orderID string) ([]*dompay.Payment, error) {
	args := m.Called(ctx, orderID)
	if payments, ok := args.Get(0).([]*dompay.Payment); ok {
		return payments, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentOrchestrator) SoftDeleteForOrder(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}
