package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appPayment "github.com/gurungd265/webshop/app/internal/application/payment"
	"github.com/gurungd265/webshop/app/internal/domain/cart"
	"github.com/gurungd265/webshop/app/internal/domain/catalog"
	domledger "github.com/gurungd265/webshop/app/internal/domain/ledger"
	domorder "github.com/gurungd265/webshop/app/internal/domain/order"
	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
	"github.com/gurungd265/webshop/app/internal/domain/user"
	"github.com/gurungd265/webshop/app/internal/infrastructure/id"
	"github.com/gurungd265/webshop/app/internal/infrastructure/memory"
	"github.com/gurungd265/webshop/app/internal/mocks"
)

const (
	testUser     = "user@example.com"
	testShipAddr = "addr-ship"
	testBillAddr = "addr-bill"
)

type fixture struct {
	svc     *Service
	orders  *memory.OrderRepository
	pays    *memory.PaymentRepository
	carts   *memory.CartProvider
	catalog *memory.Catalog
	users   *memory.UserProvider
	card    *memory.BalanceLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:  memory.NewOrderRepository(),
		pays:    memory.NewPaymentRepository(),
		carts:   memory.NewCartProvider(),
		catalog: memory.NewCatalog(),
		users:   memory.NewUserProvider(),
		card:    memory.NewBalanceLedger(),
	}

	f.users.PutUser(&user.User{ID: "u1", Email: testUser})
	f.users.PutAddress(&user.Address{ID: testShipAddr, UserEmail: testUser, Street: "1-2-3 Shibuya", City: "Tokyo", PostalCode: "150-0002", Country: "JP"})
	f.users.PutAddress(&user.Address{ID: testBillAddr, UserEmail: testUser, Street: "4-5-6 Ginza", City: "Tokyo", PostalCode: "104-0061", Country: "JP"})

	f.catalog.Put(&catalog.Product{ID: "p1", Name: "Keyboard", Price: decimal.NewFromInt(1000), StockQuantity: 10, MainImageURL: "https://img/p1.png"})
	f.catalog.Put(&catalog.Product{ID: "p2", Name: "Mouse", Price: decimal.NewFromInt(500), StockQuantity: 5, MainImageURL: "https://img/p2.png"})

	ledgers := map[dompay.Method]domledger.Ledger{dompay.MethodCreditCard: f.card}
	paymentSvc := appPayment.NewService(f.pays, f.orders, ledgers, id.NewUUIDGenerator(), nil)

	f.svc = NewService(f.orders, paymentSvc, f.carts, f.catalog, f.users, id.NewUUIDGenerator(), id.NewOrderNumberGenerator(), nil)
	return f
}

func (f *fixture) fillCart() {
	f.carts.Add(testUser, cart.Item{ProductID: "p1", ProductName: "Keyboard", PriceAtAddition: decimal.NewFromInt(1000), Quantity: 2})
	f.carts.Add(testUser, cart.Item{ProductID: "p2", ProductName: "Mouse", PriceAtAddition: decimal.NewFromInt(500), Quantity: 1})
}

func cartInput() CreateFromCartInput {
	return CreateFromCartInput{
		UserEmail:         testUser,
		PaymentMethod:     "CREDIT_CARD",
		ShippingAddressID: testShipAddr,
		BillingAddressID:  testBillAddr,
	}
}

func TestCreateFromCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart()
	f.card.Deposit(testUser, decimal.NewFromInt(10000))

	view, err := f.svc.CreateFromCart(ctx, cartInput())
	require.NoError(t, err)

	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(2500)))
	assert.True(t, view.ShippingFee.Equal(decimal.NewFromInt(600)))
	assert.True(t, view.Tax.Equal(decimal.NewFromInt(250)))
	assert.True(t, view.TotalAmount.Equal(decimal.NewFromInt(3350)))
	assert.Equal(t, "PENDING", view.Status)
	assert.Len(t, view.Items, 2)
	require.NotNil(t, view.ShippingAddress)
	assert.Equal(t, testShipAddr, view.ShippingAddress.ID)

	require.Len(t, view.Payments, 1)
	assert.Equal(t, "COMPLETED", view.Payments[0].Status)
	assert.True(t, view.Payments[0].Amount.Equal(decimal.NewFromInt(3350)))

	assert.True(t, f.card.Balance(testUser).Equal(decimal.NewFromInt(6650)))

	// The cart is consumed by the successful checkout.
	remaining, err := f.carts.GetCart(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, remaining.Empty())
}

func TestCreateFromCartEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateFromCart(context.Background(), cartInput())
	assert.ErrorIs(t, err, domorder.ErrEmptyCart)
}

func TestCreateFromCartPaymentFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart()
	f.card.Deposit(testUser, decimal.NewFromInt(100))

	_, err := f.svc.CreateFromCart(ctx, cartInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, appPayment.ErrProcessingFailed)

	// The order survives as PAYMENT_FAILED and the cart stays intact.
	failed, err := f.orders.ListByStatus(ctx, domorder.StatusPaymentFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.True(t, failed[0].TotalAmount.Equal(decimal.NewFromInt(3350)))

	remaining, err := f.carts.GetCart(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, remaining.Items, 2)
}

func TestCreateFromCartUnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.carts.Add(testUser, cart.Item{ProductID: "ghost", ProductName: "Ghost", PriceAtAddition: decimal.NewFromInt(10), Quantity: 1})

	_, err := f.svc.CreateFromCart(context.Background(), cartInput())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCreateFromRequestWithItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.CreateFromRequest(ctx, CreateFromRequestInput{
		UserEmail: testUser,
		Items: []RequestItem{
			{ProductID: "p1", ProductName: "Keyboard", Price: decimal.NewFromInt(1000), Quantity: 1},
		},
		ShippingAddressID: testShipAddr,
	})
	require.NoError(t, err)

	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, view.TotalAmount.Equal(decimal.NewFromInt(1700)))
	assert.Equal(t, "PENDING", view.Status)
	assert.Empty(t, view.Payments)
	assert.Nil(t, view.BillingAddress)
}

func TestCreateFromRequestSubtotalFallback(t *testing.T) {
	f := newFixture(t)
	subtotal := decimal.NewFromInt(2000)

	view, err := f.svc.CreateFromRequest(context.Background(), CreateFromRequestInput{
		UserEmail: testUser,
		Subtotal:  &subtotal,
	})
	require.NoError(t, err)

	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(2000)))
	assert.True(t, view.Tax.Equal(decimal.NewFromInt(200)))
	assert.True(t, view.TotalAmount.Equal(decimal.NewFromInt(2800)))
	assert.Empty(t, view.Items)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.CreateFromRequest(ctx, CreateFromRequestInput{UserEmail: testUser})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(ctx, testUser, view.OrderNumber, "delivered"))

	stored, err := f.orders.FindByNumber(ctx, view.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusDelivered, stored.Status)
	assert.NotNil(t, stored.DeliveredAt)

	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, "intruder@example.com", view.OrderNumber, "SHIPPED"), domorder.ErrForbidden)
	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, testUser, view.OrderNumber, "REFUNDED"), domorder.ErrStatusNotDirect)
	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, testUser, view.OrderNumber, "TELEPORTED"), domorder.ErrInvalidStatus)
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart()
	f.card.Deposit(testUser, decimal.NewFromInt(10000))

	view, err := f.svc.CreateFromCart(ctx, cartInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, testUser, view.ID))

	stored, err := f.orders.FindByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusCancelled, stored.Status)

	// The full charge comes back and the stock is restored.
	assert.True(t, f.card.Balance(testUser).Equal(decimal.NewFromInt(10000)))
	p1, err := f.catalog.FindProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 12, p1.StockQuantity)
}

func TestCancelOrderWindowClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.CreateFromRequest(ctx, CreateFromRequestInput{UserEmail: testUser})
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateStatus(ctx, testUser, view.OrderNumber, "SHIPPED"))

	assert.ErrorIs(t, f.svc.Cancel(ctx, testUser, view.ID), domorder.ErrCancelNotAllowed)
}

func TestCancelOrderPaymentFailureLeavesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart()
	f.card.Deposit(testUser, decimal.NewFromInt(10000))

	view, err := f.svc.CreateFromCart(ctx, cartInput())
	require.NoError(t, err)

	orchestrator := new(mocks.PaymentOrchestrator)
	orchestrator.On("CancelAllForOrder", mock.Anything, view.ID).Return(nil, dompay.ErrNoPayments)
	f.svc.payments = orchestrator

	err = f.svc.Cancel(ctx, testUser, view.ID)
	assert.ErrorIs(t, err, dompay.ErrNoPayments)

	// Order status and stock both stay untouched when payments cannot be
	// cancelled.
	stored, findErr := f.orders.FindByID(ctx, view.ID)
	require.NoError(t, findErr)
	assert.Equal(t, domorder.StatusPending, stored.Status)

	p1, findErr := f.catalog.FindProduct(ctx, "p1")
	require.NoError(t, findErr)
	assert.Equal(t, 10, p1.StockQuantity)
}

func TestDeleteOrderCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart()
	f.card.Deposit(testUser, decimal.NewFromInt(10000))

	view, err := f.svc.CreateFromCart(ctx, cartInput())
	require.NoError(t, err)
	txID := view.Payments[0].TransactionID

	require.NoError(t, f.svc.Delete(ctx, testUser, view.ID))

	_, err = f.orders.FindByID(ctx, view.ID)
	assert.ErrorIs(t, err, domorder.ErrNotFound)
	_, err = f.pays.FindByTransactionID(ctx, txID)
	assert.ErrorIs(t, err, dompay.ErrNotFound)
}

func TestGetOwnerGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.CreateFromRequest(ctx, CreateFromRequestInput{UserEmail: testUser})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, testUser, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.OrderNumber, got.OrderNumber)

	_, err = f.svc.Get(ctx, "intruder@example.com", view.ID)
	assert.ErrorIs(t, err, domorder.ErrForbidden)
}

func TestListByUserAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateFromRequest(ctx, CreateFromRequestInput{UserEmail: testUser})
	require.NoError(t, err)
	_, err = f.svc.CreateFromRequest(ctx, CreateFromRequestInput{UserEmail: testUser})
	require.NoError(t, err)

	byUser, err := f.svc.ListByUser(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	pending, err := f.svc.ListByStatus(ctx, "PENDING")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.svc.ListByStatus(ctx, "TELEPORTED")
	assert.ErrorIs(t, err, domorder.ErrInvalidStatus)
}

type collidingNumbers struct {
	numbers []string
	idx     int
}

func (c *collidingNumbers) NewOrderNumber() string {
	n := c.numbers[c.idx%len(c.numbers)]
	c.idx++
	return n
}

func TestOrderNumberCollisionRetries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	taken := domorder.New("o-taken", "DUP", testUser)
	require.NoError(t, f.orders.Insert(ctx, taken))

	f.svc.numbers = &collidingNumbers{numbers: []string{"DUP", "DUP", "FRESH"}}

	view, err := f.svc.CreateFromRequest(ctx, CreateFromRequestInput{UserEmail: testUser})
	require.NoError(t, err)
	assert.Equal(t, "FRESH", view.OrderNumber)
}

func TestOrderNumberCollisionExhausts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	taken := domorder.New("o-taken", "DUP", testUser)
	require.NoError(t, f.orders.Insert(ctx, taken))

	f.svc.numbers = &collidingNumbers{numbers: []string{"DUP"}}

	_, err := f.svc.CreateFromRequest(ctx, CreateFromRequestInput{UserEmail: testUser})
	assert.ErrorIs(t, err, errOrderNumberExhausted)
}
