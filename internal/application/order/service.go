package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gurungd265/webshop/app/internal/domain/cart"
	"github.com/gurungd265/webshop/app/internal/domain/catalog"
	domorder "github.com/gurungd265/webshop/app/internal/domain/order"
	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
	"github.com/gurungd265/webshop/app/internal/domain/user"
	"github.com/gurungd265/webshop/app/internal/infrastructure/prometrics"
	"github.com/gurungd265/webshop/app/internal/pkg/logging"
)

const (
	useCaseCreateFromCart    = "order.create_from_cart"
	useCaseCreateFromRequest = "order.create_from_request"
	useCaseUpdateStatus      = "order.update_status"
	useCaseCancel            = "order.cancel"
	useCaseDelete            = "order.delete"

	// orderNumberAttempts bounds the uniqueness retry loop for generated
	// order numbers.
	orderNumberAttempts = 3
)

var errOrderNumberExhausted = errors.New("order: could not generate a unique order number")

// Service builds priced orders from carts or explicit item lists and drives
// their lifecycle, delegating money movement to the payment orchestrator and
// stock restoration to the catalog.
type Service struct {
	orders   domorder.Repository
	payments PaymentOrchestrator
	carts    cart.Provider
	catalog  catalog.Provider
	users    user.Provider
	ids      IDGenerator
	numbers  NumberGenerator
	tracer   trace.Tracer

	reqCounter prometrics.Counter
	durHist    prometrics.Histogram
}

func NewService(
	orders domorder.Repository,
	payments PaymentOrchestrator,
	carts cart.Provider,
	cat catalog.Provider,
	users user.Provider,
	ids IDGenerator,
	numbers NumberGenerator,
	metrics prometrics.Registry,
) *Service {
	s := &Service{
		orders:   orders,
		payments: payments,
		carts:    carts,
		catalog:  cat,
		users:    users,
		ids:      ids,
		numbers:  numbers,
		tracer:   otel.Tracer("order-service"),
	}
	if metrics != nil {
		s.reqCounter = metrics.Counter("usecase_requests_total", "Total number of use case invocations.", "use_case", "outcome")
		s.durHist = metrics.Histogram("usecase_duration_seconds", "Duration of use case execution in seconds.", nil, "use_case")
	}
	return s
}

type CreateFromCartInput struct {
	UserEmail           string
	PaymentMethod       string
	ShippingAddressID   string
	BillingAddressID    string
	RequestedDeliveryAt *time.Time
}

// CreateFromCart turns the user's active cart into a priced pending order,
// charges it synchronously, and soft-clears the cart. A payment failure
// leaves the order persisted in PAYMENT_FAILED and reports the failure.
func (s *Service) CreateFromCart(ctx context.Context, in CreateFromCartInput) (_ *View, err error) {
	ctx, span := s.tracer.Start(ctx, "UC.CreateOrderFromCart", trace.WithAttributes(
		attribute.String("order.user_email", in.UserEmail),
		attribute.String("order.payment_method", in.PaymentMethod),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseCreateFromCart, start, err) }()

	logger := logging.FromContext(ctx).With(
		zap.String("component", "order_service"),
		zap.String("user_email", in.UserEmail),
	)
	logger.Info("create_order_from_cart_start")

	userCart, err := s.carts.GetCart(ctx, in.UserEmail)
	if errors.Is(err, cart.ErrNotFound) {
		return nil, domorder.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if userCart.Empty() {
		return nil, domorder.ErrEmptyCart
	}

	owner, err := s.users.FindUserByEmail(ctx, in.UserEmail)
	if err != nil {
		return nil, err
	}

	items, err := s.snapshotItems(ctx, userCart.Items)
	if err != nil {
		return nil, err
	}

	order, err := s.newOrder(ctx, owner.Email)
	if err != nil {
		return nil, err
	}
	order.ReplaceItems(items)
	order.PaymentMethod = in.PaymentMethod
	order.RequestedDeliveryAt = in.RequestedDeliveryAt

	shipping, err := s.users.FindAddress(ctx, in.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	billing, err := s.users.FindAddress(ctx, in.BillingAddressID)
	if err != nil {
		return nil, err
	}
	order.ShippingAddressID = shipping.ID
	order.BillingAddressID = billing.ID

	if err = s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("order: insert: %w", err)
	}

	transactionID := s.ids.NewID()
	payment, err := s.payments.CreatePayment(ctx, owner.Email, order.ID, order.TotalAmount, order.PaymentMethod, transactionID)
	if err != nil {
		// The order stays persisted as PAYMENT_FAILED; the cart is kept.
		logger.Error("order_payment_failed", zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}

	if err = s.carts.SoftClear(ctx, in.UserEmail); err != nil {
		return nil, fmt.Errorf("order: clear cart: %w", err)
	}

	// Re-read so the view reflects the status re-affirmed by the payment.
	order, err = s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("create_order_from_cart_success",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.Number),
		zap.String("total_amount", order.TotalAmount.String()),
	)
	span.SetAttributes(attribute.String("order.id", order.ID))
	return newView(order, shipping, billing, []*dompay.Payment{payment}), nil
}

type RequestItem struct {
	ProductID   string
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

type CreateFromRequestInput struct {
	UserEmail           string
	Items               []RequestItem
	Subtotal            *decimal.Decimal
	ShippingAddressID   string
	BillingAddressID    string
	RequestedDeliveryAt *time.Time
}

// CreateFromRequest builds a priced pending order from an explicit item
// list. Payment is a separate, later step on this path. When the item list
// is empty a caller-supplied subtotal prices the order instead.
func (s *Service) CreateFromRequest(ctx context.Context, in CreateFromRequestInput) (_ *View, err error) {
	ctx, span := s.tracer.Start(ctx, "UC.CreateOrderFromRequest", trace.WithAttributes(
		attribute.String("order.user_email", in.UserEmail),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseCreateFromRequest, start, err) }()

	logger := logging.FromContext(ctx).With(
		zap.String("component", "order_service"),
		zap.String("user_email", in.UserEmail),
	)

	owner, err := s.users.FindUserByEmail(ctx, in.UserEmail)
	if err != nil {
		return nil, err
	}

	order, err := s.newOrder(ctx, owner.Email)
	if err != nil {
		return nil, err
	}
	order.RequestedDeliveryAt = in.RequestedDeliveryAt

	if len(in.Items) > 0 {
		lines := make([]cart.Item, 0, len(in.Items))
		for _, it := range in.Items {
			lines = append(lines, cart.Item{
				ProductID:       it.ProductID,
				ProductName:     it.ProductName,
				PriceAtAddition: it.Price,
				Quantity:        it.Quantity,
			})
		}
		items, snapErr := s.snapshotItems(ctx, lines)
		if snapErr != nil {
			return nil, snapErr
		}
		order.ReplaceItems(items)
	} else if in.Subtotal != nil {
		order.SetSubtotal(*in.Subtotal)
	}

	var shipping, billing *user.Address
	if in.ShippingAddressID != "" {
		if shipping, err = s.users.FindAddress(ctx, in.ShippingAddressID); err != nil {
			return nil, err
		}
		order.ShippingAddressID = shipping.ID
	}
	if in.BillingAddressID != "" {
		if billing, err = s.users.FindAddress(ctx, in.BillingAddressID); err != nil {
			return nil, err
		}
		order.BillingAddressID = billing.ID
	}

	if err = s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("order: insert: %w", err)
	}

	logger.Info("create_order_from_request_success",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.Number),
	)
	span.SetAttributes(attribute.String("order.id", order.ID))
	return newView(order, shipping, billing, nil), nil
}

// UpdateStatus applies a caller-requested lifecycle transition to the order
// identified by its number. Only the order's owner may do so. DELIVERED and
// COMPLETED stamp their timestamps; refund, cancel, and payment-failure
// statuses cannot be requested here.
func (s *Service) UpdateStatus(ctx context.Context, requesterEmail, orderNumber, statusLabel string) (err error) {
	ctx, span := s.tracer.Start(ctx, "UC.UpdateOrderStatus", trace.WithAttributes(
		attribute.String("order.number", orderNumber),
		attribute.String("order.status_requested", statusLabel),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseUpdateStatus, start, err) }()

	status, err := domorder.ParseStatus(statusLabel)
	if err != nil {
		return err
	}

	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	if order.UserEmail != requesterEmail {
		return domorder.ErrForbidden
	}

	if err = order.SetStatus(status); err != nil {
		return err
	}
	if err = s.orders.Update(ctx, order); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("order_status_updated",
		zap.String("component", "order_service"),
		zap.String("order_number", orderNumber),
		zap.String("status", status.String()),
	)
	return nil
}

// Cancel reverses an order that has not shipped yet: every payment is
// cancelled first (all-or-nothing; a failure leaves the order untouched),
// then stock is restored best-effort and the order marked CANCELLED.
func (s *Service) Cancel(ctx context.Context, requesterEmail, orderID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "UC.CancelOrder", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseCancel, start, err) }()

	logger := logging.FromContext(ctx).With(
		zap.String("component", "order_service"),
		zap.String("order_id", orderID),
	)

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserEmail != requesterEmail {
		return domorder.ErrForbidden
	}
	if !order.Cancelable() {
		return domorder.ErrCancelNotAllowed
	}

	if _, err = s.payments.CancelAllForOrder(ctx, orderID); err != nil {
		logger.Error("cancel_payments_failed", zap.Error(err))
		return fmt.Errorf("order: cancel payments: %w", err)
	}

	// Inventory correction is secondary to payment reversal: a product that
	// vanished from the catalog is skipped, not fatal.
	for _, item := range order.Items {
		if adjErr := s.catalog.AdjustStock(ctx, item.ProductID, item.Quantity); adjErr != nil {
			if errors.Is(adjErr, catalog.ErrNotFound) {
				logger.Warn("restock_skipped_missing_product", zap.String("product_id", item.ProductID))
				continue
			}
			logger.Error("restock_failed", zap.String("product_id", item.ProductID), zap.Error(adjErr))
		}
	}

	order, err = s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	order.MarkCancelled()
	if err = s.orders.Update(ctx, order); err != nil {
		return err
	}

	logger.Info("order_cancelled")
	return nil
}

// Delete soft-deletes the order and explicitly cascades onto its payments.
func (s *Service) Delete(ctx context.Context, requesterEmail, orderID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "UC.DeleteOrder", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseDelete, start, err) }()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserEmail != requesterEmail {
		return domorder.ErrForbidden
	}

	if err = s.orders.SoftDelete(ctx, orderID); err != nil {
		return err
	}
	if err = s.payments.SoftDeleteForOrder(ctx, orderID); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("order_soft_deleted",
		zap.String("component", "order_service"),
		zap.String("order_id", orderID),
	)
	return nil
}

// Get returns the owner-gated projection of one order.
func (s *Service) Get(ctx context.Context, requesterEmail, orderID string) (*View, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserEmail != requesterEmail {
		return nil, domorder.ErrForbidden
	}
	return s.project(ctx, order)
}

// GetByNumber returns the projection of the order with the given number.
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*View, error) {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, order)
}

// ListByUser returns the projections of all of the user's orders.
func (s *Service) ListByUser(ctx context.Context, userEmail string) ([]*View, error) {
	orders, err := s.orders.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	views := make([]*View, 0, len(orders))
	for _, o := range orders {
		v, projErr := s.project(ctx, o)
		if projErr != nil {
			return nil, projErr
		}
		views = append(views, v)
	}
	return views, nil
}

// ListByStatus returns the projections of all orders in the given status.
func (s *Service) ListByStatus(ctx context.Context, statusLabel string) ([]*View, error) {
	status, err := domorder.ParseStatus(statusLabel)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	views := make([]*View, 0, len(orders))
	for _, o := range orders {
		v, projErr := s.project(ctx, o)
		if projErr != nil {
			return nil, projErr
		}
		views = append(views, v)
	}
	return views, nil
}

// snapshotItems freezes the cart lines into order items, validating that
// every referenced product still exists.
func (s *Service) snapshotItems(ctx context.Context, lines []cart.Item) ([]domorder.Item, error) {
	items := make([]domorder.Item, 0, len(lines))
	for _, line := range lines {
		product, err := s.catalog.FindProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		item, err := domorder.NewItem(s.ids.NewID(), product.ID, line.ProductName, line.PriceAtAddition, line.Quantity, product.MainImageURL)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// newOrder allocates an order with a number that is not already taken,
// retrying the statistical generator a bounded number of times.
func (s *Service) newOrder(ctx context.Context, userEmail string) (*domorder.Order, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number := s.numbers.NewOrderNumber()
		_, err := s.orders.FindByNumber(ctx, number)
		if errors.Is(err, domorder.ErrNotFound) {
			return domorder.New(s.ids.NewID(), number, userEmail), nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, errOrderNumberExhausted
}

func (s *Service) project(ctx context.Context, o *domorder.Order) (*View, error) {
	payments, err := s.payments.PaymentsByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return newView(o, s.lookupAddress(ctx, o.ShippingAddressID), s.lookupAddress(ctx, o.BillingAddressID), payments), nil
}

func (s *Service) lookupAddress(ctx context.Context, id string) *user.Address {
	if id == "" {
		return nil
	}
	a, err := s.users.FindAddress(ctx, id)
	if err != nil {
		return nil
	}
	return a
}

func (s *Service) observe(span trace.Span, useCase string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	if s.reqCounter != nil {
		s.reqCounter.Add(1, prometrics.L("use_case", useCase), prometrics.L("outcome", outcome))
	}
	if s.durHist != nil {
		s.durHist.Observe(time.Since(start).Seconds(), prometrics.L("use_case", useCase))
	}
}
