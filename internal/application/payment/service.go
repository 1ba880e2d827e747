package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	domledger "github.com/gurungd265/webshop/app/internal/domain/ledger"
	domorder "github.com/gurungd265/webshop/app/internal/domain/order"
	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
	"github.com/gurungd265/webshop/app/internal/infrastructure/prometrics"
	"github.com/gurungd265/webshop/app/internal/pkg/logging"
)

const (
	useCaseCreate    = "payment.create"
	useCaseCancel    = "payment.cancel"
	useCaseRefund    = "payment.refund"
	useCaseCancelAll = "payment.cancel_all"
)

var (
	// ErrProcessingFailed wraps the ledger fault behind a failed debit so the
	// caller observes a hard failure with the original cause attached.
	ErrProcessingFailed = errors.New("payment: processing failed")
	// ErrInvalidRefundAmount rejects zero or negative refund requests.
	ErrInvalidRefundAmount = errors.New("payment: refund amount must be greater than zero")
)

// IDGenerator produces payment surrogate ids.
type IDGenerator interface {
	NewID() string
}

// Service orchestrates payment records against the per-method balance
// ledgers and keeps the owning order's status in step with terminal payment
// outcomes.
type Service struct {
	payments dompay.Repository
	orders   domorder.Repository
	ledgers  map[dompay.Method]domledger.Ledger
	ids      IDGenerator
	tracer   trace.Tracer

	reqCounter prometrics.Counter
	durHist    prometrics.Histogram

	// txLocks serializes cancel/refund per transaction id so concurrent
	// calls cannot race past the terminal-state checks.
	mu      sync.Mutex
	txLocks map[string]*sync.Mutex
}

func NewService(
	payments dompay.Repository,
	orders domorder.Repository,
	ledgers map[dompay.Method]domledger.Ledger,
	ids IDGenerator,
	metrics prometrics.Registry,
) *Service {
	s := &Service{
		payments: payments,
		orders:   orders,
		ledgers:  ledgers,
		ids:      ids,
		tracer:   otel.Tracer("payment-service"),
		txLocks:  make(map[string]*sync.Mutex),
	}
	if metrics != nil {
		s.reqCounter = metrics.Counter("usecase_requests_total", "Total number of use case invocations.", "use_case", "outcome")
		s.durHist = metrics.Histogram("usecase_duration_seconds", "Duration of use case execution in seconds.", nil, "use_case")
	}
	return s
}

// CreatePayment debits the payer's balance for the order total and records
// the outcome. A failed debit still persists the payment as FAILED and the
// order as PAYMENT_FAILED, then reports the failure to the caller. The debit
// is an external side effect: when persistence fails after a successful
// debit, the money is returned with a compensating credit.
func (s *Service) CreatePayment(ctx context.Context, userEmail, orderID string, amount decimal.Decimal, methodLabel, transactionID string) (_ *dompay.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "UC.CreatePayment", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("payment.method", methodLabel),
		attribute.String("payment.transaction_id", transactionID),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseCreate, start, err) }()

	logger := logging.FromContext(ctx).With(
		zap.String("component", "payment_service"),
		zap.String("order_id", orderID),
		zap.String("transaction_id", transactionID),
	)
	logger.Info("create_payment_start", zap.String("method", methodLabel), zap.String("amount", amount.String()))

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	method, err := dompay.ParseMethod(methodLabel)
	if err != nil {
		return nil, err
	}

	p := dompay.New(s.ids.NewID(), order.ID, userEmail, amount, method, transactionID)

	debitErr := s.debit(ctx, method, userEmail, amount)
	if debitErr != nil {
		p.MarkFailed()
		order.MarkPaymentFailed()
		if insErr := s.payments.Insert(ctx, p); insErr != nil {
			logger.Error("failed_payment_insert_failed", zap.Error(insErr))
		}
		if updErr := s.orders.Update(ctx, order); updErr != nil {
			logger.Error("order_update_failed", zap.Error(updErr))
		}
		logger.Error("payment_debit_failed", zap.Error(debitErr))
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, debitErr)
	}

	p.MarkCompleted()
	order.MarkPaymentCompleted()
	if err = s.payments.Insert(ctx, p); err != nil {
		s.compensate(ctx, logger, method, userEmail, amount)
		return nil, fmt.Errorf("payment: insert: %w", err)
	}
	if err = s.orders.Update(ctx, order); err != nil {
		s.compensate(ctx, logger, method, userEmail, amount)
		return nil, fmt.Errorf("payment: order update: %w", err)
	}

	logger.Info("create_payment_success", zap.String("payment_id", p.ID))
	return p, nil
}

// CancelPayment credits back the full original amount and marks the payment
// CANCELED. Credit failures propagate with the payment record unmodified;
// the ledger is the source of truth for money.
func (s *Service) CancelPayment(ctx context.Context, transactionID string) (_ *dompay.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "UC.CancelPayment", trace.WithAttributes(
		attribute.String("payment.transaction_id", transactionID),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseCancel, start, err) }()

	unlock := s.lockTransaction(transactionID)
	defer unlock()

	logger := logging.FromContext(ctx).With(
		zap.String("component", "payment_service"),
		zap.String("transaction_id", transactionID),
	)

	p, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if p.Status == dompay.StatusCanceled {
		return nil, dompay.ErrAlreadyCanceled
	}

	if err = s.credit(ctx, p.Method, p.UserEmail, p.Amount); err != nil {
		logger.Error("cancel_credit_failed", zap.Error(err))
		return nil, err
	}

	p.MarkCanceled()
	if err = s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	if err = s.markOrder(ctx, p.OrderID, func(o *domorder.Order) { o.MarkCancelled() }); err != nil {
		return nil, err
	}

	logger.Info("cancel_payment_success", zap.String("payment_id", p.ID))
	return p, nil
}

// RefundPayment credits back the requested amount minus a 10% fee and
// records the post-fee amount against the payment's cumulative refund total.
// The payment reaches REFUNDED only when that fee-reduced total exactly
// equals the original amount; the cumulative total may never exceed it.
func (s *Service) RefundPayment(ctx context.Context, transactionID string, requested decimal.Decimal) (_ *dompay.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "UC.RefundPayment", trace.WithAttributes(
		attribute.String("payment.transaction_id", transactionID),
		attribute.String("payment.refund_requested", requested.String()),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseRefund, start, err) }()

	if requested.Sign() <= 0 {
		return nil, ErrInvalidRefundAmount
	}

	unlock := s.lockTransaction(transactionID)
	defer unlock()

	logger := logging.FromContext(ctx).With(
		zap.String("component", "payment_service"),
		zap.String("transaction_id", transactionID),
	)

	p, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if p.Status == dompay.StatusRefunded {
		return nil, dompay.ErrAlreadyRefunded
	}

	fee, credited := dompay.RefundBreakdown(requested)
	if p.RefundAmount.Add(credited).Cmp(p.Amount) > 0 {
		return nil, dompay.ErrRefundExceedsAmount
	}

	// Credit before recording; a credit failure must leave the payment in
	// its pre-call state.
	if err = s.credit(ctx, p.Method, p.UserEmail, credited); err != nil {
		logger.Error("refund_credit_failed", zap.Error(err))
		return nil, err
	}

	full, err := p.ApplyRefund(credited)
	if err != nil {
		return nil, err
	}
	if err = s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	if err = s.markOrder(ctx, p.OrderID, func(o *domorder.Order) { o.MarkRefunded(full) }); err != nil {
		return nil, err
	}

	logger.Info("refund_payment_success",
		zap.String("payment_id", p.ID),
		zap.String("fee", fee.String()),
		zap.String("credited", credited.String()),
		zap.Bool("full_refund", full),
	)
	return p, nil
}

// CancelAllForOrder cancels every payment attached to the order,
// all-or-nothing: the first failure aborts the batch with the cause wrapped,
// without rolling back payments already cancelled.
func (s *Service) CancelAllForOrder(ctx context.Context, orderID string) (_ []*dompay.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "UC.CancelAllForOrder", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	start := time.Now()
	defer func() { s.observe(span, useCaseCancelAll, start, err) }()

	logger := logging.FromContext(ctx).With(
		zap.String("component", "payment_service"),
		zap.String("order_id", orderID),
	)
	logger.Info("cancel_all_payments_start")

	if _, err = s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, dompay.ErrNoPayments
	}

	canceled := make([]*dompay.Payment, 0, len(payments))
	for _, p := range payments {
		cp, cancelErr := s.CancelPayment(ctx, p.TransactionID)
		if cancelErr != nil {
			logger.Error("cancel_all_payment_failed",
				zap.String("transaction_id", p.TransactionID),
				zap.Error(cancelErr),
			)
			err = fmt.Errorf("payment: cancel all for order %s: %w", orderID, cancelErr)
			return nil, err
		}
		canceled = append(canceled, cp)
	}

	// Redundant with the per-payment side effect, but authoritative.
	if err = s.markOrder(ctx, orderID, func(o *domorder.Order) { o.MarkCancelled() }); err != nil {
		return nil, err
	}

	logger.Info("cancel_all_payments_success", zap.Int("count", len(canceled)))
	return canceled, nil
}

// PaymentsForOrder is the owner-gated read of an order's payments.
func (s *Service) PaymentsForOrder(ctx context.Context, orderID, requesterEmail string) ([]*dompay.Payment, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserEmail != requesterEmail {
		return nil, domorder.ErrForbidden
	}
	return s.payments.ListByOrder(ctx, orderID)
}

// PaymentsByOrder lists an order's payments without an ownership gate, for
// internal projection building.
func (s *Service) PaymentsByOrder(ctx context.Context, orderID string) ([]*dompay.Payment, error) {
	return s.payments.ListByOrder(ctx, orderID)
}

// PaymentsByStatus lists payments in the given lifecycle state.
func (s *Service) PaymentsByStatus(ctx context.Context, status dompay.Status) ([]*dompay.Payment, error) {
	return s.payments.ListByStatus(ctx, status)
}

// SoftDeleteForOrder cascades an order soft delete onto its payments.
func (s *Service) SoftDeleteForOrder(ctx context.Context, orderID string) error {
	return s.payments.SoftDeleteByOrder(ctx, orderID)
}

func (s *Service) debit(ctx context.Context, method dompay.Method, userEmail string, amount decimal.Decimal) error {
	led, ok := s.ledgers[method]
	if !ok {
		return fmt.Errorf("%w: no ledger for %s", dompay.ErrInvalidMethod, method)
	}
	return led.Debit(ctx, userEmail, amount)
}

func (s *Service) credit(ctx context.Context, method dompay.Method, userEmail string, amount decimal.Decimal) error {
	led, ok := s.ledgers[method]
	if !ok {
		return fmt.Errorf("%w: no ledger for %s", dompay.ErrInvalidMethod, method)
	}
	return led.Credit(ctx, userEmail, amount)
}

// compensate returns a debited amount after a post-debit failure. Best
// effort: a failed compensation is logged, not raised over the original
// fault.
func (s *Service) compensate(ctx context.Context, logger *zap.Logger, method dompay.Method, userEmail string, amount decimal.Decimal) {
	if err := s.credit(ctx, method, userEmail, amount); err != nil {
		logger.Error("compensating_credit_failed",
			zap.String("method", method.String()),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return
	}
	logger.Warn("compensating_credit_issued",
		zap.String("method", method.String()),
		zap.String("amount", amount.String()),
	)
}

func (s *Service) markOrder(ctx context.Context, orderID string, mark func(*domorder.Order)) error {
	if orderID == "" {
		return nil
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, domorder.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	mark(order)
	return s.orders.Update(ctx, order)
}

func (s *Service) lockTransaction(transactionID string) func() {
	s.mu.Lock()
	l, ok := s.txLocks[transactionID]
	if !ok {
		l = &sync.Mutex{}
		s.txLocks[transactionID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
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
