// Package httptransport is the boundary layer: request decoding, identity
// extraction, and mapping of domain errors onto status codes. All business
// behavior lives in the application services.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	appOrder "github.com/gurungd265/webshop/app/internal/application/order"
	appPayment "github.com/gurungd265/webshop/app/internal/application/payment"
	domcart "github.com/gurungd265/webshop/app/internal/domain/cart"
	domcatalog "github.com/gurungd265/webshop/app/internal/domain/catalog"
	domledger "github.com/gurungd265/webshop/app/internal/domain/ledger"
	domorder "github.com/gurungd265/webshop/app/internal/domain/order"
	dompay "github.com/gurungd265/webshop/app/internal/domain/payment"
	domuser "github.com/gurungd265/webshop/app/internal/domain/user"
)

// identityHeader carries the authenticated user set by the upstream auth
// middleware; authentication itself is outside this service.
const identityHeader = "X-User-Email"

type Handler struct {
	orders   *appOrder.Service
	payments *appPayment.Service
}

func NewHandler(orders *appOrder.Service, payments *appPayment.Service) *Handler {
	return &Handler{orders: orders, payments: payments}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.handleCreateOrder)
		r.Post("/from-cart", h.handleCreateOrderFromCart)
		r.Get("/", h.handleListOrders)
		r.Get("/number/{orderNumber}", h.handleGetOrderByNumber)
		r.Patch("/number/{orderNumber}/status", h.handleUpdateOrderStatus)
		r.Get("/status/{status}", h.handleListOrdersByStatus)
		r.Get("/{orderID}", h.handleGetOrder)
		r.Delete("/{orderID}", h.handleDeleteOrder)
		r.Post("/{orderID}/cancel", h.handleCancelOrder)
		r.Get("/{orderID}/payments", h.handleListOrderPayments)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.handleCreatePayment)
		r.Post("/{transactionID}/cancel", h.handleCancelPayment)
		r.Post("/{transactionID}/refund", h.handleRefundPayment)
		r.Get("/status/{status}", h.handleListPaymentsByStatus)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

type createOrderFromCartRequest struct {
	PaymentMethod       string     `json:"paymentMethod"`
	ShippingAddressID   string     `json:"shippingAddressId"`
	BillingAddressID    string     `json:"billingAddressId"`
	RequestedDeliveryAt *time.Time `json:"requestedDeliveryAt"`
}

func (h *Handler) handleCreateOrderFromCart(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	var req createOrderFromCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.orders.CreateFromCart(r.Context(), appOrder.CreateFromCartInput{
		UserEmail:           email,
		PaymentMethod:       req.PaymentMethod,
		ShippingAddressID:   req.ShippingAddressID,
		BillingAddressID:    req.BillingAddressID,
		RequestedDeliveryAt: req.RequestedDeliveryAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

type orderItemRequest struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type createOrderRequest struct {
	Items               []orderItemRequest `json:"items"`
	Subtotal            *decimal.Decimal   `json:"subtotal"`
	ShippingAddressID   string             `json:"shippingAddressId"`
	BillingAddressID    string             `json:"billingAddressId"`
	RequestedDeliveryAt *time.Time         `json:"requestedDeliveryAt"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]appOrder.RequestItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, appOrder.RequestItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}

	view, err := h.orders.CreateFromRequest(r.Context(), appOrder.CreateFromRequestInput{
		UserEmail:           email,
		Items:               items,
		Subtotal:            req.Subtotal,
		ShippingAddressID:   req.ShippingAddressID,
		BillingAddressID:    req.BillingAddressID,
		RequestedDeliveryAt: req.RequestedDeliveryAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	views, err := h.orders.ListByUser(r.Context(), email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	view, err := h.orders.Get(r.Context(), email, chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	view, err := h.orders.GetByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleListOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	views, err := h.orders.ListByStatus(r.Context(), chi.URLParam(r, "status"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.orders.UpdateStatus(r.Context(), email, chi.URLParam(r, "orderNumber"), req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.orders.Cancel(r.Context(), email, chi.URLParam(r, "orderID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.orders.Delete(r.Context(), email, chi.URLParam(r, "orderID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListOrderPayments(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	payments, err := h.payments.PaymentsForOrder(r.Context(), chi.URLParam(r, "orderID"), email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponses(payments))
}

type createPaymentRequest struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	TransactionID string          `json:"transactionId"`
}

func (h *Handler) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	email, ok := identity(w, r)
	if !ok {
		return
	}
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.payments.CreatePayment(r.Context(), email, req.OrderID, req.Amount, req.PaymentMethod, req.TransactionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResponse(p))
}

func (h *Handler) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.CancelPayment(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse(p))
}

type refundPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) handleRefundPayment(w http.ResponseWriter, r *http.Request) {
	var req refundPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.payments.RefundPayment(r.Context(), chi.URLParam(r, "transactionID"), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse(p))
}

func (h *Handler) handleListPaymentsByStatus(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.PaymentsByStatus(r.Context(), dompay.Status(chi.URLParam(r, "status")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponses(payments))
}

type paymentDTO struct {
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

func paymentResponse(p *dompay.Payment) paymentDTO {
	return paymentDTO{
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

func paymentResponses(payments []*dompay.Payment) []paymentDTO {
	out := make([]paymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse(p))
	}
	return out
}

func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.Header.Get(identityHeader)
	if email == "" {
		writeError(w, http.StatusUnauthorized, errors.New("missing identity"))
		return "", false
	}
	return email, true
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, dompay.ErrNotFound),
		errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domcart.ErrNotFound),
		errors.Is(err, domuser.ErrUserNotFound),
		errors.Is(err, domuser.ErrAddressNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, domorder.ErrCancelNotAllowed),
		errors.Is(err, domorder.ErrStatusNotDirect),
		errors.Is(err, dompay.ErrAlreadyCanceled),
		errors.Is(err, dompay.ErrAlreadyRefunded),
		errors.Is(err, dompay.ErrRefundExceedsAmount),
		errors.Is(err, dompay.ErrNoPayments),
		errors.Is(err, dompay.ErrConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domorder.ErrEmptyCart),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, dompay.ErrInvalidMethod),
		errors.Is(err, appPayment.ErrInvalidRefundAmount):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domledger.ErrInsufficientBalance),
		errors.Is(err, domledger.ErrAccountNotFound),
		errors.Is(err, appPayment.ErrProcessingFailed):
		writeError(w, http.StatusPaymentRequired, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
