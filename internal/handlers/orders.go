package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/domain"
	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/platform/observability"
	"github.com/tiemmay/api/internal/platform/requestctx"
	"github.com/tiemmay/api/internal/services"
)

// OrderHandler places orders from the caller's session cart and serves
// order history and the customer profile.
type OrderHandler struct {
	orders *services.OrderService
	carts  *services.CartService
}

func NewOrderHandler(orders *services.OrderService, carts *services.CartService) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts}
}

func (h *OrderHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/me/orders", h.listMyOrders)
	r.Get("/me/customer", h.getMyCustomer)
}

func (h *OrderHandler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.listAllOrders)
}

type createOrderPayload struct {
	Address   string `json:"address"`
	Note      string `json:"note"`
	UserName  string `json:"user_name"`
	StoreID   string `json:"store_id"`
	ReceiveAt string `json:"receive_at"`
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	var payload createOrderPayload
	if err := readJSONBody(w, r, &payload); err != nil {
		writeBodyError(w, r, err)
		return
	}

	var receiveAt time.Time
	if payload.ReceiveAt != "" {
		parsed, err := time.Parse(time.RFC3339, payload.ReceiveAt)
		if err != nil {
			httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", "receive_at must be RFC 3339")
			return
		}
		receiveAt = parsed
	}

	cart, err := h.carts.Get(r.Context(), identity.UID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	userName := payload.UserName
	if userName == "" {
		userName = identity.DisplayName
	}
	order, err := h.orders.CreateOrder(r.Context(), services.CreateOrderInput{
		PhoneNumber: identity.PhoneNumber,
		UserName:    userName,
		Address:     payload.Address,
		Note:        payload.Note,
		StoreID:     payload.StoreID,
		ReceiveAt:   receiveAt,
		Cart:        cart,
	})
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	// The cart is scratch state; a failed clear only means a stale cart.
	if err := h.carts.Clear(r.Context(), identity.UID); err != nil {
		requestctx.Logger(r.Context()).Warn("clear cart after order",
			zap.String("user", observability.MaskPhone(identity.PhoneNumber)), zap.Error(err))
	}

	writeJSON(w, r, http.StatusCreated, newOrderView(order, order.TotalAmount))
}

func (h *OrderHandler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	orders, err := h.orders.ListByPhone(r.Context(), identity.PhoneNumber)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	h.writeOrderList(w, r, orders)
}

func (h *OrderHandler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	h.writeOrderList(w, r, orders)
}

func (h *OrderHandler) writeOrderList(w http.ResponseWriter, r *http.Request, orders []domain.Order) {
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		total, err := h.orders.OrderTotal(r.Context(), order)
		if err != nil {
			requestctx.Logger(r.Context()).Warn("resolve order total",
				zap.String("order_id", order.ID), zap.Error(err))
			total = order.TotalAmount
		}
		views = append(views, newOrderView(order, total))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"orders": views})
}

func (h *OrderHandler) getMyCustomer(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	customer, err := h.orders.GetCustomer(r.Context(), identity.PhoneNumber)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			httpx.WriteError(w, r, http.StatusNotFound, "not_found", "no customer profile yet")
			return
		}
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, customerView{
		PhoneNumber: customer.PhoneNumber,
		UserName:    customer.UserName,
		Address:     customer.Address,
	})
}

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrOrderEmptyCart):
		httpx.WriteError(w, r, http.StatusUnprocessableEntity, "empty_cart", "cart is empty")
	case errors.Is(err, services.ErrOrderInvalidInput), errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	default:
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal", "internal server error")
	}
}
