package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/services"
)

// CartHandler exposes the session cart. Carts are keyed by the
// authenticated user id, so every route requires auth.
type CartHandler struct {
	carts *services.CartService
}

func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Delete("/cart", h.clearCart)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{lineID}", h.updateItem)
	r.Delete("/cart/items/{lineID}", h.removeItem)
}

type addItemPayload struct {
	ProductID       int64             `json:"product_id"`
	SelectedOptions selectionsPayload `json:"selected_options"`
	Quantity        int               `json:"quantity"`
}

type updateItemPayload struct {
	SelectedOptions selectionsPayload `json:"selected_options"`
	Quantity        *int              `json:"quantity"`
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	cart, err := h.carts.Get(r.Context(), identity.UID)
	if err != nil {
		writeCartError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	if err := h.carts.Clear(r.Context(), identity.UID); err != nil {
		writeCartError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	var payload addItemPayload
	if err := readJSONBody(w, r, &payload); err != nil {
		writeBodyError(w, r, err)
		return
	}
	selections, err := payload.SelectedOptions.toDomain()
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	quantity := payload.Quantity
	if quantity == 0 {
		quantity = 1
	}
	cart, lineID, err := h.carts.AddItem(r.Context(), identity.UID, payload.ProductID, selections, quantity)
	if err != nil {
		writeCartError(w, r, err)
		return
	}
	view := newCartView(cart)
	writeJSON(w, r, http.StatusCreated, map[string]any{"line_id": lineID, "cart": view})
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	var payload updateItemPayload
	if err := readJSONBody(w, r, &payload); err != nil {
		writeBodyError(w, r, err)
		return
	}
	if payload.Quantity == nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", "quantity is required")
		return
	}
	selections, err := payload.SelectedOptions.toDomain()
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	cart, err := h.carts.UpdateItem(r.Context(), identity.UID, chi.URLParam(r, "lineID"), selections, *payload.Quantity)
	if err != nil {
		writeCartError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityPhone(w, r)
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(r.Context(), identity.UID, chi.URLParam(r, "lineID"))
	if err != nil {
		writeCartError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCartView(cart))
}

func writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, services.ErrCartLineNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrCatalogProductNotFound), isNotFound(err):
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", "product not found")
	default:
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(w, r, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
		return
	}
	httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
}
