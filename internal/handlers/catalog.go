package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/services"
)

// CatalogHandler serves the public browse surface.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/catalog/products", h.listProducts)
	r.Get("/catalog/products/{productID}", h.getProduct)
	r.Get("/catalog/categories", h.listCategories)
	r.Get("/catalog/stores", h.listStores)
	r.Get("/catalog/stores/nearest", h.nearestStore)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), services.ProductFilter{
		CategoryID: r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("q"),
	})
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"products": views})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", "product id must be an integer")
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newProductView(product))
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{ID: c.ID, Name: c.Name, Image: c.Image})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"categories": views})
}

func (h *CatalogHandler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.ListStores(r.Context())
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	views := make([]storeView, 0, len(stores))
	for _, s := range stores {
		views = append(views, newStoreView(s))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"stores": views})
}

func (h *CatalogHandler) nearestStore(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", "lat and lng query parameters are required")
		return
	}
	store, err := h.catalog.NearestStore(r.Context(), lat, lng)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newStoreView(store))
}

func writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, services.ErrCatalogProductNotFound), errors.Is(err, services.ErrCatalogStoreNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	default:
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal", "internal server error")
	}
}
