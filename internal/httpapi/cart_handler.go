package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bodefavour/skyflo-store-sub000/internal/cart"
	"github.com/bodefavour/skyflo-store-sub000/internal/catalog"
	"github.com/bodefavour/skyflo-store-sub000/internal/currency"
	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
)

type CartHandler struct {
	carts    *cart.Store
	repo     catalog.Repository
	currency *currency.Service
}

func NewCartHandler(carts *cart.Store, repo catalog.Repository, cur *currency.Service) *CartHandler {
	return &CartHandler{carts: carts, repo: repo, currency: cur}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// cartResponse carries the raw totals plus the total formatted in the
// session's currency and locale.
type cartResponse struct {
	Items          []domain.CartItem `json:"items"`
	Count          int               `json:"count"`
	Total          float64           `json:"total"`
	Currency       string            `json:"currency"`
	FormattedTotal string            `json:"formatted_total"`
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int, c *domain.Cart) {
	sessionID := sessionFromContext(r.Context())
	prefs := h.currency.Preferences(r.Context(), sessionID)

	respondJSON(w, status, cartResponse{
		Items:          c.Items,
		Count:          c.Count(),
		Total:          c.Total(),
		Currency:       prefs.Currency,
		FormattedTotal: h.currency.Format(r.Context(), sessionID, c.Total()),
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(r.Context(), sessionFromContext(r.Context()))
	h.respondCart(w, r, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	product, err := h.repo.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	c := h.carts.Add(r.Context(), sessionFromContext(r.Context()), product.Snapshot(), req.Quantity)
	h.respondCart(w, r, http.StatusCreated, c)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	c := h.carts.UpdateQuantity(r.Context(), sessionFromContext(r.Context()), productID, req.Quantity)
	h.respondCart(w, r, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	c := h.carts.Remove(r.Context(), sessionFromContext(r.Context()), productID)
	h.respondCart(w, r, http.StatusOK, c)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionFromContext(r.Context())
	h.carts.Clear(r.Context(), sessionID)
	h.respondCart(w, r, http.StatusOK, h.carts.Get(r.Context(), sessionID))
}
