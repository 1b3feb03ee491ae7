package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bodefavour/skyflo-store-sub000/internal/catalog"
	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
	"github.com/bodefavour/skyflo-store-sub000/internal/wishlist"
)

type WishlistHandler struct {
	lists *wishlist.Store
	repo  catalog.Repository
}

func NewWishlistHandler(lists *wishlist.Store, repo catalog.Repository) *WishlistHandler {
	return &WishlistHandler{lists: lists, repo: repo}
}

type toggleRequest struct {
	ProductID string `json:"product_id"`
}

type wishlistResponse struct {
	Items []domain.WishlistItem `json:"items"`
	Count int                   `json:"count"`
	// Saved is only set on toggle responses: whether the product ended up
	// in the list.
	Saved *bool `json:"saved,omitempty"`
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	list := h.lists.Get(r.Context(), sessionFromContext(r.Context()))
	respondJSON(w, http.StatusOK, wishlistResponse{Items: list.Items, Count: list.Count()})
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
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

	list, saved := h.lists.Toggle(r.Context(), sessionFromContext(r.Context()), product.Snapshot())
	respondJSON(w, http.StatusOK, wishlistResponse{Items: list.Items, Count: list.Count(), Saved: &saved})
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	list := h.lists.Remove(r.Context(), sessionFromContext(r.Context()), productID)
	respondJSON(w, http.StatusOK, wishlistResponse{Items: list.Items, Count: list.Count()})
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionFromContext(r.Context())
	h.lists.Clear(r.Context(), sessionID)
	list := h.lists.Get(r.Context(), sessionID)
	respondJSON(w, http.StatusOK, wishlistResponse{Items: list.Items, Count: list.Count()})
}
