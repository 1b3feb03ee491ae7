package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bodefavour/skyflo-store-sub000/internal/currency"
	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
)

type PreferencesHandler struct {
	currency *currency.Service
}

func NewPreferencesHandler(cur *currency.Service) *PreferencesHandler {
	return &PreferencesHandler{currency: cur}
}

type updatePreferencesRequest struct {
	Currency string `json:"currency,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	prefs := h.currency.Preferences(r.Context(), sessionFromContext(r.Context()))
	respondJSON(w, http.StatusOK, prefs)
}

func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Currency == "" && req.Locale == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "currency or locale is required")
		return
	}

	sessionID := sessionFromContext(r.Context())

	// Locale first so an explicit currency in the same request wins over
	// the locale-derived default.
	var prefs domain.Preferences
	if req.Locale != "" {
		prefs = h.currency.SetLocale(r.Context(), sessionID, req.Locale)
	}
	if req.Currency != "" {
		prefs = h.currency.SetCurrency(r.Context(), sessionID, req.Currency)
	}

	respondJSON(w, http.StatusOK, prefs)
}

type ratesResponse struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt *time.Time         `json:"fetched_at,omitempty"`
	UpdatedAt string             `json:"updated_at,omitempty"`
}

func (h *PreferencesHandler) Rates(w http.ResponseWriter, r *http.Request) {
	table, fetchedAt, updatedAt := h.currency.Snapshot()

	resp := ratesResponse{
		Base:      currency.BaseCurrency,
		Rates:     table,
		UpdatedAt: updatedAt,
	}
	if !fetchedAt.IsZero() {
		resp.FetchedAt = &fetchedAt
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *PreferencesHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	if err := h.currency.Refresh(r.Context()); err != nil {
		// The previous table is still being served.
		respondError(w, http.StatusBadGateway, "rate_source_unavailable", "rate refresh failed")
		return
	}
	h.Rates(w, r)
}
