package currency

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
	"github.com/bodefavour/skyflo-store-sub000/internal/rates"
	"github.com/bodefavour/skyflo-store-sub000/internal/storage"
)

const (
	// BaseCurrency is the reference all stored rates are expressed against.
	BaseCurrency = "USD"

	DefaultLocale = "en-US"

	// freshFor is how old a cached rate table may get before a qualifying
	// read triggers a background refresh.
	freshFor = 12 * time.Hour

	ratesKey    = "rates:" + BaseCurrency
	prefsPrefix = "prefs:"
)

// RateFetcher is what the service needs from the rate-source collaborator.
type RateFetcher interface {
	Fetch(ctx context.Context) (*rates.Table, error)
}

// cachedTable is the persisted form of the merged rate table.
type cachedTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt string             `json:"updated_at,omitempty"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Service owns locale/currency preferences, the cached exchange-rate table
// and monetary conversion/formatting. Construct one per process and inject it
// where needed; rate state is shared, preferences are per session.
type Service struct {
	store   storage.Store
	fetcher RateFetcher
	log     *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	table     map[string]float64
	fetchedAt time.Time
	updatedAt string

	sfg        singleflight.Group
	refreshing sync.Mutex // serializes the stale-triggered background refresh
}

func NewService(store storage.Store, fetcher RateFetcher, log *slog.Logger) *Service {
	s := &Service{
		store:   store,
		fetcher: fetcher,
		log:     log,
		now:     time.Now,
		table:   mergeRates(nil),
	}
	s.loadCachedRates()
	return s
}

// loadCachedRates seeds the in-memory table from storage. A missing or
// unparsable entry just means we start from the static fallback.
func (s *Service) loadCachedRates() {
	data, err := s.store.Load(context.Background(), ratesKey)
	if err != nil {
		if err != storage.ErrNotFound {
			s.log.Warn("failed to load cached rates", "error", err)
		}
		return
	}

	var cached cachedTable
	if err := json.Unmarshal(data, &cached); err != nil || len(cached.Rates) == 0 {
		s.log.Warn("cached rate table is corrupt, using static fallback")
		return
	}

	s.mu.Lock()
	s.table = mergeRates(cached.Rates)
	s.fetchedAt = cached.FetchedAt
	s.updatedAt = cached.UpdatedAt
	s.mu.Unlock()
}

// mergeRates layers fetched rates over the static fallback; fetched values
// win, the base currency is always pinned to 1.
func mergeRates(fetched map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(staticRates)+len(fetched))
	for code, rate := range staticRates {
		merged[code] = rate
	}
	for code, rate := range fetched {
		if rate > 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0) {
			merged[strings.ToUpper(code)] = rate
		}
	}
	merged[BaseCurrency] = 1
	return merged
}

// Preferences returns the stored pair for the session, deriving defaults from
// the runtime locale when nothing was saved yet. Defaults are not written
// back; only explicit changes persist.
func (s *Service) Preferences(ctx context.Context, sessionID string) domain.Preferences {
	data, err := s.store.Load(ctx, prefsPrefix+sessionID)
	if err == nil {
		var prefs domain.Preferences
		if jsonErr := json.Unmarshal(data, &prefs); jsonErr == nil && prefs.Currency != "" && prefs.Locale != "" {
			return prefs
		}
		s.log.Warn("stored preferences are corrupt, rederiving defaults", "session", sessionID)
	} else if err != storage.ErrNotFound {
		s.log.Warn("failed to load preferences", "session", sessionID, "error", err)
	}

	locale := detectLocale()
	return domain.Preferences{
		Currency: CurrencyForLocale(locale),
		Locale:   locale,
	}
}

// SetCurrency normalizes and persists an explicit currency choice. An unknown
// code triggers a background rate refresh so the next read can convert.
func (s *Service) SetCurrency(ctx context.Context, sessionID, code string) domain.Preferences {
	code = strings.ToUpper(strings.TrimSpace(code))
	prefs := s.Preferences(ctx, sessionID)
	if code == "" {
		return prefs
	}

	prefs.Currency = code
	s.savePreferences(ctx, sessionID, prefs)

	if !s.hasRate(code) {
		go func() {
			if err := s.Refresh(context.Background()); err != nil {
				s.log.Warn("rate refresh after currency change failed", "currency", code, "error", err)
			}
		}()
	}
	return prefs
}

// SetLocale normalizes the tag and persists it. When the session's currency
// is still the old locale's default (never explicitly changed), it follows
// the new locale.
func (s *Service) SetLocale(ctx context.Context, sessionID, tag string) domain.Preferences {
	tag = NormalizeLocale(tag)
	prefs := s.Preferences(ctx, sessionID)
	if tag == "" {
		return prefs
	}

	if prefs.Currency == CurrencyForLocale(prefs.Locale) {
		prefs.Currency = CurrencyForLocale(tag)
	}
	prefs.Locale = tag
	s.savePreferences(ctx, sessionID, prefs)
	return prefs
}

func (s *Service) savePreferences(ctx context.Context, sessionID string, prefs domain.Preferences) {
	data, err := json.Marshal(prefs)
	if err != nil {
		s.log.Warn("failed to marshal preferences", "error", err)
		return
	}
	if err := s.store.Save(ctx, prefsPrefix+sessionID, data); err != nil {
		s.log.Warn("failed to persist preferences", "session", sessionID, "error", err)
	}
}

// Refresh fetches the full table from the rate source. Concurrent calls are
// collapsed into one fetch. On any failure the in-memory table is left
// untouched; the returned error is informational only.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, _ := s.sfg.Do("refresh", func() (interface{}, error) {
		table, err := s.fetcher.Fetch(ctx)
		if err != nil {
			s.log.Warn("rate refresh failed, keeping previous table", "error", err)
			return nil, err
		}

		merged := mergeRates(table.Rates)

		s.mu.Lock()
		s.table = merged
		s.fetchedAt = table.FetchedAt
		s.updatedAt = table.UpdatedAt
		s.mu.Unlock()

		s.persistRates(merged, table)
		return nil, nil
	})
	return err
}

func (s *Service) persistRates(merged map[string]float64, table *rates.Table) {
	data, err := json.Marshal(cachedTable{
		Base:      BaseCurrency,
		Rates:     merged,
		UpdatedAt: table.UpdatedAt,
		FetchedAt: table.FetchedAt,
	})
	if err != nil {
		s.log.Warn("failed to marshal rate table", "error", err)
		return
	}
	if err := s.store.Save(context.Background(), ratesKey, data); err != nil {
		s.log.Warn("failed to persist rate table", "error", err)
	}
}

// Fresh reports whether the cached table is within the freshness window.
func (s *Service) Fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < freshFor
}

// refreshIfStale fires a background refresh when the table is past the
// freshness window. Callers never wait on it; reads keep serving the last
// good table until the swap.
func (s *Service) refreshIfStale() {
	if s.Fresh() {
		return
	}
	if !s.refreshing.TryLock() {
		return
	}
	go func() {
		defer s.refreshing.Unlock()
		if err := s.Refresh(context.Background()); err != nil {
			s.log.Debug("background rate refresh failed", "error", err)
		}
	}()
}

// Rate returns the known rate for code relative to the base currency.
// Unknown, non-finite or non-positive rates resolve to 1 so pricing display
// never fails.
func (s *Service) Rate(code string) float64 {
	s.refreshIfStale()

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == BaseCurrency {
		return 1
	}

	s.mu.RLock()
	rate, ok := s.table[code]
	s.mu.RUnlock()

	if !ok || rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 1
	}
	return rate
}

func (s *Service) hasRate(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.table[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Convert returns amount multiplied by the rate for code. An empty code means
// the session's currency.
func (s *Service) Convert(ctx context.Context, sessionID string, amount float64, code string) float64 {
	if strings.TrimSpace(code) == "" {
		code = s.Preferences(ctx, sessionID).Currency
	}
	return amount * s.Rate(code)
}

// Snapshot copies the current table for read-only use (the /rates endpoint).
func (s *Service) Snapshot() (map[string]float64, time.Time, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table := make(map[string]float64, len(s.table))
	for code, rate := range s.table {
		table[code] = rate
	}
	return table, s.fetchedAt, s.updatedAt
}

// detectLocale reads the runtime locale, falling back to en-US.
func detectLocale() string {
	for _, env := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(env); v != "" && v != "C" && v != "POSIX" {
			if tag := NormalizeLocale(v); strings.Contains(tag, "-") {
				return tag
			}
		}
	}
	return DefaultLocale
}
