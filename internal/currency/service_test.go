package currency

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodefavour/skyflo-store-sub000/internal/rates"
	"github.com/bodefavour/skyflo-store-sub000/internal/storage"
)

type fakeFetcher struct {
	mu    sync.Mutex
	table *rates.Table
	err   error
	delay time.Duration
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) (*rates.Table, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestService(t *testing.T, fetcher RateFetcher) (*Service, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(mem, fetcher, logger), mem
}

func fetchedTable(codeRates map[string]float64) *rates.Table {
	return &rates.Table{
		Base:      BaseCurrency,
		Rates:     codeRates,
		UpdatedAt: "Mon, 01 Jan 2026 00:00:01 +0000",
		FetchedAt: time.Now(),
	}
}

func TestRate_UnknownCurrencyFallsBackToOne(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})

	assert.Equal(t, 1.0, svc.Rate("ZZZ"))
}

func TestRate_BaseCurrencyIsOne(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})

	assert.Equal(t, 1.0, svc.Rate("USD"))
	assert.Equal(t, 1.0, svc.Rate(" usd "))
}

func TestConvert_MatchesRateExactly(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})
	ctx := context.Background()

	assert.Equal(t, 100*svc.Rate("EUR"), svc.Convert(ctx, "s1", 100, "EUR"))
}

func TestConvert_EmptyCodeUsesSessionCurrency(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5})}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	svc.SetCurrency(ctx, "s1", "EUR")
	assert.Equal(t, 50.0, svc.Convert(ctx, "s1", 100, ""))
}

func TestRefresh_FetchedRatesWinOverStatic(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5, "XAU": 0.0005})}
	svc, _ := newTestService(t, fetcher)

	require.NoError(t, svc.Refresh(context.Background()))

	assert.Equal(t, 0.5, svc.Rate("EUR"))
	assert.Equal(t, 0.0005, svc.Rate("XAU"))
	// A static-only currency survives a narrower fetch.
	assert.Equal(t, staticRates["GBP"], svc.Rate("GBP"))
}

func TestRefresh_FailureLeavesTableUntouched(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5})}
	svc, _ := newTestService(t, fetcher)
	require.NoError(t, svc.Refresh(context.Background()))

	before, _, _ := svc.Snapshot()

	fetcher.mu.Lock()
	fetcher.err = errors.New("network down")
	fetcher.mu.Unlock()

	err := svc.Refresh(context.Background())
	assert.Error(t, err)

	after, _, _ := svc.Snapshot()
	assert.Equal(t, before, after)
}

func TestRefresh_PersistsMergedTable(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5})}
	svc, mem := newTestService(t, fetcher)

	require.NoError(t, svc.Refresh(context.Background()))

	data, err := mem.Load(context.Background(), ratesKey)
	require.NoError(t, err)

	var cached cachedTable
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, 0.5, cached.Rates["EUR"])
	assert.Equal(t, BaseCurrency, cached.Base)
	assert.False(t, cached.FetchedAt.IsZero())
}

func TestNewService_SeedsFromCachedRates(t *testing.T) {
	mem := storage.NewMemoryStore()
	data, err := json.Marshal(cachedTable{
		Base:      BaseCurrency,
		Rates:     map[string]float64{"USD": 1, "EUR": 0.25},
		FetchedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mem.Save(context.Background(), ratesKey, data))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(mem, &fakeFetcher{err: errors.New("down")}, logger)

	assert.Equal(t, 0.25, svc.Rate("EUR"))
	assert.True(t, svc.Fresh())
}

func TestNewService_CorruptCacheFallsBackToStatic(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Save(context.Background(), ratesKey, []byte("garbage")))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(mem, &fakeFetcher{err: errors.New("down")}, logger)

	assert.Equal(t, staticRates["EUR"], svc.Rate("EUR"))
	assert.False(t, svc.Fresh())
}

func TestFresh_ExpiresAfterWindow(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5})}
	svc, _ := newTestService(t, fetcher)
	require.NoError(t, svc.Refresh(context.Background()))
	require.True(t, svc.Fresh())

	svc.now = func() time.Time { return time.Now().Add(13 * time.Hour) }
	assert.False(t, svc.Fresh())
}

func TestPreferences_DefaultsFromDetectedLocale(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "fr_FR.UTF-8")

	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})
	prefs := svc.Preferences(context.Background(), "s1")

	assert.Equal(t, "fr-FR", prefs.Locale)
	assert.Equal(t, "EUR", prefs.Currency)
}

func TestPreferences_HardcodedFallback(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "C")

	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})
	prefs := svc.Preferences(context.Background(), "s1")

	assert.Equal(t, DefaultLocale, prefs.Locale)
	assert.Equal(t, "USD", prefs.Currency)
}

func TestSetCurrency_NormalizesAndPersists(t *testing.T) {
	svc, mem := newTestService(t, &fakeFetcher{err: errors.New("down")})

	prefs := svc.SetCurrency(context.Background(), "s1", " eur ")
	assert.Equal(t, "EUR", prefs.Currency)

	// A second service over the same storage sees the stored choice.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc2 := NewService(mem, &fakeFetcher{err: errors.New("down")}, logger)
	assert.Equal(t, "EUR", svc2.Preferences(context.Background(), "s1").Currency)
}

func TestSetCurrency_UnknownCodeTriggersRefresh(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5})}
	svc, _ := newTestService(t, fetcher)

	svc.SetCurrency(context.Background(), "s1", "ZZZ")

	assert.Eventually(t, func() bool {
		return fetcher.callCount() > 0
	}, time.Second, 10*time.Millisecond)
}

func TestSetLocale_RederivesDefaultCurrency(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "en_US.UTF-8")

	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})

	prefs := svc.SetLocale(context.Background(), "s1", "fr_FR")
	assert.Equal(t, "fr-FR", prefs.Locale)
	assert.Equal(t, "EUR", prefs.Currency)
}

func TestSetLocale_KeepsExplicitCurrencyChoice(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "en_US.UTF-8")

	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})

	svc.SetCurrency(context.Background(), "s1", "GBP")
	prefs := svc.SetLocale(context.Background(), "s1", "de-DE")

	assert.Equal(t, "de-DE", prefs.Locale)
	assert.Equal(t, "GBP", prefs.Currency)
}

func TestFormatWith_UnknownCurrencyStillRenders(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})

	out := svc.FormatWith(context.Background(), "s1", 12.34, FormatOptions{
		Currency:       "ZZZ",
		Locale:         "en-US",
		SkipConversion: true,
	})
	assert.Equal(t, "ZZZ 12.34", out)
}

func TestFormatWith_SkipConversionAndRateOverride(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5})}
	svc, _ := newTestService(t, fetcher)
	require.NoError(t, svc.Refresh(context.Background()))

	converted := svc.FormatWith(context.Background(), "s1", 100, FormatOptions{Currency: "EUR", Locale: "en-US"})
	skipped := svc.FormatWith(context.Background(), "s1", 100, FormatOptions{Currency: "EUR", Locale: "en-US", SkipConversion: true})
	overridden := svc.FormatWith(context.Background(), "s1", 100, FormatOptions{Currency: "EUR", Locale: "en-US", Rate: 1})

	assert.Contains(t, converted, "50")
	assert.Contains(t, skipped, "100")
	assert.Contains(t, overridden, "100")
}

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, "fr-FR", NormalizeLocale("fr_FR.UTF-8"))
	assert.Equal(t, "en-US", NormalizeLocale("en_us"))
	assert.Equal(t, "de", NormalizeLocale("DE"))
}

func TestCurrencyForLocale_UnknownLocaleIsBase(t *testing.T) {
	assert.Equal(t, BaseCurrency, CurrencyForLocale("xx-XX"))
	assert.Equal(t, "EUR", CurrencyForLocale("fr-FR"))
}

func TestRefresh_ConcurrentCallsCollapse(t *testing.T) {
	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5}), delay: 50 * time.Millisecond}
	svc, _ := newTestService(t, fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Refresh(context.Background())
		}()
	}
	wg.Wait()

	// singleflight may let a couple of fetches through as calls finish,
	// but nowhere near one per caller.
	assert.LessOrEqual(t, fetcher.callCount(), 3)
	assert.Equal(t, 0.5, svc.Rate("EUR"))
}

func TestRate_IgnoresNonPositiveStoredRate(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{err: errors.New("down")})

	svc.mu.Lock()
	svc.table["BAD"] = -3
	svc.mu.Unlock()

	assert.Equal(t, 1.0, svc.Rate("BAD"))
}

func TestFormat_UsesSessionCurrency(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "en_US.UTF-8")

	fetcher := &fakeFetcher{table: fetchedTable(map[string]float64{"EUR": 0.5})}
	svc, _ := newTestService(t, fetcher)
	require.NoError(t, svc.Refresh(context.Background()))

	svc.SetCurrency(context.Background(), "s1", "EUR")
	out := svc.Format(context.Background(), "s1", 100)

	require.NotEmpty(t, out)
	assert.True(t, strings.Contains(out, "50"), "expected converted amount in %q", out)
}
