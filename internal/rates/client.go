package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrBadPayload is returned when the rate source responds without a success
// indicator or without the rate mapping. Treated like any transient failure.
var ErrBadPayload = errors.New("malformed rate payload")

// Table is one full fetch from the rate source: every rate is relative to
// the base currency.
type Table struct {
	Base      string
	Rates     map[string]float64
	UpdatedAt string
	FetchedAt time.Time
}

type ratePayload struct {
	Result         string             `json:"result"`
	BaseCode       string             `json:"base_code"`
	Rates          map[string]float64 `json:"rates"`
	TimeLastUpdate string             `json:"time_last_update_utc"`
}

type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Table]
	now        func() time.Time
}

// NewClient builds a rate-source client. The 10s client timeout bounds a
// hanging fetch instead of relying on the transport's own limits.
func NewClient(url string) *Client {
	breaker := gobreaker.NewCircuitBreaker[*Table](gobreaker.Settings{
		Name:    "rate-source",
		Timeout: 30 * time.Second,
	})
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    breaker,
		now:        time.Now,
	}
}

func (c *Client) Fetch(ctx context.Context) (*Table, error) {
	return c.breaker.Execute(func() (*Table, error) {
		return c.fetch(ctx)
	})
}

func (c *Client) fetch(ctx context.Context) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var payload ratePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rate payload: %w", err)
	}

	if payload.Result != "success" || len(payload.Rates) == 0 {
		return nil, ErrBadPayload
	}

	rates := make(map[string]float64, len(payload.Rates))
	for code, rate := range payload.Rates {
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}
		rates[code] = rate
	}
	if len(rates) == 0 {
		return nil, ErrBadPayload
	}

	return &Table{
		Base:      payload.BaseCode,
		Rates:     rates,
		UpdatedAt: payload.TimeLastUpdate,
		FetchedAt: c.now(),
	}, nil
}
