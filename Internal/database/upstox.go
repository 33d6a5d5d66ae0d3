package datafeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fazecat/niftyscreener/Internal/types"
)

const DefaultUpstoxBaseURL = "https://api.upstox.com/v2"

// ProviderConfig tunes the HTTP bar providers.
type ProviderConfig struct {
	BaseURL           string        `yaml:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"max_retries"`
	Timeout           time.Duration `yaml:"timeout"`
}

func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		BaseURL:           DefaultUpstoxBaseURL,
		RequestsPerSecond: 8,
		Burst:             4,
		MaxRetries:        2,
		Timeout:           8 * time.Second,
	}
}

// StatusError is a non-200 answer from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// UpstoxClient fetches daily candles from the Upstox historical-candle API.
// One client is shared by all scan workers; its limiter and breaker are too.
type UpstoxClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries uint64
	now        func() time.Time
}

func NewUpstoxClient(token string, cfg ProviderConfig) *UpstoxClient {
	d := DefaultProviderConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = d.BaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = d.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = d.Burst
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}

	settings := gobreaker.Settings{
		Name:        "upstox",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 10
		},
		// A 4xx for one instrument says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return !statusErr.Retryable()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}

	return &UpstoxClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		maxRetries: uint64(cfg.MaxRetries),
		now:        time.Now,
	}
}

type candleResponse struct {
	Status string `json:"status"`
	Data   struct {
		Candles [][]interface{} `json:"candles"`
	} `json:"data"`
}

// FetchBars returns up to lookbackDays calendar days of daily bars, oldest first.
func (c *UpstoxClient) FetchBars(ctx context.Context, instrumentKey string, lookbackDays int) ([]types.Bar, error) {
	now := c.now()
	endpoint := fmt.Sprintf("%s/historical-candle/%s/day/%s/%s",
		c.baseURL,
		url.PathEscape(instrumentKey),
		now.Format("2006-01-02"),
		now.AddDate(0, 0, -lookbackDays).Format("2006-01-02"),
	)

	var payload candleResponse
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.get(ctx, endpoint, &payload)
		})
		if err == nil {
			return nil
		}
		var statusErr *StatusError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(err)
		case errors.As(err, &statusErr) && !statusErr.Retryable():
			return backoff.Permanent(err)
		case ctx.Err() != nil:
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("upstox candles for %s: %w", instrumentKey, err)
	}
	return parseCandles(payload.Data.Candles)
}

func (c *UpstoxClient) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("malformed candle payload: %w", err))
	}
	return nil
}

// parseCandles converts [timestamp, open, high, low, close, volume, oi] rows
// into bars sorted ascending. A repeated timestamp keeps the last row seen.
func parseCandles(rows [][]interface{}) ([]types.Bar, error) {
	byTime := make(map[int64]types.Bar, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("candle %d has %d fields", i, len(row))
		}
		ts, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("candle %d timestamp is %T", i, row[0])
		}
		when, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("candle %d timestamp: %w", i, err)
		}
		var nums [5]float64
		for j := range nums {
			v, ok := row[j+1].(float64)
			if !ok {
				return nil, fmt.Errorf("candle %d field %d is %T", i, j+1, row[j+1])
			}
			nums[j] = v
		}
		byTime[when.Unix()] = types.Bar{
			Timestamp: when,
			Open:      nums[0],
			High:      nums[1],
			Low:       nums[2],
			Close:     nums[3],
			Volume:    int64(nums[4]),
		}
	}

	bars := make([]types.Bar, 0, len(byTime))
	for _, bar := range byTime {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
