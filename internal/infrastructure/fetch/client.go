// Package fetch downloads daily OHLCV history from a Stooq-style CSV
// endpoint with rate limiting, a circuit breaker, and optional caching.
package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/infrastructure/cache"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

// Config holds provider endpoint and throttling parameters.
type Config struct {
	BaseURL      string
	TickerSuffix string
	RPS          float64
	Burst        int
	Timeout      time.Duration
}

// Client fetches daily bars for one ticker at a time.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *cache.QuoteCache // nil disables caching
}

// New builds a client. cache may be nil.
func New(cfg Config, quoteCache *cache.QuoteCache) *Client {
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bars-provider",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: breaker,
		cache:   quoteCache,
	}
}

// DailyBars returns the daily history for a ticker over [start, end].
func (c *Client) DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]market.Bar, error) {
	key := cache.Key(ticker, start, end)
	if c.cache != nil {
		if bars, ok := c.cache.GetBars(ctx, key); ok {
			return bars, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, ticker, start, end)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	bars := result.([]market.Bar)

	if c.cache != nil && len(bars) > 0 {
		c.cache.SetBars(ctx, key, bars)
	}
	return bars, nil
}

func (c *Client) fetch(ctx context.Context, ticker string, start, end time.Time) ([]market.Bar, error) {
	q := url.Values{}
	q.Set("s", strings.ToLower(ticker)+c.cfg.TickerSuffix)
	q.Set("d1", start.Format("20060102"))
	q.Set("d2", end.Format("20060102"))
	q.Set("i", "d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %s", resp.Status)
	}
	return ParseBarsCSV(resp.Body)
}

// ParseBarsCSV decodes a Date,Open,High,Low,Close,Volume CSV stream.
// Rows with unparsable dates are rejected; missing numeric cells become 0
// and are caught later by the preprocess screens.
func ParseBarsCSV(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("empty response")
	}
	col := headerIndex(records[0])
	if col["date"] < 0 || col["close"] < 0 {
		return nil, fmt.Errorf("unexpected header %v", records[0])
	}

	bars := make([]market.Bar, 0, len(records)-1)
	for i, rec := range records[1:] {
		date, err := time.Parse("2006-01-02", rec[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date %q: %w", i+1, rec[col["date"]], err)
		}
		bars = append(bars, market.Bar{
			Date:   date,
			Open:   cell(rec, col["open"]),
			High:   cell(rec, col["high"]),
			Low:    cell(rec, col["low"]),
			Close:  cell(rec, col["close"]),
			Volume: cell(rec, col["volume"]),
		})
	}
	return bars, nil
}

func headerIndex(header []string) map[string]int {
	col := map[string]int{"date": -1, "open": -1, "high": -1, "low": -1, "close": -1, "volume": -1}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, want := col[key]; want {
			col[key] = i
		}
	}
	return col
}

func cell(rec []string, idx int) float64 {
	if idx < 0 || idx >= len(rec) {
		return 0
	}
	v, err := strconv.ParseFloat(rec[idx], 64)
	if err != nil {
		return 0
	}
	return v
}
