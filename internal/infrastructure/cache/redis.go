// Package cache provides a Redis-backed cache for provider responses so
// repeated research runs do not refetch identical history.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

const keyPrefix = "pairs:bars:"

// Stats tracks cache effectiveness over the life of the process.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Errors int64 `json:"errors"`
}

// QuoteCache caches per-ticker daily bar responses with a TTL.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	errors atomic.Int64
}

// New connects a quote cache to Redis.
func New(addr, password string, db int, ttl time.Duration) *QuoteCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewWithClient(client, ttl)
}

// NewWithClient wraps an existing client; used by tests with redismock.
func NewWithClient(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, ttl: ttl}
}

// Key builds the cache key for a ticker and date range.
func Key(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, ticker,
		start.Format("20060102"), end.Format("20060102"))
}

// GetBars returns the cached bars for a key, if present and decodable.
func (c *QuoteCache) GetBars(ctx context.Context, key string) ([]market.Bar, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.misses.Add(1)
		return nil, false
	}
	if err != nil {
		c.errors.Add(1)
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	var bars []market.Bar
	if err := json.Unmarshal(payload, &bars); err != nil {
		c.errors.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return bars, true
}

// SetBars stores bars under a key with the configured TTL. Failures are
// logged and swallowed; the cache is best-effort.
func (c *QuoteCache) SetBars(ctx context.Context, key string, bars []market.Bar) {
	payload, err := json.Marshal(bars)
	if err != nil {
		c.errors.Add(1)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.errors.Add(1)
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		return
	}
	c.sets.Add(1)
}

// Healthy pings Redis.
func (c *QuoteCache) Healthy(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

// Stats returns a snapshot of cache counters.
func (c *QuoteCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Sets:   c.sets.Load(),
		Errors: c.errors.Load(),
	}
}

// Close releases the underlying client.
func (c *QuoteCache) Close() error {
	return c.client.Close()
}
