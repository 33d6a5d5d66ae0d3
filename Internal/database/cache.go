package datafeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fazecat/niftyscreener/Internal/types"
)

// BarSource returns daily bars sorted ascending by timestamp.
type BarSource interface {
	FetchBars(ctx context.Context, instrumentKey string, lookbackDays int) ([]types.Bar, error)
}

type CacheRecorder interface {
	CacheHit()
	CacheMiss()
	CacheError()
}

type nopCacheRecorder struct{}

func (nopCacheRecorder) CacheHit()   {}
func (nopCacheRecorder) CacheMiss()  {}
func (nopCacheRecorder) CacheError() {}

// CachedSource keeps fetched bars in redis for a short TTL so repeated scans
// within a session do not refetch. Redis failures fall through to the inner
// source.
type CachedSource struct {
	inner    BarSource
	rdb      redis.Cmdable
	ttl      time.Duration
	recorder CacheRecorder
	now      func() time.Time
}

func NewCachedSource(inner BarSource, rdb redis.Cmdable, ttl time.Duration, recorder CacheRecorder) *CachedSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if recorder == nil {
		recorder = nopCacheRecorder{}
	}
	return &CachedSource{inner: inner, rdb: rdb, ttl: ttl, recorder: recorder, now: time.Now}
}

func (c *CachedSource) key(instrumentKey string, lookbackDays int) string {
	return fmt.Sprintf("bars:%s:%d:%s", instrumentKey, lookbackDays, c.now().Format("2006-01-02"))
}

func (c *CachedSource) FetchBars(ctx context.Context, instrumentKey string, lookbackDays int) ([]types.Bar, error) {
	key := c.key(instrumentKey, lookbackDays)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var bars []types.Bar
		if jsonErr := json.Unmarshal([]byte(cached), &bars); jsonErr == nil {
			c.recorder.CacheHit()
			return bars, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cached bars")
		c.recorder.CacheError()
	case errors.Is(err, redis.Nil):
		c.recorder.CacheMiss()
	default:
		log.Debug().Err(err).Str("key", key).Msg("bar cache unavailable")
		c.recorder.CacheError()
	}

	bars, err := c.inner.FetchBars(ctx, instrumentKey, lookbackDays)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(bars)
	if err != nil {
		return bars, nil
	}
	if err := c.rdb.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("failed to cache bars")
		c.recorder.CacheError()
	}
	return bars, nil
}
