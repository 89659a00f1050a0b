package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

const summaryCacheKey = "stockhub:dashboard:summary"

// SummaryCache keeps the dashboard summary in redis as JSON. A nil client
// turns every call into a miss or a no-op, and redis failures are logged and
// treated the same way: the cache never fails a request. Repeated failures
// open a breaker that skips redis until it has had time to recover.
type SummaryCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *Breaker
}

func NewSummaryCache(rdb *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: ttl, breaker: NewBreaker(BreakerConfig{})}
}

func (c *SummaryCache) Get(ctx context.Context, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	var raw []byte
	err := c.breaker.Do(func() error {
		var err error
		raw, err = c.rdb.Get(ctx, summaryCacheKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		c.warn(err, "summary cache read failed")
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Msg("summary cache entry is corrupt")
		return false
	}
	return true
}

func (c *SummaryCache) Set(ctx context.Context, value interface{}) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Msg("summary cache encode failed")
		return
	}
	err = c.breaker.Do(func() error {
		return c.rdb.Set(ctx, summaryCacheKey, raw, c.ttl).Err()
	})
	if err != nil {
		c.warn(err, "summary cache write failed")
	}
}

func (c *SummaryCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	err := c.breaker.Do(func() error {
		return c.rdb.Del(ctx, summaryCacheKey).Err()
	})
	if err != nil {
		c.warn(err, "summary cache invalidation failed")
	}
}

// warn logs a redis failure; calls skipped by the open breaker stay quiet.
func (c *SummaryCache) warn(err error, msg string) {
	if errors.Is(err, ErrBreakerOpen) {
		return
	}
	log.Warn().Err(err).Str("breaker", c.breaker.State().String()).Msg(msg)
}
