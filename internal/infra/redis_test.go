package infra

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestSummaryCache_WithoutRedisIsAlwaysMiss(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*SummaryCache{nil, NewSummaryCache(nil, time.Minute)} {
		c.Set(ctx, map[string]int{"products": 1})
		var dest map[string]int
		assert.False(t, c.Get(ctx, &dest))
		c.Invalidate(ctx)
	}
}

func TestSummaryCache_UnreachableRedisDegradesToMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewSummaryCache(rdb, time.Minute)
	ctx := context.Background()

	c.Set(ctx, map[string]int{"products": 1})
	var dest map[string]int
	assert.False(t, c.Get(ctx, &dest))
	c.Invalidate(ctx)
	assert.Equal(t, BreakerOpen, c.breaker.State(), "three failed calls open the breaker")
}

func TestNewRedis_RejectsBadURL(t *testing.T) {
	_, err := NewRedis("not a url")
	assert.Error(t, err)
}
