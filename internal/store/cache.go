package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turahe/kuha-go/internal/db/rdb"
)

// cacheTTL bounds how long a cached list response may outlive the
// Datestamp snapshot it was computed from. Invalidate still clears it
// immediately on every mutation; the TTL only protects against a
// missed invalidation.
const cacheTTL = 5 * time.Minute

// Cache is a best-effort read-through cache in front of the handful of
// Store queries that are read far more often than the rows backing
// them change: Format.list, Set.list, and Record.earliestDatestamp.
// A nil client (redis not configured) degrades every method to a
// cache miss, matching rdb.GetRedisClient's documented nil contract.
type Cache struct {
	client redis.Cmdable
}

func NewCache(client redis.Cmdable) *Cache {
	return &Cache{client: client}
}

// getOrCompute returns the cached JSON value under key, deserialized
// into a T, or calls compute, caches its result, and returns that.
func getOrCompute[T any](ctx context.Context, c *Cache, key string, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil || c.client == nil {
		return compute(ctx)
	}

	raw, err := c.client.Get(ctx, rdb.AddPrefix(key)).Bytes()
	if err == nil {
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		c.client.Set(ctx, rdb.AddPrefix(key), encoded, cacheTTL)
	}
	return value, nil
}

// invalidate drops every cached entry keyed by the given logical
// names. The Store calls this from the write paths that change the
// rows behind a cached read: format writes drop the format lists, set
// writes drop the set list, Datestamp updates drop the
// earliest-datestamp entries, and a purge that removes rows drops all
// of them.
func (c *Cache) invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = rdb.AddPrefix(k)
	}
	c.client.Del(ctx, prefixed...)
}

const (
	cacheKeyFormatList           = "formats:list"
	cacheKeySetList              = "sets:list"
	cacheKeyEarliestDatestampAll = "records:earliest:all"
	cacheKeyEarliestDatestampAct = "records:earliest:active"
)
