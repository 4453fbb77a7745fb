package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "dashboard:store:"

// Cache stores rendered summaries in Redis keyed by store. A nil Cache (or
// nil client) degrades to pass-through loading.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func storeKey(storeID int64) string {
	return cacheKeyPrefix + strconv.FormatInt(storeID, 10)
}

// FetchJSON loads a cached summary or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, storeID int64, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	key := storeKey(storeID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// InvalidateStore drops the cached summary for one store.
func (c *Cache) InvalidateStore(ctx context.Context, storeID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, storeKey(storeID)).Err()
}
