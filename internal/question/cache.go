package question

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCountsTTL = 5 * time.Minute

// Cache provides Redis-backed availability-counts caching to offload
// the classification queries behind the create-test UI.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ CountsCache = (*Cache)(nil)

// NewCache creates a counts cache with the given TTL (defaulted when
// non-positive).
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCountsTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached counts for key, with ok=false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (map[string]int, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, false, err
	}
	return counts, true, nil
}

// Set stores counts under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, counts map[string]int) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
