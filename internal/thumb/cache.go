package thumb

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "speedial:thumb:"

// Cache stores fetched thumbnail data URIs in Redis so repeated dials
// pointing at the same image do not refetch it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached data URI for url, or "" on a miss. Redis
// errors other than a miss are returned so the caller can decide to
// fetch anyway.
func (c *Cache) Get(ctx context.Context, url string) (string, error) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+url).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores the data URI for url with the configured TTL.
func (c *Cache) Set(ctx context.Context, url, dataURI string) error {
	return c.client.Set(ctx, cacheKeyPrefix+url, dataURI, c.ttl).Err()
}
