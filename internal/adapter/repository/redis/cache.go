package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache implements usecase.Cache using Redis.
type Cache struct {
	client  redis.UniversalClient
	prefix  string
	metrics *metrics.Metrics
}

// NewCache creates a new Cache. m may be nil.
func NewCache(client redis.UniversalClient, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		prefix:  "cache:",
		metrics: m,
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		c.countError("get")
		return nil, errors.Wrapf(err, "cache get %s", key)
	}
	return val, nil
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.countError("set")
		return errors.Wrapf(err, "cache set %s", key)
	}
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.countError("delete")
		return errors.Wrapf(err, "cache delete %s", key)
	}
	return nil
}

func (c *Cache) countError(op string) {
	if c.metrics != nil {
		c.metrics.RedisErrors.WithLabelValues(op).Inc()
	}
}
