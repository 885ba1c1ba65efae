package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang/snappy"
	"github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores rate maps as snappy-compressed JSON.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (domain.RateMap, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, false, err
	}
	var rates domain.RateMap
	if err := json.Unmarshal(decoded, &rates); err != nil {
		return nil, false, err
	}
	return rates, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, rates domain.RateMap, ttl time.Duration) error {
	encoded, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, snappy.Encode(nil, encoded), ttl).Err()
}

// Noop never hits. It stands in when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (domain.RateMap, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, domain.RateMap, time.Duration) error { return nil }
