// Package cache is the admin-surface read accelerator (spec §10),
// adapted from the teacher's internal/adapter/cache package.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brokerfix/acceptor/internal/domain"
	"github.com/brokerfix/acceptor/internal/port"
)

var _ port.ReadCache = (*RedisCache)(nil)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	return &RedisCache{client: rdb, ttl: ttl}
}

func key(clOrdID string) string { return "order:" + clOrdID }

func (c *RedisCache) SetOrder(ctx context.Context, o *domain.Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(o.ClOrdID), b, c.ttl).Err()
}

func (c *RedisCache) GetOrder(ctx context.Context, clOrdID string) (*domain.Order, error) {
	b, err := c.client.Get(ctx, key(clOrdID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var o domain.Order
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, clOrdID string) error {
	return c.client.Del(ctx, key(clOrdID)).Err()
}
