package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

// RedisCache реализует domain.Cache через Redis.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

var _ domain.Cache = (*RedisCache)(nil)

// NewRedis создаёт кэш с префиксом ключей.
func NewRedis(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Once выполняет fn, если ключ ещё не занят. Возвращает false, если fn не запускалась.
// При ошибке fn ключ освобождается, чтобы повторная попытка могла выполниться.
func (c *RedisCache) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error) {
	fullKey := c.prefix + key
	start := time.Now()
	ok, err := c.client.SetNX(ctx, fullKey, "1", ttl).Result()
	metrics.ObserveNetworkRequest("redis", "setnx", "lock", start, err)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := fn(); err != nil {
		start = time.Now()
		delErr := c.client.Del(context.WithoutCancel(ctx), fullKey).Err()
		metrics.ObserveNetworkRequest("redis", "del", "lock", start, delErr)
		return true, err
	}
	return true, nil
}
