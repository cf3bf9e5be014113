package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "idempotency:"
	DefaultTTL = 24 * time.Hour
)

// Store remembers request keys for a while. Claim reports whether key was
// seen for the first time; Release forgets it again.
type Store interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisStore) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}
