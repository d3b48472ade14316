package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idempotency:order:"

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: ttl}
}

func (r *RedisAdapter) Reserve(ctx context.Context, key, orderID string) (string, bool, error) {
	redisKey := idempotencyKeyPrefix + key

	ok, err := r.client.SetNX(ctx, redisKey, orderID, r.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx failed: %w", err)
	}
	if ok {
		return "", true, nil
	}

	existing, err := r.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return r.Reserve(ctx, key, orderID)
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return existing, false, nil
}

func (r *RedisAdapter) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
