package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisBackend(client *redis.Client, keyPrefix string) *RedisBackend {
	return &RedisBackend{client: client, keyPrefix: keyPrefix}
}

func (b *RedisBackend) key(userID int64) string {
	return b.keyPrefix + userKey(userID)
}

func (b *RedisBackend) Read(ctx context.Context, userID int64) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("redis.Get: %w", err)
	}

	return data, nil
}

func (b *RedisBackend) Write(ctx context.Context, userID int64, data []byte) error {
	if err := b.client.Set(ctx, b.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", err)
	}

	return nil
}
