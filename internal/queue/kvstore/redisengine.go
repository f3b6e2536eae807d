// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements StringStore against a Redis server, using a
// SETNX-with-expiry token lock (the standard single-instance Redis
// advisory-lock pattern) so multiple processes sharing one Redis instance
// serialize access to the same queue key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing go-redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func lockKey(key string) string {
	return key + ":lock"
}

// Lock blocks, retrying every 25ms, until it acquires the key's lock or ctx
// is done. The returned unlock only deletes the key if it still holds the
// token it set, so a lock that outlived its TTL and was stolen by another
// holder is never released out from under them.
func (s *RedisStore) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	lk := lockKey(key)

	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, lk, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock SETNX: %w", err)
		}
		if ok {
			return func() { s.unlock(lk, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

func (s *RedisStore) unlock(lockKey, token string) {
	s.client.Eval(context.Background(), unlockScript, []string{lockKey}, token)
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
