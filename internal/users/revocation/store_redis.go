// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/healthlog/internal/platform/constants"
	redisstore "github.com/taibuivan/healthlog/internal/platform/redis"
	"github.com/taibuivan/healthlog/internal/platform/sec"
)

// RedisStore is a [Store] shared by every API instance through Redis.
type RedisStore struct {
	client     redis.Cmdable
	defaultTTL time.Duration
	timeout    time.Duration
	now        func() time.Time
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.Cmdable, defaultTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, defaultTTL: defaultTTL, now: time.Now}
}

// WithTimeout bounds each Redis call. Zero leaves the caller's deadline alone.
func (store *RedisStore) WithTimeout(timeout time.Duration) *RedisStore {
	store.timeout = timeout
	return store
}

// Key returns the Redis key under which token is recorded.
func Key(token string) string {
	return constants.RedisPrefixRevoked + sec.HashToken(token)
}

/*
Revoke stores the token digest with a TTL equal to the token's remaining life.

Description: Already-expired tokens are not written; they fail verification anyway.
*/
func (store *RedisStore) Revoke(context context.Context, token string, expiresAt time.Time) error {
	ttl := ttlUntil(store.now(), expiresAt, store.defaultTTL)
	if ttl <= 0 {
		return nil
	}

	context, cancel := redisstore.Bounded(context, store.timeout)
	defer cancel()

	if err := store.client.Set(context, Key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_set_failed: %w", err)
	}
	return nil
}

// RevokeOnce implements [Store] with SET NX.
func (store *RedisStore) RevokeOnce(context context.Context, token string, expiresAt time.Time) (bool, error) {
	ttl := ttlUntil(store.now(), expiresAt, store.defaultTTL)
	if ttl <= 0 {
		return false, nil
	}

	context, cancel := redisstore.Bounded(context, store.timeout)
	defer cancel()

	stored, err := store.client.SetNX(context, Key(token), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_setnx_failed: %w", err)
	}
	return stored, nil
}

// IsRevoked implements [Store].
func (store *RedisStore) IsRevoked(context context.Context, token string) (bool, error) {
	context, cancel := redisstore.Bounded(context, store.timeout)
	defer cancel()

	count, err := store.client.Exists(context, Key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_exists_failed: %w", err)
	}
	return count > 0, nil
}
