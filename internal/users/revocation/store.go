// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package revocation records bearer tokens that must be rejected before their
natural expiry: access tokens presented at logout and refresh tokens consumed
by rotation.

Entries are keyed by the SHA-256 of the token and live exactly as long as the
token itself would. Once a token has expired it fails verification on its own,
so keeping its entry would only leak memory.

Backends:

  - memory: process-local sharded map with a background sweeper. Single instance only.
  - redis: shared across instances; entries expire via Redis TTL.
  - badger: embedded, survives restarts of a single instance; entries expire via Badger TTL.
*/
package revocation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks revoked tokens. Implementations are safe for concurrent use and
// a completed Revoke is visible to every later IsRevoked call.
type Store interface {

	/*
		Revoke marks token as revoked until expiresAt.

		Parameters:
		  - context: context.Context
		  - token: string (raw bearer string)
		  - expiresAt: time.Time (zero selects the store's default lifetime)

		Returns:
		  - error: Backend failures
	*/
	Revoke(context context.Context, token string, expiresAt time.Time) error

	/*
		RevokeOnce revokes token only if it is not revoked yet.

		Exactly one of any number of concurrent callers observes true. Refresh
		rotation uses this to make a refresh token single-use.

		Returns:
		  - bool: true when this call performed the revocation
		  - error: Backend failures
	*/
	RevokeOnce(context context.Context, token string, expiresAt time.Time) (bool, error)

	/*
		IsRevoked reports whether token has been revoked.

		Returns:
		  - bool: Revocation state
		  - error: Backend failures
	*/
	IsRevoked(context context.Context, token string) (bool, error)
}

// # Backends

// Backend names accepted in configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// Options selects and tunes a backend.
type Options struct {
	Backend string

	// DefaultTTL applies when a caller passes a zero expiry.
	DefaultTTL time.Duration

	// SweepInterval controls the memory sweeper.
	SweepInterval time.Duration

	// BadgerDir is the data directory of the badger backend.
	BadgerDir string

	// RedisTimeout bounds every call of the redis backend. Authentication
	// consults the store on each request, so a stalled Redis fails fast.
	RedisTimeout time.Duration
}

// Open builds the configured backend. The returned close function releases
// background goroutines and files; it is never nil.
func Open(context context.Context, opts Options, redisClient redis.Cmdable, logger *slog.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case "", BackendMemory:
		store := NewMemoryStore(opts.DefaultTTL)
		go store.Run(context, opts.SweepInterval, logger)
		return store, noop, nil

	case BackendRedis:
		if redisClient == nil {
			return nil, noop, fmt.Errorf("revocation: redis backend selected without a redis client")
		}
		return NewRedisStore(redisClient, opts.DefaultTTL).WithTimeout(opts.RedisTimeout), noop, nil

	case BackendBadger:
		store, err := OpenBadgerStore(BadgerConfig{
			Dir:        opts.BadgerDir,
			DefaultTTL: opts.DefaultTTL,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil

	default:
		return nil, noop, fmt.Errorf("revocation: unknown backend %q", opts.Backend)
	}
}

// ttlUntil returns how long an entry for a token expiring at expiresAt must be
// kept. A zero expiry selects fallback. A non-positive result means the token
// has already expired.
func ttlUntil(now, expiresAt time.Time, fallback time.Duration) time.Duration {
	if expiresAt.IsZero() {
		return fallback
	}
	return expiresAt.Sub(now)
}
