// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

It holds data that must expire on its own: single-use password reset tokens
and, when the redis revocation backend is selected, revoked bearer tokens
shared by every API instance.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// Settings tunes the client. Zero fields fall back to [DefaultSettings].
type Settings struct {
	PoolSize   int
	MaxRetries int

	// CommandTimeout bounds a single read or write on the socket. Callers on
	// the request path also use it as their per-call deadline.
	CommandTimeout time.Duration
}

// DefaultSettings returns the values used when a field of [Settings] is zero.
func DefaultSettings() Settings {
	return Settings{PoolSize: 10, MaxRetries: 2, CommandTimeout: 500 * time.Millisecond}
}

func (s Settings) withDefaults() Settings {
	defaults := DefaultSettings()
	if s.PoolSize <= 0 {
		s.PoolSize = defaults.PoolSize
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = defaults.MaxRetries
	}
	if s.CommandTimeout <= 0 {
		s.CommandTimeout = defaults.CommandTimeout
	}
	return s
}

// Options converts a Redis URL and settings into client options.
func Options(redisURL string, settings Settings) (*redis.Options, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	settings = settings.withDefaults()

	options.PoolSize = settings.PoolSize
	options.MinIdleConns = max(1, settings.PoolSize/5)
	options.MaxIdleConns = max(options.MinIdleConns, settings.PoolSize/2)

	// Negative MaxRetries disables retries in go-redis.
	options.MaxRetries = settings.MaxRetries
	options.MinRetryBackoff = 8 * time.Millisecond
	options.MaxRetryBackoff = settings.CommandTimeout / 4

	options.DialTimeout = 3 * settings.CommandTimeout
	options.ReadTimeout = settings.CommandTimeout
	options.WriteTimeout = settings.CommandTimeout

	return options, nil
}

// NewClient parses a Redis URL and returns a client that has answered a ping.
func NewClient(context stdctx.Context, redisURL string, settings Settings, logger *slog.Logger) (*redis.Client, error) {
	options, err := Options(redisURL, settings)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
		slog.Int("max_retries", options.MaxRetries),
		slog.Duration("command_timeout", options.ReadTimeout),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client redis.Cmdable) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}

// Bounded derives a context that expires after timeout. A non-positive
// timeout returns parent unchanged with a no-op cancel.
func Bounded(parent stdctx.Context, timeout time.Duration) (stdctx.Context, stdctx.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return stdctx.WithTimeout(parent, timeout)
}
