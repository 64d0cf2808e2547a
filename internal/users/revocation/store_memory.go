// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package revocation

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/healthlog/internal/platform/sec"
	"github.com/taibuivan/healthlog/pkg/cmap"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = time.Minute

// MemoryStore is a process-local [Store] backed by a sharded map.
type MemoryStore struct {
	entries    *cmap.Map[string, time.Time]
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:    cmap.New[string, time.Time](),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (store *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	store.now = now
	return store
}

// Revoke implements [Store].
func (store *MemoryStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	store.entries.Set(sec.HashToken(token), store.deadline(expiresAt))
	return nil
}

// RevokeOnce implements [Store].
func (store *MemoryStore) RevokeOnce(_ context.Context, token string, expiresAt time.Time) (bool, error) {
	return store.entries.SetIfAbsent(sec.HashToken(token), store.deadline(expiresAt)), nil
}

// IsRevoked implements [Store].
func (store *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	_, found := store.entries.Get(sec.HashToken(token))
	return found, nil
}

// Len returns the number of live entries.
func (store *MemoryStore) Len() int { return store.entries.Len() }

// Sweep evicts every entry whose token has expired and returns how many were removed.
func (store *MemoryStore) Sweep() int {
	now := store.now()
	return store.entries.DeleteIf(func(_ string, deadline time.Time) bool {
		return !now.Before(deadline)
	})
}

// Run sweeps every interval until context is cancelled.
func (store *MemoryStore) Run(context context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := store.Sweep(); removed > 0 && logger != nil {
				logger.Debug("revocation_sweep_completed",
					slog.Int("removed", removed),
					slog.Int("remaining", store.Len()),
				)
			}
		case <-context.Done():
			return
		}
	}
}

func (store *MemoryStore) deadline(expiresAt time.Time) time.Time {
	if expiresAt.IsZero() {
		return store.now().Add(store.defaultTTL)
	}
	return expiresAt
}
