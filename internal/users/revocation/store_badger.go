// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package revocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/taibuivan/healthlog/internal/platform/sec"
)

const (
	defaultGCInterval  = 10 * time.Minute
	defaultGCThreshold = 0.5
)

// BadgerConfig configures [BadgerStore].
type BadgerConfig struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in RAM. Used by tests.
	InMemory bool

	DefaultTTL time.Duration
	GCInterval time.Duration
}

// BadgerStore is an embedded [Store] that keeps revocations across restarts.
type BadgerStore struct {
	db         *badger.DB
	logger     *slog.Logger
	defaultTTL time.Duration
	now        func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// OpenBadgerStore opens (or creates) the database and starts value-log GC.
func OpenBadgerStore(cfg BadgerConfig, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.Dir == "":
		return nil, fmt.Errorf("badger: dir is required")
	default:
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	store := &BadgerStore{
		db:         db,
		logger:     logger,
		defaultTTL: cfg.DefaultTTL,
		now:        time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	// Value-log GC is unsupported in memory mode.
	if cfg.InMemory {
		close(store.doneCh)
	} else {
		interval := cfg.GCInterval
		if interval <= 0 {
			interval = defaultGCInterval
		}
		go store.gcLoop(interval)
	}

	logger.Info("revocation_badger_opened", slog.String("dir", cfg.Dir), slog.Bool("in_memory", cfg.InMemory))
	return store, nil
}

// Revoke implements [Store].
func (store *BadgerStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	ttl := ttlUntil(store.now(), expiresAt, store.defaultTTL)
	if ttl <= 0 {
		return nil
	}

	err := store.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(badgerKey(token), []byte{1}).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger_revocation_set_failed: %w", err)
	}
	return nil
}

/*
RevokeOnce implements [Store] with a read-then-write transaction.

Description: Badger's optimistic conflict detection aborts the loser of two
concurrent transactions touching the same key with [badger.ErrConflict], which
is reported as "already revoked".
*/
func (store *BadgerStore) RevokeOnce(_ context.Context, token string, expiresAt time.Time) (bool, error) {
	ttl := ttlUntil(store.now(), expiresAt, store.defaultTTL)
	if ttl <= 0 {
		return false, nil
	}

	key := badgerKey(token)
	stored := false

	err := store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := txn.SetEntry(badger.NewEntry(key, []byte{1}).WithTTL(ttl)); err != nil {
			return err
		}
		stored = true
		return nil
	})

	if errors.Is(err, badger.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger_revocation_setnx_failed: %w", err)
	}
	return stored, nil
}

// IsRevoked implements [Store]. Expired entries read as absent.
func (store *BadgerStore) IsRevoked(_ context.Context, token string) (bool, error) {
	err := store.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(token))
		return err
	})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("badger_revocation_get_failed: %w", err)
	}
}

// Close stops GC and closes the database.
func (store *BadgerStore) Close() error {
	select {
	case <-store.stopCh:
		return nil
	default:
		close(store.stopCh)
	}
	<-store.doneCh
	return store.db.Close()
}

func (store *BadgerStore) gcLoop(interval time.Duration) {
	defer close(store.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			store.runGC()
		case <-store.stopCh:
			return
		}
	}
}

func (store *BadgerStore) runGC() {
	cycles := 0
	for {
		err := store.db.RunValueLogGC(defaultGCThreshold)
		if err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				store.logger.Warn("revocation_badger_gc_failed", slog.Any("error", err))
			}
			break
		}
		cycles++
	}

	if cycles > 0 {
		store.logger.Debug("revocation_badger_gc_completed", slog.Int("cycles", cycles))
	}
}

func badgerKey(token string) []byte {
	return []byte("revoked/" + sec.HashToken(token))
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Badger is chatty at info level; demote to debug.
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
