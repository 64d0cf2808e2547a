// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/mailer"
	"github.com/taibuivan/healthlog/internal/platform/metrics"
	"github.com/taibuivan/healthlog/internal/platform/sec"
	"github.com/taibuivan/healthlog/internal/users/auth"
	"github.com/taibuivan/healthlog/internal/users/credential"
	"github.com/taibuivan/healthlog/internal/users/revocation"
	"github.com/taibuivan/healthlog/pkg/uuid"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const testPassword = "Passw0rd!"

// # Fakes

type memoryUsers struct {
	mu         sync.Mutex
	byID       map[string]*auth.User
	lastLogins map[string]time.Time
	failWith   error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byID:       map[string]*auth.User{},
		lastLogins: map[string]time.Time{},
	}
}

func (m *memoryUsers) put(user *auth.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *user
	m.byID[user.ID] = &clone
}

func (m *memoryUsers) get(id string) *auth.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *m.byID[id]
	return &clone
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if user, ok := m.byID[id]; ok && !user.IsDeleted() {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, user := range m.byID {
		if user.Email == email && !user.IsDeleted() {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == user.Email && !existing.IsDeleted() {
			return apperr.Conflict("Email is already registered")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	m.byID[user.ID] = &clone
	return nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok || user.IsDeleted() {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (m *memoryUsers) UpdateNickname(_ context.Context, userID, nickname string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok || user.IsDeleted() {
		return nil, apperr.NotFound("User")
	}
	user.Nickname = nickname
	clone := *user
	return &clone, nil
}

func (m *memoryUsers) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok || user.IsDeleted() {
		return apperr.NotFound("User")
	}
	now := time.Now()
	user.DeletedAt = &now
	return nil
}

func (m *memoryUsers) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLogins[id] = at
	return nil
}

type memoryResetTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryResetTokens() *memoryResetTokens {
	return &memoryResetTokens{tokens: map[string]string{}}
}

func (m *memoryResetTokens) Set(_ context.Context, token, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *memoryResetTokens) Consume(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tokens[token]
	if !ok {
		return "", apperr.NotFound("Reset token")
	}
	delete(m.tokens, token)
	return userID, nil
}

func (m *memoryResetTokens) only() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, userID := range m.tokens {
		return token, userID
	}
	return "", ""
}

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

// # Fixture

type fixture struct {
	service     *auth.Service
	users       *memoryUsers
	resetTokens *memoryResetTokens
	revocations *revocation.MemoryStore
	codec       *sec.TokenCodec
	hasher      *credential.PasswordHasher
	metrics     *metrics.Metrics
	outbox      *outbox
	sleeps      []time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := credential.NewPasswordHasher(sec.NewPBKDF2SHA512(1000), "test-pepper")
	require.NoError(t, err)

	codec, err := sec.NewTokenCodec(testSecret, "healthlog.test", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	f := &fixture{
		users:       newMemoryUsers(),
		resetTokens: newMemoryResetTokens(),
		revocations: revocation.NewMemoryStore(7 * 24 * time.Hour),
		codec:       codec,
		hasher:      hasher,
		metrics:     metrics.New(),
		outbox:      &outbox{},
	}

	// The clock never moves, so every reset request pads the full minimum.
	frozen := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.service = auth.NewService(f.users, f.resetTokens, hasher, codec, f.revocations,
		auth.WithMailer(f.outbox, "https://healthlog.app/reset"),
		auth.WithMetrics(f.metrics),
		auth.WithClock(func() time.Time { return frozen }),
		auth.WithSleeper(func(_ context.Context, d time.Duration) { f.sleeps = append(f.sleeps, d) }),
		auth.WithJitter(func() time.Duration { return 1200 * time.Millisecond }),
	)
	return f
}

// addUser stores an active account whose password is [testPassword].
func (f *fixture) addUser(t *testing.T, email string, mutate ...func(*auth.User)) *auth.User {
	t.Helper()

	raw, err := credential.ParseRawPassword(credential.FieldPassword, testPassword)
	require.NoError(t, err)
	hashed, err := f.hasher.Hash(raw)
	require.NoError(t, err)

	user := &auth.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashed.String(),
		Nickname:     "tester",
		IsActive:     true,
	}
	for _, fn := range mutate {
		fn(user)
	}
	f.users.put(user)
	return user
}
