// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/sec"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fixedClock returns a settable clock starting at a whole second.
func fixedClock() (*time.Time, func() time.Time) {
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &current, func() time.Time { return current }
}

func newCodec(t *testing.T, opts ...sec.CodecOption) *sec.TokenCodec {
	t.Helper()
	codec, err := sec.NewTokenCodec(testSecret, "healthlog-test", 30*time.Minute, 7*24*time.Hour, opts...)
	require.NoError(t, err)
	return codec
}

/*
TestNewTokenCodec_RejectsWeakSecret guards the minimum HS256 key size.
*/
func TestNewTokenCodec_RejectsWeakSecret(t *testing.T) {
	_, err := sec.NewTokenCodec([]byte("short"), "iss", time.Minute, time.Hour)
	assert.ErrorIs(t, err, sec.ErrWeakSecret)

	_, err = sec.NewTokenCodec(testSecret, "iss", 0, time.Hour)
	assert.Error(t, err)
}

/*
TestTokenCodec_AccessRoundTrip verifies that every claim reads back as issued.
*/
func TestTokenCodec_AccessRoundTrip(t *testing.T) {
	codec := newCodec(t)

	principal := sec.Principal{
		UserID:      "0190f8a2-7c3e-7d1a-9b4e-1a2b3c4d5e6f",
		Email:       "alice@example.com",
		Nickname:    "alice",
		IsSuperuser: true,
	}

	// 1. Issue
	token, err := codec.IssueAccess(principal)
	require.NoError(t, err)
	assert.True(t, codec.Verify(token))
	assert.False(t, codec.VerifyIsRefresh(token))

	// 2. Read back every claim
	claims, err := codec.Claims(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, principal.UserID, claims.UserID)
	assert.Equal(t, principal.Email, claims.Email)
	assert.Equal(t, principal.Nickname, claims.Nickname)
	assert.True(t, claims.IsSuperuser)
	assert.Equal(t, "ROLE_USER,ROLE_ADMIN", claims.Authorities)
	assert.Equal(t, []sec.Authority{sec.RoleUser, sec.RoleAdmin}, claims.AuthorityList())
	assert.NotEmpty(t, claims.ID)

	// 3. Principal conversion
	p := claims.Principal()
	assert.Equal(t, principal.UserID, p.UserID)
	assert.True(t, p.HasAuthority(sec.RoleAdmin))
}

/*
TestTokenCodec_Refresh carries the refresh marker and the subject only.
*/
func TestTokenCodec_Refresh(t *testing.T) {
	codec := newCodec(t)

	token, err := codec.IssueRefresh("bob@example.com")
	require.NoError(t, err)

	assert.True(t, codec.Verify(token))
	assert.True(t, codec.VerifyIsRefresh(token))

	claims, err := codec.Claims(token)
	require.NoError(t, err)
	assert.True(t, claims.IsRefresh())
	assert.Equal(t, "bob@example.com", claims.Subject)
	assert.Empty(t, claims.UserID)
}

/*
TestTokenCodec_SameSecondTokensDiffer ensures the jti keeps tokens minted in the
same second distinct, so revoking one never revokes the other.
*/
func TestTokenCodec_SameSecondTokensDiffer(t *testing.T) {
	_, clock := fixedClock()
	codec := newCodec(t, sec.WithClock(clock))

	first, err := codec.IssueRefresh("carol@example.com")
	require.NoError(t, err)
	second, err := codec.IssueRefresh("carol@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestTokenCodec_ExpiryIsExclusive checks the boundary: exp == now is expired.
*/
func TestTokenCodec_ExpiryIsExclusive(t *testing.T) {
	now, clock := fixedClock()
	var reasons []string
	codec := newCodec(t, sec.WithClock(clock), sec.WithFailureHook(func(r string) { reasons = append(reasons, r) }))

	token, err := codec.IssueAccess(sec.Principal{UserID: "u1", Email: "dave@example.com"})
	require.NoError(t, err)

	// 1. One second before expiry
	*now = now.Add(30*time.Minute - time.Second)
	assert.True(t, codec.Verify(token))

	// 2. Exactly at expiry
	*now = now.Add(time.Second)
	assert.False(t, codec.Verify(token))

	// 3. Reason is reported
	require.Len(t, reasons, 1)
	assert.Equal(t, sec.ReasonExpired, reasons[0])
}

/*
TestTokenCodec_RejectsForeignAndTamperedTokens covers bad signatures, foreign
secrets, unsigned tokens and garbage input.
*/
func TestTokenCodec_RejectsForeignAndTamperedTokens(t *testing.T) {
	codec := newCodec(t)

	other, err := sec.NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), "healthlog-test", time.Hour, time.Hour)
	require.NoError(t, err)

	foreign, err := other.IssueAccess(sec.Principal{UserID: "u1", Email: "eve@example.com"})
	require.NoError(t, err)

	valid, err := codec.IssueAccess(sec.Principal{UserID: "u1", Email: "eve@example.com"})
	require.NoError(t, err)

	// Flip one character of the payload segment
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[5] == 'A' {
		payload[5] = 'B'
	} else {
		payload[5] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "eve@example.com",
		"iss": "healthlog-test",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"foreign_secret": foreign,
		"tampered":       tampered,
		"alg_none":       unsigned,
		"garbage":        "not-a-token",
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, codec.Verify(token))

			_, err := codec.Claims(token)
			assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))
		})
	}
}

/*
TestTokenCodec_RejectsWrongIssuer refuses tokens from another deployment
sharing the secret.
*/
func TestTokenCodec_RejectsWrongIssuer(t *testing.T) {
	codec := newCodec(t)
	other, err := sec.NewTokenCodec(testSecret, "someone-else", time.Hour, time.Hour)
	require.NoError(t, err)

	token, err := other.IssueRefresh("frank@example.com")
	require.NoError(t, err)

	assert.False(t, codec.VerifyIsRefresh(token))
}
