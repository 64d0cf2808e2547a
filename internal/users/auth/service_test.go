// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/metrics"
	"github.com/taibuivan/healthlog/internal/platform/sec"
	"github.com/taibuivan/healthlog/internal/users/auth"
)

// # Login

/*
TestLogin_Succeeds issues a pair whose claims describe the account.
*/
func TestLogin_Succeeds(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice@example.com", func(u *auth.User) { u.IsSuperuser = true })

	pair, err := f.service.Login(context.Background(), auth.LoginInput{
		Email:    "  Alice@Example.com ",
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, constants.TokenTypeBearer, pair.TokenType)
	assert.True(t, f.codec.Verify(pair.AccessToken))
	assert.True(t, f.codec.VerifyIsRefresh(pair.RefreshToken))

	access, err := f.codec.Claims(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := f.codec.Claims(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", access.Subject)
	assert.Equal(t, access.Subject, refresh.Subject)
	assert.Equal(t, user.ID, access.UserID)
	assert.True(t, access.IsSuperuser)
	assert.Contains(t, access.AuthorityList(), sec.RoleAdmin)

	assert.Contains(t, f.users.lastLogins, user.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess)))
}

/*
TestLogin_FailuresAreIndistinguishable checks that an unknown account, a wrong
password and an inactive account produce the same error.
*/
func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "real@example.com")
	f.addUser(t, "dormant@example.com", func(u *auth.User) { u.IsActive = false })

	cases := []auth.LoginInput{
		{Email: "nonexistent@example.com", Password: "whatever"},
		{Email: "real@example.com", Password: "wrongpassword"},
		{Email: "dormant@example.com", Password: testPassword},
	}

	var messages []string
	for _, input := range cases {
		_, err := f.service.Login(context.Background(), input)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, apperr.CodeInvalidCredentials, ae.Code)
		messages = append(messages, ae.Message)
	}

	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[0], messages[2])
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalidCredentials)))
}

/*
TestLogin_MalformedEmail fails validation before any lookup.
*/
func TestLogin_MalformedEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), auth.LoginInput{Email: "not-an-email", Password: testPassword})

	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestLogin_StorageFailure surfaces as an internal error, not a credential failure.
*/
func TestLogin_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.users.failWith = apperr.Internal(assert.AnError)

	_, err := f.service.Login(context.Background(), auth.LoginInput{Email: "a@example.com", Password: testPassword})

	require.Error(t, err)
	assert.False(t, apperr.IsAuthFailure(err))
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
}

/*
TestLogin_UpgradesLegacyHash replaces a bcrypt hash after a successful login.
*/
func TestLogin_UpgradesLegacyHash(t *testing.T) {
	f := newFixture(t)

	legacy, err := sec.HashBcrypt(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	user := f.addUser(t, "legacy@example.com", func(u *auth.User) { u.PasswordHash = legacy })

	_, err = f.service.Login(context.Background(), auth.LoginInput{Email: "legacy@example.com", Password: testPassword})
	require.NoError(t, err)

	upgraded := f.users.get(user.ID).PasswordHash
	assert.NotEqual(t, legacy, upgraded)
	assert.False(t, sec.IsBcryptHash(upgraded))

	// The upgraded hash still authenticates.
	_, err = f.service.Login(context.Background(), auth.LoginInput{Email: "legacy@example.com", Password: testPassword})
	assert.NoError(t, err)
}

// # Identity Resolution

/*
TestLoadUserByEmail covers the active, inactive and missing cases.
*/
func TestLoadUserByEmail(t *testing.T) {
	f := newFixture(t)
	active := f.addUser(t, "active@example.com")
	f.addUser(t, "inactive@example.com", func(u *auth.User) { u.IsActive = false })

	details, err := f.service.LoadUserByEmail(context.Background(), "active@example.com")
	require.NoError(t, err)
	assert.Equal(t, active.ID, details.Principal.UserID)
	assert.Equal(t, active.PasswordHash, details.PasswordHash.String())

	for _, email := range []string{"inactive@example.com", "missing@example.com"} {
		_, err := f.service.LoadUserByEmail(context.Background(), email)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), email)
	}
}

// # Refresh

/*
TestRefresh_RotatesOnce checks that a refresh token works exactly once.
*/
func TestRefresh_RotatesOnce(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob@example.com")

	pair, err := f.service.Login(context.Background(), auth.LoginInput{Email: "bob@example.com", Password: testPassword})
	require.NoError(t, err)

	// 1. First use rotates
	rotated, err := f.service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.True(t, f.codec.VerifyIsRefresh(rotated.RefreshToken))

	revoked, err := f.revocations.IsRevoked(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	// 2. Second use is rejected
	_, err = f.service.Refresh(context.Background(), pair.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))

	// 3. The rotated token still works
	_, err = f.service.Refresh(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

/*
TestRefresh_PicksUpProfileChanges re-reads the account before issuing.
*/
func TestRefresh_PicksUpProfileChanges(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "carol@example.com")

	pair, err := f.service.Login(context.Background(), auth.LoginInput{Email: "carol@example.com", Password: testPassword})
	require.NoError(t, err)

	_, err = f.users.UpdateNickname(context.Background(), user.ID, "renamed")
	require.NoError(t, err)

	rotated, err := f.service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	claims, err := f.codec.Claims(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "renamed", claims.Nickname)
}

/*
TestRefresh_Rejections covers every refusal path.
*/
func TestRefresh_Rejections(t *testing.T) {
	f := newFixture(t)
	deleted := f.addUser(t, "gone@example.com")
	f.addUser(t, "dave@example.com")

	pair, err := f.service.Login(context.Background(), auth.LoginInput{Email: "dave@example.com", Password: testPassword})
	require.NoError(t, err)

	orphan, err := f.codec.IssueRefresh(deleted.Email)
	require.NoError(t, err)
	require.NoError(t, f.users.SoftDelete(context.Background(), deleted.ID))

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{name: "garbage", token: "not.a.token", code: apperr.CodeInvalidToken},
		{name: "access token", token: pair.AccessToken, code: apperr.CodeInvalidToken},
		{name: "tampered", token: pair.RefreshToken[:len(pair.RefreshToken)-2] + "xx", code: apperr.CodeInvalidToken},
		{name: "deleted account", token: orphan, code: apperr.CodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Refresh(context.Background(), tt.token)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
		})
	}
}

/*
TestRefresh_ConcurrentReuse_SingleWinner races one refresh token.
*/
func TestRefresh_ConcurrentReuse_SingleWinner(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "erin@example.com")

	pair, err := f.service.Login(context.Background(), auth.LoginInput{Email: "erin@example.com", Password: testPassword})
	require.NoError(t, err)

	var successes, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Refresh(context.Background(), pair.RefreshToken)
			switch {
			case err == nil:
				successes.Add(1)
			case apperr.HasCode(err, apperr.CodeInvalidToken):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(15), rejected.Load())
}

// # Logout

/*
TestLogout revokes the presented access token and refuses foreign tokens.
*/
func TestLogout(t *testing.T) {
	f := newFixture(t)
	frank := f.addUser(t, "frank@example.com")
	f.addUser(t, "grace@example.com")

	frankPair, err := f.service.Login(context.Background(), auth.LoginInput{Email: "frank@example.com", Password: testPassword})
	require.NoError(t, err)
	gracePair, err := f.service.Login(context.Background(), auth.LoginInput{Email: "grace@example.com", Password: testPassword})
	require.NoError(t, err)

	principal := &sec.Principal{UserID: frank.ID, Email: frank.Email}

	t.Run("malformed header", func(t *testing.T) {
		for _, header := range []string{"", "Bearer ", "bearer " + frankPair.AccessToken, frankPair.AccessToken} {
			err := f.service.Logout(context.Background(), principal, header)
			assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken), "header %q", header)
		}
	})

	t.Run("foreign token", func(t *testing.T) {
		err := f.service.Logout(context.Background(), principal, "Bearer "+gracePair.AccessToken)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))

		revoked, _ := f.revocations.IsRevoked(context.Background(), gracePair.AccessToken)
		assert.False(t, revoked)
	})

	t.Run("own token", func(t *testing.T) {
		// Padding after the scheme is tolerated the same way Authenticate tolerates it.
		require.NoError(t, f.service.Logout(context.Background(), principal, "Bearer  "+frankPair.AccessToken+" "))

		revoked, _ := f.revocations.IsRevoked(context.Background(), frankPair.AccessToken)
		assert.True(t, revoked)
	})
}

// # Password Recovery

/*
TestRequestPasswordReset_KnownEmail stores a token and mails a link to it.
*/
func TestRequestPasswordReset_KnownEmail(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "heidi@example.com")

	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "Heidi@example.com"))

	token, userID := f.resetTokens.only()
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, userID)

	require.Len(t, f.outbox.sent, 1)
	assert.Equal(t, user.Email, f.outbox.sent[0].To)
	assert.Contains(t, f.outbox.sent[0].HTML, "https://healthlog.app/reset?token=")

	// Only the latency floor applies.
	assert.Equal(t, []time.Duration{constants.PasswordResetMinDuration}, f.sleeps)
}

/*
TestRequestPasswordReset_UnknownEmail succeeds silently after an extra delay.
*/
func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "nobody@example.com"))

	token, _ := f.resetTokens.only()
	assert.Empty(t, token)
	assert.Empty(t, f.outbox.sent)
	assert.Equal(t, []time.Duration{1200 * time.Millisecond, constants.PasswordResetMinDuration}, f.sleeps)
}

/*
TestRequestPasswordReset_MalformedEmail is the only caller-visible failure.
*/
func TestRequestPasswordReset_MalformedEmail(t *testing.T) {
	f := newFixture(t)

	err := f.service.RequestPasswordReset(context.Background(), "nope")

	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestConfirmPasswordReset walks the token through weak, valid and reused submissions.
*/
func TestConfirmPasswordReset(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "ivan@example.com")
	require.NoError(t, f.service.RequestPasswordReset(context.Background(), user.Email))
	token, _ := f.resetTokens.only()
	require.NotEmpty(t, token)

	// 1. A weak password keeps the token usable
	err := f.service.ConfirmPasswordReset(context.Background(), token, "weak")
	require.True(t, apperr.HasCode(err, apperr.CodeValidation))
	remaining, _ := f.resetTokens.only()
	assert.Equal(t, token, remaining)

	// 2. A valid password is stored
	require.NoError(t, f.service.ConfirmPasswordReset(context.Background(), token, "N3w-Secret!"))
	_, err = f.service.Login(context.Background(), auth.LoginInput{Email: user.Email, Password: "N3w-Secret!"})
	assert.NoError(t, err)

	// 3. The token is single use
	err = f.service.ConfirmPasswordReset(context.Background(), token, "An0ther-Secret!")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeInvalidToken, ae.Code)
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
	assert.Equal(t, auth.MsgInvalidResetToken, ae.Message)

	// 4. Unknown and blank tokens are refused the same way
	for _, unknown := range []string{"no-such-token", "  "} {
		err = f.service.ConfirmPasswordReset(context.Background(), unknown, "Secret123!x")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken), "token %q", unknown)
	}
}
