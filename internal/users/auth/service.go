// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the authentication and token lifecycle of Healthlog.

A login session moves one way through its states:

	Unauthenticated -> Authenticated(access, refresh) -> Refreshed(access', refresh') -> LoggedOut

Tokens are stateless. The only server-side state is the revocation store:
refresh rotation claims the presented refresh token through
[revocation.Store.RevokeOnce] and logout revokes the presented access token.
Nothing is ever un-revoked.

Architecture:

  - Service: login, refresh, logout and password reset use cases.
  - Repository: Postgres for accounts, Redis for reset tokens.
  - Handler: the /api/v1/auth HTTP surface.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/ctxutil"
	"github.com/taibuivan/healthlog/internal/platform/mailer"
	"github.com/taibuivan/healthlog/internal/platform/metrics"
	"github.com/taibuivan/healthlog/internal/platform/middleware"
	"github.com/taibuivan/healthlog/internal/platform/sec"
	"github.com/taibuivan/healthlog/internal/users/credential"
	"github.com/taibuivan/healthlog/internal/users/revocation"
)

// Revocation sources recorded in metrics.
const (
	revokedByLogout  = "logout"
	revokedByRefresh = "refresh"
)

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Changes to credential checks, token
// rotation or revocation must keep the failure messages uniform.
type Service struct {
	users       UserRepository
	resetTokens ResetTokenRepository
	hasher      *credential.PasswordHasher
	tokens      *sec.TokenCodec
	revocations revocation.Store

	mail     mailer.Sender
	resetURL string
	metrics  *metrics.Metrics

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	jitter func() time.Duration
}

// Option customizes a [Service].
type Option func(*Service)

// WithMailer sets the sender used for reset emails and the page the reset
// link points to. The token is appended as the "token" query parameter.
func WithMailer(sender mailer.Sender, resetURL string) Option {
	return func(s *Service) {
		s.mail = sender
		s.resetURL = resetURL
	}
}

// WithMetrics records login, refresh and revocation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSleeper overrides how reset requests wait out their latency floor.
func WithSleeper(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(s *Service) { s.sleep = sleep }
}

// WithJitter overrides the extra delay applied to reset requests for unknown emails.
func WithJitter(jitter func() time.Duration) Option {
	return func(s *Service) { s.jitter = jitter }
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	users UserRepository,
	resetTokens ResetTokenRepository,
	hasher *credential.PasswordHasher,
	tokens *sec.TokenCodec,
	revocations revocation.Store,
	opts ...Option,
) *Service {
	service := &Service{
		users:       users,
		resetTokens: resetTokens,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		now:         time.Now,
		sleep:       sleepContext,
		jitter:      unknownEmailDelay,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// # Identity Resolution

/*
LoadUserByEmail resolves the stored identity used by the credential check.

Description: Absent, inactive and deleted accounts are indistinguishable.

Parameters:
  - context: context.Context
  - email: string (normalized)

Returns:
  - *UserDetails: Principal plus stored hash
  - error: apperr.NotFound("User") or storage failures
*/
func (service *Service) LoadUserByEmail(context context.Context, email string) (*UserDetails, error) {
	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound(resourceUser)
		}
		return nil, fmt.Errorf("auth_service_load_user_failed: %w", err)
	}

	if !user.CanAuthenticate() {
		return nil, apperr.NotFound(resourceUser)
	}

	hashed, err := credential.ParseHashedPassword(user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("auth_service_stored_hash_invalid: %w", apperr.Internal(err))
	}

	return &UserDetails{Principal: user.Principal(), PasswordHash: hashed}, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues an access and refresh token pair.

Description: An unknown account and a wrong password fail with the same
INVALID_CREDENTIALS message. The unknown-account path still runs a full hash
verification so both paths cost the same.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Signed tokens
  - error: ValidationError, InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {
	logger := ctxutil.GetLogger(context)

	email, err := credential.ParseEmail(input.Email)
	if err != nil {
		return nil, err
	}

	details, err := service.LoadUserByEmail(context, email.String())
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			service.countLogin(metrics.OutcomeError)
			return nil, err
		}

		// Same work as a real comparison.
		service.hasher.Verify(input.Password, service.hasher.Dummy())
		service.countLogin(metrics.OutcomeInvalidCredentials)
		logger.InfoContext(context, "login_failed", slog.String("reason", "unknown_account"))
		return nil, apperr.InvalidCredentials(MsgInvalidCredentials)
	}

	if !service.hasher.Verify(input.Password, details.PasswordHash) {
		service.countLogin(metrics.OutcomeInvalidCredentials)
		logger.InfoContext(context, "login_failed",
			slog.String("reason", "password_mismatch"),
			slog.String("user_id", details.Principal.UserID),
		)
		return nil, apperr.InvalidCredentials(MsgInvalidCredentials)
	}

	if service.hasher.NeedsRehash(details.PasswordHash) {
		service.upgradeHash(context, details.Principal.UserID, input.Password)
	}

	if err := service.users.TouchLastLogin(context, details.Principal.UserID, service.now().UTC()); err != nil {
		logger.WarnContext(context, "last_login_update_failed", slog.Any("error", err))
	}

	pair, err := service.issuePair(details.Principal)
	if err != nil {
		service.countLogin(metrics.OutcomeError)
		return nil, err
	}

	service.countLogin(metrics.OutcomeSuccess)
	logger.InfoContext(context, "login_succeeded", slog.String("user_id", details.Principal.UserID))
	return pair, nil
}

// upgradeHash replaces a legacy hash after a successful login. Passwords that
// predate the current strength policy keep their legacy hash.
func (service *Service) upgradeHash(context context.Context, userID, password string) {
	logger := ctxutil.GetLogger(context)

	raw, err := credential.ParseRawPassword(FieldPassword, password)
	if err != nil {
		logger.InfoContext(context, "password_rehash_skipped", slog.String("user_id", userID))
		return
	}

	hashed, err := service.hasher.Hash(raw)
	if err != nil {
		logger.WarnContext(context, "password_rehash_failed", slog.String("user_id", userID), slog.Any("error", err))
		return
	}

	if err := service.users.UpdatePassword(context, userID, hashed.String()); err != nil {
		logger.WarnContext(context, "password_rehash_failed", slog.String("user_id", userID), slog.Any("error", err))
		return
	}

	logger.InfoContext(context, "password_rehashed",
		slog.String("user_id", userID),
		slog.String("strategy", service.hasher.Strategy()),
	)
}

// # Session Management

/*
Refresh implements refresh token rotation.

Description: The presented refresh token must verify, carry type=refresh and
not be revoked. The account is re-read so the new access token reflects the
current nickname and superuser flag. The old token is claimed with RevokeOnce
before the new pair is issued, so of two concurrent refreshes with one token
exactly one succeeds.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: Rotated tokens
  - error: InvalidToken, InvalidCredentials or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*TokenPair, error) {
	logger := ctxutil.GetLogger(context)

	if !service.tokens.VerifyIsRefresh(refreshToken) {
		service.countRefresh(metrics.OutcomeInvalidToken)
		return nil, apperr.InvalidToken(MsgInvalidRefresh)
	}

	claims, err := service.tokens.Claims(refreshToken)
	if err != nil {
		service.countRefresh(metrics.OutcomeInvalidToken)
		return nil, apperr.InvalidToken(MsgInvalidRefresh)
	}

	revoked, err := service.revocations.IsRevoked(context, refreshToken)
	if err != nil {
		service.countRefresh(metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}
	if revoked {
		service.countRefresh(metrics.OutcomeInvalidToken)
		logger.WarnContext(context, "refresh_token_reused", slog.String("jti", claims.ID))
		return nil, apperr.InvalidToken(MsgRevokedRefresh)
	}

	user, err := service.users.FindByEmail(context, claims.Subject)
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		service.countRefresh(metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_refresh_user_failed: %w", err)
	}
	if err != nil || !user.CanAuthenticate() {
		service.countRefresh(metrics.OutcomeInvalidCredentials)
		return nil, apperr.InvalidCredentials(MsgUserNotFound)
	}

	claimed, err := service.revocations.RevokeOnce(context, refreshToken, claims.Expiry())
	if err != nil {
		service.countRefresh(metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}
	if !claimed {
		service.countRefresh(metrics.OutcomeInvalidToken)
		logger.WarnContext(context, "refresh_token_reused", slog.String("jti", claims.ID))
		return nil, apperr.InvalidToken(MsgRevokedRefresh)
	}
	service.countRevocation(revokedByRefresh)

	pair, err := service.issuePair(user.Principal())
	if err != nil {
		service.countRefresh(metrics.OutcomeError)
		return nil, err
	}

	service.countRefresh(metrics.OutcomeSuccess)
	logger.InfoContext(context, "token_refreshed", slog.String("user_id", user.ID))
	return pair, nil
}

/*
Logout revokes the access token presented by an authenticated caller.

Description: The token in the header must belong to principal. A token whose
subject differs is rejected so one caller cannot revoke another's token.

Parameters:
  - context: context.Context
  - principal: *sec.Principal (the authenticated caller)
  - authorizationHeader: string (raw Authorization header)

Returns:
  - error: InvalidToken or revocation failures
*/
func (service *Service) Logout(context context.Context, principal *sec.Principal, authorizationHeader string) error {
	token, ok := middleware.BearerToken(authorizationHeader)
	if !ok || token == "" {
		return apperr.InvalidToken(MsgInvalidLogout)
	}

	claims, err := service.tokens.Claims(token)
	if err != nil {
		return apperr.InvalidToken(MsgInvalidLogout)
	}

	if principal == nil || claims.Subject != principal.Email {
		ctxutil.GetLogger(context).WarnContext(context, "logout_subject_mismatch")
		return apperr.InvalidToken(MsgInvalidLogout)
	}

	if err := service.revocations.Revoke(context, token, claims.Expiry()); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	service.countRevocation(revokedByLogout)

	ctxutil.GetLogger(context).InfoContext(context, "logout_succeeded", slog.String("user_id", principal.UserID))
	return nil
}

// RevokeAccessToken revokes a raw access token until its expiry. Tokens that
// do not parse are ignored since they can never authenticate again anyway.
func (service *Service) RevokeAccessToken(context context.Context, token string) error {
	claims, err := service.tokens.Claims(token)
	if err != nil {
		return nil
	}
	if err := service.revocations.Revoke(context, token, claims.Expiry()); err != nil {
		return fmt.Errorf("auth_service_revoke_failed: %w", err)
	}
	service.countRevocation(revokedByLogout)
	return nil
}

func (service *Service) issuePair(principal sec.Principal) (*TokenPair, error) {
	access, err := service.tokens.IssueAccess(principal)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refresh, err := service.tokens.IssueRefresh(principal.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		TokenType:    constants.TokenTypeBearer,
		RefreshToken: refresh,
	}, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Always succeeds from the caller's point of view. A known account
gets a single-use token and an email. An unknown account costs an extra random
delay. Either way the call takes at least [constants.PasswordResetMinDuration].

Parameters:
  - context: context.Context
  - rawEmail: string

Returns:
  - error: ValidationError for a malformed email only
*/
func (service *Service) RequestPasswordReset(context context.Context, rawEmail string) error {
	started := service.now()
	logger := ctxutil.GetLogger(context)

	email, err := credential.ParseEmail(rawEmail)
	if err != nil {
		return err
	}

	user, err := service.users.FindByEmail(context, email.String())
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		logger.ErrorContext(context, "password_reset_lookup_failed", slog.Any("error", err))
	}

	if err != nil || !user.CanAuthenticate() {
		logger.InfoContext(context, "password_reset_unknown_email")
		service.sleep(context, service.jitter())
	} else {
		service.issueResetToken(context, user)
	}

	if remaining := constants.PasswordResetMinDuration - service.now().Sub(started); remaining > 0 {
		service.sleep(context, remaining)
	}
	return nil
}

// issueResetToken stores a token for user and mails the link. Failures are
// logged, never returned.
func (service *Service) issueResetToken(context context.Context, user *User) {
	logger := ctxutil.GetLogger(context).With(slog.String("user_id", user.ID))

	token, err := sec.GenerateSecureToken(constants.PasswordResetTokenBytes)
	if err != nil {
		logger.ErrorContext(context, "password_reset_token_failed", slog.Any("error", err))
		return
	}

	if err := service.resetTokens.Set(context, token, user.ID, constants.PasswordResetTokenTTL); err != nil {
		logger.ErrorContext(context, "password_reset_token_failed", slog.Any("error", err))
		return
	}

	if service.mail == nil {
		logger.WarnContext(context, "password_reset_mailer_missing")
		return
	}

	message, err := mailer.PasswordReset(user.Email, user.Nickname, service.resetLink(token), constants.PasswordResetTokenTTL)
	if err == nil {
		err = service.mail.Send(context, message)
	}
	if err != nil {
		logger.ErrorContext(context, "password_reset_email_failed", slog.Any("error", err))
		return
	}

	logger.InfoContext(context, "password_reset_email_sent")
}

func (service *Service) resetLink(token string) string {
	separator := "?"
	if strings.Contains(service.resetURL, "?") {
		separator = "&"
	}
	return service.resetURL + separator + "token=" + url.QueryEscape(token)
}

/*
ConfirmPasswordReset completes the forgot-password flow.

Description: The new password is validated before the token is consumed, so
a weak password does not burn the token. Consumption is atomic.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: ValidationError for a weak password, InvalidToken for an unusable token, or storage failures
*/
func (service *Service) ConfirmPasswordReset(context context.Context, token, newPassword string) error {
	raw, err := credential.ParseRawPassword(FieldNewPassword, newPassword)
	if err != nil {
		return err
	}

	if strings.TrimSpace(token) == "" {
		return apperr.InvalidToken(MsgInvalidResetToken)
	}

	userID, err := service.resetTokens.Consume(context, token)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return apperr.InvalidToken(MsgInvalidResetToken)
		}
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}

	hashed, err := service.hasher.Hash(raw)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, userID, hashed.String()); err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return apperr.InvalidToken(MsgInvalidResetToken)
		}
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "password_reset_completed", slog.String("user_id", userID))
	return nil
}

// # Metrics

func (service *Service) countLogin(outcome string) {
	if service.metrics != nil {
		service.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (service *Service) countRefresh(outcome string) {
	if service.metrics != nil {
		service.metrics.Refreshes.WithLabelValues(outcome).Inc()
	}
}

func (service *Service) countRevocation(source string) {
	if service.metrics != nil {
		service.metrics.Revocations.WithLabelValues(source).Inc()
	}
}

// # Timing

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// unknownEmailDelay returns a random delay between 1s and 1.5s.
func unknownEmailDelay() time.Duration {
	return time.Second + rand.N(500*time.Millisecond)
}
