// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec isolates the security-sensitive primitives of Healthlog:
// password key derivation, bearer token signing and verification, and the
// identity types that flow from a verified token into request handling.
//
// # Tokens
//
// [TokenCodec] signs access and refresh tokens with HS256 under a single
// shared secret. Verification parses the payload once into [Claims]; callers
// read fields from that struct instead of re-parsing per claim.
package sec

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/pkg/uuid"
)

// MinSecretLength is the minimum HS256 key size in bytes.
const MinSecretLength = 32

// ErrWeakSecret is returned by [NewTokenCodec] for secrets shorter than [MinSecretLength].
var ErrWeakSecret = fmt.Errorf("sec: signing secret must be at least %d bytes", MinSecretLength)

// Failure reasons reported to logs and the failure hook.
const (
	ReasonMalformed    = "malformed"
	ReasonExpired      = "expired"
	ReasonBadSignature = "bad_signature"
	ReasonWrongIssuer  = "wrong_issuer"
	ReasonWrongType    = "wrong_type"
	ReasonInvalid      = "invalid"
)

// TokenCodec issues and verifies HS256 bearer tokens.
type TokenCodec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	now       func() time.Time
	logger    *slog.Logger
	onFailure func(reason string)
	parser    *jwt.Parser
}

// CodecOption customizes a [TokenCodec].
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// WithLogger sets the logger used for verification failures.
func WithLogger(logger *slog.Logger) CodecOption {
	return func(c *TokenCodec) { c.logger = logger }
}

// WithFailureHook registers fn to be called with the reason of every failed verification.
func WithFailureHook(fn func(reason string)) CodecOption {
	return func(c *TokenCodec) { c.onFailure = fn }
}

// NewTokenCodec creates a codec. The secret is copied.
func NewTokenCodec(secret []byte, issuer string, accessTTL, refreshTTL time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("sec: token lifetimes must be positive (access=%s, refresh=%s)", accessTTL, refreshTTL)
	}

	codec := &TokenCodec{
		secret:     append([]byte(nil), secret...),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(codec)
	}

	codec.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(codec.now),
	)

	return codec, nil
}

// RefreshTTL returns the lifetime of refresh tokens.
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// # Issuing

// IssueAccess signs a short-lived token carrying the identity of principal.
// When principal has no authorities they are derived from the superuser flag.
func (c *TokenCodec) IssueAccess(principal Principal) (string, error) {
	authorities := principal.Authorities
	if len(authorities) == 0 {
		authorities = AuthoritiesFor(principal.IsSuperuser)
	}

	claims := Claims{
		RegisteredClaims: c.registered(principal.Email, c.accessTTL),
		Authorities:      JoinAuthorities(authorities),
		UserID:           principal.UserID,
		Email:            principal.Email,
		Nickname:         principal.Nickname,
		IsSuperuser:      principal.IsSuperuser,
	}
	return c.sign(claims)
}

// IssueRefresh signs a long-lived token for subject with type=refresh.
func (c *TokenCodec) IssueRefresh(subject string) (string, error) {
	claims := Claims{
		RegisteredClaims: c.registered(subject, c.refreshTTL),
		Type:             TokenTypeRefresh,
	}
	return c.sign(claims)
}

func (c *TokenCodec) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	issuedAt := c.now()
	return jwt.RegisteredClaims{
		ID:        uuid.New(),
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
}

func (c *TokenCodec) sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signed, nil
}

// # Verification

// Claims verifies signature, issuer and expiry and returns the typed payload.
// Any failure yields an INVALID_TOKEN [apperr.AppError].
func (c *TokenCodec) Claims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err == nil && !token.Valid {
		err = errors.New("sec: token not valid")
	}
	if err != nil {
		c.fail(classify(err), err)
		return nil, apperr.InvalidToken("Invalid or expired token").WithCause(err)
	}

	return claims, nil
}

// Verify reports whether tokenString is a well-formed, correctly signed and
// unexpired token. It never returns an error.
func (c *TokenCodec) Verify(tokenString string) bool {
	_, err := c.Claims(tokenString)
	return err == nil
}

// VerifyIsRefresh is [TokenCodec.Verify] plus a check that the token is a refresh token.
func (c *TokenCodec) VerifyIsRefresh(tokenString string) bool {
	claims, err := c.Claims(tokenString)
	if err != nil {
		return false
	}
	if !claims.IsRefresh() {
		c.fail(ReasonWrongType, nil)
		return false
	}
	return true
}

func (c *TokenCodec) fail(reason string, err error) {
	attrs := []any{slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.Debug("token_verification_failed", attrs...)

	if c.onFailure != nil {
		c.onFailure(reason)
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonWrongIssuer
	default:
		return ReasonInvalid
	}
}
