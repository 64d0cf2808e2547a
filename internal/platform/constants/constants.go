// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer, token lifetimes and reset-token timing.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "healthlog-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the default 'iss' claim in JWTs.
	AuthIssuer = "healthlog.app"

	// BearerPrefix precedes the token in the Authorization header. Matching is case-sensitive.
	BearerPrefix = "Bearer "

	// TokenTypeBearer is the token_type returned with every token pair.
	TokenTypeBearer = "bearer"

	// DefaultAccessTokenTTL and DefaultRefreshTokenTTL are the token lifetimes.
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// PasswordResetTokenTTL is how long a reset link stays usable.
	PasswordResetTokenTTL = 60 * time.Minute

	// PasswordResetTokenBytes is the entropy of a reset token before encoding.
	PasswordResetTokenBytes = 32

	// PasswordResetMinDuration pads reset requests so they all take about as long.
	PasswordResetMinDuration = 1500 * time.Millisecond
)

// # JSON Field Identifiers

const (
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldMessage = "message"
	FieldData    = "data"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Envelope Status

const (
	StatusSuccess         = "SUCCESS"
	StatusFailure         = "FAILURE"
	StatusValidationError = "VALIDATION_ERROR"
)

// # Database Schemas

const (
	SchemaUsers  = "users"
	SchemaHealth = "health"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixResetToken = "auth:reset_token:"
	RedisPrefixRevoked    = "auth:revoked:"
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
)

// # CORS

// AllowedOriginSuffix is trusted outside development in addition to EXTRA_ORIGINS.
const AllowedOriginSuffix = "healthlog.app"
