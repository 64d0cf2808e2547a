// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/ctxutil"
	"github.com/taibuivan/healthlog/internal/platform/respond"
	"github.com/taibuivan/healthlog/internal/platform/sec"
)

// Reasons attached to an [sec.AuthInvalidToken] result.
const (
	ReasonEmptyToken       = "empty_token"
	ReasonVerification     = "verification_failed"
	ReasonRefreshToken     = "refresh_token_presented"
	ReasonRevoked          = "revoked"
	ReasonRevocationLookup = "revocation_lookup_failed"
)

// TokenVerifier parses and verifies a bearer token.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenCodec],
// allowing us to easily inject fakes during unit testing.
type TokenVerifier interface {
	Claims(token string) (*sec.Claims, error)
}

// RevocationChecker reports whether a token has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Authenticate classifies every request into one of three states and stores
// the [sec.AuthResult] in the context. It never rejects a request.
//
// # Flow
//  1. No 'Authorization: Bearer <token>' header: [sec.AuthNoToken].
//  2. Verification fails, a refresh token is presented, the token is revoked,
//     or the revocation lookup fails: [sec.AuthInvalidToken].
//  3. Otherwise [sec.AuthValidToken] with a principal built from the claims alone.
//
// Protected routes mount [RequireAuth] downstream to turn 2 and 1 into a 401.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//   - revocations: The revocation store.
//   - observe: Optional callback receiving every result (metrics).
func Authenticate(verifier TokenVerifier, revocations RevocationChecker, observe func(sec.AuthResult)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			result := resolve(ctx, verifier, revocations, request.Header.Get(constants.HeaderAuthorization))

			if result.State == sec.AuthInvalidToken {
				ctxutil.GetLogger(ctx).DebugContext(ctx, "bearer_token_rejected", slog.String("reason", result.Reason))
			}
			if slot := authSlotFrom(ctx); slot != nil {
				slot.Store(&result)
			}
			if observe != nil {
				observe(result)
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthResult(ctx, result)))
		})
	}
}

func resolve(ctx context.Context, verifier TokenVerifier, revocations RevocationChecker, header string) sec.AuthResult {

	// ── 1. Extraction ─────────────────────────────────────────────────
	token, ok := BearerToken(header)
	if !ok {
		return sec.AuthResult{State: sec.AuthNoToken}
	}
	if token == "" {
		return invalid(ReasonEmptyToken)
	}

	// ── 2. Signature, issuer and expiry ───────────────────────────────
	claims, err := verifier.Claims(token)
	if err != nil {
		return invalid(ReasonVerification)
	}
	if claims.IsRefresh() {
		return invalid(ReasonRefreshToken)
	}

	// ── 3. Revocation ─────────────────────────────────────────────────
	revoked, err := revocations.IsRevoked(ctx, token)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "revocation_lookup_failed", slog.Any("error", err))
		return invalid(ReasonRevocationLookup)
	}
	if revoked {
		return invalid(ReasonRevoked)
	}

	return sec.AuthResult{State: sec.AuthValidToken, Principal: claims.Principal()}
}

func invalid(reason string) sec.AuthResult {
	return sec.AuthResult{State: sec.AuthInvalidToken, Reason: reason}
}

// BearerToken extracts the token from an Authorization header value.
// The "Bearer " prefix is matched case-sensitively; ok is false for any other scheme.
func BearerToken(header string) (token string, ok bool) {
	if !strings.HasPrefix(header, constants.BearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(constants.BearerPrefix):]), true
}

// RequireAuth blocks requests that did not present a valid access token.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch result := ctxutil.GetAuthResult(request.Context()); {
		case result.Authenticated():
			next.ServeHTTP(writer, request)
		case result.State == sec.AuthInvalidToken:
			respond.Error(writer, request, apperr.InvalidToken("Invalid or expired token"))
		default:
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		}
	})
}

// RequireSuperuser blocks requests unless the principal carries both the
// superuser flag and the admin authority.
//
// It implies [RequireAuth] so you don't need to mount both.
func RequireSuperuser(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())
		if !principal.IsSuperuser || !principal.HasAuthority(sec.RoleAdmin) {
			respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			return
		}
		next.ServeHTTP(writer, request)
	}))
}

// # Result Slot

// Outer middleware (logging, metrics) runs before the authenticator sets the
// request context, so the result is also published through a shared slot.

type authSlotKey struct{}

func withAuthSlot(ctx context.Context) (context.Context, *atomic.Pointer[sec.AuthResult]) {
	if slot := authSlotFrom(ctx); slot != nil {
		return ctx, slot
	}
	slot := new(atomic.Pointer[sec.AuthResult])
	return context.WithValue(ctx, authSlotKey{}, slot), slot
}

func authSlotFrom(ctx context.Context) *atomic.Pointer[sec.AuthResult] {
	slot, _ := ctx.Value(authSlotKey{}).(*atomic.Pointer[sec.AuthResult])
	return slot
}
