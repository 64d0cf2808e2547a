// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/healthlog/internal/platform/ctxkey"
	"github.com/taibuivan/healthlog/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthResult returns a new context carrying the request's authentication outcome.
func WithAuthResult(ctx context.Context, result sec.AuthResult) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAuth, result)
}

// GetAuthResult retrieves the authentication outcome.
// A context that never passed through the authenticator reads as [sec.AuthNoToken].
func GetAuthResult(ctx context.Context) sec.AuthResult {
	result, ok := ctx.Value(ctxkey.KeyAuth).(sec.AuthResult)
	if !ok {
		return sec.AuthResult{State: sec.AuthNoToken}
	}
	return result
}

// GetPrincipal returns the authenticated principal, or nil unless the token was valid.
func GetPrincipal(ctx context.Context) *sec.Principal {
	result := GetAuthResult(ctx)
	if !result.Authenticated() {
		return nil
	}
	return result.Principal
}
