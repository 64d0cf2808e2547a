// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
)

// # Raw Password

const (
	passwordMinLength = 8
	passwordMaxLength = 100

	// PasswordSpecials lists the characters that satisfy the special-character rule.
	PasswordSpecials = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// RawPassword is a plaintext password that satisfies the strength policy.
// It is never persisted or logged.
type RawPassword struct {
	value string
}

// ParseRawPassword checks raw against the strength policy. Rules are evaluated
// in a fixed order and the first violation is reported: empty, too short,
// too long, missing uppercase, missing lowercase, missing digit, missing special.
func ParseRawPassword(field, raw string) (RawPassword, error) {
	if field == "" {
		field = FieldPassword
	}

	if strings.TrimSpace(raw) == "" {
		return RawPassword{}, apperr.FieldInvalid(field, "Password is required")
	}

	length := utf8.RuneCountInString(raw)
	if length < passwordMinLength {
		return RawPassword{}, apperr.FieldInvalid(field, "Password must be at least 8 characters")
	}
	if length > passwordMaxLength {
		return RawPassword{}, apperr.FieldInvalid(field, "Password must be at most 100 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(PasswordSpecials, r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return RawPassword{}, apperr.FieldInvalid(field, "Password must contain at least one uppercase letter")
	case !hasLower:
		return RawPassword{}, apperr.FieldInvalid(field, "Password must contain at least one lowercase letter")
	case !hasDigit:
		return RawPassword{}, apperr.FieldInvalid(field, "Password must contain at least one digit")
	case !hasSpecial:
		return RawPassword{}, apperr.FieldInvalid(field, "Password must contain at least one special character")
	}

	return RawPassword{value: raw}, nil
}

// Reveal returns the plaintext. Only the hasher should need it.
func (p RawPassword) Reveal() string { return p.value }

// String masks the value so it never reaches a log line by accident.
func (p RawPassword) String() string { return "********" }

// # Hashed Password

const (
	hashedMinLength = 32
	hashedMaxLength = 512
)

var hashedCharset = regexp.MustCompile(`^[A-Za-z0-9+/=.$-]+$`)

// HashedPassword is the stored, one-way representation of a password.
type HashedPassword struct {
	value string
}

// ParseHashedPassword validates the shape of a stored hash. It is used both on
// hasher output and when rehydrating accounts from storage.
func ParseHashedPassword(stored string) (HashedPassword, error) {
	if strings.TrimSpace(stored) == "" {
		return HashedPassword{}, apperr.FieldInvalid(FieldPassword, "Password hash is required")
	}
	if len(stored) < hashedMinLength || len(stored) > hashedMaxLength {
		return HashedPassword{}, apperr.FieldInvalid(FieldPassword, "Password hash length is invalid")
	}
	if !hashedCharset.MatchString(stored) {
		return HashedPassword{}, apperr.FieldInvalid(FieldPassword, "Password hash contains invalid characters")
	}
	return HashedPassword{value: stored}, nil
}

// String returns the stored encoding.
func (h HashedPassword) String() string { return h.value }

// IsZero reports whether h was never parsed.
func (h HashedPassword) IsZero() bool { return h.value == "" }
