// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package credential holds the self-validating value types that guard every
path into storage and tokens: [Email], [RawPassword], [HashedPassword] and
[Nickname], plus the [PasswordHasher] that turns one into another.

A value of any of these types is valid by construction. Failures are
VALIDATION_ERROR [apperr.AppError] values naming the offending field.
*/
package credential

import (
	"regexp"
	"strings"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
)

// Field names reported in validation errors.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldPasswordRaw = "new_password"
	FieldNickname    = "nickname"
)

const (
	emailMaxLength  = 100
	emailLocalMax   = 64
	emailDomainMax  = 253
	emailPatternSrc = `^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`
)

var emailPattern = regexp.MustCompile(emailPatternSrc)

// Email is a normalized (trimmed, lower-cased) email address.
type Email struct {
	value string
}

// ParseEmail normalizes and validates raw.
func ParseEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	if normalized == "" {
		return Email{}, apperr.FieldInvalid(FieldEmail, "Email is required")
	}
	if len(normalized) > emailMaxLength {
		return Email{}, apperr.FieldInvalid(FieldEmail, "Email must be at most 100 characters")
	}
	if !emailPattern.MatchString(normalized) {
		return Email{}, apperr.FieldInvalid(FieldEmail, "Email format is invalid")
	}

	local, domain, _ := strings.Cut(normalized, "@")
	if len(local) > emailLocalMax {
		return Email{}, apperr.FieldInvalid(FieldEmail, "Email local part must be at most 64 characters")
	}
	if len(domain) > emailDomainMax {
		return Email{}, apperr.FieldInvalid(FieldEmail, "Email domain must be at most 253 characters")
	}

	return Email{value: normalized}, nil
}

// MustEmail is [ParseEmail] for literals known to be valid. It panics otherwise.
func MustEmail(raw string) Email {
	email, err := ParseEmail(raw)
	if err != nil {
		panic(err)
	}
	return email
}

// String returns the normalized address.
func (e Email) String() string { return e.value }

// LocalPart returns the part before '@'.
func (e Email) LocalPart() string {
	local, _, _ := strings.Cut(e.value, "@")
	return local
}

// IsZero reports whether e was never parsed.
func (e Email) IsZero() bool { return e.value == "" }
