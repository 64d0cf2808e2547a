// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/users/credential"
)

/*
TestParseEmail covers normalization and every rejection rule.
*/
func TestParseEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		isValid bool
	}{
		{"plain", "user@example.com", "user@example.com", true},
		{"normalized", " Test@EXAMPLE.com ", "test@example.com", true},
		{"plus_and_dots", "first.last+tag@mail.example.co", "first.last+tag@mail.example.co", true},
		{"blank", "   ", "", false},
		{"missing_at", "user.example.com", "", false},
		{"short_tld", "user@example.c", "", false},
		{"bad_char", "us er@example.com", "", false},
		{"too_long", strings.Repeat("a", 60) + "@" + strings.Repeat("b", 40) + ".com", "", false},
		{"local_too_long", strings.Repeat("a", 65) + "@example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := credential.ParseEmail(tt.input)
			if !tt.isValid {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, email.String())
		})
	}
}

/*
TestParseEmail_Idempotent verifies that normalization is stable.
*/
func TestParseEmail_Idempotent(t *testing.T) {
	a := credential.MustEmail(" Test@EXAMPLE.com ")
	b := credential.MustEmail("test@example.com")

	assert.Equal(t, a, b)
	assert.Equal(t, "test", a.LocalPart())
}

/*
TestParseRawPassword_FirstFailingRule checks the fixed evaluation order.
*/
func TestParseRawPassword_FirstFailingRule(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty", "", "Password is required"},
		{"too_short_and_weak", "abc", "Password must be at least 8 characters"},
		{"too_long", "Aa1!" + strings.Repeat("x", 97), "Password must be at most 100 characters"},
		{"no_upper_no_digit", "abcdefgh", "Password must contain at least one uppercase letter"},
		{"no_lower", "ABCDEFG1!", "Password must contain at least one lowercase letter"},
		{"no_digit", "Abcdefgh!", "Password must contain at least one digit"},
		{"no_special", "Abcdefg1", "Password must contain at least one special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := credential.ParseRawPassword("", tt.input)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.message, ae.Message)
			assert.Equal(t, credential.FieldPassword, ae.Details[0].Field)
		})
	}

	pw, err := credential.ParseRawPassword(credential.FieldPasswordRaw, "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "Str0ng!Pass", pw.Reveal())
	assert.Equal(t, "********", pw.String())

	// Letters and digits outside ASCII count toward the character classes.
	for _, input := range []string{"Éabcdefg1!", "Aéééééé1!", "Abcdefgh١!"} {
		_, err := credential.ParseRawPassword("", input)
		assert.NoError(t, err, input)
	}
}

/*
TestParseHashedPassword covers length and charset rules.
*/
func TestParseHashedPassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		isValid bool
	}{
		{"salt_and_hash", "c2FsdHNhbHRzYWx0c2FsdA==$" + strings.Repeat("QUJD", 10), true},
		{"bcrypt", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", true},
		{"blank", "", false},
		{"too_short", "abc$def", false},
		{"too_long", strings.Repeat("a", 513), false},
		{"colon_not_allowed", strings.Repeat("a", 20) + ":" + strings.Repeat("b", 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := credential.ParseHashedPassword(tt.input)
			if tt.isValid {
				require.NoError(t, err)
				assert.Equal(t, tt.input, hashed.String())
			} else {
				assert.Error(t, err)
			}
		})
	}
}

/*
TestNickname covers validation, NFC normalization and derivation from email.
*/
func TestNickname(t *testing.T) {
	// 1. Hangul and ASCII
	nick, err := credential.ParseNickname("건강 지킴이 01")
	require.NoError(t, err)
	assert.Equal(t, "건강 지킴이 01", nick.String())

	// 2. Decomposed Hangul (jamo) is composed before matching
	decomposed := "\u1100\u1161\u11AB\u1100\u1161\u11BC"
	nick, err = credential.ParseNickname(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "간강", nick.String())

	// 3. Rejections
	_, err = credential.ParseNickname("a")
	assert.Error(t, err)
	_, err = credential.ParseNickname("bad_name!")
	assert.Error(t, err)

	// 4. Derived from email
	assert.Equal(t, "johndoe", credential.NicknameFromEmail(credential.MustEmail("john.doe@example.com")).String())
	assert.Equal(t, "userx", credential.NicknameFromEmail(credential.MustEmail("x@example.com")).String())
	long := credential.NicknameFromEmail(credential.MustEmail(strings.Repeat("a", 40) + "@example.com"))
	assert.Len(t, long.String(), 20)
}
