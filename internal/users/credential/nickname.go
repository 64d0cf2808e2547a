// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
)

const (
	nicknameMinLength = 2
	nicknameMaxLength = 50

	// derivedNicknameMax bounds nicknames generated from an email address.
	derivedNicknameMax = 20
)

var nicknamePattern = regexp.MustCompile(`^[가-힣a-zA-Z0-9\s]+$`)

// Nickname is a display name made of Hangul syllables, ASCII letters, digits and spaces.
type Nickname struct {
	value string
}

// ParseNickname NFC-normalizes and validates raw. Clients sending decomposed
// Hangul (jamo sequences) therefore match the syllable range.
func ParseNickname(raw string) (Nickname, error) {
	normalized := strings.TrimSpace(norm.NFC.String(raw))
	length := utf8.RuneCountInString(normalized)

	if length < nicknameMinLength || length > nicknameMaxLength {
		return Nickname{}, apperr.FieldInvalid(FieldNickname, "Nickname must be between 2 and 50 characters")
	}
	if !nicknamePattern.MatchString(normalized) {
		return Nickname{}, apperr.FieldInvalid(FieldNickname, "Nickname may only contain letters, digits and spaces")
	}
	return Nickname{value: normalized}, nil
}

// NicknameFromEmail derives a default nickname from the email local part.
// Disallowed characters are dropped, the result is cut to 20 characters and
// padded with "user" when too short.
func NicknameFromEmail(email Email) Nickname {
	var builder strings.Builder
	count := 0
	for _, r := range norm.NFC.String(email.LocalPart()) {
		if count == derivedNicknameMax {
			break
		}
		if nicknamePattern.MatchString(string(r)) && r != ' ' {
			builder.WriteRune(r)
			count++
		}
	}

	derived := builder.String()
	if utf8.RuneCountInString(derived) < nicknameMinLength {
		derived = "user" + derived
	}
	return Nickname{value: derived}
}

// String returns the nickname.
func (n Nickname) String() string { return n.value }
