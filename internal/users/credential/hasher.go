// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/taibuivan/healthlog/internal/platform/sec"
)

const (
	saltLength     = 16
	hashDelimiter  = "$"
	hashPartsCount = 2
)

// ErrEmptyPepper is returned by [NewPasswordHasher] when no pepper is configured.
var ErrEmptyPepper = errors.New("credential: password pepper must not be empty")

// PasswordHasher produces and checks [HashedPassword] values.
//
// Stored format: base64(salt) "$" base64(derived), where derived is the
// configured [sec.KDF] applied to password ‖ pepper with a fresh random salt.
type PasswordHasher struct {
	kdf    sec.KDF
	pepper []byte
	dummy  HashedPassword
}

// NewPasswordHasher creates a hasher. The pepper is shared by the whole
// deployment and must never change once accounts exist.
func NewPasswordHasher(kdf sec.KDF, pepper string) (*PasswordHasher, error) {
	if pepper == "" {
		return nil, ErrEmptyPepper
	}

	hasher := &PasswordHasher{kdf: kdf, pepper: []byte(pepper)}

	// A real-looking hash for accounts that do not exist; see [PasswordHasher.Dummy].
	filler, err := sec.GenerateSecureToken(24)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.hashString(filler)
	if err != nil {
		return nil, err
	}
	hasher.dummy = dummy

	return hasher, nil
}

// Strategy returns the name of the underlying key derivation function.
func (h *PasswordHasher) Strategy() string { return h.kdf.Name() }

// Hash derives a new salted, peppered hash of raw.
func (h *PasswordHasher) Hash(raw RawPassword) (HashedPassword, error) {
	return h.hashString(raw.Reveal())
}

func (h *PasswordHasher) hashString(raw string) (HashedPassword, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return HashedPassword{}, fmt.Errorf("credential: failed to generate salt: %w", err)
	}

	derived := h.kdf.Derive(h.peppered(raw), salt)

	encoded := base64.StdEncoding.EncodeToString(salt) + hashDelimiter + base64.StdEncoding.EncodeToString(derived)
	return ParseHashedPassword(encoded)
}

// Verify reports whether raw matches hashed. Malformed stored values yield
// false; Verify never fails with an error.
func (h *PasswordHasher) Verify(raw string, hashed HashedPassword) bool {
	stored := hashed.String()
	if stored == "" {
		return false
	}

	if sec.IsBcryptHash(stored) {
		return sec.CheckBcrypt(raw, stored)
	}

	parts := strings.Split(stored, hashDelimiter)
	if len(parts) != hashPartsCount {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := h.kdf.Derive(h.peppered(raw), salt)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// NeedsRehash reports whether hashed uses a legacy scheme and should be
// replaced after the next successful verification.
func (h *PasswordHasher) NeedsRehash(hashed HashedPassword) bool {
	return sec.IsBcryptHash(hashed.String())
}

// Dummy returns a hash that matches no password. Verifying against it costs the
// same as verifying a real account, which keeps "no such user" and "wrong
// password" indistinguishable by timing.
func (h *PasswordHasher) Dummy() HashedPassword { return h.dummy }

func (h *PasswordHasher) peppered(raw string) []byte {
	secret := make([]byte, 0, len(raw)+len(h.pepper))
	secret = append(secret, raw...)
	return append(secret, h.pepper...)
}
