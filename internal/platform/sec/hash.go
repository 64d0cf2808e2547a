// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// # Legacy bcrypt

// Accounts imported from the previous platform carry bcrypt hashes without a
// pepper. They are verified here and re-hashed with the current [KDF] on the
// next successful login.

// IsBcryptHash reports whether stored looks like a bcrypt modular-crypt string.
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// HashBcrypt hashes plainTextPassword with bcrypt at the given cost.
func HashBcrypt(plainTextPassword string, cost int) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to bcrypt password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckBcrypt compares plainTextPassword with a bcrypt hash.
func CheckBcrypt(plainTextPassword, existingHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword)) == nil
}
