// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// # Key Derivation

// KDF stretches a secret and a salt into a fixed-length derived key.
//
// Implementations must be deterministic for the same inputs and deliberately
// slow. The cost is fixed per instance, never proportional to the input.
type KDF interface {
	// Name identifies the strategy in configuration and logs.
	Name() string

	// Derive returns the derived key for secret and salt.
	Derive(secret, salt []byte) []byte
}

// Strategy names accepted by [NewKDF].
const (
	StrategyPBKDF2SHA512 = "pbkdf2-sha512"
	StrategyArgon2id     = "argon2id"
)

// DefaultPBKDF2Iterations follows the OWASP recommendation for PBKDF2-HMAC-SHA512.
const DefaultPBKDF2Iterations = 210_000

// NewKDF builds the strategy named by name.
// iterations is used by PBKDF2 only; values below 1 select the default.
func NewKDF(name string, iterations int) (KDF, error) {
	switch name {
	case "", StrategyPBKDF2SHA512:
		return NewPBKDF2SHA512(iterations), nil
	case StrategyArgon2id:
		return NewArgon2id(), nil
	default:
		return nil, fmt.Errorf("sec: unknown password hash strategy %q", name)
	}
}

// PBKDF2SHA512 derives keys with PBKDF2-HMAC-SHA512.
type PBKDF2SHA512 struct {
	iterations int
}

// NewPBKDF2SHA512 creates a PBKDF2 strategy with the given iteration count.
func NewPBKDF2SHA512(iterations int) *PBKDF2SHA512 {
	if iterations < 1 {
		iterations = DefaultPBKDF2Iterations
	}
	return &PBKDF2SHA512{iterations: iterations}
}

// Name implements [KDF].
func (k *PBKDF2SHA512) Name() string { return StrategyPBKDF2SHA512 }

// Derive implements [KDF]. The output is one SHA-512 block (64 bytes).
func (k *PBKDF2SHA512) Derive(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, k.iterations, sha512.Size, sha512.New)
}

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// Argon2id derives keys with argon2id.
type Argon2id struct{}

// NewArgon2id creates an argon2id strategy.
func NewArgon2id() *Argon2id { return &Argon2id{} }

// Name implements [KDF].
func (k *Argon2id) Name() string { return StrategyArgon2id }

// Derive implements [KDF].
func (k *Argon2id) Derive(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}
