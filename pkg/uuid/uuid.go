// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the identifiers used across Healthlog.

Every primary key (accounts, medications) and every token id ("jti") is a
UUIDv7. The time prefix keeps B-tree inserts append-only in PostgreSQL and
makes two tokens minted within the same second distinct.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Entropy failure is an unrecoverable system-level error
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// # Parsing

// IsValid reports whether value is a canonical UUID string of any version.
func IsValid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil && len(value) == 36
}
