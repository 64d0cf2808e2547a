// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for optional values.

Partial-update payloads (PATCH) decode absent JSON fields as nil pointers.
These helpers keep the "was this field sent?" checks readable.
*/
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value of T when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Or dereferences p, returning fallback when p is nil.
func Or[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// AllNil reports whether every pointer in ptrs is nil.
//
// Callers pass the optional fields of a patch as []any so that pointers of
// different element types can be checked together.
func AllNil(ptrs ...any) bool {
	for _, p := range ptrs {
		switch v := p.(type) {
		case nil:
		case *string:
			if v != nil {
				return false
			}
		case *bool:
			if v != nil {
				return false
			}
		case *float64:
			if v != nil {
				return false
			}
		case *int:
			if v != nil {
				return false
			}
		default:
			return false
		}
	}
	return true
}
