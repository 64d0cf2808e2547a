// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "strings"

// # Authorities

// Authority is a granted permission carried in the "auth" claim.
type Authority string

const (
	// Granted to every account.
	RoleUser Authority = "ROLE_USER"

	// Granted to superusers in addition to RoleUser.
	RoleAdmin Authority = "ROLE_ADMIN"
)

// AuthoritiesFor returns the authorities of an account.
func AuthoritiesFor(isSuperuser bool) []Authority {
	if isSuperuser {
		return []Authority{RoleUser, RoleAdmin}
	}
	return []Authority{RoleUser}
}

// JoinAuthorities renders authorities as the comma-joined claim value.
func JoinAuthorities(authorities []Authority) string {
	parts := make([]string, len(authorities))
	for i, a := range authorities {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

// SplitAuthorities parses a comma-joined claim value. Blank items are dropped.
func SplitAuthorities(claim string) []Authority {
	if claim == "" {
		return nil
	}
	var out []Authority
	for _, part := range strings.Split(claim, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, Authority(part))
		}
	}
	return out
}
