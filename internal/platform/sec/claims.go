// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeRefresh marks refresh tokens in the "type" claim.
const TokenTypeRefresh = "refresh"

// Claims is the typed payload of every token issued by [TokenCodec].
//
// The subject is the account email. Access tokens carry the identity fields;
// refresh tokens carry only the subject and Type.
type Claims struct {
	jwt.RegisteredClaims

	Authorities string `json:"auth,omitempty"`
	UserID      string `json:"uid,omitempty"`
	Email       string `json:"email,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
	IsSuperuser bool   `json:"su,omitempty"`
	Type        string `json:"type,omitempty"`
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool {
	return c.Type == TokenTypeRefresh
}

// AuthorityList returns the parsed "auth" claim.
func (c *Claims) AuthorityList() []Authority {
	return SplitAuthorities(c.Authorities)
}

// Expiry returns the "exp" claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Principal converts access-token claims into a request identity.
func (c *Claims) Principal() *Principal {
	return &Principal{
		UserID:      c.UserID,
		Email:       c.Email,
		Nickname:    c.Nickname,
		IsSuperuser: c.IsSuperuser,
		Authorities: c.AuthorityList(),
	}
}
