// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/taibuivan/healthlog/internal/platform/sec"
	"github.com/taibuivan/healthlog/internal/users/credential"
)

// # Domain Entities

// User is a registered Healthlog account as stored in users.account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialized.
	Nickname     string     `json:"nickname"`
	IsActive     bool       `json:"is_active"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// IsDeleted reports whether the account was soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// CanAuthenticate reports whether the account may log in or refresh.
func (u *User) CanAuthenticate() bool {
	return u != nil && u.IsActive && !u.IsDeleted()
}

// Principal returns the request identity carried in access tokens for u.
func (u *User) Principal() sec.Principal {
	return sec.Principal{
		UserID:      u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		IsSuperuser: u.IsSuperuser,
		Authorities: sec.AuthoritiesFor(u.IsSuperuser),
	}
}

// UserDetails is what credential checks need: the identity plus the stored hash.
type UserDetails struct {
	Principal    sec.Principal
	PasswordHash credential.HashedPassword
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

// # Field Identifiers

const (
	FieldEmail           = credential.FieldEmail
	FieldPassword        = credential.FieldPassword
	FieldRefreshToken    = "refresh_token"
	FieldToken           = "token"
	FieldNewPassword     = credential.FieldPasswordRaw
	FieldCurrentPassword = "current_password"
)
