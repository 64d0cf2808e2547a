// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles signup and self-service profile management.

# Architecture

  - Domain: This package depends on the auth package for the User entity and
    its repository. It owns no table of its own.
  - Security: Every /users/me endpoint requires a valid access token. Deleting
    an account also revokes the token that made the request.
*/
package account

import (
	"context"

	"github.com/taibuivan/healthlog/internal/users/auth"
)

// # Repository Contracts

// AccountRepository is the subset of [auth.UserRepository] this package uses.
type AccountRepository interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	FindByEmail(context context.Context, email string) (*auth.User, error)
	Create(context context.Context, user *auth.User) error
	UpdateNickname(context context.Context, userID, nickname string) (*auth.User, error)
	UpdatePassword(context context.Context, userID, newHash string) error
	SoftDelete(context context.Context, id string) error
}

// TokenRevoker revokes a raw access token until it expires.
type TokenRevoker interface {
	RevokeAccessToken(context context.Context, token string) error
}

// # Field Identifiers

const (
	FieldEmail           = auth.FieldEmail
	FieldPassword        = auth.FieldPassword
	FieldNickname        = "nickname"
	FieldCurrentPassword = auth.FieldCurrentPassword
	FieldNewPassword     = auth.FieldNewPassword
)

// # Messages

const (
	MsgSignedUp        = "Account created"
	MsgProfileUpdated  = "Profile updated"
	MsgAccountDeleted  = "Account deleted"
	MsgPasswordChanged = "Password changed successfully"
	MsgEmailTaken      = "Email is already registered"
	MsgCurrentPassword = "Current password is incorrect"
)
