// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/ctxutil"
	"github.com/taibuivan/healthlog/internal/users/auth"
	"github.com/taibuivan/healthlog/internal/users/credential"
	"github.com/taibuivan/healthlog/pkg/uuid"
)

// # Service Layer

// Service orchestrates signup and profile changes.
type Service struct {
	accountRepository AccountRepository
	hasher            *credential.PasswordHasher
	revoker           TokenRevoker
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo AccountRepository, hasher *credential.PasswordHasher, revoker TokenRevoker) *Service {
	return &Service{
		accountRepository: accountRepo,
		hasher:            hasher,
		revoker:           revoker,
	}
}

// # Registration

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	Email    string
	Password string
}

/*
Signup validates, hashes and persists a brand new account.

Description: The nickname is derived from the email local part and can be
changed later. New accounts are active and unverified.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *auth.User: Created entity
  - error: ValidationError, Conflict or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*auth.User, error) {
	email, err := credential.ParseEmail(input.Email)
	if err != nil {
		return nil, err
	}

	raw, err := credential.ParseRawPassword(FieldPassword, input.Password)
	if err != nil {
		return nil, err
	}

	// Early uniqueness check for a clean message; the unique index still decides races.
	if _, err := service.accountRepository.FindByEmail(context, email.String()); err == nil {
		return nil, apperr.Conflict(MsgEmailTaken)
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("account_service_signup_lookup_failed: %w", err)
	}

	hashed, err := service.hasher.Hash(raw)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	user := &auth.User{
		ID:           uuid.New(),
		Email:        email.String(),
		PasswordHash: hashed.String(),
		Nickname:     credential.NicknameFromEmail(email).String(),
		IsActive:     true,
	}

	if err := service.accountRepository.Create(context, user); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(MsgEmailTaken)
		}
		return nil, fmt.Errorf("account_service_signup_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_signed_up", slog.String("user_id", user.ID))
	return user, nil
}

// # Profile Management

/*
GetProfile retrieves the private profile of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

/*
UpdateNickname validates and stores a new display nickname.

Parameters:
  - context: context.Context
  - userID: string
  - rawNickname: string

Returns:
  - *auth.User: The updated user profile
  - error: ValidationError or storage failures
*/
func (service *Service) UpdateNickname(context context.Context, userID, rawNickname string) (*auth.User, error) {
	nickname, err := credential.ParseNickname(rawNickname)
	if err != nil {
		return nil, err
	}

	user, err := service.accountRepository.UpdateNickname(context, userID, nickname.String())
	if err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_profile_updated", slog.String("user_id", userID))
	return user, nil
}

/*
ChangePassword replaces the password after re-checking the current one.

Description: Tokens issued before the change stay valid until they expire.
Callers that want other devices signed out should log in again and discard
their refresh tokens.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: ValidationError or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_change_password_lookup_failed: %w", err)
	}

	stored, err := credential.ParseHashedPassword(user.PasswordHash)
	if err != nil || !service.hasher.Verify(currentPassword, stored) {
		return apperr.FieldInvalid(FieldCurrentPassword, MsgCurrentPassword)
	}

	raw, err := credential.ParseRawPassword(FieldNewPassword, newPassword)
	if err != nil {
		return err
	}

	hashed, err := service.hasher.Hash(raw)
	if err != nil {
		return fmt.Errorf("account_service_change_password_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePassword(context, userID, hashed.String()); err != nil {
		return fmt.Errorf("account_service_change_password_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_password_changed", slog.String("user_id", userID))
	return nil
}

/*
DeleteAccount soft-deletes the account and revokes the access token that asked for it.

Parameters:
  - context: context.Context
  - userID: string
  - accessToken: string (raw bearer token of the current request)

Returns:
  - error: Storage or revocation failures
*/
func (service *Service) DeleteAccount(context context.Context, userID, accessToken string) error {
	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	if err := service.revoker.RevokeAccessToken(context, accessToken); err != nil {
		return fmt.Errorf("account_service_delete_revoke_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_account_deleted", slog.String("user_id", userID))
	return nil
}
