// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/middleware"
	requestutil "github.com/taibuivan/healthlog/internal/platform/request"
	"github.com/taibuivan/healthlog/internal/platform/respond"
	"github.com/taibuivan/healthlog/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the /api/v1/auth endpoints.
//
// # Scope
//
// Login, token refresh, logout and the password reset callbacks. Account
// creation lives in the account package.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /login                    : Exchanges credentials for a token pair.
//   - POST /refresh                  : Rotates a refresh token.
//   - POST /logout                   : Revokes the presented access token.
//   - POST /password-reset/request   : Emails a reset link.
//   - POST /password-reset/confirm   : Redeems a reset token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/password-reset/request", handler.requestPasswordReset)
	router.Post("/password-reset/confirm", handler.confirmPasswordReset)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

/*
Login authenticates a user and issues a token pair.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: TokenPair
  - 400: Malformed body or email
  - 401: INVALID_CREDENTIALS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgLoginSucceeded, pair)
}

/*
Refresh rotates a refresh token into a new token pair.

POST /api/v1/auth/refresh

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: TokenPair
  - 400: Missing refresh_token
  - 401: INVALID_TOKEN (invalid, expired, revoked or reused token)
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgRefreshSucceeded, pair)
}

/*
Logout revokes the access token used for this request.

POST /api/v1/auth/logout

Response:
  - 200: Empty success envelope
  - 401: Missing, invalid or foreign token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	header := request.Header.Get(constants.HeaderAuthorization)
	if err := handler.authService.Logout(request.Context(), principal, header); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgLogoutSucceeded, nil)
}

/*
RequestPasswordReset starts the recovery flow.

POST /api/v1/auth/password-reset/request

Description: Responds identically whether or not the email is registered.

Request:
  - Body: passwordResetRequest (Email)

Response:
  - 200: Empty success envelope
  - 400: Malformed email
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input passwordResetRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgResetRequested, nil)
}

/*
ConfirmPasswordReset completes the recovery flow.

POST /api/v1/auth/password-reset/confirm

Request:
  - Body: passwordResetConfirmRequest (Token, NewPassword)

Response:
  - 200: Empty success envelope
  - 400: Weak password or missing token
  - 401: Unknown, used or expired token
*/
func (handler *Handler) confirmPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input passwordResetConfirmRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ConfirmPasswordReset(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgPasswordResetDone, nil)
}
