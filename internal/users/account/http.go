// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/middleware"
	requestutil "github.com/taibuivan/healthlog/internal/platform/request"
	"github.com/taibuivan/healthlog/internal/platform/respond"
	"github.com/taibuivan/healthlog/internal/platform/validate"
)

// Handler implements the HTTP layer for signup and user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the /users endpoints. Every route
// requires authentication.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)
	router.Delete("/me", handler.deleteMe)
	router.Post("/me/password", handler.changePassword)

	return router
}

// SignupRoutes returns the public /user router.
func (handler *Handler) SignupRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/signup", handler.signup)
	return router
}

// # Request Payloads

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	Nickname *string `json:"nickname"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
Signup creates a new account.

POST /api/v1/user/signup

Request:
  - Body: signupRequest (Email, Password)

Response:
  - 201: User: Created profile
  - 400: Invalid email or weak password
  - 409: Email already registered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.accountService.Signup(request.Context(), SignupInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, MsgSignedUp, user)
}

// # User Profile Endpoints

/*
GET /api/v1/users/me.

Response:
  - 200: User: Private profile of the caller
  - 401: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", user)
}

/*
PATCH /api/v1/users/me.

Request:
  - Body: updateMeRequest (Nickname)

Response:
  - 200: User: Updated profile
  - 400: Missing or invalid nickname
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Nickname == nil {
		respond.Error(writer, request, validate.ErrNoFieldsToUpdate)
		return
	}

	user, err := handler.accountService.UpdateNickname(request.Context(), userID, *input.Nickname)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgProfileUpdated, user)
}

/*
DELETE /api/v1/users/me.

Description: Soft-deletes the account and revokes the access token used for
the request.

Response:
  - 200: Empty success envelope
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, _ := middleware.BearerToken(request.Header.Get(constants.HeaderAuthorization))
	if err := handler.accountService.DeleteAccount(request.Context(), userID, token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgAccountDeleted, nil)
}

/*
POST /api/v1/users/me/password.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Empty success envelope
  - 400: Wrong current password or weak new password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.ChangePassword(request.Context(), userID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgPasswordChanged, nil)
}
