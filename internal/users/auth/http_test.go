// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/ctxutil"
	"github.com/taibuivan/healthlog/internal/platform/middleware"
	"github.com/taibuivan/healthlog/internal/platform/respond"
	"github.com/taibuivan/healthlog/internal/users/auth"
)

type envelope struct {
	respond.Envelope
	Data json.RawMessage `json:"data"`
}

func newRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.codec, f.revocations, nil))
	router.Mount("/api/v1/auth", auth.NewHandler(f.service).Routes())

	// Stands in for any protected resource.
	router.With(middleware.RequireAuth).Get("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		respond.OK(w, respond.DefaultSuccessMessage, ctxutil.GetPrincipal(r.Context()).Email)
	})
	return router
}

func call(t *testing.T, handler http.Handler, method, path, bearer string, body any) (int, envelope) {
	t.Helper()

	var reader bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reader).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reader)
	if bearer != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+bearer)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

/*
TestHTTP_LoginLogoutScenario logs in, uses the token, logs out and checks the
token is refused afterwards although it has not expired.
*/
func TestHTTP_LoginLogoutScenario(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "judy@example.com")
	router := newRouter(f)

	// 1. Login
	code, env := call(t, router, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "judy@example.com", "password": testPassword})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, constants.StatusSuccess, env.Status)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.Equal(t, "bearer", pair.TokenType)

	// 2. Protected call succeeds
	code, _ = call(t, router, http.MethodGet, "/api/v1/users/me", pair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)

	// 3. Logout
	code, env = call(t, router, http.MethodPost, "/api/v1/auth/logout", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", string(env.Data))

	// 4. Same token is now refused
	code, env = call(t, router, http.MethodGet, "/api/v1/users/me", pair.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperr.CodeInvalidToken, env.ErrorCode)
	assert.Equal(t, constants.StatusFailure, env.Status)
}

/*
TestHTTP_Login_Failures checks status codes and envelope for bad input.
*/
func TestHTTP_Login_Failures(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "ken@example.com")
	router := newRouter(f)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"wrong password", map[string]string{"email": "ken@example.com", "password": "nope"}, http.StatusUnauthorized, apperr.CodeInvalidCredentials},
		{"unknown user", map[string]string{"email": "x@example.com", "password": "nope"}, http.StatusUnauthorized, apperr.CodeInvalidCredentials},
		{"missing password", map[string]string{"email": "ken@example.com"}, http.StatusBadRequest, apperr.CodeValidation},
		{"not json", "just a string", http.StatusBadRequest, apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := call(t, router, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantStatus, env.Code)
			assert.Equal(t, tt.wantCode, env.ErrorCode)
		})
	}
}

/*
TestHTTP_Refresh rotates once and refuses the second use.
*/
func TestHTTP_Refresh(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "leo@example.com")
	router := newRouter(f)

	pair, err := f.service.Login(t.Context(), auth.LoginInput{Email: "leo@example.com", Password: testPassword})
	require.NoError(t, err)

	body := map[string]string{"refresh_token": pair.RefreshToken}

	code, env := call(t, router, http.MethodPost, "/api/v1/auth/refresh", "", body)
	require.Equal(t, http.StatusOK, code)
	var rotated auth.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	assert.NotEmpty(t, rotated.AccessToken)

	code, env = call(t, router, http.MethodPost, "/api/v1/auth/refresh", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperr.CodeInvalidToken, env.ErrorCode)

	code, env = call(t, router, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, constants.StatusFailure, env.Status)
	assert.Equal(t, apperr.CodeInvalidToken, env.ErrorCode)
}

/*
TestHTTP_Logout_RequiresToken rejects anonymous logout.
*/
func TestHTTP_Logout_RequiresToken(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	code, env := call(t, router, http.MethodPost, "/api/v1/auth/logout", "", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperr.CodeUnauthorized, env.ErrorCode)
}

/*
TestHTTP_PasswordReset runs request and confirm through the router.
*/
func TestHTTP_PasswordReset(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "mia@example.com")
	router := newRouter(f)

	code, env := call(t, router, http.MethodPost, "/api/v1/auth/password-reset/request", "",
		map[string]string{"email": "mia@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, auth.MsgResetRequested, env.Message)

	token, _ := f.resetTokens.only()
	require.NotEmpty(t, token)

	code, _ = call(t, router, http.MethodPost, "/api/v1/auth/password-reset/confirm", "",
		map[string]string{"token": token, "new_password": "Fresh-P4ss!"})
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, router, http.MethodPost, "/api/v1/auth/password-reset/confirm", "",
		map[string]string{"token": token, "new_password": "Fresh-P4ss!"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, constants.StatusFailure, env.Status)
	assert.Equal(t, apperr.CodeInvalidToken, env.ErrorCode)
}
