// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Every response, success or error, uses the same JSON envelope:
//
//	{"code": 200, "status": "SUCCESS", "message": "...", "data": {...}}
//
// code mirrors the HTTP status. status is SUCCESS, FAILURE or VALIDATION_ERROR;
// for the latter data holds the list of field errors. Failures also carry the
// machine-readable error_code of the underlying [apperr.AppError].
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/ctxutil"
)

// DefaultSuccessMessage is used when a handler has nothing more specific to say.
const DefaultSuccessMessage = "Request processed successfully"

// Envelope is the JSON body of every API response.
type Envelope struct {
	Code      int    `json:"code"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	Data      any    `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 success envelope. An empty message selects [DefaultSuccessMessage].
func OK(writer http.ResponseWriter, message string, data any) {
	success(writer, http.StatusOK, message, data)
}

// Created writes a 201 success envelope.
func Created(writer http.ResponseWriter, message string, data any) {
	success(writer, http.StatusCreated, message, data)
}

func success(writer http.ResponseWriter, statusCode int, message string, data any) {
	if message == "" {
		message = DefaultSuccessMessage
	}
	JSON(writer, statusCode, Envelope{
		Code:    statusCode,
		Status:  constants.StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Error converts any Go error into the failure envelope.
//
// # Security
//
// Errors that are not an [apperr.AppError] are logged with full detail and
// returned to the client as a generic 500. Causes never leave the server.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	appError := apperr.As(err)
	if appError == nil {
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	envelope := Envelope{
		Code:      appError.HTTPStatus,
		Status:    constants.StatusFailure,
		Message:   appError.Message,
		ErrorCode: appError.Code,
	}
	if appError.Code == apperr.CodeValidation {
		envelope.Status = constants.StatusValidationError
		if len(appError.Details) > 0 {
			envelope.Data = appError.Details
		}
	}

	JSON(writer, appError.HTTPStatus, envelope)
}
