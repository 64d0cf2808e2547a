// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package medication

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/healthlog/internal/platform/middleware"
	requestutil "github.com/taibuivan/healthlog/internal/platform/request"
	"github.com/taibuivan/healthlog/internal/platform/respond"
	"github.com/taibuivan/healthlog/internal/platform/validate"
	"github.com/taibuivan/healthlog/pkg/pagination"
)

const paramID = "id"

// Handler implements the /medications endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a medication [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the /medications router. Every route requires authentication.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

/*
GET /api/v1/medications.

Request:
  - Query: page, limit, is_active

Response:
  - 200: pagination.Page[*Medication]
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	isActive, err := requestutil.QueryBool(request, FieldIsActive)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.List(request.Context(), userID, isActive, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", page)
}

/*
POST /api/v1/medications.

Request:
  - Body: CreateInput

Response:
  - 201: Medication
  - 400: Invalid fields
  - 409: Duplicate name
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	medication, err := handler.service.Create(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, MsgCreated, medication)
}

// get handles GET /api/v1/medications/{id}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	medication, err := handler.service.Get(request.Context(), userID, requestutil.ID(request, paramID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", medication)
}

/*
PATCH /api/v1/medications/{id}.

Request:
  - Body: UpdateInput

Response:
  - 200: Medication
  - 400: Empty patch or invalid fields
  - 404: Unknown or foreign medication
  - 409: Duplicate name
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	medication, err := handler.service.Update(request.Context(), userID, requestutil.ID(request, paramID), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgUpdated, medication)
}

// delete handles DELETE /api/v1/medications/{id}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), userID, requestutil.ID(request, paramID)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgDeleted, nil)
}
