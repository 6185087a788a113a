// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/autocare/internal/platform/middleware"
	requestutil "github.com/taibuivan/autocare/internal/platform/request"
	"github.com/taibuivan/autocare/internal/platform/respond"
)

// Handler implements the rating endpoints of the gateway.
type Handler struct {
	service *Service
	gate    middleware.SessionGate
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, gate middleware.SessionGate) *Handler {
	return &Handler{service: service, gate: gate}
}

// Routes returns a [chi.Router] configured with rating routes.
//
// # Endpoints
//   - GET  / : Public list.
//   - POST / : Submit (session).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.With(middleware.RequireSession(handler.gate)).Post("/", handler.submit)

	return router
}

type submitRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	var input submitRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stored, err := handler.service.Submit(request.Context(), input.Rating, input.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, stored)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	ratings, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, ratings)
}
