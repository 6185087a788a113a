// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/autocare/internal/platform/middleware"
	requestutil "github.com/taibuivan/autocare/internal/platform/request"
	"github.com/taibuivan/autocare/internal/platform/respond"
)

// Handler implements the order endpoints of the gateway.
type Handler struct {
	service *Service
	gate    middleware.SessionGate
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, gate middleware.SessionGate) *Handler {
	return &Handler{service: service, gate: gate}
}

// Routes returns a [chi.Router] configured with order routes. Every route needs a session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireSession(handler.gate))

	router.Post("/", handler.checkout)
	router.Get("/mine", handler.listMine)

	return router
}

func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	var cart Order
	if err := requestutil.DecodeJSON(request, &cart); err != nil {
		respond.Error(writer, request, err)
		return
	}

	placed, err := handler.service.Checkout(request.Context(), &cart)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, placed)
}

func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	orders, err := handler.service.ListMine(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, orders)
}
