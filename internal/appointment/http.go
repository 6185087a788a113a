// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appointment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/autocare/internal/platform/middleware"
	requestutil "github.com/taibuivan/autocare/internal/platform/request"
	"github.com/taibuivan/autocare/internal/platform/respond"
	"github.com/taibuivan/autocare/internal/platform/sec"
)

// Handler implements the appointment endpoints of the gateway.
type Handler struct {
	service *Service
	gate    middleware.SessionGate
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, gate middleware.SessionGate) *Handler {
	return &Handler{service: service, gate: gate}
}

// Routes returns a [chi.Router] configured with appointment routes.
//
// # Endpoints
//   - POST /chatbot      : Anonymous booking.
//   - POST /             : Book (session).
//   - GET  /mine         : The customer's appointments (session).
//   - GET  /{id}         : One appointment (session).
//   - PUT  /{id}         : Edit (session).
//   - PUT  /{id}/cancel  : Cancel (session).
//   - POST /{id}/rate    : Rate (session).
//   - GET  /             : Every appointment (admin).
//   - GET  /stats        : Counts by status (admin).
//   - PUT  /{id}/status  : Change status (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/chatbot", handler.bookViaChatbot)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(handler.gate))

		r.Post("/", handler.book)
		r.Get("/mine", handler.listMine)
		r.Get("/{id}", handler.get)
		r.Put("/{id}", handler.update)
		r.Put("/{id}/cancel", handler.cancel)
		r.Post("/{id}/rate", handler.rate)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(handler.gate, sec.RoleAdmin))

		r.Get("/", handler.listAll)
		r.Get("/stats", handler.stats)
		r.Put("/{id}/status", handler.updateStatus)
	})

	return router
}

func (handler *Handler) book(writer http.ResponseWriter, request *http.Request) {
	var input Appointment
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Book(request.Context(), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

func (handler *Handler) bookViaChatbot(writer http.ResponseWriter, request *http.Request) {
	var input Appointment
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.BookViaChatbot(request.Context(), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	appointments, err := handler.service.ListMine(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, appointments)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	appointment, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, appointment)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input Appointment
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.Update(request.Context(), requestutil.Param(request, "id"), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) cancel(writer http.ResponseWriter, request *http.Request) {
	cancelled, err := handler.service.Cancel(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, cancelled)
}

func (handler *Handler) rate(writer http.ResponseWriter, request *http.Request) {
	var input rateBody
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	rated, err := handler.service.Rate(request.Context(), requestutil.Param(request, "id"), input.Rating, input.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, rated)
}

func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	appointments, err := handler.service.ListAll(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, appointments)
}

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	var input statusBody
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateStatus(request.Context(), requestutil.Param(request, "id"), input.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}
