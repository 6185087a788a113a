// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/autocare/internal/platform/middleware"
	requestutil "github.com/taibuivan/autocare/internal/platform/request"
	"github.com/taibuivan/autocare/internal/platform/respond"
)

// Handler implements the account endpoints of the gateway.
type Handler struct {
	service *Service
	gate    middleware.SessionGate
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, gate middleware.SessionGate) *Handler {
	return &Handler{service: service, gate: gate}
}

// Routes returns a [chi.Router] configured with account routes.
//
// # Endpoints
//   - GET  /profile                : Cached profile (session).
//   - PUT  /profile                : Partial profile edit (session).
//   - GET  /dashboard              : Bookings, orders and counters (session).
//   - POST /password-reset         : Email a reset link.
//   - POST /password-reset/confirm : Set a new password and sign in.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/password-reset", handler.requestReset)
	router.Post("/password-reset/confirm", handler.confirmReset)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(handler.gate))

		r.Get("/profile", handler.profile)
		r.Put("/profile", handler.updateProfile)
		r.Get("/dashboard", handler.dashboard)
	})

	return router
}

func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.Profile(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	var input ProfileUpdate
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateProfile(request.Context(), &input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	dashboard, err := handler.service.Dashboard(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, dashboard)
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmation struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (handler *Handler) requestReset(writer http.ResponseWriter, request *http.Request) {
	var input resetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.service.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, message)
}

func (handler *Handler) confirmReset(writer http.ResponseWriter, request *http.Request) {
	var input resetConfirmation
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.ResetPassword(request.Context(), input.Token, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}
