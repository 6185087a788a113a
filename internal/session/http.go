// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/autocare/internal/platform/request"
	"github.com/taibuivan/autocare/internal/platform/respond"
)

// Handler exposes the [Manager] to the browser UI.
type Handler struct {
	manager *Manager
}

// NewHandler constructs a new [Handler] over manager.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes returns a [chi.Router] configured with session routes.
//
// # Endpoints
//   - GET    /            : Current snapshot.
//   - POST   /login       : Signs in with email and password.
//   - POST   /register    : Creates an account and signs it in.
//   - DELETE /            : Local logout.
//   - POST   /auth-prompt : Raises the force-show-authentication flag.
//   - DELETE /auth-prompt : Lowers it.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.snapshot)
	router.Delete("/", handler.logout)
	router.Post("/login", handler.login)
	router.Post("/register", handler.register)
	router.Post("/auth-prompt", handler.raisePrompt)
	router.Delete("/auth-prompt", handler.dismissPrompt)

	return router
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *Handler) snapshot(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.manager.Snapshot())
}

// login handles POST /api/v1/session/login.
//
// # Returns
//   - HTTP 200 with the snapshot on success.
//   - HTTP 400 for invalid input, 401 for rejected credentials, 502 when offline.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	if _, err := handler.manager.Login(request.Context(), input.Email, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.manager.Snapshot())
}

// register handles POST /api/v1/session/register.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.manager.Register(request.Context(), input.Name, input.Email, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, handler.manager.Snapshot())
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.manager.Logout(request.Context())
	respond.Message(writer, "Logged out.")
}

func (handler *Handler) raisePrompt(writer http.ResponseWriter, request *http.Request) {
	handler.manager.RequestAuthPrompt()
	respond.NoContent(writer)
}

func (handler *Handler) dismissPrompt(writer http.ResponseWriter, request *http.Request) {
	handler.manager.DismissAuthPrompt()
	respond.NoContent(writer)
}
