// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authtest runs an in-process fake of the remote business API.

It serves the auth contract (login, register, validate, refresh-token, me,
password reset) plus the appointment, rating and order endpoints the gateway
consumes. Tokens are real HS256 JWTs minted by [sec.TokenService] and
passwords are bcrypt hashes, so clients exercise the same codecs they meet
in production.

Knobs let a test force the exact server behaviours the session must react
to: a dead credential ("Invalid or expired token"), a failing refresh, a
slow refresh, and a full outage.
*/
package authtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/sec"
)

// Messages sent by the fake, matching the real API.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgEmailTaken         = "User already exists"
	MsgNoToken            = "No token, authorization denied"
	MsgAdminOnly          = "Admin access required"
)

// DefaultTokenTTL is the lifetime of tokens issued by login, register and refresh.
const DefaultTokenTTL = time.Hour

// Account is a seeded user of the fake.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     string `json:"role"`
	password string
}

// Server is the running fake.
type Server struct {
	*httptest.Server

	tokens *sec.TokenService

	mu           sync.Mutex
	accounts     map[string]*Account // by email
	revoked      map[string]bool
	resetTokens  map[string]string // reset token -> email
	appointments []map[string]any
	orders       []map[string]any
	ratings      []map[string]any

	tokenTTL     time.Duration
	rejectAll    bool
	refreshFail  int
	refreshDelay time.Duration
	outage       bool

	refreshCalls  atomic.Int64
	validateCalls atomic.Int64
	loginCalls    atomic.Int64
}

// New starts a fake and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()

	tokens, err := sec.NewTokenService([]byte("authtest-signing-secret-0123456789"), "authtest")
	if err != nil {
		t.Fatalf("authtest: token service: %v", err)
	}

	server := &Server{
		tokens:      tokens,
		accounts:    make(map[string]*Account),
		revoked:     make(map[string]bool),
		resetTokens: make(map[string]string),
		tokenTTL:    DefaultTokenTTL,
	}
	server.Server = httptest.NewServer(server.routes())
	t.Cleanup(server.Close)

	return server
}

// # URLs

// APIURL is the root of the business API (API_BASE_URL).
func (server *Server) APIURL() string { return server.URL + "/api" }

// AuthURL is the root of the auth endpoints (AUTH_API_URL).
func (server *Server) AuthURL() string { return server.APIURL() + "/auth" }

// AppointmentsURL is the root of the appointment endpoints (APPOINTMENTS_API_URL).
func (server *Server) AppointmentsURL() string { return server.APIURL() + "/appointments" }

// # Seeding

// Seed creates an account and returns it.
func (server *Server) Seed(t testing.TB, name, email, password, role string) Account {
	t.Helper()

	hash, err := sec.HashPassword(password)
	if err != nil {
		t.Fatalf("authtest: hash: %v", err)
	}

	account := &Account{ID: uuid.NewString(), Name: name, Email: strings.ToLower(email), Role: role, password: hash}

	server.mu.Lock()
	server.accounts[account.Email] = account
	server.mu.Unlock()

	return *account
}

// IssueToken mints a token for a seeded account with an explicit lifetime.
func (server *Server) IssueToken(t testing.TB, email string, ttl time.Duration) string {
	t.Helper()

	server.mu.Lock()
	account, ok := server.accounts[strings.ToLower(email)]
	server.mu.Unlock()
	if !ok {
		t.Fatalf("authtest: unknown account %q", email)
	}

	token, err := server.tokens.GenerateAccessToken(account.ID, account.Email, account.Role, ttl)
	if err != nil {
		t.Fatalf("authtest: issue token: %v", err)
	}
	return token
}

// ResetToken issues a password reset token for email, as the emailed link would carry.
func (server *Server) ResetToken(email string) string {
	token := uuid.NewString()
	server.mu.Lock()
	server.resetTokens[token] = strings.ToLower(email)
	server.mu.Unlock()
	return token
}

// # Knobs

// SetTokenTTL changes the lifetime of tokens issued from now on.
func (server *Server) SetTokenTTL(ttl time.Duration) {
	server.mu.Lock()
	server.tokenTTL = ttl
	server.mu.Unlock()
}

// RejectTokens makes every credentialed endpoint answer 401 "Invalid or expired token".
func (server *Server) RejectTokens(reject bool) {
	server.mu.Lock()
	server.rejectAll = reject
	server.mu.Unlock()
}

// Revoke makes one token dead.
func (server *Server) Revoke(token string) {
	server.mu.Lock()
	server.revoked[sec.StripBearer(token)] = true
	server.mu.Unlock()
}

// FailRefresh makes the refresh endpoint answer status (0 restores it).
func (server *Server) FailRefresh(status int) {
	server.mu.Lock()
	server.refreshFail = status
	server.mu.Unlock()
}

// SetRefreshDelay holds every refresh call for delay before answering.
func (server *Server) SetRefreshDelay(delay time.Duration) {
	server.mu.Lock()
	server.refreshDelay = delay
	server.mu.Unlock()
}

// SetOutage makes every endpoint answer 500 without a message.
func (server *Server) SetOutage(outage bool) {
	server.mu.Lock()
	server.outage = outage
	server.mu.Unlock()
}

// RefreshCalls counts refresh-token requests received.
func (server *Server) RefreshCalls() int { return int(server.refreshCalls.Load()) }

// ValidateCalls counts validate requests received.
func (server *Server) ValidateCalls() int { return int(server.validateCalls.Load()) }

// LoginCalls counts login requests received.
func (server *Server) LoginCalls() int { return int(server.loginCalls.Load()) }

// Appointments returns a copy of every stored appointment.
func (server *Server) Appointments() []map[string]any {
	server.mu.Lock()
	defer server.mu.Unlock()
	return cloneRecords(server.appointments)
}

// Orders returns a copy of every stored order.
func (server *Server) Orders() []map[string]any {
	server.mu.Lock()
	defer server.mu.Unlock()
	return cloneRecords(server.orders)
}

// # Routing

func (server *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(server.outageGate)

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", server.login)
		r.Post("/register", server.register)
		r.Post("/request-password-reset", server.requestPasswordReset)
		r.Post("/reset-password", server.resetPassword)
		r.With(server.authenticate).Get("/validate", server.validate)
		r.With(server.authenticate).Post(constants.RefreshPath, server.refresh)
		r.With(server.authenticate).Get("/me", server.me)
		r.With(server.authenticate).Put("/me", server.updateMe)
	})

	router.Route("/api/appointments", func(r chi.Router) {
		r.Post("/chatbot", server.bookAnonymous)

		r.Group(func(r chi.Router) {
			r.Use(server.authenticate)
			r.Post("/", server.bookAppointment)
			r.Get("/user", server.listMyAppointments)
			r.With(server.adminOnly).Get("/", server.listAllAppointments)
			r.With(server.adminOnly).Get("/stats", server.appointmentStats)
			r.Get("/{id}", server.getAppointment)
			r.Put("/{id}", server.updateAppointment)
			r.Put("/{id}/cancel", server.cancelAppointment)
			r.Post("/{id}/rate", server.rateAppointment)
			r.With(server.adminOnly).Put("/{id}/status", server.updateAppointmentStatus)
		})
	})

	router.Route("/api/ratings", func(r chi.Router) {
		r.Get("/", server.listRatings)
		r.With(server.authenticate).Post("/", server.submitRating)
	})

	router.Route("/api/orders", func(r chi.Router) {
		r.Use(server.authenticate)
		r.Post("/", server.checkout)
		r.Get("/user", server.listMyOrders)
	})

	return router
}

// # Helpers

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func writeMessage(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]string{"message": message})
}

func cloneRecords(records []map[string]any) []map[string]any {
	clones := make([]map[string]any, 0, len(records))
	for _, record := range records {
		clone := make(map[string]any, len(record))
		for key, value := range record {
			clone[key] = value
		}
		clones = append(clones, clone)
	}
	return clones
}

func (server *Server) outageGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		server.mu.Lock()
		outage := server.outage
		server.mu.Unlock()

		if outage {
			writeJSON(writer, http.StatusInternalServerError, map[string]any{})
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (server *Server) issue(account *Account) (string, error) {
	server.mu.Lock()
	ttl := server.tokenTTL
	server.mu.Unlock()
	return server.tokens.GenerateAccessToken(account.ID, account.Email, account.Role, ttl)
}
