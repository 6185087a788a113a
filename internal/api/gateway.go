// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"log/slog"
	"strings"

	"github.com/taibuivan/autocare/internal/account"
	"github.com/taibuivan/autocare/internal/apiclient"
	"github.com/taibuivan/autocare/internal/appointment"
	"github.com/taibuivan/autocare/internal/order"
	"github.com/taibuivan/autocare/internal/platform/config"
	"github.com/taibuivan/autocare/internal/platform/metrics"
	"github.com/taibuivan/autocare/internal/rating"
	"github.com/taibuivan/autocare/internal/session"
)

// Gateway is the wired session and domain layer behind the router.
type Gateway struct {
	Manager  *session.Manager
	Handlers Handlers
}

/*
NewGateway builds the session manager over store and every domain service on
top of it.

Description: Two kinds of API client are created per remote root. Anonymous
clients serve login, registration, the chatbot and password reset. Session
clients route through the session transport, which attaches and refreshes the
bearer token and tears the session down when the server rejects it.

Parameters:
  - cfg: *config.Config
  - store: session.SlotStore
  - health: HealthDependencies (SessionLoading is filled in here)
  - log: *slog.Logger
  - registry: *metrics.Registry (may be nil)

Returns:
  - *Gateway
*/
func NewGateway(cfg *config.Config, store session.SlotStore, health HealthDependencies, log *slog.Logger, registry *metrics.Registry) *Gateway {
	base := strings.TrimRight(cfg.APIBaseURL, "/")

	anonymous := func(name, root string) *apiclient.Client {
		return apiclient.New(root,
			apiclient.WithName(name),
			apiclient.WithTimeout(cfg.RequestTimeout),
			apiclient.WithMetrics(registry),
		)
	}

	// ── 1. Session Manager ───────────────────────────────────────────────
	manager := session.NewManager(store, session.NewAuthAPI(anonymous("auth", cfg.AuthAPIURL)),
		session.WithLogger(log),
		session.WithMetrics(registry),
		session.WithRefreshThreshold(cfg.RefreshThreshold),
		session.WithRequestTimeout(cfg.RequestTimeout),
	)

	transport := session.NewTransport(manager, nil)
	bound := func(name, root string) *apiclient.Client {
		return apiclient.New(root,
			apiclient.WithName(name),
			apiclient.WithTimeout(cfg.RequestTimeout),
			apiclient.WithMetrics(registry),
			apiclient.WithTransport(transport),
		)
	}

	// ── 2. Domain Services ───────────────────────────────────────────────
	appointmentRepository := appointment.NewRemoteRepository(
		bound("appointments", cfg.AppointmentsAPIURL),
		anonymous("appointments", cfg.AppointmentsAPIURL),
	)
	orderRepository := order.NewRemoteRepository(bound("orders", base+"/orders"))
	ratingRepository := rating.NewRemoteRepository(bound("ratings", base+"/ratings"))
	accountRepository := account.NewRemoteRepository(bound("account", cfg.AuthAPIURL), anonymous("account", cfg.AuthAPIURL))

	appointmentService := appointment.NewService(appointmentRepository, manager, log)
	orderService := order.NewService(orderRepository, manager, log)
	ratingService := rating.NewService(ratingRepository, manager, log)
	accountService := account.NewService(manager, accountRepository, appointmentRepository, orderRepository, log)

	// ── 3. Handlers ──────────────────────────────────────────────────────
	health.SessionLoading = manager.Loading
	liveness, readiness := NewHealthHandlers(health, log)

	return &Gateway{
		Manager: manager,
		Handlers: Handlers{
			Liveness:     liveness,
			Readiness:    readiness,
			Session:      session.NewHandler(manager),
			Appointments: appointment.NewHandler(appointmentService, manager),
			Ratings:      rating.NewHandler(ratingService, manager),
			Orders:       order.NewHandler(orderService, manager),
			Account:      account.NewHandler(accountService, manager),
		},
	}
}
