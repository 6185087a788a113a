// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/api"
	"github.com/taibuivan/autocare/internal/authtest"
	"github.com/taibuivan/autocare/internal/platform/config"
	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/logging"
	"github.com/taibuivan/autocare/internal/platform/metrics"
	"github.com/taibuivan/autocare/internal/platform/sec"
	"github.com/taibuivan/autocare/internal/session"
)

type gatewayFixture struct {
	fake    *authtest.Server
	gateway *api.Gateway
	handler http.Handler
}

func newGateway(t *testing.T, health api.HealthDependencies) *gatewayFixture {
	t.Helper()

	fake := authtest.New(t)
	fake.Seed(t, "Asha Rao", "asha@example.com", "secret-42", string(sec.RoleCustomer))

	cfg := &config.Config{
		ServerPort:         "0",
		Environment:        "test",
		APIBaseURL:         fake.APIURL(),
		AuthAPIURL:         fake.AuthURL(),
		AppointmentsAPIURL: fake.AppointmentsURL(),
		RequestTimeout:     constants.RequestTimeout,
		RefreshThreshold:   constants.RefreshThreshold,
		StoreBackend:       config.StoreMemory,
		AllowedOrigins:     "http://localhost:3000",
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logging.Discard()
	registry := metrics.New()
	gateway := api.NewGateway(cfg, session.NewMemoryStore(), health, log, registry)
	gateway.Manager.Initialize(ctx)

	server := api.NewServer(ctx, cfg, log, registry, gateway.Handlers)
	return &gatewayFixture{fake: fake, gateway: gateway, handler: server.Handler()}
}

func (f *gatewayFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	request.RemoteAddr = "192.0.2.10:4000"
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestGateway_CustomerJourney signs in, books, checks out and reads the dashboard through the router.
*/
func TestGateway_CustomerJourney(t *testing.T) {
	f := newGateway(t, api.HealthDependencies{})

	// 1. Gated before login
	recorder := f.do(t, http.MethodGet, "/api/v1/account/dashboard", "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"requires_auth":true`)
	assert.True(t, f.gateway.Manager.AuthPromptRequested())

	// 2. Login
	recorder = f.do(t, http.MethodPost, "/api/v1/session/login", `{"email":"asha@example.com","password":"secret-42"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.False(t, f.gateway.Manager.AuthPromptRequested())

	// 3. Book
	booking := `{"customerName":"Asha","email":"asha@example.com","service":"Oil Change","date":"2026-11-03","time":"09:30","vehicleDetails":{"model":"Swift"}}`
	recorder = f.do(t, http.MethodPost, "/api/v1/appointments", booking)
	require.Equal(t, http.StatusCreated, recorder.Code)

	// 4. Checkout
	cart := `{"items":[{"serviceId":"s1","serviceName":"Wash","price":300,"quantity":2}],"totalAmount":600}`
	recorder = f.do(t, http.MethodPost, "/api/v1/orders", cart)
	require.Equal(t, http.StatusCreated, recorder.Code)

	// 5. Dashboard
	recorder = f.do(t, http.MethodGet, "/api/v1/account/dashboard", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data struct {
			Stats struct {
				TotalBookings int     `json:"totalBookings"`
				TotalOrders   int     `json:"totalOrders"`
				TotalSpent    float64 `json:"totalSpent"`
			} `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Stats.TotalBookings)
	assert.Equal(t, 1, envelope.Data.Stats.TotalOrders)
	assert.Equal(t, 600.0, envelope.Data.Stats.TotalSpent)

	// 6. Dead token ends the session
	f.fake.RejectTokens(true)
	recorder = f.do(t, http.MethodGet, "/api/v1/orders/mine", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.False(t, f.gateway.Manager.IsAuthenticated())
}

/*
TestGateway_Probes verifies liveness, readiness and the metrics endpoint.
*/
func TestGateway_Probes(t *testing.T) {
	tests := []struct {
		name       string
		checkStore func(context.Context) error
		wantStatus int
	}{
		{"store_up", func(context.Context) error { return nil }, http.StatusOK},
		{"store_down", func(context.Context) error { return errors.New("connection refused") }, http.StatusServiceUnavailable},
		{"no_store_check", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateway(t, api.HealthDependencies{StoreName: "redis", CheckStore: tt.checkStore})

			assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "").Code)
			assert.Equal(t, tt.wantStatus, f.do(t, http.MethodGet, "/ready", "").Code)
		})
	}

	f := newGateway(t, api.HealthDependencies{})
	f.do(t, http.MethodGet, "/health", "")

	recorder := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "autocare_http_requests_total")
}
