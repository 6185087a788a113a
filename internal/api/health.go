// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/respond"
)

// readinessTimeout bounds every dependency check of one /ready call.
const readinessTimeout = 2 * time.Second

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// StoreName labels the slot store check (memory, file, redis, postgres).
	StoreName string

	// CheckStore pings the durable slot store. Nil for backends without a connection.
	CheckStore func(ctx context.Context) error

	// SessionLoading reports whether startup restoration of the session is still running.
	SessionLoading func() bool
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok", "version": constants.AppVersion})
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, 2)
	isSystemReady := true

	// Session restoration
	if handler.dependencies.SessionLoading != nil {
		result := checkResult{Name: "session", IsOK: true}
		if handler.dependencies.SessionLoading() {
			result.IsOK = false
			result.Error = "session restoration in progress"
			isSystemReady = false
		}
		results = append(results, result)
	}

	// Slot store
	if handler.dependencies.CheckStore != nil {
		ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
		defer cancel()

		result := checkResult{Name: handler.dependencies.StoreName, IsOK: true}
		if err := handler.dependencies.CheckStore(ctx); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("readiness_check_failed", slog.String("dependency", result.Name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	payload := map[string]any{"status": "ready", "checks": results}
	if !isSystemReady {
		payload["status"] = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, respond.SuccessEnvelope{Data: payload})
		return
	}

	respond.OK(writer, payload)
}
