// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/platform/metrics"
)

/*
TestRegistry_NilSafe ensures recorders are no-ops on a nil registry.
*/
func TestRegistry_NilSafe(t *testing.T) {
	var registry *metrics.Registry

	assert.NotPanics(t, func() {
		registry.RefreshObserved("ok")
		registry.TeardownObserved("logout")
		registry.AuthenticationObserved("login", "ok")
		registry.RemoteCallObserved("auth", "ok", time.Millisecond)
		registry.HTTPRequestObserved(http.MethodGet, 200)
		registry.RateLimitedObserved()
	})
}

/*
TestRegistry_Handler verifies recorded series appear on the exposition endpoint.
*/
func TestRegistry_Handler(t *testing.T) {
	registry := metrics.New()
	registry.RefreshObserved("ok")
	registry.RefreshObserved("ok")
	registry.TeardownObserved("rejected")

	count, err := testutil.GatherAndCount(registry.Gatherer(), "autocare_session_refreshes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	recorder := httptest.NewRecorder()
	registry.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(recorder.Body)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, string(body), `autocare_session_refreshes_total{result="ok"} 2`)
	assert.Contains(t, string(body), `autocare_session_teardowns_total{reason="rejected"} 1`)
}
