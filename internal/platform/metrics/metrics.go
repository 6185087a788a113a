// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the gateway.

Every recorder method is safe on a nil *Registry, so packages accept an
optional registry and tests can pass nil.

Usage:

	registry := metrics.New()
	router.Handle("/metrics", registry.Handler())
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "autocare"

// Registry owns the gateway collectors.
type Registry struct {
	registry *prometheus.Registry

	sessionRefreshes  *prometheus.CounterVec
	sessionTeardowns  *prometheus.CounterVec
	sessionLogins     *prometheus.CounterVec
	remoteCalls       *prometheus.CounterVec
	remoteLatency     *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	rateLimitRejected prometheus.Counter
}

// New creates a registry with Go runtime and process collectors attached.
func New() *Registry {
	registry := prometheus.NewRegistry()

	metricsRegistry := &Registry{
		registry: registry,
		sessionRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "refreshes_total",
			Help: "Token refresh attempts by result (ok, failed, stale).",
		}, []string{"result"}),
		sessionTeardowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "teardowns_total",
			Help: "Session clears by reason (logout, rejected, initialize).",
		}, []string{"reason"}),
		sessionLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "authentications_total",
			Help: "Login and registration attempts by operation and result.",
		}, []string{"operation", "result"}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "remote", Name: "calls_total",
			Help: "Calls to the remote API by service and outcome kind.",
		}, []string{"service", "kind"}),
		remoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "remote", Name: "call_duration_seconds",
			Help:    "Latency of calls to the remote API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Gateway requests by method and status code.",
		}, []string{"method", "status"}),
		rateLimitRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metricsRegistry.sessionRefreshes,
		metricsRegistry.sessionTeardowns,
		metricsRegistry.sessionLogins,
		metricsRegistry.remoteCalls,
		metricsRegistry.remoteLatency,
		metricsRegistry.httpRequests,
		metricsRegistry.rateLimitRejected,
	)

	return metricsRegistry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// # Recorders

// RefreshObserved counts a refresh attempt.
func (r *Registry) RefreshObserved(result string) {
	if r == nil {
		return
	}
	r.sessionRefreshes.WithLabelValues(result).Inc()
}

// TeardownObserved counts a session clear.
func (r *Registry) TeardownObserved(reason string) {
	if r == nil {
		return
	}
	r.sessionTeardowns.WithLabelValues(reason).Inc()
}

// AuthenticationObserved counts a login or registration attempt.
func (r *Registry) AuthenticationObserved(operation, result string) {
	if r == nil {
		return
	}
	r.sessionLogins.WithLabelValues(operation, result).Inc()
}

// RemoteCallObserved records a completed remote call.
// kind is "ok" or an error taxonomy kind.
func (r *Registry) RemoteCallObserved(service, kind string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.remoteCalls.WithLabelValues(service, kind).Inc()
	r.remoteLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

// HTTPRequestObserved counts a gateway response.
func (r *Registry) HTTPRequestObserved(method string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// RateLimitedObserved counts a rate-limit rejection.
func (r *Registry) RateLimitedObserved() {
	if r == nil {
		return
	}
	r.rateLimitRejected.Inc()
}
