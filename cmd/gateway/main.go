// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command gateway is the entry point for the AutoCare customer gateway.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables (and .env outside production).
//  2. Initialize structured logger.
//  3. Open the durable slot store (memory, file, redis or postgres).
//  4. Wire the session manager and domain handlers.
//  5. Restore the persisted session in the background.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/autocare/internal/api"
	"github.com/taibuivan/autocare/internal/platform/config"
	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/logging"
	"github.com/taibuivan/autocare/internal/platform/metrics"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("startup failure", slog.String("context", "load configuration"), slog.Any("error", err))
		os.Exit(1)
	}

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log, logCloser, err := logging.New(logging.Options{
		App:   constants.AppName,
		Level: cfg.LogLevel,
		Debug: cfg.Debug,
		File:  cfg.LogFile,
	})
	if err != nil {
		slog.Error("startup failure", slog.String("context", "initialize logger"), slog.Any("error", err))
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreBackend),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	// Root context for background workers (rate limiter sweeper, session restore).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so a misconfigured store is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Slot Store ─────────────────────────────────────────────────────
	store, err := openStore(startupCtx, cfg, log)
	must(log, err, "open slot store")
	defer store.close()

	// ── 4. Wiring ─────────────────────────────────────────────────────────
	registry := metrics.New()
	gateway := api.NewGateway(cfg, store.slots, store.health, log, registry)
	server := api.NewServer(rootCtx, cfg, log, registry, gateway.Handlers)

	// ── 5. Session Restore ────────────────────────────────────────────────
	// Requests are served meanwhile; the session reports itself as loading.
	go func() {
		initializeCtx, cancel := context.WithTimeout(rootCtx, constants.InitializeTimeout)
		defer cancel()
		gateway.Manager.Initialize(initializeCtx)
	}()

	// ── 6. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
