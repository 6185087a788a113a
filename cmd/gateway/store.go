// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/autocare/internal/api"
	"github.com/taibuivan/autocare/internal/platform/config"
	"github.com/taibuivan/autocare/internal/platform/migration"
	pgstore "github.com/taibuivan/autocare/internal/platform/postgres"
	redisstore "github.com/taibuivan/autocare/internal/platform/redis"
	"github.com/taibuivan/autocare/internal/session"
)

// slotBackend is an opened slot store with its readiness check and cleanup.
type slotBackend struct {
	slots  session.SlotStore
	health api.HealthDependencies
	close  func()
}

// openStore opens the backend named by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*slotBackend, error) {
	backend := &slotBackend{
		health: api.HealthDependencies{StoreName: cfg.StoreBackend},
		close:  func() {},
	}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		backend.slots = session.NewMemoryStore()

	case config.StoreFile:
		store, err := session.NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		backend.slots = store

	case config.StoreRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		backend.slots = session.NewRedisStore(client)
		backend.health.CheckStore = func(ctx context.Context) error {
			return redisstore.Ping(ctx, client)
		}
		backend.close = func() {
			log.Info("closing redis client")
			if err := client.Close(); err != nil {
				log.Error("redis close error", slog.Any("error", err))
			}
		}

	case config.StorePostgres:
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return nil, err
		}
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		backend.slots = session.NewPostgresStore(pool)
		backend.health.CheckStore = func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		}
		backend.close = func() {
			log.Info("closing postgres pool")
			pool.Close()
		}

	default:
		return nil, fmt.Errorf("gateway: unknown store backend %q", cfg.StoreBackend)
	}

	log.Info("slot_store_opened", slog.String("backend", cfg.StoreBackend))
	return backend, nil
}
