// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/logging"
	"github.com/taibuivan/autocare/internal/platform/migration"
	"github.com/taibuivan/autocare/internal/platform/postgres"
	"github.com/taibuivan/autocare/internal/platform/redis"
	"github.com/taibuivan/autocare/internal/session"
)

// exerciseStore runs the slot contract every backend must honour.
func exerciseStore(t *testing.T, store session.SlotStore) {
	ctx := context.Background()

	// 1. Absent slots are omitted
	slots, err := store.Get(ctx, constants.SlotToken, constants.SlotUser)
	require.NoError(t, err)
	assert.Empty(t, slots)

	// 2. Both slots are written together
	require.NoError(t, store.Set(ctx, map[string]string{
		constants.SlotToken: "token-1",
		constants.SlotUser:  `{"name":"Asha"}`,
	}))
	slots, err = store.Get(ctx, constants.SlotToken, constants.SlotUser)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{constants.SlotToken: "token-1", constants.SlotUser: `{"name":"Asha"}`}, slots)

	// 3. Overwrite replaces the value
	require.NoError(t, store.Set(ctx, map[string]string{constants.SlotToken: "token-2"}))
	slots, err = store.Get(ctx, constants.SlotToken)
	require.NoError(t, err)
	assert.Equal(t, "token-2", slots[constants.SlotToken])

	// 4. Delete is idempotent
	require.NoError(t, store.Delete(ctx, constants.SlotToken, constants.SlotUser))
	require.NoError(t, store.Delete(ctx, constants.SlotToken, constants.SlotUser))
	slots, err = store.Get(ctx, constants.SlotToken, constants.SlotUser)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

/*
TestMemoryStore verifies the in-process backend.
*/
func TestMemoryStore(t *testing.T) {
	exerciseStore(t, session.NewMemoryStore())
}

/*
TestFileStore verifies the file backend, including survival across instances.
*/
func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store, err := session.NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), map[string]string{constants.SlotToken: "persisted"}))

	reopened, err := session.NewFileStore(path)
	require.NoError(t, err)
	slots, err := reopened.Get(context.Background(), constants.SlotToken)
	require.NoError(t, err)
	assert.Equal(t, "persisted", slots[constants.SlotToken])
}

/*
TestFileStore_Corrupt ensures an unreadable file surfaces an error instead of
an empty session.
*/
func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	store, err := session.NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), constants.SlotToken)
	assert.Error(t, err)
}

/*
TestRedisStore runs the contract against a live Redis when REDIS_TEST_URL is set.
*/
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	client, err := redis.NewClient(context.Background(), url, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, session.NewRedisStore(client))
}

/*
TestPostgresStore runs the contract against a live database when
DATABASE_TEST_URL is set. Migrations are applied first.
*/
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_TEST_URL")
	if dsn == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}

	require.NoError(t, migration.RunUp(dsn, "../../data/migrations", logging.Discard()))

	pool, err := postgres.NewPool(context.Background(), dsn, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	exerciseStore(t, session.NewPostgresStore(pool))
}
