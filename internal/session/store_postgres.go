// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/autocare/internal/platform/dberr"
)

// PostgresStore keeps the slots in the session_slot table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a [PostgresStore] on an open pool. The schema comes
// from data/migrations.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Get implements [SlotStore].

Parameters:
  - ctx: context.Context
  - names: ...string

Returns:
  - map[string]string: Present slots
  - error: Database retrieval failures
*/
func (store *PostgresStore) Get(ctx context.Context, names ...string) (map[string]string, error) {
	const query = `SELECT name, value FROM session_slot WHERE name = ANY($1)`

	rows, err := store.pool.Query(ctx, query, names)
	if err != nil {
		return nil, dberr.Wrap(err, "slot_get")
	}

	values := make(map[string]string, len(names))
	var name, value string
	_, err = pgx.ForEachRow(rows, []any{&name, &value}, func() error {
		values[name] = value
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "slot_scan")
	}

	return values, nil
}

/*
Set implements [SlotStore]. All upserts commit in one transaction.

Parameters:
  - ctx: context.Context
  - values: map[string]string

Returns:
  - error: Persistence failures (the transaction is rolled back)
*/
func (store *PostgresStore) Set(ctx context.Context, values map[string]string) error {
	const query = `
		INSERT INTO session_slot (name, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	err := pgx.BeginFunc(ctx, store.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for name, value := range values {
			batch.Queue(query, name, value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("postgres_slot_set_failed: %w", dberr.Wrap(err, "slot_set"))
	}
	return nil
}

/*
Delete implements [SlotStore] with a single statement.

Parameters:
  - ctx: context.Context
  - names: ...string

Returns:
  - error: Persistence failures
*/
func (store *PostgresStore) Delete(ctx context.Context, names ...string) error {
	const query = `DELETE FROM session_slot WHERE name = ANY($1)`

	if _, err := store.pool.Exec(ctx, query, names); err != nil {
		return fmt.Errorf("postgres_slot_delete_failed: %w", dberr.Wrap(err, "slot_delete"))
	}
	return nil
}
