// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/autocare/internal/platform/constants"
)

// RedisStore keeps the slots as plain Redis strings under a shared prefix.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore] using the default key prefix.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: constants.RedisPrefixSlot}
}

func (store *RedisStore) key(name string) string {
	return store.prefix + name
}

/*
Get implements [SlotStore] with a single MGET.

Parameters:
  - ctx: context.Context
  - names: ...string

Returns:
  - map[string]string: Present slots
  - error: Connectivity errors
*/
func (store *RedisStore) Get(ctx context.Context, names ...string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	keys := make([]string, len(names))
	for index, name := range names {
		keys[index] = store.key(name)
	}

	results, err := store.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis_slot_get_failed: %w", err)
	}

	values := make(map[string]string, len(names))
	for index, result := range results {
		if value, ok := result.(string); ok {
			values[names[index]] = value
		}
	}
	return values, nil
}

/*
Set implements [SlotStore]. The writes run inside MULTI/EXEC.

Parameters:
  - ctx: context.Context
  - values: map[string]string

Returns:
  - error: Execution errors
*/
func (store *RedisStore) Set(ctx context.Context, values map[string]string) error {
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, value := range values {
			pipe.Set(ctx, store.key(name), value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_slot_set_failed: %w", err)
	}
	return nil
}

/*
Delete implements [SlotStore] with one multi-key DEL.

Parameters:
  - ctx: context.Context
  - names: ...string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, len(names))
	for index, name := range names {
		keys[index] = store.key(name)
	}

	if err := store.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis_slot_delete_failed: %w", err)
	}
	return nil
}
