// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the slots in process memory. A restart loses them.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

// Get implements [SlotStore].
func (store *MemoryStore) Get(_ context.Context, names ...string) (map[string]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	values := make(map[string]string, len(names))
	for _, name := range names {
		if value, ok := store.slots[name]; ok {
			values[name] = value
		}
	}
	return values, nil
}

// Set implements [SlotStore].
func (store *MemoryStore) Set(_ context.Context, values map[string]string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for name, value := range values {
		store.slots[name] = value
	}
	return nil
}

// Delete implements [SlotStore].
func (store *MemoryStore) Delete(_ context.Context, names ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, name := range names {
		delete(store.slots, name)
	}
	return nil
}
