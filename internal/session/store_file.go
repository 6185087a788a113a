// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the slots in one JSON document on local disk.
//
// Every write replaces the whole document through a temp file and a rename,
// so a crash leaves either the old or the new pair of slots.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a [FileStore] at path, creating its directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("file_store_mkdir_failed: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Get implements [SlotStore].
func (store *FileStore) Get(_ context.Context, names ...string) (map[string]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	slots, err := store.read()
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(names))
	for _, name := range names {
		if value, ok := slots[name]; ok {
			values[name] = value
		}
	}
	return values, nil
}

// Set implements [SlotStore].
func (store *FileStore) Set(_ context.Context, values map[string]string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	slots, err := store.read()
	if err != nil {
		return err
	}
	for name, value := range values {
		slots[name] = value
	}
	return store.write(slots)
}

// Delete implements [SlotStore].
func (store *FileStore) Delete(_ context.Context, names ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	slots, err := store.read()
	if err != nil {
		return err
	}
	for _, name := range names {
		delete(slots, name)
	}
	return store.write(slots)
}

// read loads the document. A missing file is an empty store.
func (store *FileStore) read() (map[string]string, error) {
	slots := make(map[string]string)

	content, err := os.ReadFile(store.path)
	if errors.Is(err, os.ErrNotExist) {
		return slots, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file_store_read_failed: %w", err)
	}
	if len(content) == 0 {
		return slots, nil
	}

	if err := json.Unmarshal(content, &slots); err != nil {
		return nil, fmt.Errorf("file_store_decode_failed: %w", err)
	}
	return slots, nil
}

func (store *FileStore) write(slots map[string]string) error {
	content, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("file_store_encode_failed: %w", err)
	}

	temp, err := os.CreateTemp(filepath.Dir(store.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("file_store_temp_failed: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(content); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("file_store_write_failed: %w", err)
	}
	if err := temp.Sync(); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("file_store_sync_failed: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("file_store_close_failed: %w", err)
	}

	if err := os.Rename(tempPath, store.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("file_store_rename_failed: %w", err)
	}
	return nil
}
