// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/apiclient"
	"github.com/taibuivan/autocare/internal/authtest"
	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/logging"
	"github.com/taibuivan/autocare/internal/platform/sec"
	"github.com/taibuivan/autocare/internal/session"
)

const (
	testEmail    = "asha@example.com"
	testPassword = "secret-42"
)

// harness wires a Manager to the fake API the way cmd/gateway does.
type harness struct {
	fake    *authtest.Server
	store   *session.MemoryStore
	manager *session.Manager
	api     *apiclient.Client
	account authtest.Account
}

func newHarness(t *testing.T, options ...session.Option) *harness {
	t.Helper()

	fake := authtest.New(t)
	account := fake.Seed(t, "Asha Rao", testEmail, testPassword, string(sec.RoleCustomer))

	store := session.NewMemoryStore()
	auth := session.NewAuthAPI(apiclient.New(fake.AuthURL(), apiclient.WithName("auth")))
	options = append([]session.Option{session.WithLogger(logging.Discard())}, options...)
	manager := session.NewManager(store, auth, options...)

	api := apiclient.New(fake.APIURL(), apiclient.WithTransport(session.NewTransport(manager, nil)))

	return &harness{fake: fake, store: store, manager: manager, api: api, account: account}
}

// login signs the seeded account in and fails the test otherwise.
func (h *harness) login(t *testing.T) string {
	t.Helper()
	_, err := h.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return h.storedToken(t)
}

func (h *harness) storedToken(t *testing.T) string {
	t.Helper()
	slots, err := h.store.Get(context.Background(), constants.SlotToken)
	require.NoError(t, err)
	return slots[constants.SlotToken]
}

func (h *harness) storedUser(t *testing.T) *session.User {
	t.Helper()
	slots, err := h.store.Get(context.Background(), constants.SlotUser)
	require.NoError(t, err)
	if slots[constants.SlotUser] == "" {
		return nil
	}
	var user session.User
	require.NoError(t, json.Unmarshal([]byte(slots[constants.SlotUser]), &user))
	return &user
}

// seedSlots writes a persisted session as a previous run would have left it.
func seedSlots(t *testing.T, store session.SlotStore, token string, user *session.User) {
	t.Helper()
	encoded, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), map[string]string{
		constants.SlotToken: token,
		constants.SlotUser:  string(encoded),
	}))
}

// mintToken signs a token that expires after ttl.
func mintToken(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	tokens, err := sec.NewTokenService([]byte("session-test-secret-0123456789"), "session-test")
	require.NoError(t, err)
	token, err := tokens.GenerateAccessToken(userID, "user@example.com", string(sec.RoleCustomer), ttl)
	require.NoError(t, err)
	return token
}

// # Stub Remote

// stubRemote is a scriptable RemoteAuth for ordering tests.
type stubRemote struct {
	mu           sync.Mutex
	login        func(ctx context.Context, email, password string) (*session.AuthResult, error)
	validate     func(ctx context.Context, token string) (*session.User, error)
	refresh      func(ctx context.Context, token string) (string, error)
	refreshCalls int
}

func (stub *stubRemote) Login(ctx context.Context, email, password string) (*session.AuthResult, error) {
	if stub.login == nil {
		return nil, errors.New("stub: login not scripted")
	}
	return stub.login(ctx, email, password)
}

func (stub *stubRemote) Register(ctx context.Context, name, email, password string) (*session.AuthResult, error) {
	return stub.Login(ctx, email, password)
}

func (stub *stubRemote) Validate(ctx context.Context, token string) (*session.User, error) {
	if stub.validate == nil {
		return &session.User{ID: "u-1", Name: "Stub", Email: "stub@example.com"}, nil
	}
	return stub.validate(ctx, token)
}

func (stub *stubRemote) Refresh(ctx context.Context, token string) (string, error) {
	stub.mu.Lock()
	stub.refreshCalls++
	stub.mu.Unlock()
	if stub.refresh == nil {
		return "", errors.New("stub: refresh not scripted")
	}
	return stub.refresh(ctx, token)
}

func (stub *stubRemote) RefreshCalls() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.refreshCalls
}

// failingStore wraps a MemoryStore and fails writes on demand.
type failingStore struct {
	*session.MemoryStore
	mu      sync.Mutex
	failSet bool
}

func (store *failingStore) FailWrites(fail bool) {
	store.mu.Lock()
	store.failSet = fail
	store.mu.Unlock()
}

func (store *failingStore) Set(ctx context.Context, values map[string]string) error {
	store.mu.Lock()
	fail := store.failSet
	store.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return store.MemoryStore.Set(ctx, values)
}

// eventLog records every event a Manager emits.
type eventLog struct {
	mu    sync.Mutex
	kinds []session.EventKind
}

func (log *eventLog) listen(event session.Event) {
	log.mu.Lock()
	log.kinds = append(log.kinds, event.Kind)
	log.mu.Unlock()
}

func (log *eventLog) Kinds() []session.EventKind {
	log.mu.Lock()
	defer log.mu.Unlock()
	return append([]session.EventKind(nil), log.kinds...)
}

func readCloser(body string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(body))
}
