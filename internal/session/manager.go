// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/metrics"
	"github.com/taibuivan/autocare/internal/platform/sec"
	"github.com/taibuivan/autocare/internal/platform/validate"
)

// Fallback messages for failures the server did not explain.
const (
	msgLoginFailed    = "Login failed. Please try again."
	msgRegisterFailed = "Registration failed. Please try again."
)

// errSuperseded is returned when a logout or a newer sign-in committed while
// the operation was in flight. Its result is discarded.
func errSuperseded() *apperr.AppError {
	return &apperr.AppError{
		Kind:       apperr.KindUnknown,
		Code:       "SESSION_SUPERSEDED",
		Message:    "The session changed while this request was in progress. Please try again.",
		HTTPStatus: http.StatusConflict,
	}
}

// # Definitions & Constructors

// Manager owns the session record and its durable slots.
//
// # Ordering
//
// Every sign-in, logout and teardown advances an epoch. A login, registration
// or refresh that started under an older epoch is stale and its result is
// dropped. A refresh additionally commits only if the session still holds the
// token it refreshed.
type Manager struct {
	store   SlotStore
	remote  RemoteAuth
	logger  *slog.Logger
	metrics *metrics.Registry
	now     func() time.Time

	refreshThreshold time.Duration
	requestTimeout   time.Duration

	refreshGroup singleflight.Group

	// commitMu serialises transitions together with their slot writes.
	commitMu sync.Mutex

	mu           sync.RWMutex
	token        string
	user         *User
	epoch        uint64
	pending      int
	loading      bool
	lastError    string
	authPrompt   bool
	expired      bool
	listeners    map[uint64]Listener
	nextListener uint64
}

// Option configures a [Manager].
type Option func(*Manager)

// WithLogger sets the logger used for session events.
func WithLogger(logger *slog.Logger) Option {
	return func(manager *Manager) { manager.logger = logger }
}

// WithMetrics records refreshes, teardowns and sign-ins on registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(manager *Manager) { manager.metrics = registry }
}

// WithClock overrides the time source of the expiry check.
func WithClock(now func() time.Time) Option {
	return func(manager *Manager) { manager.now = now }
}

// WithRefreshThreshold overrides the remaining lifetime below which a token is refreshed.
func WithRefreshThreshold(threshold time.Duration) Option {
	return func(manager *Manager) { manager.refreshThreshold = threshold }
}

// WithRequestTimeout bounds the refresh call.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(manager *Manager) { manager.requestTimeout = timeout }
}

// NewManager constructs the process-wide [Manager]. It reports Loading until
// [Manager.Initialize] returns.
func NewManager(store SlotStore, remote RemoteAuth, options ...Option) *Manager {
	manager := &Manager{
		store:            store,
		remote:           remote,
		logger:           slog.Default(),
		now:              time.Now,
		refreshThreshold: constants.RefreshThreshold,
		requestTimeout:   constants.RequestTimeout,
		loading:          true,
		listeners:        make(map[uint64]Listener),
	}
	for _, option := range options {
		option(manager)
	}
	return manager
}

// # Startup

/*
Initialize restores the session persisted by a previous run.

Description: Reads the `token` and `user` slots. A missing slot, an
undecodable user, or any failure of the validation call clears the session.
Otherwise the stored user is adopted. Failures are logged, never returned.

Parameters:
  - ctx: context.Context
*/
func (manager *Manager) Initialize(ctx context.Context) {
	epoch := manager.begin()
	defer manager.finishInitialize()

	slots, err := manager.store.Get(ctx, constants.SlotToken, constants.SlotUser)
	if err != nil {
		manager.logger.Error("session_initialize_store_failed", slog.Any("error", err))
		manager.clearStale(ctx, epoch, "initialize")
		return
	}

	token, rawUser := slots[constants.SlotToken], slots[constants.SlotUser]
	if token == "" || rawUser == "" {
		manager.logger.Info("session_initialize_empty")
		manager.clearStale(ctx, epoch, "initialize")
		return
	}

	user, err := decodeUser(rawUser)
	if err != nil {
		manager.logger.Warn("session_initialize_user_undecodable", slog.Any("error", err))
		manager.clearStale(ctx, epoch, "initialize")
		return
	}

	if _, err := manager.remote.Validate(ctx, token); err != nil {
		manager.logger.Info("session_initialize_validation_failed", slog.Any("error", err))
		manager.clearStale(ctx, epoch, "initialize")
		return
	}

	manager.commitMu.Lock()
	manager.mu.Lock()
	adopted := manager.epoch == epoch
	if adopted {
		manager.token = token
		manager.user = user
		manager.epoch++
	}
	manager.mu.Unlock()
	manager.commitMu.Unlock()

	if adopted {
		manager.logger.Info("session_initialized", slog.String("user_id", user.ID))
		manager.emit(EventInitialized, user)
	}
}

func (manager *Manager) finishInitialize() {
	manager.mu.Lock()
	manager.pending--
	manager.loading = false
	manager.mu.Unlock()
}

// # Sign-in

/*
Login authenticates with email and password and replaces the session.

Description: Inputs are validated before any network call. A failure leaves
the session exactly as it was and returns one human-readable message: the
server's, or a generic fallback.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *User: The signed-in user
  - error: *apperr.AppError
*/
func (manager *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	email = validate.EmailAddress(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		MinLen(FieldPassword, password, sec.MinPasswordLength)

	if err := validator.Err(); err != nil {
		return nil, manager.fail("login", "invalid", err)
	}

	epoch := manager.begin()
	defer manager.end()

	result, err := manager.remote.Login(ctx, email, password)
	if err != nil {
		return nil, manager.fail("login", "failed", shapeAuthFailure(err, msgLoginFailed))
	}

	return manager.adoptResult(ctx, "login", epoch, result)
}

/*
Register creates an account and signs it in.

Parameters:
  - ctx: context.Context
  - name: string
  - email: string
  - password: string

Returns:
  - *User: The signed-in user
  - error: *apperr.AppError
*/
func (manager *Manager) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = validate.Text(name)
	email = validate.EmailAddress(email)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		MinLen(FieldName, name, MinNameLength).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		MinLen(FieldPassword, password, sec.MinPasswordLength)

	if err := validator.Err(); err != nil {
		return nil, manager.fail("register", "invalid", err)
	}

	epoch := manager.begin()
	defer manager.end()

	result, err := manager.remote.Register(ctx, name, email, password)
	if err != nil {
		return nil, manager.fail("register", "failed", shapeAuthFailure(err, msgRegisterFailed))
	}

	return manager.adoptResult(ctx, "register", epoch, result)
}

// Adopt signs in with a token issued outside login, such as the one returned
// by a password reset. The token is validated before it is committed.
func (manager *Manager) Adopt(ctx context.Context, token string) (*User, error) {
	token = sec.StripBearer(token)
	if token == "" {
		return nil, apperr.AuthRequired(apperr.MsgAuthRequired)
	}

	epoch := manager.begin()
	defer manager.end()

	user, err := manager.remote.Validate(ctx, token)
	if err != nil {
		return nil, manager.fail("adopt", "failed", shapeAuthFailure(err, msgLoginFailed))
	}
	if user == nil {
		return nil, manager.fail("adopt", "failed", malformedAuthResponse())
	}

	return manager.adoptResult(ctx, "adopt", epoch, &AuthResult{Token: token, User: user})
}

// adoptResult persists a fresh token and user and swaps them in together.
func (manager *Manager) adoptResult(ctx context.Context, operation string, epoch uint64, result *AuthResult) (*User, error) {
	encodedUser, err := encodeUser(result.User)
	if err != nil {
		return nil, manager.fail(operation, "failed", apperr.Internal(err))
	}

	manager.commitMu.Lock()

	manager.mu.RLock()
	stale := manager.epoch != epoch
	manager.mu.RUnlock()

	if stale {
		manager.commitMu.Unlock()
		manager.metrics.AuthenticationObserved(operation, "stale")
		manager.logger.Info("session_result_discarded", slog.String("operation", operation))
		return nil, errSuperseded()
	}

	err = manager.store.Set(ctx, map[string]string{
		constants.SlotToken: result.Token,
		constants.SlotUser:  encodedUser,
	})
	if err != nil {
		manager.commitMu.Unlock()
		manager.logger.Error("session_persist_failed", slog.String("operation", operation), slog.Any("error", err))
		return nil, manager.fail(operation, "failed", apperr.Internal(err))
	}

	user := result.User.Clone()
	manager.mu.Lock()
	manager.token = result.Token
	manager.user = user
	manager.epoch++
	manager.lastError = ""
	manager.authPrompt = false
	manager.expired = false
	manager.mu.Unlock()
	manager.commitMu.Unlock()

	manager.metrics.AuthenticationObserved(operation, "ok")
	manager.logger.Info("session_authenticated", slog.String("operation", operation), slog.String("user_id", user.ID))
	manager.emit(EventAuthenticated, user)

	return user.Clone(), nil
}

// fail records the message of a failed sign-in and returns the error.
func (manager *Manager) fail(operation, result string, err error) error {
	failure := apperr.As(err)
	if failure == nil {
		failure = apperr.Internal(err)
	}

	manager.mu.Lock()
	manager.lastError = failure.Message
	manager.mu.Unlock()

	manager.metrics.AuthenticationObserved(operation, result)
	return failure
}

// shapeAuthFailure keeps the server's message and replaces a category default with fallback.
func shapeAuthFailure(err error, fallback string) *apperr.AppError {
	failure := apperr.As(err)
	if failure == nil {
		return apperr.WithMessage(apperr.Internal(err), fallback)
	}
	if failure.Kind == apperr.KindConnection || failure.ServerMessage != "" {
		return failure
	}
	return apperr.WithMessage(failure, fallback)
}

// # Sign-out

// Logout clears the session and its durable slots. It never calls the
// network, is idempotent, and makes any in-flight sign-in stale.
func (manager *Manager) Logout(ctx context.Context) {
	if manager.clear(ctx, "logout", nil) {
		manager.emit(EventLoggedOut, nil)
	}
}

// clearStale clears the session unless a newer transition already committed.
func (manager *Manager) clearStale(ctx context.Context, epoch uint64, reason string) {
	manager.clear(ctx, reason, func() bool { return manager.epoch == epoch })
}

// reasonRejected is the teardown reason that marks the session expired.
const reasonRejected = "rejected"

// reject tears the session down after the server refused usedToken.
// A session that has since moved to another token is left alone.
func (manager *Manager) reject(ctx context.Context, usedToken string) {
	cleared := manager.clear(ctx, reasonRejected, func() bool {
		return manager.token != "" && manager.token == usedToken
	})
	if !cleared {
		return
	}

	manager.logger.Warn("session_expired")
	manager.emit(EventExpired, nil)
}

/*
clear removes the session from memory and from the store.

Description: The expired flag is set in the same critical section as the
reset, so only a [reasonRejected] teardown leaves it raised.

Parameters:
  - ctx: context.Context
  - reason: string (metrics label)
  - guard: func() bool (evaluated under the lock, nil means unconditional)

Returns:
  - bool: true if a session was present and removed
*/
func (manager *Manager) clear(ctx context.Context, reason string, guard func() bool) bool {
	manager.commitMu.Lock()
	defer manager.commitMu.Unlock()

	manager.mu.RLock()
	allowed := guard == nil || guard()
	manager.mu.RUnlock()
	if !allowed {
		return false
	}

	// The slots are purged even if memory is already empty.
	if err := manager.store.Delete(context.WithoutCancel(ctx), constants.SlotToken, constants.SlotUser); err != nil {
		manager.logger.Error("session_store_clear_failed", slog.String("reason", reason), slog.Any("error", err))
	}

	manager.mu.Lock()
	hadSession := manager.token != ""
	manager.token = ""
	manager.user = nil
	manager.epoch++
	manager.lastError = ""
	manager.expired = reason == reasonRejected
	manager.mu.Unlock()

	if hadSession {
		manager.metrics.TeardownObserved(reason)
		manager.logger.Info("session_cleared", slog.String("reason", reason))
	}
	return hadSession
}

// # Refresh

/*
Refresh exchanges the current token for a new one.

Description: Concurrent callers holding the same token share one remote
call and its result. The new token is persisted only if the session still
holds the refreshed token under the same epoch.

Parameters:
  - ctx: context.Context

Returns:
  - string: The new token
  - error: *apperr.AppError (the session keeps its current token)
*/
func (manager *Manager) Refresh(ctx context.Context) (string, error) {
	token := manager.currentToken()
	if token == "" {
		return "", apperr.AuthRequired(apperr.MsgAuthRequired)
	}
	return manager.refreshFrom(ctx, token)
}

// refreshFrom refreshes token, the credential the caller observed.
func (manager *Manager) refreshFrom(ctx context.Context, token string) (string, error) {
	result, err, _ := manager.refreshGroup.Do(token, func() (any, error) {
		return manager.refresh(ctx, token)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (manager *Manager) refresh(ctx context.Context, token string) (string, error) {
	manager.mu.Lock()
	current, epoch := manager.token, manager.epoch
	if current == token {
		manager.pending++
	}
	manager.mu.Unlock()

	// Another caller already replaced the token.
	if current != token {
		if current == "" {
			return "", errSuperseded()
		}
		return current, nil
	}
	defer manager.end()

	// Coalesced callers must not lose the shared call when the first caller goes away.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), manager.requestTimeout)
	defer cancel()

	fresh, err := manager.remote.Refresh(callCtx, token)
	if err != nil {
		manager.metrics.RefreshObserved("failed")
		manager.logger.Warn("session_refresh_failed", slog.Any("error", err))
		return "", err
	}

	manager.commitMu.Lock()

	manager.mu.RLock()
	current, currentEpoch, user := manager.token, manager.epoch, manager.user
	manager.mu.RUnlock()

	if current != token || currentEpoch != epoch {
		manager.commitMu.Unlock()
		manager.metrics.RefreshObserved("stale")
		manager.logger.Info("session_refresh_discarded")
		return "", errSuperseded()
	}

	encodedUser, err := encodeUser(user)
	if err == nil {
		err = manager.store.Set(callCtx, map[string]string{
			constants.SlotToken: fresh,
			constants.SlotUser:  encodedUser,
		})
	}
	if err != nil {
		manager.commitMu.Unlock()
		manager.metrics.RefreshObserved("failed")
		manager.logger.Error("session_refresh_persist_failed", slog.Any("error", err))
		return "", apperr.Internal(err)
	}

	manager.mu.Lock()
	manager.token = fresh
	manager.mu.Unlock()
	manager.commitMu.Unlock()

	manager.metrics.RefreshObserved("ok")
	manager.logger.Debug("session_refreshed")
	manager.emit(EventRefreshed, user)

	return fresh, nil
}

// # Request Instrumentation

/*
Decorate returns request with the bearer credential attached.

Description: Without a token the request is returned unmodified. A token
inside the refresh window is refreshed first, unless the request is the
refresh call itself. A failed refresh still attaches the stale token; the
server's answer then drives [Manager.HandleResponse]. An undecodable token
is attached as is.

Parameters:
  - request: *http.Request

Returns:
  - *http.Request: A decorated clone, or request itself
*/
func (manager *Manager) Decorate(request *http.Request) *http.Request {
	token := manager.currentToken()
	if token == "" {
		return request
	}

	if !isRefreshCall(request) && sec.NeedsRefresh(token, manager.now(), manager.refreshThreshold) {
		if _, err := manager.refreshFrom(request.Context(), token); err != nil {
			manager.logger.Debug("session_refresh_skipped", slog.Any("error", err))
		}
		token = manager.currentToken()
		if token == "" {
			return request
		}
	}

	decorated := request.Clone(request.Context())
	decorated.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+sec.StripBearer(token))
	return decorated
}

func isRefreshCall(request *http.Request) bool {
	return request.URL != nil && strings.HasSuffix(request.URL.Path, constants.RefreshPath)
}

// # Accessors

func (manager *Manager) currentToken() string {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.token
}

// IsAuthenticated reports whether a token and a user are both held.
func (manager *Manager) IsAuthenticated() bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.token != "" && manager.user != nil
}

// User returns a copy of the cached user, or nil.
func (manager *Manager) User() *User {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.user.Clone()
}

// Loading reports whether startup validation is still running.
func (manager *Manager) Loading() bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.loading
}

// Error returns the message of the last failed sign-in, cleared by the next success or logout.
func (manager *Manager) Error() string {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.lastError
}

// State returns the lifecycle state.
func (manager *Manager) State() State {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.stateLocked()
}

func (manager *Manager) stateLocked() State {
	switch {
	case manager.pending > 0:
		return StateAuthenticating
	case manager.token != "" && manager.user != nil:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Identity returns the signed-in user's ID and role.
func (manager *Manager) Identity() (string, string, bool) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	if manager.token == "" || manager.user == nil {
		return "", "", false
	}
	return manager.user.ID, manager.user.Role, true
}

// Snapshot returns a consistent view of the whole session.
func (manager *Manager) Snapshot() Snapshot {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	snapshot := Snapshot{
		State:           manager.stateLocked(),
		IsAuthenticated: manager.token != "" && manager.user != nil,
		Loading:         manager.loading,
		User:            manager.user.Clone(),
		Error:           manager.lastError,
		AuthPrompt:      manager.authPrompt,
		Expired:         manager.expired,
	}
	if expiresAt, err := sec.Expiry(manager.token); err == nil {
		snapshot.ExpiresAt = &expiresAt
	}
	return snapshot
}

// # Authentication Prompt

// RequestAuthPrompt raises the force-show-authentication flag.
func (manager *Manager) RequestAuthPrompt() {
	manager.mu.Lock()
	manager.authPrompt = true
	manager.mu.Unlock()
	manager.emit(EventAuthPrompt, nil)
}

// AuthPromptRequested reports whether the prompt flag is raised.
func (manager *Manager) AuthPromptRequested() bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.authPrompt
}

// DismissAuthPrompt lowers the prompt flag.
func (manager *Manager) DismissAuthPrompt() {
	manager.mu.Lock()
	manager.authPrompt = false
	manager.mu.Unlock()
}

// # Profile

/*
UpdateUser replaces the cached user after a profile edit.

Parameters:
  - ctx: context.Context
  - user: *User

Returns:
  - error: AUTH_REQUIRED without a session, or a store failure
*/
func (manager *Manager) UpdateUser(ctx context.Context, user *User) error {
	if user == nil {
		return apperr.Internal(errors.New("session: nil user"))
	}

	encodedUser, err := encodeUser(user)
	if err != nil {
		return apperr.Internal(err)
	}

	manager.commitMu.Lock()

	token := manager.currentToken()
	if token == "" {
		manager.commitMu.Unlock()
		return apperr.AuthRequired(apperr.MsgAuthRequired)
	}

	if err := manager.store.Set(ctx, map[string]string{
		constants.SlotToken: token,
		constants.SlotUser:  encodedUser,
	}); err != nil {
		manager.commitMu.Unlock()
		return apperr.Internal(err)
	}

	updated := user.Clone()
	manager.mu.Lock()
	manager.user = updated
	manager.mu.Unlock()
	manager.commitMu.Unlock()

	manager.emit(EventUserUpdated, updated)
	return nil
}

// # Events

// Listen registers listener and returns a function that removes it.
func (manager *Manager) Listen(listener Listener) func() {
	manager.mu.Lock()
	id := manager.nextListener
	manager.nextListener++
	manager.listeners[id] = listener
	manager.mu.Unlock()

	return func() {
		manager.mu.Lock()
		delete(manager.listeners, id)
		manager.mu.Unlock()
	}
}

func (manager *Manager) emit(kind EventKind, user *User) {
	manager.mu.RLock()
	listeners := make([]Listener, 0, len(manager.listeners))
	for _, listener := range manager.listeners {
		listeners = append(listeners, listener)
	}
	manager.mu.RUnlock()

	event := Event{Kind: kind, User: user.Clone(), At: manager.now()}
	for _, listener := range listeners {
		listener(event)
	}
}

// # Bookkeeping

// begin marks a network-bound operation and returns the epoch it started under.
func (manager *Manager) begin() uint64 {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.pending++
	return manager.epoch
}

func (manager *Manager) end() {
	manager.mu.Lock()
	manager.pending--
	manager.mu.Unlock()
}
