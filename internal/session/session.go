// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the single customer session of the gateway.

It keeps the bearer token and the cached user identity, attaches credentials
to outgoing requests, refreshes the token before it expires, and tears the
session down when the remote API rejects it.

# Architecture

  - Manager: The only writer of the session record and its durable slots.
  - SlotStore: Durable `token` and `user` slots (memory, file, redis, postgres).
  - AuthAPI: Client of the remote auth contract (login, register, validate, refresh).
  - Transport: An [http.RoundTripper] that decorates each call and reports
    each response back to the Manager.

# Lifecycle

A session is created by login or registration, refreshed in place when its
token nears expiry, and destroyed by logout, by a rejected credential, or by a
failed validation at startup.
*/
package session

import (
	"encoding/json"
	"time"
)

// # Domain Entities

// User is the denormalised profile cached for display.
type User struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Clone returns a copy safe to hand out.
func (user *User) Clone() *User {
	if user == nil {
		return nil
	}
	clone := *user
	return &clone
}

// encodeUser serialises the user for the `user` slot.
func encodeUser(user *User) (string, error) {
	encoded, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// decodeUser parses the `user` slot. An empty object or `null` is a decode failure.
func decodeUser(raw string) (*User, error) {
	var user *User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}
	if user == nil || (*user == User{}) {
		return nil, errEmptyUser
	}
	return user, nil
}

// # State Machine

// State is the lifecycle state of the session.
type State string

const (
	// StateUnauthenticated holds no credential.
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticating is transient: a network-bound session operation is in flight.
	StateAuthenticating State = "authenticating"
	// StateAuthenticated holds a token and a user.
	StateAuthenticated State = "authenticated"
)

// Snapshot is a consistent, read-only view of the session.
type Snapshot struct {
	State           State  `json:"state"`
	IsAuthenticated bool   `json:"is_authenticated"`
	Loading         bool   `json:"loading"`
	User            *User  `json:"user"`
	Error           string `json:"error,omitempty"`

	// AuthPrompt is the force-show-authentication flag raised by gated actions.
	AuthPrompt bool `json:"auth_prompt"`

	// Expired is set when the server rejected the credential; the UI returns
	// to its unauthenticated landing state.
	Expired bool `json:"expired"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// # Events

// EventKind names a session transition.
type EventKind string

const (
	EventInitialized   EventKind = "initialized"
	EventAuthenticated EventKind = "authenticated"
	EventRefreshed     EventKind = "refreshed"
	EventLoggedOut     EventKind = "logged_out"
	// EventExpired follows a rejected credential. Listeners redirect the UI.
	EventExpired     EventKind = "expired"
	EventUserUpdated EventKind = "user_updated"
	EventAuthPrompt  EventKind = "auth_prompt"
)

// Event is delivered to listeners after the transition is committed.
type Event struct {
	Kind EventKind
	User *User
	At   time.Time
}

// Listener receives session events. It must not block.
type Listener func(Event)

// # Field Identifiers

// Field names used for validation details.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Minimum input lengths enforced before any network call.
const (
	MinNameLength = 2
)
