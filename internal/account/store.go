// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taibuivan/autocare/internal/apiclient"
	"github.com/taibuivan/autocare/internal/session"
)

// Repository is the account part of the remote auth API.
type Repository interface {
	Me(ctx context.Context) (*session.User, error)
	UpdateMe(ctx context.Context, update *ProfileUpdate) (*session.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
}

// RemoteRepository implements [Repository] over AUTH_API_URL.
type RemoteRepository struct {
	client    *apiclient.Client
	anonymous *apiclient.Client
}

// NewRemoteRepository creates a repository. client must carry the session
// transport; anonymous must not (it serves the password reset endpoints).
func NewRemoteRepository(client, anonymous *apiclient.Client) *RemoteRepository {
	return &RemoteRepository{client: client, anonymous: anonymous}
}

type userEnvelope struct {
	User *session.User `json:"user"`
}

type messageEnvelope struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func userFrom(payload json.RawMessage) (*session.User, error) {
	var envelope userEnvelope
	if err := apiclient.DecodeData(payload, &envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, apiclient.Unexpected(errors.New("account: response lacks user"))
	}
	return envelope.User, nil
}

// Me calls `GET /me`.
func (repo *RemoteRepository) Me(ctx context.Context) (*session.User, error) {
	var payload json.RawMessage
	if err := repo.client.Get(ctx, "/me", &payload); err != nil {
		return nil, err
	}
	return userFrom(payload)
}

// UpdateMe calls `PUT /me`.
func (repo *RemoteRepository) UpdateMe(ctx context.Context, update *ProfileUpdate) (*session.User, error) {
	var payload json.RawMessage
	if err := repo.client.Put(ctx, "/me", update, &payload); err != nil {
		return nil, err
	}
	return userFrom(payload)
}

// RequestPasswordReset calls `POST /request-password-reset` and returns the server's message.
func (repo *RemoteRepository) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var envelope messageEnvelope
	body := map[string]string{"email": email}
	if err := repo.anonymous.Do(ctx, apiclient.Call{Method: http.MethodPost, Path: "/request-password-reset", Body: body}, &envelope); err != nil {
		return "", err
	}
	return envelope.Message, nil
}

// ResetPassword calls `POST /reset-password` and returns the token it issues.
func (repo *RemoteRepository) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var envelope messageEnvelope
	body := map[string]string{"token": token, "password": password}
	if err := repo.anonymous.Do(ctx, apiclient.Call{Method: http.MethodPost, Path: "/reset-password", Body: body}, &envelope); err != nil {
		return "", err
	}
	if envelope.Token == "" {
		return "", apiclient.Unexpected(errors.New("account: reset response lacks token"))
	}
	return envelope.Token, nil
}
