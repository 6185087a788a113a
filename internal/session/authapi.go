// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/taibuivan/autocare/internal/apiclient"
	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/constants"
)

// # Remote Contract

// RemoteAuth is the part of the auth API the [Manager] depends on.
type RemoteAuth interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Validate(ctx context.Context, token string) (*User, error)
	Refresh(ctx context.Context, token string) (string, error)
}

// AuthResult is the body of a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User *User `json:"user"`
}

type tokenEnvelope struct {
	Token string `json:"token"`
}

// AuthAPI calls the remote auth endpoints.
//
// It must be built on an anonymous [apiclient.Client]: the credential is
// passed explicitly, so a refresh can never trigger another refresh.
type AuthAPI struct {
	client *apiclient.Client
}

// NewAuthAPI creates an [AuthAPI] on an anonymous client rooted at AUTH_API_URL.
func NewAuthAPI(client *apiclient.Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// Login calls `POST /login`.
func (api *AuthAPI) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	if err := api.client.Post(ctx, "/login", loginBody{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return checkAuthResult(&result)
}

// Register calls `POST /register`.
func (api *AuthAPI) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var result AuthResult
	body := registerBody{Name: name, Email: email, Password: password}
	if err := api.client.Post(ctx, "/register", body, &result); err != nil {
		return nil, err
	}
	return checkAuthResult(&result)
}

// Validate calls `GET /validate` with token and returns the server's view of the user.
func (api *AuthAPI) Validate(ctx context.Context, token string) (*User, error) {
	var envelope userEnvelope
	call := apiclient.Call{Method: http.MethodGet, Path: "/validate", Bearer: token}
	if err := api.client.Do(ctx, call, &envelope); err != nil {
		return nil, err
	}
	return envelope.User, nil
}

// Refresh calls `POST /refresh-token` with token and returns its replacement.
func (api *AuthAPI) Refresh(ctx context.Context, token string) (string, error) {
	var envelope tokenEnvelope
	call := apiclient.Call{Method: http.MethodPost, Path: constants.RefreshPath, Bearer: token}
	if err := api.client.Do(ctx, call, &envelope); err != nil {
		return "", err
	}
	if envelope.Token == "" {
		return "", malformedAuthResponse()
	}
	return envelope.Token, nil
}

// checkAuthResult rejects a 2xx body that lacks the token or the user.
func checkAuthResult(result *AuthResult) (*AuthResult, error) {
	if result.Token == "" || result.User == nil {
		return nil, malformedAuthResponse()
	}
	return result, nil
}

func malformedAuthResponse() *apperr.AppError {
	return apiclient.Unexpected(errors.New("session: auth response lacks token or user"))
}
