// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/authtest"
	"github.com/taibuivan/autocare/internal/session"
)

type snapshotEnvelope struct {
	Data session.Snapshot `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_SessionFlow drives login, snapshot, prompt and logout over HTTP.
*/
func TestHandler_SessionFlow(t *testing.T) {
	h := newHarness(t)
	routes := session.NewHandler(h.manager).Routes()

	// 1. Anonymous snapshot
	recorder := serve(t, routes, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var snapshot snapshotEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	assert.Equal(t, session.StateUnauthenticated, snapshot.Data.State)

	// 2. Login
	recorder = serve(t, routes, http.MethodPost, "/login", `{"email":"`+testEmail+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	assert.True(t, snapshot.Data.IsAuthenticated)
	assert.Equal(t, "Asha Rao", snapshot.Data.User.Name)

	// 3. Prompt raise and dismiss
	assert.Equal(t, http.StatusNoContent, serve(t, routes, http.MethodPost, "/auth-prompt", "").Code)
	assert.True(t, h.manager.AuthPromptRequested())
	assert.Equal(t, http.StatusNoContent, serve(t, routes, http.MethodDelete, "/auth-prompt", "").Code)
	assert.False(t, h.manager.AuthPromptRequested())

	// 4. Logout
	assert.Equal(t, http.StatusOK, serve(t, routes, http.MethodDelete, "/", "").Code)
	assert.False(t, h.manager.IsAuthenticated())
}

/*
TestHandler_Errors verifies that failures render the single-message envelope.
*/
func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		status  int
		message string
	}{
		{"invalid_json", "/login", `{`, http.StatusBadRequest, ""},
		{"bad_credentials", "/login", `{"email":"` + testEmail + `","password":"nope-nope"}`, http.StatusUnauthorized, authtest.MsgInvalidCredentials},
		{"short_password", "/register", `{"name":"Ravi","email":"ravi@example.com","password":"123"}`, http.StatusBadRequest, ""},
		{"taken_email", "/register", `{"name":"Asha","email":"` + testEmail + `","password":"` + testPassword + `"}`, http.StatusBadRequest, authtest.MsgEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			recorder := serve(t, session.NewHandler(h.manager).Routes(), http.MethodPost, tt.target, tt.body)

			assert.Equal(t, tt.status, recorder.Code)

			var envelope errorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.NotEmpty(t, envelope.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, envelope.Error)
			}
		})
	}
}

/*
TestHandler_Register returns 201 with the new session.
*/
func TestHandler_Register(t *testing.T) {
	h := newHarness(t)

	recorder := serve(t, session.NewHandler(h.manager).Routes(), http.MethodPost, "/register",
		`{"name":"Ravi Kumar","email":"ravi@example.com","password":"`+testPassword+`"}`)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.True(t, h.manager.IsAuthenticated())
}
