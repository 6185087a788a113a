// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/platform/apperr"
)

const rejection = "Invalid or expired token"

/*
TestClassify covers every branch of the remote failure taxonomy.
*/
func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		message      string
		credentialed bool
		wantKind     apperr.Kind
		wantMessage  string
	}{
		{"expired_token", http.StatusUnauthorized, rejection, true, apperr.KindAuthenticationRejected, apperr.MsgSessionExpired},
		{"expired_marker_without_credential", http.StatusUnauthorized, rejection, false, apperr.KindAuthenticationFailed, rejection},
		{"wrong_credentials", http.StatusUnauthorized, "Invalid credentials", true, apperr.KindAuthenticationFailed, "Invalid credentials"},
		{"bare_401", http.StatusUnauthorized, "", false, apperr.KindAuthenticationFailed, apperr.MsgAuthRequired},
		{"forbidden_fallback", http.StatusForbidden, "", true, apperr.KindAuthorizationDenied, apperr.MsgForbidden},
		{"forbidden_detail", http.StatusForbidden, "Admins only", true, apperr.KindAuthorizationDenied, "Admins only"},
		{"not_found", http.StatusNotFound, "", true, apperr.KindNotFound, apperr.MsgNotFound},
		{"server_fault", http.StatusInternalServerError, "", true, apperr.KindServerFault, apperr.MsgServerFault},
		{"bad_gateway_detail", http.StatusBadGateway, "upstream down", true, apperr.KindServerFault, "upstream down"},
		{"bad_request", http.StatusBadRequest, "", true, apperr.KindUnknown, apperr.MsgBadInput},
		{"teapot", http.StatusTeapot, "", true, apperr.KindUnknown, apperr.MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apperr.Classify(tt.status, tt.message, tt.credentialed, rejection)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantMessage, err.Message)
		})
	}
}

/*
TestConnection verifies the uniform connection failure keeps its cause.
*/
func TestConnection(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := apperr.Connection(cause)

	assert.Equal(t, apperr.KindConnection, err.Kind)
	assert.Equal(t, apperr.MsgConnection, err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
}

/*
TestAsAndIsKind verifies extraction through wrapped chains.
*/
func TestAsAndIsKind(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), apperr.NotFound("Appointment not found"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "Appointment not found", ae.Message)
	assert.True(t, apperr.IsKind(wrapped, apperr.KindNotFound))
	assert.False(t, apperr.IsKind(wrapped, apperr.KindServerFault))
	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestWithMessage checks that the original error is not mutated.
*/
func TestWithMessage(t *testing.T) {
	original := apperr.Unauthorized(apperr.MsgAuthRequired)
	replaced := apperr.WithMessage(original, "Please login to book an appointment.")

	assert.Equal(t, apperr.MsgAuthRequired, original.Message)
	assert.Equal(t, "Please login to book an appointment.", replaced.Message)
	assert.Equal(t, original.Kind, replaced.Kind)
}
