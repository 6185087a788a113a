// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/session"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(request *http.Request) (*http.Response, error) {
	return fn(request)
}

/*
TestTransport_ConnectionError verifies that a call without a response is a
connection failure and leaves the session alone.
*/
func TestTransport_ConnectionError(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	transport := session.NewTransport(h.manager, roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}))

	_, err := transport.RoundTrip(httptest.NewRequest(http.MethodGet, "http://api.test/orders", nil))

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConnection))
	assert.True(t, h.manager.IsAuthenticated())
}

/*
TestTransport_BodyPreserved ensures the caller can still read an error body
after the transport inspected it.
*/
func TestTransport_BodyPreserved(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	const body = `{"message":"Appointment not found"}`
	var sent *http.Request
	transport := session.NewTransport(h.manager, roundTripFunc(func(request *http.Request) (*http.Response, error) {
		sent = request
		return &http.Response{StatusCode: http.StatusNotFound, Body: readCloser(body), Header: http.Header{}}, nil
	}))

	original := httptest.NewRequest(http.MethodGet, "http://api.test/appointments/42", nil)
	response, err := transport.RoundTrip(original)
	require.NoError(t, err)
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(payload))

	// The credential went on a clone, never on the caller's request
	assert.NotEmpty(t, sent.Header.Get(constants.HeaderAuthorization))
	assert.Empty(t, original.Header.Get(constants.HeaderAuthorization))
	assert.Same(t, sent, response.Request)
}

/*
TestTransport_HandleResponse_Success returns no failure for 2xx and 3xx.
*/
func TestTransport_HandleResponse_Success(t *testing.T) {
	h := newHarness(t)

	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNoContent, http.StatusNotModified} {
		assert.Nil(t, h.manager.HandleResponse(&http.Response{StatusCode: status}, nil))
	}
}
