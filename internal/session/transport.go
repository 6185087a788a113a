// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/taibuivan/autocare/internal/apiclient"
	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/sec"
)

// maxPeekBytes bounds how much of an error body is inspected for its message.
const maxPeekBytes = 64 << 10

// # Response Interpretation

/*
HandleResponse classifies the outcome of one remote call.

Description: A transport error is a connection failure. A status >= 400 is
classified from its status, its `message` field and whether the request was
credentialed. Only an authentication rejection has a side effect: the session
is torn down, unless it has already moved to a different token. The response
body stays readable for the caller.

Parameters:
  - response: *http.Response (nil on transport error)
  - err: error

Returns:
  - *apperr.AppError: nil for a status below 400
*/
func (manager *Manager) HandleResponse(response *http.Response, err error) *apperr.AppError {
	if err != nil {
		if failure := apperr.As(err); failure != nil {
			return failure
		}
		return apperr.Connection(err)
	}
	if response == nil {
		return apperr.Connection(errors.New("session: no response"))
	}
	if response.StatusCode < http.StatusBadRequest {
		return nil
	}

	failure := apperr.Classify(
		response.StatusCode,
		apiclient.ServerMessage(peekBody(response)),
		apiclient.Credentialed(response),
		constants.InvalidTokenMessage,
	)

	if failure.Kind == apperr.KindAuthenticationRejected && response.Request != nil {
		usedToken := sec.StripBearer(response.Request.Header.Get(constants.HeaderAuthorization))
		manager.reject(context.WithoutCancel(response.Request.Context()), usedToken)
	}

	return failure
}

// peekBody reads the head of the body and puts it back in front of the rest.
func peekBody(response *http.Response) []byte {
	if response.Body == nil {
		return nil
	}

	head, _ := io.ReadAll(io.LimitReader(response.Body, maxPeekBytes))
	response.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), response.Body), response.Body}

	return head
}

// # Round Tripper

// Transport attaches the session credential to every outbound call and
// reports every response back to the [Manager].
//
// A transport error is returned as a connection [apperr.AppError]. Responses
// with a status >= 400 are returned unchanged so the client can classify them.
type Transport struct {
	manager *Manager
	base    http.RoundTripper
}

// NewTransport wraps base, or [http.DefaultTransport] when base is nil.
func NewTransport(manager *Manager, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{manager: manager, base: base}
}

// RoundTrip implements [http.RoundTripper].
func (transport *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	decorated := transport.manager.Decorate(request)

	response, err := transport.base.RoundTrip(decorated)
	if err != nil {
		return nil, transport.manager.HandleResponse(nil, err)
	}

	// Classification needs the headers that were actually sent.
	response.Request = decorated
	transport.manager.HandleResponse(response, nil)

	return response, nil
}
