// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apiclient is the JSON client for the remote business API.

Every outbound call of the gateway goes through a [Client]. It owns the
request shape (JSON body, correlation header, fixed timeout) and turns every
failure into exactly one [apperr.AppError] via [apperr.Classify].

Architecture:

  - Anonymous: A Client built without a transport option sends requests as is.
    Login, registration, the chatbot and password reset use it.
  - Session-bound: A Client built with the session transport gets credentials
    attached (and refreshed) before each call, and the session torn down when
    the server rejects them.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/ctxutil"
	"github.com/taibuivan/autocare/internal/platform/metrics"
	"github.com/taibuivan/autocare/internal/platform/sec"
)

// maxResponseBytes bounds how much of a remote body is read.
const maxResponseBytes = 4 << 20

// # Definitions & Constructors

// Client calls one remote service rooted at a base URL.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Registry
}

// Option configures a [Client].
type Option func(*Client)

// WithTransport routes calls through transport (e.g. the session transport).
func WithTransport(transport http.RoundTripper) Option {
	return func(client *Client) { client.httpClient.Transport = transport }
}

// WithTimeout overrides the fixed request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) { client.httpClient.Timeout = timeout }
}

// WithMetrics records every call on registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(client *Client) { client.metrics = registry }
}

// WithName labels the client in logs and metrics.
func WithName(name string) Option {
	return func(client *Client) { client.name = name }
}

// New creates a [Client] for baseURL with the 15s transport timeout.
func New(baseURL string, options ...Option) *Client {
	client := &Client{
		name:    "api",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: constants.RequestTimeout,
		},
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// BaseURL returns the root every call path is appended to.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// # Calls

// Call describes one remote request.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Bearer attaches an explicit credential. Session-bound clients leave it
	// empty and let the transport decide.
	Bearer string
}

/*
Do performs call and decodes a successful JSON body into out.

Description: A call that produces no response (offline, DNS, the 15s timeout)
is a connection error. A status >= 400 is classified from the status, the
server's `message` and whether the request carried a credential.

Parameters:
  - ctx: context.Context
  - call: Call
  - out: any (pointer, may be nil)

Returns:
  - error: nil or *apperr.AppError
*/
func (client *Client) Do(ctx context.Context, call Call, out any) error {
	startTime := time.Now()
	logger := ctxutil.GetLogger(ctx).With(
		slog.String("remote", client.name),
		slog.String("method", call.Method),
		slog.String("path", call.Path),
	)

	request, err := client.newRequest(ctx, call)
	if err != nil {
		return apperr.Internal(err)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		failure := apperr.As(err)
		if failure == nil {
			failure = apperr.Connection(err)
		}
		client.observe(logger, failure, startTime)
		return failure
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		failure := apperr.Connection(fmt.Errorf("apiclient: read body: %w", err))
		client.observe(logger, failure, startTime)
		return failure
	}

	if response.StatusCode >= http.StatusBadRequest {
		failure := apperr.Classify(
			response.StatusCode,
			ServerMessage(payload),
			Credentialed(response),
			constants.InvalidTokenMessage,
		)
		client.observe(logger, failure, startTime)
		return failure
	}

	if out != nil && len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			failure := Unexpected(fmt.Errorf("apiclient: decode %s %s: %w", call.Method, call.Path, err))
			client.observe(logger, failure, startTime)
			return failure
		}
	}

	client.observe(logger, nil, startTime)
	return nil
}

// Get performs a GET call.
func (client *Client) Get(ctx context.Context, path string, out any) error {
	return client.Do(ctx, Call{Method: http.MethodGet, Path: path}, out)
}

// Post performs a POST call with a JSON body.
func (client *Client) Post(ctx context.Context, path string, body, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put performs a PUT call with a JSON body.
func (client *Client) Put(ctx context.Context, path string, body, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete performs a DELETE call.
func (client *Client) Delete(ctx context.Context, path string, out any) error {
	return client.Do(ctx, Call{Method: http.MethodDelete, Path: path}, out)
}

// # Helpers

func (client *Client) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	target := client.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		encoded, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}

	request.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	if body != nil {
		request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	request.Header.Set(constants.HeaderXRequestID, requestID(ctx))

	if call.Bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+sec.StripBearer(call.Bearer))
	}

	return request, nil
}

// requestID propagates the inbound correlation ID, or mints one for background calls.
func requestID(ctx context.Context) string {
	if id := ctxutil.GetRequestID(ctx); id != "" {
		return id
	}
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (client *Client) observe(logger *slog.Logger, failure *apperr.AppError, startTime time.Time) {
	elapsed := time.Since(startTime)

	if failure == nil {
		client.metrics.RemoteCallObserved(client.name, "ok", elapsed)
		logger.Debug("remote_call_finished", slog.Int64("latency_ms", elapsed.Milliseconds()))
		return
	}

	client.metrics.RemoteCallObserved(client.name, string(failure.Kind), elapsed)
	logger.Warn("remote_call_failed",
		slog.String("kind", string(failure.Kind)),
		slog.String("code", failure.Code),
		slog.Int64("latency_ms", elapsed.Milliseconds()),
		slog.Any("cause", failure.Cause),
	)
}

// errorPayload is the error body shape of the remote API.
type errorPayload struct {
	Message string `json:"message"`
}

// ServerMessage extracts the human-readable message from a remote error body.
// Only the `message` field is read. It returns "" when the body is not JSON
// or carries no message.
func ServerMessage(payload []byte) string {
	var decoded errorPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return ""
	}
	return decoded.Message
}

// DecodeData decodes a success body into out. A `{"success": ..., "data": ...}`
// envelope is unwrapped first; a bare body is decoded as is.
func DecodeData(payload json.RawMessage, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		payload = envelope.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return Unexpected(fmt.Errorf("apiclient: decode data: %w", err))
	}
	return nil
}

// Unexpected reports a 2xx body that does not have the documented shape.
func Unexpected(cause error) *apperr.AppError {
	return &apperr.AppError{
		Kind:       apperr.KindUnknown,
		Code:       "UNEXPECTED_RESPONSE",
		Message:    apperr.MsgUnexpected,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Credentialed reports whether the request that produced response carried a bearer token.
func Credentialed(response *http.Response) bool {
	return response != nil && response.Request != nil &&
		response.Request.Header.Get(constants.HeaderAuthorization) != ""
}
