// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for the gateway.

It provides a rich error type that bridges remote API failures, client-side
validation and gateway HTTP responses.

Architecture:

  - AppError: A struct containing a taxonomy [Kind], a machine-readable code and
    a user-friendly message.
  - Classify: The single place where a remote response (or the lack of one) is
    mapped onto the taxonomy. Every service consumes it instead of shaping its
    own messages.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be an [AppError] so that
exactly one human-readable message reaches the UI.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Taxonomy

// Kind is the failure category an [AppError] belongs to.
type Kind string

const (
	// KindValidation is a client-side, pre-network, field-scoped failure.
	KindValidation Kind = "validation"
	// KindConnection means no response reached us (offline, DNS, timeout).
	KindConnection Kind = "connection"
	// KindAuthenticationRejected is a 401 for a dead credential. It is the only
	// kind with a side effect: the session is torn down.
	KindAuthenticationRejected Kind = "authentication_rejected"
	// KindAuthenticationFailed is any other 401, e.g. wrong credentials on login.
	KindAuthenticationFailed Kind = "authentication_failed"
	// KindAuthorizationDenied is a 403.
	KindAuthorizationDenied Kind = "authorization_denied"
	// KindNotFound is a 404.
	KindNotFound Kind = "not_found"
	// KindServerFault is a 5xx.
	KindServerFault Kind = "server_fault"
	// KindUnknown is everything else.
	KindUnknown Kind = "unknown"
)

// # User-facing Messages

const (
	MsgConnection       = "Connection error. Please check your internet connection and try again."
	MsgSessionExpired   = "Your session has expired. Please log in again."
	MsgAuthRequired     = "Authentication required."
	MsgForbidden        = "Access denied. You do not have permission to perform this action."
	MsgNotFound         = "The requested resource was not found."
	MsgServerFault      = "Server error. Please try again later."
	MsgBadInput         = "Please check your input and try again."
	MsgUnexpected       = "An unexpected error occurred. Please try again."
	MsgValidationFailed = "Validation failed"
)

// AppError is the canonical error type for the gateway.
//
// It carries a taxonomy kind, an HTTP status code, a machine-readable code, a
// client-safe message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., upstream URLs).
type AppError struct {
	// Kind is the taxonomy category.
	Kind Kind `json:"-"`
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "SESSION_EXPIRED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code the gateway answers with.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// RequiresAuth tells the UI to show the authentication prompt.
	RequiresAuth bool `json:"requires_auth,omitempty"`
	// ServerMessage is the remote `message` the error was classified from, if any.
	ServerMessage string `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError].
func NotFound(msg string) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Code:       "NOT_FOUND",
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError] that leaves the session untouched.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Kind:       KindAuthenticationFailed,
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SessionExpired creates the 401 [AppError] reported after a session teardown.
func SessionExpired() *AppError {
	return &AppError{
		Kind:         KindAuthenticationRejected,
		Code:         "SESSION_EXPIRED",
		Message:      MsgSessionExpired,
		HTTPStatus:   http.StatusUnauthorized,
		RequiresAuth: true,
	}
}

// AuthRequired creates the 401 [AppError] for an action attempted without a session.
func AuthRequired(msg string) *AppError {
	return &AppError{
		Kind:         KindAuthenticationFailed,
		Code:         "AUTH_REQUIRED",
		Message:      msg,
		HTTPStatus:   http.StatusUnauthorized,
		RequiresAuth: true,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Kind:       KindAuthorizationDenied,
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Kind:       KindUnknown,
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Remote Failures

// Connection creates the uniform [AppError] for a call that produced no response.
// The gateway answers such failures with 502.
func Connection(cause error) *AppError {
	return &AppError{
		Kind:       KindConnection,
		Code:       "CONNECTION_ERROR",
		Message:    MsgConnection,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected gateway-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Kind:       KindServerFault,
		Code:       "INTERNAL_ERROR",
		Message:    MsgUnexpected,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

/*
Classify maps a remote HTTP status and the server-provided message onto the taxonomy.

Description: This is the only error-shaping function for remote responses.
A 401 is only an [KindAuthenticationRejected] when the request carried a
credential AND the server says the token is invalid or expired; every other
401 is a non-destructive [KindAuthenticationFailed]. For the remaining
categories the server message, when present, replaces the fixed category
message.

Parameters:
  - status: int (remote HTTP status, >= 400)
  - serverMessage: string (the `message` field of the error payload, may be empty)
  - credentialed: bool (whether a bearer token was attached)
  - rejectionMessage: string (the exact message that marks a dead token)

Returns:
  - *AppError: never nil
*/
func Classify(status int, serverMessage string, credentialed bool, rejectionMessage string) *AppError {
	classified := classify(status, serverMessage, credentialed, rejectionMessage)
	classified.ServerMessage = serverMessage
	return classified
}

func classify(status int, serverMessage string, credentialed bool, rejectionMessage string) *AppError {
	pick := func(fallback string) string {
		if serverMessage != "" {
			return serverMessage
		}
		return fallback
	}

	switch {
	case status == http.StatusUnauthorized:
		if credentialed && serverMessage == rejectionMessage {
			return SessionExpired()
		}
		return Unauthorized(pick(MsgAuthRequired))

	case status == http.StatusForbidden:
		return Forbidden(pick(MsgForbidden))

	case status == http.StatusNotFound:
		return NotFound(pick(MsgNotFound))

	case status >= http.StatusInternalServerError:
		return &AppError{
			Kind:       KindServerFault,
			Code:       "SERVER_ERROR",
			Message:    pick(MsgServerFault),
			HTTPStatus: http.StatusBadGateway,
		}

	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &AppError{
			Kind:       KindUnknown,
			Code:       "BAD_REQUEST",
			Message:    pick(MsgBadInput),
			HTTPStatus: status,
		}

	default:
		httpStatus := status
		if httpStatus < 400 {
			httpStatus = http.StatusBadGateway
		}
		return &AppError{
			Kind:       KindUnknown,
			Code:       "UNKNOWN",
			Message:    pick(MsgUnexpected),
			HTTPStatus: httpStatus,
		}
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsKind reports whether err carries an [*AppError] of the given kind.
func IsKind(err error, kind Kind) bool {
	ae := As(err)
	return ae != nil && ae.Kind == kind
}

// WithMessage returns a copy of err with its message replaced.
// It is used by services that own a more specific fallback message.
func WithMessage(err *AppError, msg string) *AppError {
	clone := *err
	clone.Message = msg
	return &clone
}
