// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire gateway.

It defines default timeouts, rate limits, session slot names and the
header/field identifiers shared between the gateway and the remote API client.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Remote Calls: Transport timeout and token refresh threshold.
  - Session: Durable slot names and the rejection marker sent by the auth API.
  - Rate Limiting: Burst capacities and IP tracking TTLs.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "autocare-gateway"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout must outlive a remote call plus a refresh round trip.
	DefaultWriteTimeout = 40 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 35 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// InitializeTimeout bounds the startup validation round trip.
	InitializeTimeout = 20 * time.Second
)

// # Remote Calls

const (
	// RequestTimeout is the fixed transport timeout for every remote API call.
	RequestTimeout = 15 * time.Second

	// RefreshThreshold is the remaining token lifetime below which a refresh is attempted.
	RefreshThreshold = 30 * time.Minute
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Session

const (
	// SlotToken is the durable store key holding the bearer token.
	SlotToken = "token"

	// SlotUser is the durable store key holding the JSON-encoded user profile.
	SlotUser = "user"

	// RedisPrefixSlot namespaces the slots inside a shared Redis database.
	RedisPrefixSlot = "autocare:session:"

	// InvalidTokenMessage is the exact 401 message the auth API uses for a
	// dead credential. Only this message tears the session down.
	InvalidTokenMessage = "Invalid or expired token"

	// RefreshPath is the auth API refresh endpoint. It is never refreshed itself.
	RefreshPath = "/refresh-token"
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderOrigin        = "Origin"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	ContentTypeJSON = "application/json"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)
