// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the token codec and cryptographic primitives.
//
// # Architecture
//
// The gateway never verifies token signatures: that is the auth API's job.
// It only reads the claims of the bearer token it holds so it can decide when
// to refresh. Signing ([TokenService]) exists for the in-process fake of the
// auth API used by tests and local development.
package sec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMalformedToken is returned when a token is not a decodable compact JWS.
var ErrMalformedToken = errors.New("sec: malformed token")

// AuthClaims represents the payload embedded inside a bearer token.
//
// Only `exp` is required by the gateway. The remaining fields are read when
// present so that logs can name the user without a round trip.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"rol,omitempty"`
}

// # Claims Inspection

// StripBearer removes an optional "Bearer " prefix.
func StripBearer(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
}

/*
DecodeUnverified reads the middle segment of a compact token as [AuthClaims].

Description: The signature is NOT checked and the header is not read, so an
unknown or missing `alg` does not matter. A value that is not three
dot-separated segments, or whose payload is not JSON, yields [ErrMalformedToken].

Parameters:
  - token: string (with or without the "Bearer " prefix)

Returns:
  - *AuthClaims: decoded claims
  - error: ErrMalformedToken (wrapped) on any decode failure
*/
func DecodeUnverified(token string) (*AuthClaims, error) {
	segments := strings.Split(StripBearer(token), ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments", ErrMalformedToken)
	}

	payload, err := jwt.NewParser().DecodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims := &AuthClaims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return claims, nil
}

// Expiry returns the `exp` instant of the token.
func Expiry(token string) (time.Time, error) {
	claims, err := DecodeUnverified(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp", ErrMalformedToken)
	}
	return claims.ExpiresAt.Time, nil
}

/*
NeedsRefresh reports whether the token should be refreshed before use.

Description: true iff now >= exp - threshold, compared in whole seconds.
A token whose claims cannot be read (or lack `exp`) returns false: the
request proceeds with the token as is and the server decides.

Parameters:
  - token: string
  - now: time.Time
  - threshold: time.Duration

Returns:
  - bool
*/
func NeedsRefresh(token string, now time.Time, threshold time.Duration) bool {
	expiresAt, err := Expiry(token)
	if err != nil {
		return false
	}
	return now.Unix() >= expiresAt.Unix()-int64(threshold/time.Second)
}

// # Token Issuance

// TokenService signs and verifies HS256 tokens.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService with a shared HMAC secret.
func NewTokenService(secret []byte, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("sec: hmac secret must be at least 16 bytes")
	}
	return &TokenService{secret: secret, issuer: issuer, now: time.Now}, nil
}

// WithClock returns a copy of the service that reads time from now.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *service
	clone.now = now
	return &clone
}

// GenerateAccessToken creates a signed token for a user that expires after timeToLive.
func (service *TokenService) GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error) {
	currentTime := service.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a token string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(StripBearer(tokenString), &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithTimeFunc(service.now), jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
