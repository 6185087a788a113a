// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/ctxutil"
	"github.com/taibuivan/autocare/internal/platform/respond"
	"github.com/taibuivan/autocare/internal/platform/sec"
)

// SessionGate is the view of the session the gating middleware needs.
// It is satisfied by *session.Manager.
type SessionGate interface {
	Identity() (userID string, role string, ok bool)
	RequestAuthPrompt()
}

// RequireSession blocks requests while no customer is signed in.
//
// # Flow
//  1. Ask the gate for the current identity.
//  2. If absent, raise the auth prompt and abort with HTTP 401 (requires_auth).
//  3. Otherwise attach the user ID to the context and the request logger.
func RequireSession(gate SessionGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			userID, _, ok := gate.Identity()
			if !ok {
				gate.RequestAuthPrompt()
				respond.Error(writer, request, apperr.AuthRequired("Please log in to continue."))
				return
			}

			next.ServeHTTP(writer, request.WithContext(admit(request.Context(), userID)))
		})
	}
}

// RequireRole blocks requests unless the session user holds at least role.
// It implies [RequireSession].
func RequireRole(gate SessionGate, role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			userID, userRole, ok := gate.Identity()

			// ── 1. Authentication Check ───────────────────────────────────────
			if !ok {
				gate.RequestAuthPrompt()
				respond.Error(writer, request, apperr.AuthRequired("Please log in to continue."))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !sec.UserRole(userRole).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden(apperr.MsgForbidden))
				return
			}

			next.ServeHTTP(writer, request.WithContext(admit(request.Context(), userID)))
		})
	}
}

// admit records the session user on the context, the request logger and the access log.
func admit(ctx context.Context, userID string) context.Context {
	if slot, ok := ctx.Value(identitySlotKey{}).(*identitySlot); ok {
		slot.set(userID)
	}
	ctx = ctxutil.WithUserID(ctx, userID)
	return ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", userID)))
}
