// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// request protection and request context handling.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"filippo.io/csrf/gorilla"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/session"
	"github.com/olegiv/olib-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyActor      ContextKey = "actor"
	ContextKeyAuthMethod ContextKey = "auth_method"
)

// Authentication methods stored in the request context.
const (
	AuthMethodNone    = ""
	AuthMethodSession = "session"
	AuthMethodAPIKey  = "api_key"
)

// UserLoader loads session users.
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (store.User, error)
}

// KeyAuthenticator resolves API keys to actors.
type KeyAuthenticator interface {
	ActorForAPIKey(ctx context.Context, rawKey string) (service.Actor, error)
}

// Authenticate resolves the caller and stores a service.Actor in the request
// context. A Bearer token takes precedence over the session cookie; an
// invalid token is rejected with 401. Requests without credentials continue
// as guests. Bearer requests are exempt from cross-origin checks since they
// carry no ambient credentials.
func Authenticate(sm *scs.SessionManager, users UserLoader, keys KeyAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := service.Guest(service.DefaultTenantID)
			actor.IP = ClientIP(r)
			actor.UserAgent = r.UserAgent()
			method := AuthMethodNone

			if header := r.Header.Get("Authorization"); header != "" {
				rawKey, ok := bearerToken(header)
				if !ok {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <api_key>", nil)
					return
				}
				keyActor, err := keys.ActorForAPIKey(r.Context(), rawKey)
				if err != nil {
					if errors.Is(err, service.ErrInvalidCredentials) {
						WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key", nil)
					} else {
						slog.Error("failed to validate API key", "error", err)
						WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate API key", nil)
					}
					return
				}
				actor.UserID, actor.TenantID = keyActor.UserID, keyActor.TenantID
				method = AuthMethodAPIKey
				r = csrf.UnsafeSkipCheck(r)
			} else if sm != nil {
				if userID := session.UserID(r.Context(), sm); userID > 0 {
					user, err := users.GetUser(r.Context(), userID)
					if err != nil || !user.IsActive {
						// stale or disabled account: drop the session and continue as guest
						_ = session.Logout(r.Context(), sm)
					} else {
						actor.UserID, actor.TenantID = user.ID, user.TenantID
						method = AuthMethodSession
					}
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeyActor, actor)
			ctx = context.WithValue(ctx, ContextKeyAuthMethod, method)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects guests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetActor(r).IsGuest() {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetActor returns the actor stored by Authenticate, or a guest in the
// default tenant.
func GetActor(r *http.Request) service.Actor {
	actor, ok := r.Context().Value(ContextKeyActor).(service.Actor)
	if !ok {
		actor = service.Guest(service.DefaultTenantID)
		actor.IP = ClientIP(r)
		actor.UserAgent = r.UserAgent()
	}
	return actor
}

// GetAuthMethod returns how the request was authenticated.
func GetAuthMethod(r *http.Request) string {
	method, _ := r.Context().Value(ContextKeyAuthMethod).(string)
	return method
}

// WithActor returns a copy of ctx carrying actor. Used by tests and
// internal callers that bypass Authenticate.
func WithActor(ctx context.Context, actor service.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// ClientIP returns the caller address without port. chi's RealIP middleware
// has already applied X-Real-IP / X-Forwarded-For to RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
