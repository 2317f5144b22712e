// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/session"
	"github.com/olegiv/olib-go/internal/store"
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	User        store.User `json:"user"`
	AuthMethod  string     `json:"auth_method"`
	Permissions []string   `json:"permissions"`
}

// APIKeyRequest is the request body for POST /auth/api-keys.
type APIKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// APIKeyResponse returns a freshly created key. Key is only ever shown once.
type APIKeyResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Prefix    string     `json:"prefix"`
	Key       string     `json:"key"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{"email": "cannot be blank", "password": "cannot be blank"})
		return
	}

	if locked, remaining := h.login.IsAccountLocked(email); locked {
		middleware.WriteLocked(w, remaining)
		return
	}

	user, err := h.svc.Auth.Login(r.Context(), email, req.Password, middleware.ClientIP(r))
	if errors.Is(err, service.ErrInvalidCredentials) {
		if locked, lockout := h.login.RecordFailedAttempt(email); locked {
			middleware.WriteLocked(w, lockout)
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.login.RecordSuccessfulLogin(email)

	if h.sessions != nil {
		if err := session.Login(r.Context(), h.sessions, user.ID); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
	}
	WriteSuccess(w, user)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil && middleware.GetAuthMethod(r) == middleware.AuthMethodSession {
		if err := session.Logout(r.Context(), h.sessions); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r)
	user, err := h.store.GetUser(r.Context(), actor.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	perms, err := h.svc.Permissions.Permissions(r.Context(), actor.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, MeResponse{
		User:        user,
		AuthMethod:  middleware.GetAuthMethod(r),
		Permissions: perms,
	})
}

// CreateAPIKey handles POST /api/v1/auth/api-keys.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if !decode(w, r, &req) {
		return
	}
	raw, key, err := h.svc.Auth.CreateAPIKey(r.Context(), middleware.GetActor(r), req.Name, req.ExpiresAt)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	resp := APIKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Prefix:    key.KeyPrefix,
		Key:       raw,
		CreatedAt: key.CreatedAt,
	}
	if key.ExpiresAt.Valid {
		resp.ExpiresAt = &key.ExpiresAt.Time
	}
	WriteCreated(w, resp)
}
