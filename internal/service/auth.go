// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/olib-go/internal/auth"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords,
// inactive accounts and unusable API keys alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates users by password and by API key.
type AuthService struct {
	q      store.Querier
	events *EventService
	logger *slog.Logger
}

// NewAuthService creates an AuthService. events may be nil.
func NewAuthService(q store.Querier, events *EventService, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{q: q, events: events, logger: logger}
}

// Login checks the credentials and records the login time. Hashes created
// with older parameters are upgraded in place.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.q.GetUserByEmail(ctx, email)
	if err != nil {
		if store.IsNoRows(err) {
			s.audit(ctx, model.EventLevelWarning, "Login failed: unknown email", Actor{IP: ip}, email)
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, err
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.audit(ctx, model.EventLevelWarning, "Login failed: wrong password", Actor{UserID: user.ID, IP: ip}, email)
		return store.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.audit(ctx, model.EventLevelWarning, "Login failed: account inactive", Actor{UserID: user.ID, IP: ip}, email)
		return store.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.q.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		return store.User{}, err
	}
	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.q.UpdateUserPassword(ctx, user.ID, hash, now); err != nil {
				s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	s.audit(ctx, model.EventLevelInfo, "User logged in", Actor{UserID: user.ID, IP: ip}, email)
	user.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	return user, nil
}

// ActorForAPIKey resolves a raw API key to the actor it authenticates. A key
// acts with the identity and permissions of the user who created it.
func (s *AuthService) ActorForAPIKey(ctx context.Context, rawKey string) (Actor, error) {
	key, err := s.q.GetAPIKeyByHash(ctx, model.HashAPIKey(rawKey))
	if err != nil {
		if store.IsNoRows(err) {
			return Actor{}, ErrInvalidCredentials
		}
		return Actor{}, err
	}
	now := time.Now().UTC()
	if !key.IsActive || (key.ExpiresAt.Valid && !key.ExpiresAt.Time.After(now)) {
		return Actor{}, ErrInvalidCredentials
	}

	creator, err := s.q.GetUser(ctx, key.CreatedBy)
	if err != nil || !creator.IsActive {
		return Actor{}, ErrInvalidCredentials
	}

	if err := s.q.UpdateAPIKeyLastUsed(ctx, store.UpdateAPIKeyLastUsedParams{
		ID: key.ID, LastUsedAt: sql.NullTime{Time: now, Valid: true},
	}); err != nil {
		s.logger.Warn("updating api key last use", "key_id", key.ID, "error", err)
	}
	return Actor{UserID: creator.ID, TenantID: creator.TenantID}, nil
}

// CreateAPIKey issues a key for actor. The raw key is returned once and only
// its hash is stored.
func (s *AuthService) CreateAPIKey(ctx context.Context, actor Actor, name string, expiresAt *time.Time) (string, store.ApiKey, error) {
	if actor.IsGuest() {
		return "", store.ApiKey{}, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", store.ApiKey{}, NewValidationError("name", "cannot be blank")
	}
	raw, prefix, err := model.GenerateAPIKey()
	if err != nil {
		return "", store.ApiKey{}, err
	}
	key, err := s.q.CreateAPIKey(ctx, store.CreateAPIKeyParams{
		Name:      name,
		KeyHash:   model.HashAPIKey(raw),
		KeyPrefix: prefix,
		ExpiresAt: nullTime(expiresAt),
		CreatedBy: actor.UserID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", store.ApiKey{}, err
	}
	return raw, key, nil
}

func (s *AuthService) audit(ctx context.Context, level, message string, actor Actor, email string) {
	if s.events == nil {
		return
	}
	_ = s.events.LogAuthEvent(ctx, level, message, actor, map[string]any{"email": email})
}
