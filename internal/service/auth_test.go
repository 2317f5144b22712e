// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/auth"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/testutil"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	events := NewEventService(env.store, testutil.TestLoggerSilent())
	svc := NewAuthService(env.store, events, testutil.TestLoggerSilent())
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, model.RoleAuthor)
	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NoError(t, env.store.UpdateUserPassword(ctx, user.ID, hash, time.Now().UTC()))

	got, err := svc.Login(ctx, "  "+user.Email+" ", "correct horse battery", "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.LastLoginAt.Valid)

	_, err = svc.Login(ctx, user.Email, "wrong", "192.0.2.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "whatever", "192.0.2.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.db.Exec(`UPDATE users SET is_active = 0 WHERE id = ?`, user.ID)
	require.NoError(t, err)
	_, err = svc.Login(ctx, user.Email, "correct horse battery", "192.0.2.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := events.List(ctx, "", model.EventCategoryAuth, 10, 0)
	require.NoError(t, err)
	assert.Len(t, logged, 4)
}

func TestAPIKeys(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.store, nil, testutil.TestLoggerSilent())
	ctx := context.Background()
	owner := env.actor(t, model.RoleEditor)

	_, _, err := svc.CreateAPIKey(ctx, Guest(1), "ci", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.CreateAPIKey(ctx, owner, " ", nil)
	assert.True(t, IsValidation(err))

	raw, key, err := svc.CreateAPIKey(ctx, owner, "ci", nil)
	require.NoError(t, err)
	assert.NotEqual(t, raw, key.KeyHash)
	assert.True(t, key.IsActive)

	actor, err := svc.ActorForAPIKey(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, actor.UserID)
	assert.Equal(t, owner.TenantID, actor.TenantID)

	_, err = svc.ActorForAPIKey(ctx, raw+"x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	past := time.Now().Add(-time.Hour)
	expiredRaw, _, err := svc.CreateAPIKey(ctx, owner, "old", &past)
	require.NoError(t, err)
	_, err = svc.ActorForAPIKey(ctx, expiredRaw)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.store.DeactivateAPIKey(ctx, key.ID, time.Now().UTC()))
	_, err = svc.ActorForAPIKey(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
