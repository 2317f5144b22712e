// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

func TestUserHasAny(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)

	tests := []struct {
		name   string
		userID int64
		names  []string
		want   bool
	}{
		{"no user", 0, []string{model.RoleAuthor}, false},
		{"no names", author.UserID, nil, false},
		{"role slug", author.UserID, []string{model.RoleAuthor}, true},
		{"role name any case", author.UserID, []string{"AUTHOR"}, true},
		{"one of several", author.UserID, []string{model.RoleEditor, model.RoleAuthor}, true},
		{"granted permission", author.UserID, []string{model.PermArticlesCreate}, true},
		{"missing permission", author.UserID, []string{model.PermArticlesPublish}, false},
		{"no wildcard", author.UserID, []string{"articles.*"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.perms.UserHasAny(ctx, tt.userID, tt.names)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAdminAndPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.actor(t, model.RoleAdmin)
	reader := env.actor(t, model.RoleReader)

	ok, err := env.perms.IsAdmin(ctx, admin.UserID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.perms.IsAdmin(ctx, reader.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := env.perms.Permissions(ctx, reader.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.PermArticlesView}, names)
}

func policyArticle(authorID int64, status, visibility string) store.Article {
	a := store.Article{ID: 1, TenantID: 1, AuthorID: authorID, Status: status, Visibility: visibility}
	if status == model.StatusPublished {
		a.PublishedAt = sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true}
	}
	return a
}

func TestArticlePolicy_ViewFullContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	policy := NewArticlePolicy(env.perms)

	author := env.actor(t, model.RoleAuthor)
	reader := env.actor(t, model.RoleReader)
	editor := env.actor(t, model.RoleEditor)
	admin := env.actor(t, model.RoleAdmin)
	private := policyArticle(author.UserID, model.StatusPublished, model.VisibilityPrivate)

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"guest", Guest(1), false},
		{"reader without view_full", reader, false},
		{"author", author, true},
		{"editor with view_full", editor, true},
		{"admin", admin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.ViewFullContent(ctx, tt.actor, private)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArticlePolicy_PublicTier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	policy := NewArticlePolicy(env.perms)
	author := env.actor(t, model.RoleAuthor)
	guest := Guest(1)

	live := policyArticle(author.UserID, model.StatusPublished, model.VisibilityPublic)
	ok, err := policy.View(ctx, guest, live)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = policy.ViewFullContent(ctx, guest, live)
	require.NoError(t, err)
	assert.True(t, ok)

	// the public tier does not extend to writes or statistics
	for _, check := range []func(context.Context, Actor, store.Article) (bool, error){
		policy.Update, policy.Delete, policy.Publish, policy.ViewStats,
	} {
		ok, err = check(ctx, guest, live)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	protected := policyArticle(author.UserID, model.StatusPublished, model.VisibilityPasswordProtected)
	ok, err = policy.View(ctx, guest, protected)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = policy.ViewFullContent(ctx, guest, protected)
	require.NoError(t, err)
	assert.False(t, ok)

	draft := policyArticle(author.UserID, model.StatusDraft, model.VisibilityPublic)
	ok, err = policy.View(ctx, guest, draft)
	require.NoError(t, err)
	assert.False(t, ok)

	trashed := live
	trashed.DeletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	ok, err = policy.View(ctx, guest, trashed)
	require.NoError(t, err)
	assert.False(t, ok)

	// an expired article is hidden before the archive job runs
	expired := live
	expired.ExpiresAt = sql.NullTime{Time: time.Now().Add(-time.Minute), Valid: true}
	ok, err = policy.View(ctx, guest, expired)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = policy.ViewFullContent(ctx, guest, expired)
	require.NoError(t, err)
	assert.False(t, ok)

	future := live
	future.ExpiresAt = sql.NullTime{Time: time.Now().Add(time.Hour), Valid: true}
	ok, err = policy.View(ctx, guest, future)
	require.NoError(t, err)
	assert.True(t, ok)

	foreign := live
	foreign.TenantID = 2
	ok, err = policy.View(ctx, guest, foreign)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArticlePolicy_AuthorshipAndPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	policy := NewArticlePolicy(env.perms)
	author := env.actor(t, model.RoleAuthor)
	other := env.actor(t, model.RoleAuthor)
	editor := env.actor(t, model.RoleEditor)
	draft := policyArticle(author.UserID, model.StatusDraft, model.VisibilityPublic)

	ok, err := policy.Publish(ctx, author, draft)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = policy.Publish(ctx, other, draft)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = policy.Update(ctx, editor, draft)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = policy.Create(ctx, other)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = policy.Create(ctx, Guest(1))
	require.NoError(t, err)
	assert.False(t, ok)
}
