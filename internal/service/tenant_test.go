// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/testutil"
)

// otherTenant returns a user of tenant 1 acting as if it belonged to tenant 2.
func (e *testEnv) otherTenant(t *testing.T, roles ...string) Actor {
	t.Helper()
	a := e.actor(t, roles...)
	a.TenantID = 2
	return a
}

func TestTenantIsolation_Articles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	admin2 := env.otherTenant(t, model.RoleAdmin)

	draft := testutil.CreateArticle(t, env.db, author.UserID, model.StatusDraft)
	live := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	_, err := env.articles.Publish(ctx, admin2, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, model.StatusDraft, env.article(t, draft.ID).Status)

	title := "Hijacked"
	_, err = env.articles.Update(ctx, admin2, draft.ID, ArticleUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.articles.Archive(ctx, admin2, live.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.articles.Delete(ctx, admin2, live.ID), ErrNotFound)
	_, err = env.articles.Duplicate(ctx, admin2, live.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.articles.Stats(ctx, admin2, live.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = env.articles.History(ctx, admin2, live.ID, 10, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	// the cached view loaded for tenant 1 must not leak to tenant 2
	view, err := env.articles.Get(ctx, Guest(1), live.ID)
	require.NoError(t, err)
	assert.Equal(t, live.Title, view.Title)
	_, err = env.articles.Get(ctx, Guest(2), live.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.articles.Get(ctx, admin2, live.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, model.StatusPublished, env.article(t, live.ID).Status)
	assert.False(t, env.article(t, live.ID).DeletedAt.Valid)
}

func TestTenantIsolation_Taxonomy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	editor2 := env.otherTenant(t, model.RoleEditor)
	svc := NewTaxonomyService(env.store, env.perms)

	now := time.Now().UTC()
	foreignCat, err := env.store.CreateCategory(ctx, store.CreateCategoryParams{
		TenantID: 2, Name: "Foreign", Slug: "foreign", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	foreignTag, err := env.store.CreateTag(ctx, store.CreateTagParams{
		TenantID: 2, Name: "Foreign", Slug: "foreign", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	_, err = env.articles.Create(ctx, author, ArticleInput{Title: "Cats", CategoryIDs: []int64{foreignCat.ID}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "category_ids")

	_, err = env.articles.Create(ctx, author, ArticleInput{Title: "Tags", TagIDs: []int64{foreignTag.ID}})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "tag_ids")

	own := testutil.CreateCategory(t, env.db, "Own")
	_, err = svc.UpdateCategory(ctx, editor2, own.ID, CategoryInput{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, editor2, own.ID), ErrNotFound)

	ownTag := testutil.CreateTag(t, env.db, "own-tag")
	_, err = svc.RenameTag(ctx, editor2, ownTag.ID, "Renamed")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTag(ctx, editor2, ownTag.ID), ErrNotFound)

	editor := env.actor(t, model.RoleEditor)
	_, err = svc.CreateCategory(ctx, editor, CategoryInput{Name: "Child", ParentID: foreignCat.ID})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "parent_id")
}

func TestTenantIsolation_Engagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	comments := newCommentService(env)
	_, err := comments.Create(ctx, env.otherTenant(t), CreateCommentInput{ArticleID: a.ID, Body: "Hello"})
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := comments.Create(ctx, author, CreateCommentInput{ArticleID: a.ID, Body: "Mine"})
	require.NoError(t, err)
	assert.ErrorIs(t, comments.Delete(ctx, env.otherTenant(t, model.RoleAdmin), c.ID), ErrNotFound)

	shares := NewShareService(env.store, env.counters, env.perms, nil, testutil.TestLoggerSilent())
	_, err = shares.Create(ctx, Guest(2), a.ID, model.ShareLink)
	assert.ErrorIs(t, err, ErrNotFound)

	ratings := NewRatingService(env.store, env.queue)
	assert.ErrorIs(t, ratings.Rate(ctx, env.otherTenant(t), a.ID, 5), ErrNotFound)

	assert.Zero(t, env.article(t, a.ID).ShareCount)
}
