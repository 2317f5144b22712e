// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/model"
)

func TestTaxonomy_Categories(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTaxonomyService(env.store, env.perms)
	ctx := context.Background()
	editor := env.actor(t, model.RoleEditor)
	author := env.actor(t, model.RoleAuthor)

	_, err := svc.CreateCategory(ctx, author, CategoryInput{Name: "News"})
	assert.ErrorIs(t, err, ErrForbidden)

	news, err := svc.CreateCategory(ctx, editor, CategoryInput{Name: "News & Views"})
	require.NoError(t, err)
	assert.Equal(t, "news-views", news.Slug)

	dup, err := svc.CreateCategory(ctx, editor, CategoryInput{Name: "News & Views"})
	require.NoError(t, err)
	assert.Equal(t, "news-views-2", dup.Slug)

	_, err = svc.CreateCategory(ctx, editor, CategoryInput{Name: "Other", Slug: "news-views"})
	assert.True(t, IsValidation(err))

	child, err := svc.CreateCategory(ctx, editor, CategoryInput{Name: "Local", ParentID: news.ID})
	require.NoError(t, err)
	assert.Equal(t, news.ID, child.ParentID.Int64)

	_, err = svc.CreateCategory(ctx, editor, CategoryInput{Name: "Orphan", ParentID: 999999})
	assert.True(t, IsValidation(err))

	// news -> local -> news
	_, err = svc.UpdateCategory(ctx, editor, news.ID, CategoryInput{Name: news.Name, ParentID: child.ID})
	assert.True(t, IsValidation(err))

	renamed, err := svc.UpdateCategory(ctx, editor, dup.ID, CategoryInput{Name: "Opinion", Slug: "opinion"})
	require.NoError(t, err)
	assert.Equal(t, "opinion", renamed.Slug)

	all, err := svc.Categories(ctx, author)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, svc.DeleteCategory(ctx, editor, renamed.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, editor, renamed.ID), ErrNotFound)
}

func TestTaxonomy_Tags(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTaxonomyService(env.store, env.perms)
	ctx := context.Background()
	editor := env.actor(t, model.RoleEditor)

	_, err := svc.CreateTag(ctx, editor, "   ")
	assert.True(t, IsValidation(err))

	tag, err := svc.CreateTag(ctx, editor, "Go Lang")
	require.NoError(t, err)
	assert.Equal(t, "go-lang", tag.Slug)

	renamed, err := svc.RenameTag(ctx, editor, tag.ID, "Golang")
	require.NoError(t, err)
	assert.Equal(t, "Golang", renamed.Name)
	assert.Equal(t, "go-lang", renamed.Slug)

	_, err = svc.RenameTag(ctx, env.actor(t, model.RoleReader), tag.ID, "Nope")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteTag(ctx, editor, tag.ID))
	tags, err := svc.Tags(ctx, editor)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
