// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/testutil"
)

func TestArticleCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)

	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Hello World", Body: "Some **bold** text"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", a.Slug)
	assert.Equal(t, model.StatusDraft, a.Status)
	assert.Equal(t, model.VisibilityPublic, a.Visibility)
	assert.Equal(t, author.UserID, a.AuthorID)
	assert.Contains(t, a.BodyHTML, "<strong>bold</strong>")
	assert.NotEmpty(t, a.UUID)

	second, err := env.articles.Create(ctx, author, ArticleInput{Title: "Hello World"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", second.Slug)

	history, total, err := env.articles.History(ctx, author, a.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, history, 1)
	assert.Equal(t, "created", history[0].Action)

	assert.Equal(t, int64(2), env.pendingJobs(t, jobs.TypeGenerateMeta))
}

func TestArticleCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name  string
		in    ArticleInput
		field string
	}{
		{"missing title", ArticleInput{}, "title"},
		{"bad slug", ArticleInput{Title: "x", Slug: "Not A Slug"}, "slug"},
		{"password required", ArticleInput{Title: "x", Visibility: model.VisibilityPasswordProtected}, "password"},
		{"unknown visibility", ArticleInput{Title: "x", Visibility: "friends"}, "visibility"},
		{"published status", ArticleInput{Title: "x", Status: model.StatusPublished}, "status"},
		{"expired", ArticleInput{Title: "x", ExpiresAt: &past}, "expires_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.articles.Create(ctx, author, tt.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestArticleCreate_ExpiryAfterSchedule(t *testing.T) {
	env := newTestEnv(t)
	author := env.actor(t, model.RoleAuthor)
	scheduled := time.Now().Add(48 * time.Hour)
	expires := time.Now().Add(24 * time.Hour)

	_, err := env.articles.Create(context.Background(), author, ArticleInput{
		Title: "x", ScheduledAt: &scheduled, ExpiresAt: &expires,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "expires_at")
}

func TestArticleCreate_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.articles.Create(ctx, Guest(1), ArticleInput{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.articles.Create(ctx, env.actor(t, model.RoleReader), ArticleInput{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	author := env.actor(t, model.RoleAuthor)
	other := env.actor(t, model.RoleAuthor)
	_, err = env.articles.Create(ctx, author, ArticleInput{Title: "x", AuthorID: other.UserID})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestArticleCreate_Taxonomy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	news := testutil.CreateCategory(t, env.db, "News")
	tech := testutil.CreateCategory(t, env.db, "Tech")
	goTag := testutil.CreateTag(t, env.db, "Go")

	a, err := env.articles.Create(ctx, author, ArticleInput{
		Title:             "Tagged",
		CategoryIDs:       []int64{news.ID, tech.ID},
		PrimaryCategoryID: tech.ID,
		TagIDs:            []int64{goTag.ID},
	})
	require.NoError(t, err)

	view, err := env.articles.Get(ctx, author, a.ID)
	require.NoError(t, err)
	require.Len(t, view.Categories, 2)
	assert.Equal(t, news.ID, view.Categories[0].CategoryID)
	assert.False(t, view.Categories[0].IsPrimary)
	assert.True(t, view.Categories[1].IsPrimary)
	require.Len(t, view.Tags, 1)
	assert.Equal(t, "go", view.Tags[0].Slug)

	_, err = env.articles.Create(ctx, author, ArticleInput{Title: "Bad", CategoryIDs: []int64{9999}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "category_ids")
}

func TestArticlePublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	editor := env.actor(t, model.RoleEditor)

	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Publish me"})
	require.NoError(t, err)

	published, err := env.articles.Publish(ctx, editor, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.Status)
	assert.True(t, published.PublishedAt.Valid)
	assert.Equal(t, editor.UserID, published.ReviewedBy.Int64)
	assert.True(t, published.ReviewedAt.Valid)

	_, err = env.articles.Publish(ctx, editor, a.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestArticlePublish_PolicyBeforeState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	stranger := env.actor(t, model.RoleAuthor)

	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	_, err := env.articles.Publish(ctx, stranger, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.articles.Publish(ctx, author, a.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestArticlePublish_OwnArticle(t *testing.T) {
	env := newTestEnv(t)
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusDraft)

	published, err := env.articles.Publish(context.Background(), author, a.ID)
	require.NoError(t, err)
	assert.Equal(t, author.UserID, published.ReviewedBy.Int64)
}

func TestArticlePublish_StaleRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	first := env.actor(t, model.RoleEditor)
	second := env.actor(t, model.RoleEditor)

	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPending)
	stale := env.article(t, a.ID)

	published, err := env.articles.Publish(ctx, first, a.ID)
	require.NoError(t, err)

	// the second editor read the article before the first publish landed
	_, err = applyTransition(ctx, env.store, stale, model.StatusPublished, second.nullUserID(), time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidState)

	current := env.article(t, a.ID)
	assert.Equal(t, first.UserID, current.ReviewedBy.Int64)
	assert.Equal(t, published.PublishedAt.Time.Unix(), current.PublishedAt.Time.Unix())
}

func TestArticleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	editor := env.actor(t, model.RoleEditor)
	admin := env.actor(t, model.RoleAdmin)

	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Lifecycle"})
	require.NoError(t, err)

	submitted, err := env.articles.Submit(ctx, author, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, submitted.Status)

	_, err = env.articles.Submit(ctx, author, a.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	published, err := env.articles.Publish(ctx, editor, a.ID)
	require.NoError(t, err)

	unpublished, err := env.articles.Unpublish(ctx, editor, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, unpublished.Status)
	assert.False(t, unpublished.PublishedAt.Valid)
	assert.Equal(t, published.ReviewedBy, unpublished.ReviewedBy)

	_, err = env.articles.Archive(ctx, editor, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	archived, err := env.articles.Archive(ctx, admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, archived.Status)

	_, err = env.articles.Publish(ctx, admin, a.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	history, _, err := env.articles.History(ctx, author, a.ID, 10, 0)
	require.NoError(t, err)
	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.ElementsMatch(t, []string{"created", "submitted", "published", "unpublished", "archived"}, actions)
}

func TestArticleUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	stranger := env.actor(t, model.RoleAuthor)

	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Original"})
	require.NoError(t, err)
	_, err = env.articles.Create(ctx, author, ArticleInput{Title: "Taken"})
	require.NoError(t, err)

	title := "Changed"
	body := "New *body*"
	updated, err := env.articles.Update(ctx, author, a.ID, ArticleUpdate{Title: &title, Body: &body})
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
	assert.Equal(t, "original", updated.Slug)
	assert.Contains(t, updated.BodyHTML, "<em>body</em>")

	_, err = env.articles.Update(ctx, stranger, a.ID, ArticleUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	taken := "taken"
	_, err = env.articles.Update(ctx, author, a.ID, ArticleUpdate{Slug: &taken})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "slug")

	history, _, err := env.articles.History(ctx, author, a.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "updated", history[0].Action)
	assert.Contains(t, history[0].Changes, "Original")
}

func TestArticleUpdate_NotEditable(t *testing.T) {
	env := newTestEnv(t)
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	title := "Too late"
	_, err := env.articles.Update(context.Background(), author, a.ID, ArticleUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestArticleUpdate_PasswordVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Secret"})
	require.NoError(t, err)

	protected := model.VisibilityPasswordProtected
	_, err = env.articles.Update(ctx, author, a.ID, ArticleUpdate{Visibility: &protected})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "password")

	password := "open sesame"
	updated, err := env.articles.Update(ctx, author, a.ID, ArticleUpdate{Visibility: &protected, Password: &password})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.PasswordHash)

	public := model.VisibilityPublic
	updated, err = env.articles.Update(ctx, author, a.ID, ArticleUpdate{Visibility: &public})
	require.NoError(t, err)
	assert.Empty(t, updated.PasswordHash)
}

func TestArticleDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	editor := env.actor(t, model.RoleEditor)
	cat := testutil.CreateCategory(t, env.db, "News")
	tag := testutil.CreateTag(t, env.db, "Go")

	src, err := env.articles.Create(ctx, author, ArticleInput{
		Title: "Source", Body: "text", CategoryIDs: []int64{cat.ID}, TagIDs: []int64{tag.ID},
	})
	require.NoError(t, err)
	_, err = env.articles.Publish(ctx, editor, src.ID)
	require.NoError(t, err)
	require.NoError(t, env.counters.Increment(ctx, src.ID, store.CounterViews, 7))
	require.NoError(t, env.counters.Increment(ctx, src.ID, store.CounterShares, 2))

	dup, err := env.articles.Duplicate(ctx, editor, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.NotEqual(t, src.UUID, dup.UUID)
	assert.Equal(t, "source-copy", dup.Slug)
	assert.Equal(t, model.StatusDraft, dup.Status)
	assert.Equal(t, editor.UserID, dup.AuthorID)
	assert.False(t, dup.PublishedAt.Valid)
	assert.False(t, dup.ReviewedBy.Valid)
	assert.Zero(t, dup.ViewCount)
	assert.Zero(t, dup.ShareCount)
	assert.Zero(t, dup.CommentCount)
	assert.Equal(t, src.Body, dup.Body)

	view, err := env.articles.Get(ctx, editor, dup.ID)
	require.NoError(t, err)
	require.Len(t, view.Categories, 1)
	assert.Equal(t, cat.ID, view.Categories[0].CategoryID)
	require.Len(t, view.Tags, 1)
	assert.Equal(t, tag.ID, view.Tags[0].TagID)

	again, err := env.articles.Duplicate(ctx, editor, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "source-copy-2", again.Slug)
}

func TestArticleDeleteRestore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	stranger := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusDraft)

	assert.ErrorIs(t, env.articles.Delete(ctx, stranger, a.ID), ErrForbidden)
	require.NoError(t, env.articles.Delete(ctx, author, a.ID))

	_, err := env.articles.Get(ctx, author, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.articles.Delete(ctx, author, a.ID), ErrNotFound)

	restored, err := env.articles.Restore(ctx, author, a.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)

	_, err = env.articles.Restore(ctx, author, a.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestArticleGet_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	otherAuthor := env.actor(t, model.RoleAuthor)
	reader := env.actor(t, model.RoleReader)
	editor := env.actor(t, model.RoleEditor)
	admin := env.actor(t, model.RoleAdmin)

	a, err := env.articles.Create(ctx, author, ArticleInput{
		Title: "Members", Body: "secret body", Visibility: model.VisibilityPasswordProtected, Password: "letmein",
	})
	require.NoError(t, err)

	_, err = env.articles.Get(ctx, Guest(1), a.ID)
	assert.ErrorIs(t, err, ErrForbidden, "drafts are hidden from guests")

	_, err = env.articles.Publish(ctx, editor, a.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		actor  Actor
		locked bool
	}{
		{"guest", Guest(1), true},
		{"other author", otherAuthor, true},
		{"reader", reader, true},
		{"author", author, false},
		{"editor", editor, false},
		{"admin", admin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := env.articles.Get(ctx, tt.actor, a.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.locked, view.Locked)
			if tt.locked {
				assert.Empty(t, view.Body)
			} else {
				assert.Equal(t, "secret body", view.Body)
			}
		})
	}

	unlocked, err := env.articles.Unlock(ctx, Guest(1), a.ID, "letmein")
	require.NoError(t, err)
	assert.Equal(t, "secret body", unlocked.Body)

	_, err = env.articles.Unlock(ctx, Guest(1), a.ID, "wrong")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestArticleGet_Private(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	reader := env.actor(t, model.RoleReader)

	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Private", Visibility: model.VisibilityPrivate})
	require.NoError(t, err)
	_, err = env.articles.Publish(ctx, author, a.ID)
	require.NoError(t, err)

	_, err = env.articles.Get(ctx, Guest(1), a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := env.articles.GetBySlug(ctx, reader, a.Slug)
	require.NoError(t, err)
	assert.True(t, view.Locked)
}

func TestArticleGet_CacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Before"})
	require.NoError(t, err)

	view, err := env.articles.Get(ctx, author, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Before", view.Title)

	title := "After"
	_, err = env.articles.Update(ctx, author, a.ID, ArticleUpdate{Title: &title})
	require.NoError(t, err)

	view, err = env.articles.Get(ctx, author, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", view.Title)

	require.NoError(t, env.counters.Increment(ctx, a.ID, store.CounterViews, 3))
	view, err = env.articles.Get(ctx, author, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.ViewCount)
}

func TestArticleList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	admin := env.actor(t, model.RoleAdmin)

	testutil.CreateArticle(t, env.db, author.UserID, model.StatusDraft)
	testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)
	testutil.CreateArticle(t, env.db, author.UserID, model.StatusPending)

	items, total, err := env.articles.List(ctx, Guest(1), ArticleFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, model.StatusPublished, items[0].Status)

	_, total, err = env.articles.List(ctx, admin, ArticleFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, total, err = env.articles.List(ctx, author, ArticleFilter{AuthorID: author.UserID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, _, err = env.articles.List(ctx, admin, ArticleFilter{Status: "bogus"})
	assert.True(t, IsValidation(err))
}

func TestArticleStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)
	require.NoError(t, env.counters.Increment(ctx, a.ID, store.CounterViews, 4))

	stats, err := env.articles.Stats(ctx, author, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Views)

	_, err = env.articles.Stats(ctx, Guest(1), a.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPublishScheduled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	due := time.Now().Add(-time.Minute)
	later := time.Now().Add(time.Hour)

	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Due", ScheduledAt: &due})
	require.NoError(t, err)
	b, err := env.articles.Create(ctx, author, ArticleInput{Title: "Later", ScheduledAt: &later})
	require.NoError(t, err)

	n, err := env.articles.PublishScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	published := env.article(t, a.ID)
	assert.Equal(t, model.StatusPublished, published.Status)
	assert.True(t, published.PublishedAt.Valid)
	assert.False(t, published.ScheduledAt.Valid)
	assert.Equal(t, model.StatusDraft, env.article(t, b.ID).Status)

	n, err = env.articles.PublishScheduled(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishScheduled_SkipsExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusDraft)
	now := time.Now().UTC()
	_, err := env.db.Exec(`UPDATE articles SET scheduled_at = ?, expires_at = ? WHERE id = ?`,
		now.Add(-2*time.Hour), now.Add(-time.Hour), a.ID)
	require.NoError(t, err)

	n, err := env.articles.PublishScheduled(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored := env.article(t, a.ID)
	assert.Equal(t, model.StatusDraft, stored.Status)
	assert.False(t, stored.PublishedAt.Valid)

	// the guard also holds when the listing is bypassed
	n = env.articles.systemTransition(ctx, []store.Article{stored}, model.StatusPublished, model.EventArticlePublished)
	assert.Zero(t, n)
	assert.Equal(t, model.StatusDraft, env.article(t, a.ID).Status)
}

func TestArticleUpdate_ScheduleKeepsExpiryLater(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	scheduled := time.Now().Add(time.Hour)
	expires := time.Now().Add(2 * time.Hour)
	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Timed", ScheduledAt: &scheduled, ExpiresAt: &expires})
	require.NoError(t, err)

	tooLate := time.Now().Add(3 * time.Hour)
	_, err = env.articles.Update(ctx, author, a.ID, ArticleUpdate{ScheduledAt: &tooLate})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "expires_at")
	assert.WithinDuration(t, scheduled, env.article(t, a.ID).ScheduledAt.Time, time.Second)

	updated, err := env.articles.Update(ctx, author, a.ID, ArticleUpdate{ScheduledAt: &tooLate, ClearExpiresAt: true})
	require.NoError(t, err)
	assert.False(t, updated.ExpiresAt.Valid)
	assert.WithinDuration(t, tooLate, updated.ScheduledAt.Time, time.Second)
}

func TestArticleUpdate_PasswordLength(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a, err := env.articles.Create(ctx, author, ArticleInput{Title: "Guarded"})
	require.NoError(t, err)

	protected := model.VisibilityPasswordProtected
	for _, password := range []string{"abc", strings.Repeat("x", 129)} {
		_, err = env.articles.Update(ctx, author, a.ID, ArticleUpdate{Visibility: &protected, Password: &password})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "password of length %d", len(password))
		assert.Contains(t, ve.Fields, "password")
	}

	longest := strings.Repeat("x", 128)
	_, err = env.articles.Update(ctx, author, a.ID, ArticleUpdate{Visibility: &protected, Password: &longest})
	require.NoError(t, err)
}

func TestArchiveExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)
	_, err := env.db.Exec(`UPDATE articles SET expires_at = ? WHERE id = ?`, time.Now().UTC().Add(-time.Second), a.ID)
	require.NoError(t, err)

	n, err := env.articles.ArchiveExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.StatusArchived, env.article(t, a.ID).Status)
}
