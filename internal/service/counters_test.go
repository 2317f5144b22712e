// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/testutil"
)

func TestCounters_FloorAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	require.NoError(t, env.counters.Increment(ctx, a.ID, store.CounterShares, 2))
	require.NoError(t, env.counters.Decrement(ctx, a.ID, store.CounterShares, 5))
	assert.Zero(t, env.article(t, a.ID).ShareCount)

	require.NoError(t, env.counters.Decrement(ctx, a.ID, store.CounterComments, 1))
	assert.Zero(t, env.article(t, a.ID).CommentCount)
}

func TestCounters_ByDefaultsToOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	require.NoError(t, env.counters.Increment(ctx, a.ID, store.CounterViews, 0))
	require.NoError(t, env.counters.Increment(ctx, a.ID, store.CounterViews, -3))
	assert.Equal(t, int64(2), env.article(t, a.ID).ViewCount)
}

func TestCounters_UnknownArticle(t *testing.T) {
	env := newTestEnv(t)
	err := env.counters.Increment(context.Background(), 424242, store.CounterViews, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCounters_ConcurrentIncrements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- env.counters.Increment(ctx, a.ID, store.CounterViews, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(workers), env.article(t, a.ID).ViewCount)
}

func TestCounters_ViewDedupe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	key := cache.ViewDedupeKey(a.ID, cache.VisitorFingerprint("198.51.100.7", "agent"))
	counted, err := env.counters.IncrementViews(ctx, a.ID, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, counted)

	counted, err = env.counters.IncrementViews(ctx, a.ID, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, counted)

	other := cache.ViewDedupeKey(a.ID, cache.VisitorFingerprint("198.51.100.8", "agent"))
	counted, err = env.counters.IncrementViews(ctx, a.ID, other, time.Hour)
	require.NoError(t, err)
	assert.True(t, counted)

	assert.Equal(t, int64(2), env.article(t, a.ID).ViewCount)
}

func TestCounters_ViewWithoutDedupe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.actor(t, model.RoleAuthor)
	a := testutil.CreateArticle(t, env.db, author.UserID, model.StatusPublished)

	for range 3 {
		counted, err := env.counters.IncrementViews(ctx, a.ID, "", 0)
		require.NoError(t, err)
		assert.True(t, counted)
	}
	assert.Equal(t, int64(3), env.article(t, a.ID).ViewCount)
}
