// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/content"
	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/metrics"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/testutil"
)

type testEnv struct {
	db       *sql.DB
	store    *store.Store
	cache    *cache.MemoryCache
	perms    *PermissionService
	registry *Registry
	queue    *jobs.Queue
	counters *CounterService
	articles *ArticleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	logger := testutil.TestLoggerSilent()
	s := store.NewStore(db)
	c := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	perms := NewPermissionService(s)
	registry := NewRegistry(logger)
	queue := jobs.NewQueue(s, jobs.DefaultMaxAttempts)
	RegisterListeners(registry, ListenerDeps{Store: s, Cache: c, Queue: queue, Logger: logger})

	return &testEnv{
		db:       db,
		store:    s,
		cache:    c,
		perms:    perms,
		registry: registry,
		queue:    queue,
		counters: NewCounterService(s, c, metrics.New(), logger),
		articles: NewArticleService(s, perms, registry, content.NewRenderer(), c, time.Minute, logger),
	}
}

func (e *testEnv) actor(t *testing.T, roles ...string) Actor {
	t.Helper()
	u := testutil.CreateUser(t, e.db, roles...)
	return Actor{UserID: u.ID, TenantID: u.TenantID, IP: "192.0.2.10", UserAgent: "test-agent"}
}

func (e *testEnv) article(t *testing.T, id int64) store.Article {
	t.Helper()
	a, err := e.store.GetArticleWithTrashed(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (e *testEnv) pendingJobs(t *testing.T, jobType string) int64 {
	t.Helper()
	n, err := e.store.CountJobsByStatus(context.Background(), store.JobStatusPending, jobType)
	require.NoError(t, err)
	return n
}
