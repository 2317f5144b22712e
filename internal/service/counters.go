// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/metrics"
	"github.com/olegiv/olib-go/internal/store"
)

// CounterService maintains the denormalized article aggregates.
type CounterService struct {
	q       store.Querier
	cache   cache.Cacher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCounterService creates a CounterService. m may be nil.
func NewCounterService(q store.Querier, c cache.Cacher, m *metrics.Metrics, logger *slog.Logger) *CounterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CounterService{q: q, cache: c, metrics: m, logger: logger}
}

// Increment adds by (at least 1) to column of the article.
func (s *CounterService) Increment(ctx context.Context, articleID int64, column store.CounterColumn, by int64) error {
	if by < 1 {
		by = 1
	}
	return s.adjust(ctx, articleID, column, by)
}

// Decrement subtracts by (at least 1) from column, never going below zero.
func (s *CounterService) Decrement(ctx context.Context, articleID int64, column store.CounterColumn, by int64) error {
	if by < 1 {
		by = 1
	}
	return s.adjust(ctx, articleID, column, -by)
}

func (s *CounterService) adjust(ctx context.Context, articleID int64, column store.CounterColumn, delta int64) error {
	n, err := s.q.AdjustArticleCounter(ctx, articleID, column, delta)
	if err != nil {
		return fmt.Errorf("adjusting %s: %w", column, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.metrics.CounterAdjusted(string(column), delta)
	s.InvalidateArticle(ctx, articleID)
	return nil
}

// IncrementViews counts a view. With a dedupe key, the view is only counted
// when no marker for the key exists yet; the marker expires after ttl. It
// reports whether the view was counted.
func (s *CounterService) IncrementViews(ctx context.Context, articleID int64, dedupeKey string, ttl time.Duration) (bool, error) {
	if dedupeKey != "" && s.cache != nil {
		stored, err := s.cache.SetNX(ctx, dedupeKey, []byte{1}, ttl)
		if err != nil {
			return false, fmt.Errorf("storing view marker: %w", err)
		}
		if !stored {
			s.metrics.ViewDeduplicated()
			return false, nil
		}
	}

	if err := s.adjust(ctx, articleID, store.CounterViews, 1); err != nil {
		return false, err
	}
	return true, nil
}

// applyDeltas applies per-article deltas for column through q, usually a
// transaction. Zero deltas are skipped.
func (s *CounterService) applyDeltas(ctx context.Context, q store.Querier, column store.CounterColumn, deltas map[int64]int64) error {
	for articleID, delta := range deltas {
		if delta == 0 {
			continue
		}
		if _, err := q.AdjustArticleCounter(ctx, articleID, column, delta); err != nil {
			return fmt.Errorf("adjusting %s for article %d: %w", column, articleID, err)
		}
	}
	return nil
}

// afterCommit records metrics and invalidates the articles touched by deltas.
func (s *CounterService) afterCommit(ctx context.Context, column store.CounterColumn, deltas map[int64]int64) {
	for articleID, delta := range deltas {
		if delta == 0 {
			continue
		}
		s.metrics.CounterAdjusted(string(column), delta)
		s.InvalidateArticle(ctx, articleID)
	}
}

// InvalidateArticle drops both cached read views of the article.
func (s *CounterService) InvalidateArticle(ctx context.Context, articleID int64) {
	if s.cache == nil {
		return
	}
	a, err := s.q.GetArticleWithTrashed(ctx, articleID)
	if err != nil {
		// the id key can still be dropped without the slug
		_ = s.cache.Delete(ctx, cache.ArticleIDKey(articleID))
		return
	}
	invalidateArticleCache(ctx, s.cache, s.logger, a)
}

func invalidateArticleCache(ctx context.Context, c cache.Cacher, logger *slog.Logger, a store.Article) {
	if c == nil {
		return
	}
	for _, key := range cache.ArticleKeys(a.ID, a.TenantID, a.Slug) {
		if err := c.Delete(ctx, key); err != nil {
			logger.Warn("cache invalidation failed", "key", key, "error", err)
		}
	}
}
