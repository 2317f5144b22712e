// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"time"

	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/store"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// RatingService stores per-user article ratings. The article aggregate is
// recomputed by a background job.
type RatingService struct {
	store store.TxStore
	queue *jobs.Queue
}

// NewRatingService creates a RatingService.
func NewRatingService(s store.TxStore, queue *jobs.Queue) *RatingService {
	return &RatingService{store: s, queue: queue}
}

// Rate records or replaces actor's rating of a published article.
func (s *RatingService) Rate(ctx context.Context, actor Actor, articleID int64, rating int) error {
	if actor.IsGuest() {
		return ErrForbidden
	}
	if rating < MinRating || rating > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5")
	}

	return s.store.ExecTx(ctx, func(q store.Querier) error {
		a, err := loadArticle(ctx, q, actor, articleID)
		if err != nil {
			return err
		}
		if !isLive(a) {
			return ErrInvalidState
		}
		if err := q.UpsertRating(ctx, store.UpsertRatingParams{
			ArticleID: articleID,
			UserID:    actor.UserID,
			Rating:    int64(rating),
			Now:       time.Now().UTC(),
		}); err != nil {
			return err
		}
		_, err = s.queue.EnqueueWith(ctx, q, jobs.TypeRecalculateRating, jobs.ArticlePayload{ArticleID: articleID}, time.Time{})
		return err
	})
}

// Remove deletes actor's rating of the article.
func (s *RatingService) Remove(ctx context.Context, actor Actor, articleID int64) error {
	if actor.IsGuest() {
		return ErrForbidden
	}
	return s.store.ExecTx(ctx, func(q store.Querier) error {
		n, err := q.DeleteRating(ctx, articleID, actor.UserID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		_, err = s.queue.EnqueueWith(ctx, q, jobs.TypeRecalculateRating, jobs.ArticlePayload{ArticleID: articleID}, time.Time{})
		return err
	})
}

// Mine returns actor's rating of the article.
func (s *RatingService) Mine(ctx context.Context, actor Actor, articleID int64) (store.ArticleRating, error) {
	r, err := s.store.GetRating(ctx, articleID, actor.UserID)
	return r, notFound(err)
}
