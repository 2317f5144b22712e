// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"
)

// CounterColumn names one of the denormalized article aggregates.
type CounterColumn string

// Article counter columns.
const (
	CounterViews    CounterColumn = "view_count"
	CounterShares   CounterColumn = "share_count"
	CounterComments CounterColumn = "comment_count"
)

// Valid reports whether c is a known counter column.
func (c CounterColumn) Valid() bool {
	switch c {
	case CounterViews, CounterShares, CounterComments:
		return true
	}
	return false
}

// adjustArticleCounter clamps at zero inside the UPDATE so concurrent
// increments and decrements never need a read in application code.
const adjustArticleCounter = `UPDATE articles
SET %[1]s = CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END
WHERE id = ?`

// AdjustArticleCounter applies delta to column as count = max(count + delta, 0).
// Returns the number of rows changed.
func (q *Queries) AdjustArticleCounter(ctx context.Context, id int64, column CounterColumn, delta int64) (int64, error) {
	if !column.Valid() {
		return 0, fmt.Errorf("unknown counter column %q", column)
	}
	res, err := q.db.ExecContext(ctx, fmt.Sprintf(adjustArticleCounter, column), delta, delta, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const getArticleCounter = `SELECT %s FROM articles WHERE id = ?`

func (q *Queries) GetArticleCounter(ctx context.Context, id int64, column CounterColumn) (int64, error) {
	if !column.Valid() {
		return 0, fmt.Errorf("unknown counter column %q", column)
	}
	var n int64
	err := q.db.QueryRowContext(ctx, fmt.Sprintf(getArticleCounter, column), id).Scan(&n)
	return n, err
}

const recalculateArticleRating = `UPDATE articles SET
	rating_count = (SELECT COUNT(*) FROM article_ratings WHERE article_id = ?),
	rating_average = COALESCE((SELECT AVG(rating) FROM article_ratings WHERE article_id = ?), 0),
	updated_at = ?
WHERE id = ?`

// RecalculateArticleRating recomputes the rating aggregate from article_ratings.
func (q *Queries) RecalculateArticleRating(ctx context.Context, articleID int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, recalculateArticleRating, articleID, articleID, now, articleID)
	return err
}

const recountApprovedComments = `UPDATE articles SET comment_count = (
	SELECT COUNT(*) FROM comments WHERE article_id = ? AND status = 'approved' AND deleted_at IS NULL
) WHERE id = ?`

// RecountApprovedComments resets comment_count from the comments table.
func (q *Queries) RecountApprovedComments(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, recountApprovedComments, articleID, articleID)
	return err
}

const recountShares = `UPDATE articles SET share_count = (
	SELECT COUNT(*) FROM article_shares WHERE article_id = ? AND deleted_at IS NULL
) WHERE id = ?`

// RecountShares resets share_count from the article_shares table.
func (q *Queries) RecountShares(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, recountShares, articleID, articleID)
	return err
}
