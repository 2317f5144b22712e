// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const upsertUpdateRating = `UPDATE article_ratings SET rating = ?, updated_at = ? WHERE article_id = ? AND user_id = ?`

const upsertInsertRating = `INSERT INTO article_ratings (article_id, user_id, rating, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`

type UpsertRatingParams struct {
	ArticleID int64
	UserID    int64
	Rating    int64
	Now       time.Time
}

// UpsertRating stores the user's rating for an article, replacing an earlier one.
// A concurrent first insert by the same user is retried as an update.
func (q *Queries) UpsertRating(ctx context.Context, arg UpsertRatingParams) error {
	res, err := q.db.ExecContext(ctx, upsertUpdateRating, arg.Rating, arg.Now, arg.ArticleID, arg.UserID)
	if err != nil {
		return err
	}
	if rowsAffected(res) > 0 {
		return nil
	}

	_, err = q.db.ExecContext(ctx, upsertInsertRating, arg.ArticleID, arg.UserID, arg.Rating, arg.Now, arg.Now)
	if IsUniqueViolation(err) {
		_, err = q.db.ExecContext(ctx, upsertUpdateRating, arg.Rating, arg.Now, arg.ArticleID, arg.UserID)
	}
	return err
}

const getRating = `SELECT id, article_id, user_id, rating, created_at, updated_at
FROM article_ratings WHERE article_id = ? AND user_id = ?`

func (q *Queries) GetRating(ctx context.Context, articleID, userID int64) (ArticleRating, error) {
	var r ArticleRating
	err := q.db.QueryRowContext(ctx, getRating, articleID, userID).Scan(
		&r.ID, &r.ArticleID, &r.UserID, &r.Rating, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const deleteRating = `DELETE FROM article_ratings WHERE article_id = ? AND user_id = ?`

func (q *Queries) DeleteRating(ctx context.Context, articleID, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRating, articleID, userID)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}
