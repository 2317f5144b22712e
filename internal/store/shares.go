// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const shareColumns = `id, uuid, article_id, user_id, method, platform, country_code, converted, converted_at,
	created_at, updated_at, deleted_at`

func scanShare(row rowScanner) (ArticleShare, error) {
	var s ArticleShare
	err := row.Scan(&s.ID, &s.UUID, &s.ArticleID, &s.UserID, &s.Method, &s.Platform, &s.CountryCode,
		&s.Converted, &s.ConvertedAt, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	return s, err
}

const createShare = `INSERT INTO article_shares (uuid, article_id, user_id, method, platform, country_code, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type CreateShareParams struct {
	UUID        string
	ArticleID   int64
	UserID      sql.NullInt64
	Method      string
	Platform    string
	CountryCode string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateShare(ctx context.Context, arg CreateShareParams) (ArticleShare, error) {
	res, err := q.db.ExecContext(ctx, createShare, arg.UUID, arg.ArticleID, arg.UserID, arg.Method, arg.Platform,
		arg.CountryCode, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return ArticleShare{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ArticleShare{}, err
	}
	return q.GetShareWithTrashed(ctx, id)
}

const getShare = `SELECT ` + shareColumns + ` FROM article_shares WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetShare(ctx context.Context, id int64) (ArticleShare, error) {
	return scanShare(q.db.QueryRowContext(ctx, getShare, id))
}

const getShareWithTrashed = `SELECT ` + shareColumns + ` FROM article_shares WHERE id = ?`

func (q *Queries) GetShareWithTrashed(ctx context.Context, id int64) (ArticleShare, error) {
	return scanShare(q.db.QueryRowContext(ctx, getShareWithTrashed, id))
}

const getShareByUUID = `SELECT ` + shareColumns + ` FROM article_shares WHERE uuid = ? AND deleted_at IS NULL`

func (q *Queries) GetShareByUUID(ctx context.Context, uuid string) (ArticleShare, error) {
	return scanShare(q.db.QueryRowContext(ctx, getShareByUUID, uuid))
}

const moveShare = `UPDATE article_shares SET article_id = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) MoveShare(ctx context.Context, id, articleID int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, moveShare, articleID, now, id)
	return err
}

const markShareConverted = `UPDATE article_shares SET converted = 1, converted_at = ?, updated_at = ?
WHERE id = ? AND converted = 0 AND deleted_at IS NULL`

func (q *Queries) MarkShareConverted(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, markShareConverted, now, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const softDeleteShare = `UPDATE article_shares SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) SoftDeleteShare(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteShare, now, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const restoreShare = `UPDATE article_shares SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`

func (q *Queries) RestoreShare(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, restoreShare, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// ShareMethodCount is one row of the per-method share breakdown.
type ShareMethodCount struct {
	Method    string `json:"method"`
	Count     int64  `json:"count"`
	Converted int64  `json:"converted"`
}

const shareStatsForArticle = `SELECT method, COUNT(*), SUM(CASE WHEN converted THEN 1 ELSE 0 END)
FROM article_shares
WHERE article_id = ? AND deleted_at IS NULL
GROUP BY method
ORDER BY method`

func (q *Queries) ShareStatsForArticle(ctx context.Context, articleID int64) ([]ShareMethodCount, error) {
	rows, err := q.db.QueryContext(ctx, shareStatsForArticle, articleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ShareMethodCount
	for rows.Next() {
		var i ShareMethodCount
		if err := rows.Scan(&i.Method, &i.Count, &i.Converted); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
