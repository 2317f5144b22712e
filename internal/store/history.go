// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createArticleHistory = `INSERT INTO article_history (article_id, action, user_id, changes, created_at)
VALUES (?, ?, ?, ?, ?)`

type CreateArticleHistoryParams struct {
	ArticleID int64
	Action    string
	UserID    sql.NullInt64
	Changes   string
	CreatedAt time.Time
}

func (q *Queries) CreateArticleHistory(ctx context.Context, arg CreateArticleHistoryParams) error {
	_, err := q.db.ExecContext(ctx, createArticleHistory, arg.ArticleID, arg.Action, arg.UserID, arg.Changes, arg.CreatedAt)
	return err
}

const listArticleHistory = `SELECT id, article_id, action, user_id, changes, created_at
FROM article_history WHERE article_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

func (q *Queries) ListArticleHistory(ctx context.Context, articleID, limit, offset int64) ([]ArticleHistory, error) {
	rows, err := q.db.QueryContext(ctx, listArticleHistory, articleID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ArticleHistory
	for rows.Next() {
		var h ArticleHistory
		if err := rows.Scan(&h.ID, &h.ArticleID, &h.Action, &h.UserID, &h.Changes, &h.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

const countArticleHistory = `SELECT COUNT(*) FROM article_history WHERE article_id = ?`

func (q *Queries) CountArticleHistory(ctx context.Context, articleID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countArticleHistory, articleID).Scan(&n)
	return n, err
}
