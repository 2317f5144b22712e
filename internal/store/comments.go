// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const commentColumns = `id, article_id, parent_id, user_id, guest_name, guest_email, body, status,
	ip_address, user_agent, created_at, updated_at, deleted_at`

func scanComment(row rowScanner) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.ArticleID, &c.ParentID, &c.UserID, &c.GuestName, &c.GuestEmail, &c.Body,
		&c.Status, &c.IpAddress, &c.UserAgent, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	return c, err
}

const createComment = `INSERT INTO comments (article_id, parent_id, user_id, guest_name, guest_email, body, status,
	ip_address, user_agent, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateCommentParams struct {
	ArticleID  int64
	ParentID   sql.NullInt64
	UserID     sql.NullInt64
	GuestName  string
	GuestEmail string
	Body       string
	Status     string
	IpAddress  string
	UserAgent  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	res, err := q.db.ExecContext(ctx, createComment, arg.ArticleID, arg.ParentID, arg.UserID, arg.GuestName,
		arg.GuestEmail, arg.Body, arg.Status, arg.IpAddress, arg.UserAgent, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Comment{}, err
	}
	return q.GetCommentWithTrashed(ctx, id)
}

const getComment = `SELECT ` + commentColumns + ` FROM comments WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetComment(ctx context.Context, id int64) (Comment, error) {
	return scanComment(q.db.QueryRowContext(ctx, getComment, id))
}

const getCommentWithTrashed = `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`

func (q *Queries) GetCommentWithTrashed(ctx context.Context, id int64) (Comment, error) {
	return scanComment(q.db.QueryRowContext(ctx, getCommentWithTrashed, id))
}

const updateComment = `UPDATE comments SET article_id = ?, parent_id = ?, body = ?, status = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

type UpdateCommentParams struct {
	ID        int64
	ArticleID int64
	ParentID  sql.NullInt64
	Body      string
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateComment(ctx context.Context, arg UpdateCommentParams) (Comment, error) {
	if _, err := q.db.ExecContext(ctx, updateComment, arg.ArticleID, arg.ParentID, arg.Body, arg.Status,
		arg.UpdatedAt, arg.ID); err != nil {
		return Comment{}, err
	}
	return q.GetComment(ctx, arg.ID)
}

const softDeleteComment = `UPDATE comments SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) SoftDeleteComment(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteComment, now, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const restoreComment = `UPDATE comments SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL`

func (q *Queries) RestoreComment(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, restoreComment, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const listCommentsForArticle = `SELECT ` + commentColumns + ` FROM comments
WHERE article_id = ? AND deleted_at IS NULL AND (? = '' OR status = ?)
ORDER BY created_at, id
LIMIT ? OFFSET ?`

type ListCommentsForArticleParams struct {
	ArticleID int64
	Status    string
	Limit     int64
	Offset    int64
}

func (q *Queries) ListCommentsForArticle(ctx context.Context, arg ListCommentsForArticleParams) ([]Comment, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsForArticle, arg.ArticleID, arg.Status, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const countCommentsForArticle = `SELECT COUNT(*) FROM comments
WHERE article_id = ? AND deleted_at IS NULL AND (? = '' OR status = ?)`

func (q *Queries) CountCommentsForArticle(ctx context.Context, articleID int64, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCommentsForArticle, articleID, status, status).Scan(&n)
	return n, err
}
