// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const articleColumns = `id, uuid, tenant_id, slug, title, excerpt, body, body_html, status, visibility,
	password_hash, published_at, scheduled_at, expires_at, view_count, share_count, comment_count,
	rating_average, rating_count, meta_title, meta_description, meta_keywords, author_id, created_by,
	updated_by, reviewed_by, reviewed_at, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (Article, error) {
	var a Article
	err := row.Scan(
		&a.ID, &a.UUID, &a.TenantID, &a.Slug, &a.Title, &a.Excerpt, &a.Body, &a.BodyHTML,
		&a.Status, &a.Visibility, &a.PasswordHash, &a.PublishedAt, &a.ScheduledAt, &a.ExpiresAt,
		&a.ViewCount, &a.ShareCount, &a.CommentCount, &a.RatingAverage, &a.RatingCount,
		&a.MetaTitle, &a.MetaDescription, &a.MetaKeywords, &a.AuthorID, &a.CreatedBy,
		&a.UpdatedBy, &a.ReviewedBy, &a.ReviewedAt, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	return a, err
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	defer func() { _ = rows.Close() }()

	var items []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createArticle = `INSERT INTO articles (
	uuid, tenant_id, slug, title, excerpt, body, body_html, status, visibility, password_hash,
	published_at, scheduled_at, expires_at, meta_title, meta_description, meta_keywords,
	author_id, created_by, reviewed_by, reviewed_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateArticleParams struct {
	UUID            string
	TenantID        int64
	Slug            string
	Title           string
	Excerpt         string
	Body            string
	BodyHTML        string
	Status          string
	Visibility      string
	PasswordHash    string
	PublishedAt     sql.NullTime
	ScheduledAt     sql.NullTime
	ExpiresAt       sql.NullTime
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	AuthorID        int64
	CreatedBy       int64
	ReviewedBy      sql.NullInt64
	ReviewedAt      sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	res, err := q.db.ExecContext(ctx, createArticle,
		arg.UUID, arg.TenantID, arg.Slug, arg.Title, arg.Excerpt, arg.Body, arg.BodyHTML,
		arg.Status, arg.Visibility, arg.PasswordHash, arg.PublishedAt, arg.ScheduledAt,
		arg.ExpiresAt, arg.MetaTitle, arg.MetaDescription, arg.MetaKeywords, arg.AuthorID,
		arg.CreatedBy, arg.ReviewedBy, arg.ReviewedAt, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return Article{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Article{}, err
	}
	return q.GetArticleWithTrashed(ctx, id)
}

const getArticle = `SELECT ` + articleColumns + ` FROM articles WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetArticle(ctx context.Context, id int64) (Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticle, id))
}

const getArticleWithTrashed = `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`

func (q *Queries) GetArticleWithTrashed(ctx context.Context, id int64) (Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticleWithTrashed, id))
}

const getArticleBySlug = `SELECT ` + articleColumns + ` FROM articles
WHERE tenant_id = ? AND slug = ? AND deleted_at IS NULL`

func (q *Queries) GetArticleBySlug(ctx context.Context, tenantID int64, slug string) (Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticleBySlug, tenantID, slug))
}

const articleSlugExists = `SELECT COUNT(*) FROM articles WHERE tenant_id = ? AND slug = ?`

func (q *Queries) ArticleSlugExists(ctx context.Context, tenantID int64, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, articleSlugExists, tenantID, slug).Scan(&n)
	return n, err
}

// updateArticle keeps the status column as is and only matches rows still in
// that status, so an edit racing a transition does not resurrect the old state.
const updateArticle = `UPDATE articles SET
	slug = ?, title = ?, excerpt = ?, body = ?, body_html = ?, status = ?, visibility = ?,
	password_hash = ?, scheduled_at = ?, expires_at = ?, meta_title = ?, meta_description = ?,
	meta_keywords = ?, author_id = ?, updated_by = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL AND status = ?`

type UpdateArticleParams struct {
	ID              int64
	Slug            string
	Title           string
	Excerpt         string
	Body            string
	BodyHTML        string
	Status          string
	Visibility      string
	PasswordHash    string
	ScheduledAt     sql.NullTime
	ExpiresAt       sql.NullTime
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	AuthorID        int64
	UpdatedBy       sql.NullInt64
	UpdatedAt       time.Time
}

func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	_, err := q.db.ExecContext(ctx, updateArticle,
		arg.Slug, arg.Title, arg.Excerpt, arg.Body, arg.BodyHTML, arg.Status, arg.Visibility,
		arg.PasswordHash, arg.ScheduledAt, arg.ExpiresAt, arg.MetaTitle, arg.MetaDescription,
		arg.MetaKeywords, arg.AuthorID, arg.UpdatedBy, arg.UpdatedAt, arg.ID, arg.Status,
	)
	if err != nil {
		return Article{}, err
	}
	return q.GetArticle(ctx, arg.ID)
}

// updateArticleStatus only matches rows still in one of the expected statuses,
// so a concurrent transition makes the update a no-op instead of overwriting it.
const updateArticleStatus = `UPDATE articles SET
	status = ?, published_at = ?, reviewed_by = ?, reviewed_at = ?, updated_by = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL AND status IN (%s)`

type UpdateArticleStatusParams struct {
	ID          int64
	Status      string
	PublishedAt sql.NullTime
	ReviewedBy  sql.NullInt64
	ReviewedAt  sql.NullTime
	UpdatedBy   sql.NullInt64
	UpdatedAt   time.Time
	// FromStatuses restricts the update to rows currently in one of these statuses.
	FromStatuses []string
}

// UpdateArticleStatus performs a guarded status transition and returns the
// number of rows changed (0 when the guard did not match).
func (q *Queries) UpdateArticleStatus(ctx context.Context, arg UpdateArticleStatusParams) (int64, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(arg.FromStatuses)), ",")
	query := strings.Replace(updateArticleStatus, "%s", placeholders, 1)

	args := []any{arg.Status, arg.PublishedAt, arg.ReviewedBy, arg.ReviewedAt, arg.UpdatedBy, arg.UpdatedAt, arg.ID}
	for _, s := range arg.FromStatuses {
		args = append(args, s)
	}

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const updateArticleMeta = `UPDATE articles SET meta_title = ?, meta_description = ?, meta_keywords = ?
WHERE id = ?`

type UpdateArticleMetaParams struct {
	ID              int64
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
}

func (q *Queries) UpdateArticleMeta(ctx context.Context, arg UpdateArticleMetaParams) error {
	_, err := q.db.ExecContext(ctx, updateArticleMeta, arg.MetaTitle, arg.MetaDescription, arg.MetaKeywords, arg.ID)
	return err
}

const softDeleteArticle = `UPDATE articles SET deleted_at = ?, updated_by = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) SoftDeleteArticle(ctx context.Context, id int64, userID sql.NullInt64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteArticle, now, userID, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const restoreArticle = `UPDATE articles SET deleted_at = NULL, updated_by = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NOT NULL`

func (q *Queries) RestoreArticle(ctx context.Context, id int64, userID sql.NullInt64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, restoreArticle, userID, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// ListArticlesParams filters article listings. Zero values disable a filter.
type ListArticlesParams struct {
	TenantID     int64
	Status       string
	AuthorID     int64
	CategoryID   int64
	TagID        int64
	Search       string
	Visibilities []string
	// PublishedBefore hides published articles that are not live yet or expired at this instant.
	PublishedBefore sql.NullTime
	Limit           int64
	Offset          int64
}

func (arg ListArticlesParams) where() (string, []any) {
	clauses := []string{"a.deleted_at IS NULL", "a.tenant_id = ?"}
	args := []any{arg.TenantID}

	if arg.Status != "" {
		clauses = append(clauses, "a.status = ?")
		args = append(args, arg.Status)
	}
	if arg.AuthorID > 0 {
		clauses = append(clauses, "a.author_id = ?")
		args = append(args, arg.AuthorID)
	}
	if arg.CategoryID > 0 {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM article_categories ac WHERE ac.article_id = a.id AND ac.category_id = ?)")
		args = append(args, arg.CategoryID)
	}
	if arg.TagID > 0 {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM article_tags at WHERE at.article_id = a.id AND at.tag_id = ?)")
		args = append(args, arg.TagID)
	}
	if arg.Search != "" {
		clauses = append(clauses, "(a.title LIKE ? OR a.excerpt LIKE ?)")
		like := "%" + arg.Search + "%"
		args = append(args, like, like)
	}
	if len(arg.Visibilities) > 0 {
		clauses = append(clauses, "a.visibility IN ("+strings.TrimSuffix(strings.Repeat("?,", len(arg.Visibilities)), ",")+")")
		for _, v := range arg.Visibilities {
			args = append(args, v)
		}
	}
	if arg.PublishedBefore.Valid {
		clauses = append(clauses, "a.published_at <= ?", "(a.expires_at IS NULL OR a.expires_at > ?)")
		args = append(args, arg.PublishedBefore.Time, arg.PublishedBefore.Time)
	}

	return strings.Join(clauses, " AND "), args
}

func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]Article, error) {
	where, args := arg.where()
	query := `SELECT ` + prefixColumns("a", articleColumns) + ` FROM articles a WHERE ` + where +
		` ORDER BY COALESCE(a.published_at, a.created_at) DESC, a.id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

func (q *Queries) CountArticles(ctx context.Context, arg ListArticlesParams) (int64, error) {
	where, args := arg.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles a WHERE `+where, args...).Scan(&n)
	return n, err
}

const listScheduledArticlesDue = `SELECT ` + articleColumns + ` FROM articles
WHERE deleted_at IS NULL AND status IN ('draft', 'pending') AND scheduled_at IS NOT NULL AND scheduled_at <= ?
  AND (expires_at IS NULL OR expires_at > ?)
ORDER BY scheduled_at`

// ListScheduledArticlesDue returns due drafts and pending articles that have not
// already expired.
func (q *Queries) ListScheduledArticlesDue(ctx context.Context, now time.Time) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx, listScheduledArticlesDue, now, now)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

const listExpiredArticles = `SELECT ` + articleColumns + ` FROM articles
WHERE deleted_at IS NULL AND status = 'published' AND expires_at IS NOT NULL AND expires_at <= ?
ORDER BY expires_at`

func (q *Queries) ListExpiredArticles(ctx context.Context, now time.Time) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx, listExpiredArticles, now)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

// prefixColumns qualifies a comma separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
