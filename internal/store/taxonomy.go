// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const categoryColumns = `id, tenant_id, name, slug, description, parent_id, position, created_at, updated_at`

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const createCategory = `INSERT INTO categories (tenant_id, name, slug, description, parent_id, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type CreateCategoryParams struct {
	TenantID    int64
	Name        string
	Slug        string
	Description string
	ParentID    sql.NullInt64
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	res, err := q.db.ExecContext(ctx, createCategory, arg.TenantID, arg.Name, arg.Slug, arg.Description,
		arg.ParentID, arg.Position, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	return q.GetCategory(ctx, id)
}

const getCategory = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const getCategoryBySlug = `SELECT ` + categoryColumns + ` FROM categories WHERE tenant_id = ? AND slug = ?`

func (q *Queries) GetCategoryBySlug(ctx context.Context, tenantID int64, slug string) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategoryBySlug, tenantID, slug))
}

const categorySlugExists = `SELECT COUNT(*) FROM categories WHERE tenant_id = ? AND slug = ?`

func (q *Queries) CategorySlugExists(ctx context.Context, tenantID int64, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, categorySlugExists, tenantID, slug).Scan(&n)
	return n, err
}

const listCategories = `SELECT ` + categoryColumns + ` FROM categories WHERE tenant_id = ? ORDER BY position, name`

func (q *Queries) ListCategories(ctx context.Context, tenantID int64) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const updateCategory = `UPDATE categories SET name = ?, slug = ?, description = ?, parent_id = ?, position = ?, updated_at = ?
WHERE id = ?`

type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	ParentID    sql.NullInt64
	Position    int64
	UpdatedAt   time.Time
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	if _, err := q.db.ExecContext(ctx, updateCategory, arg.Name, arg.Slug, arg.Description, arg.ParentID,
		arg.Position, arg.UpdatedAt, arg.ID); err != nil {
		return Category{}, err
	}
	return q.GetCategory(ctx, arg.ID)
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	return err
}

const tagColumns = `id, tenant_id, name, slug, created_at, updated_at`

func scanTag(row rowScanner) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTag = `INSERT INTO tags (tenant_id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

type CreateTagParams struct {
	TenantID  int64
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error) {
	res, err := q.db.ExecContext(ctx, createTag, arg.TenantID, arg.Name, arg.Slug, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Tag{}, err
	}
	return q.GetTag(ctx, id)
}

const getTag = `SELECT ` + tagColumns + ` FROM tags WHERE id = ?`

func (q *Queries) GetTag(ctx context.Context, id int64) (Tag, error) {
	return scanTag(q.db.QueryRowContext(ctx, getTag, id))
}

const tagSlugExists = `SELECT COUNT(*) FROM tags WHERE tenant_id = ? AND slug = ?`

func (q *Queries) TagSlugExists(ctx context.Context, tenantID int64, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, tagSlugExists, tenantID, slug).Scan(&n)
	return n, err
}

const listTags = `SELECT ` + tagColumns + ` FROM tags WHERE tenant_id = ? ORDER BY name`

func (q *Queries) ListTags(ctx context.Context, tenantID int64) ([]Tag, error) {
	rows, err := q.db.QueryContext(ctx, listTags, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTag = `UPDATE tags SET name = ?, slug = ?, updated_at = ? WHERE id = ?`

type UpdateTagParams struct {
	ID        int64
	Name      string
	Slug      string
	UpdatedAt time.Time
}

func (q *Queries) UpdateTag(ctx context.Context, arg UpdateTagParams) (Tag, error) {
	if _, err := q.db.ExecContext(ctx, updateTag, arg.Name, arg.Slug, arg.UpdatedAt, arg.ID); err != nil {
		return Tag{}, err
	}
	return q.GetTag(ctx, arg.ID)
}

const deleteTag = `DELETE FROM tags WHERE id = ?`

func (q *Queries) DeleteTag(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteTag, id)
	return err
}

const addCategoryToArticle = `INSERT INTO article_categories (article_id, category_id, is_primary, sort_order)
VALUES (?, ?, ?, ?)`

type AddCategoryToArticleParams struct {
	ArticleID  int64
	CategoryID int64
	IsPrimary  bool
	SortOrder  int64
}

func (q *Queries) AddCategoryToArticle(ctx context.Context, arg AddCategoryToArticleParams) error {
	_, err := q.db.ExecContext(ctx, addCategoryToArticle, arg.ArticleID, arg.CategoryID, arg.IsPrimary, arg.SortOrder)
	return err
}

const clearArticleCategories = `DELETE FROM article_categories WHERE article_id = ?`

func (q *Queries) ClearArticleCategories(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, clearArticleCategories, articleID)
	return err
}

const getCategoriesForArticle = `SELECT ac.article_id, ac.category_id, c.name, c.slug, ac.is_primary, ac.sort_order
FROM article_categories ac
INNER JOIN categories c ON c.id = ac.category_id
WHERE ac.article_id = ?
ORDER BY ac.sort_order, c.name`

func (q *Queries) GetCategoriesForArticle(ctx context.Context, articleID int64) ([]ArticleCategory, error) {
	rows, err := q.db.QueryContext(ctx, getCategoriesForArticle, articleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ArticleCategory
	for rows.Next() {
		var i ArticleCategory
		if err := rows.Scan(&i.ArticleID, &i.CategoryID, &i.Name, &i.Slug, &i.IsPrimary, &i.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const addTagToArticle = `INSERT INTO article_tags (article_id, tag_id, sort_order) VALUES (?, ?, ?)`

type AddTagToArticleParams struct {
	ArticleID int64
	TagID     int64
	SortOrder int64
}

func (q *Queries) AddTagToArticle(ctx context.Context, arg AddTagToArticleParams) error {
	_, err := q.db.ExecContext(ctx, addTagToArticle, arg.ArticleID, arg.TagID, arg.SortOrder)
	return err
}

const clearArticleTags = `DELETE FROM article_tags WHERE article_id = ?`

func (q *Queries) ClearArticleTags(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, clearArticleTags, articleID)
	return err
}

const getTagsForArticle = `SELECT at.article_id, at.tag_id, t.name, t.slug, at.sort_order
FROM article_tags at
INNER JOIN tags t ON t.id = at.tag_id
WHERE at.article_id = ?
ORDER BY at.sort_order, t.name`

func (q *Queries) GetTagsForArticle(ctx context.Context, articleID int64) ([]ArticleTag, error) {
	rows, err := q.db.QueryContext(ctx, getTagsForArticle, articleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ArticleTag
	for rows.Next() {
		var i ArticleTag
		if err := rows.Scan(&i.ArticleID, &i.TagID, &i.Name, &i.Slug, &i.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
