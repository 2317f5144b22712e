// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/util"
)

// CategoryInput creates or replaces a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ParentID    int64  `json:"parent_id"`
	Position    int64  `json:"position"`
}

// Validate checks the category fields.
func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Slug, validation.Length(0, 100), validation.By(slugRule)),
		validation.Field(&in.Description, validation.Length(0, 1000)),
		validation.Field(&in.ParentID, validation.Min(int64(0))),
	)
}

// TaxonomyService manages categories and tags. Writes require taxonomy.manage.
type TaxonomyService struct {
	q     store.Querier
	perms *PermissionService
}

// NewTaxonomyService creates a TaxonomyService.
func NewTaxonomyService(q store.Querier, perms *PermissionService) *TaxonomyService {
	return &TaxonomyService{q: q, perms: perms}
}

func (s *TaxonomyService) canManage(ctx context.Context, actor Actor) error {
	return authorize(s.perms.UserHasAny(ctx, actor.UserID, []string{model.RoleAdmin, model.PermTaxonomyManage}))
}

// Categories lists the tenant's categories.
func (s *TaxonomyService) Categories(ctx context.Context, actor Actor) ([]store.Category, error) {
	return s.q.ListCategories(ctx, actor.Tenant())
}

// CreateCategory adds a category.
func (s *TaxonomyService) CreateCategory(ctx context.Context, actor Actor, in CategoryInput) (store.Category, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return store.Category{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validationErr(in.Validate()); err != nil {
		return store.Category{}, err
	}
	if err := s.checkParent(ctx, actor.Tenant(), 0, in.ParentID); err != nil {
		return store.Category{}, err
	}

	tenantID := actor.Tenant()
	slug, err := s.categorySlug(ctx, tenantID, in.Slug, in.Name)
	if err != nil {
		return store.Category{}, err
	}

	now := time.Now().UTC()
	c, err := s.q.CreateCategory(ctx, store.CreateCategoryParams{
		TenantID:    tenantID,
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		ParentID:    sql.NullInt64{Int64: in.ParentID, Valid: in.ParentID > 0},
		Position:    in.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if store.IsUniqueViolation(err) {
		return store.Category{}, NewValidationError("slug", "is already taken")
	}
	return c, err
}

// UpdateCategory replaces a category's fields.
func (s *TaxonomyService) UpdateCategory(ctx context.Context, actor Actor, id int64, in CategoryInput) (store.Category, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return store.Category{}, err
	}
	current, err := s.q.GetCategory(ctx, id)
	if err != nil {
		return store.Category{}, notFound(err)
	}
	if err := ownsTenant(actor, current.TenantID); err != nil {
		return store.Category{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validationErr(in.Validate()); err != nil {
		return store.Category{}, err
	}
	if err := s.checkParent(ctx, current.TenantID, id, in.ParentID); err != nil {
		return store.Category{}, err
	}

	slug := current.Slug
	if in.Slug != "" && in.Slug != current.Slug {
		n, err := s.q.CategorySlugExists(ctx, current.TenantID, in.Slug)
		if err != nil {
			return store.Category{}, err
		}
		if n > 0 {
			return store.Category{}, NewValidationError("slug", "is already taken")
		}
		slug = in.Slug
	}

	return s.q.UpdateCategory(ctx, store.UpdateCategoryParams{
		ID:          id,
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		ParentID:    sql.NullInt64{Int64: in.ParentID, Valid: in.ParentID > 0},
		Position:    in.Position,
		UpdatedAt:   time.Now().UTC(),
	})
}

// DeleteCategory removes a category and its article associations.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, actor Actor, id int64) error {
	if err := s.canManage(ctx, actor); err != nil {
		return err
	}
	c, err := s.q.GetCategory(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := ownsTenant(actor, c.TenantID); err != nil {
		return err
	}
	return s.q.DeleteCategory(ctx, id)
}

// checkParent rejects unknown parents and cycles.
func (s *TaxonomyService) checkParent(ctx context.Context, tenantID, id, parentID int64) error {
	for seen := 0; parentID > 0; seen++ {
		if parentID == id || seen > 64 {
			return NewValidationError("parent_id", "would create a cycle")
		}
		parent, err := s.q.GetCategory(ctx, parentID)
		if store.IsNoRows(err) || (err == nil && parent.TenantID != tenantID) {
			return NewValidationError("parent_id", "does not exist")
		}
		if err != nil {
			return err
		}
		parentID = parent.ParentID.Int64
	}
	return nil
}

func (s *TaxonomyService) categorySlug(ctx context.Context, tenantID int64, requested, name string) (string, error) {
	exists := func(ctx context.Context, slug string) (bool, error) {
		n, err := s.q.CategorySlugExists(ctx, tenantID, slug)
		return n > 0, err
	}
	if requested == "" {
		return util.UniqueSlug(ctx, util.Slugify(name), exists)
	}
	taken, err := exists(ctx, requested)
	if err != nil {
		return "", err
	}
	if taken {
		return "", NewValidationError("slug", "is already taken")
	}
	return requested, nil
}

// Tags lists the tenant's tags.
func (s *TaxonomyService) Tags(ctx context.Context, actor Actor) ([]store.Tag, error) {
	return s.q.ListTags(ctx, actor.Tenant())
}

// CreateTag adds a tag, deriving the slug from name.
func (s *TaxonomyService) CreateTag(ctx context.Context, actor Actor, name string) (store.Tag, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return store.Tag{}, err
	}
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.Length(1, 100)); err != nil {
		return store.Tag{}, NewValidationError("name", err.Error())
	}

	tenantID := actor.Tenant()
	slug, err := util.UniqueSlug(ctx, util.Slugify(name), func(ctx context.Context, slug string) (bool, error) {
		n, err := s.q.TagSlugExists(ctx, tenantID, slug)
		return n > 0, err
	})
	if err != nil {
		return store.Tag{}, err
	}

	now := time.Now().UTC()
	return s.q.CreateTag(ctx, store.CreateTagParams{
		TenantID: tenantID, Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now,
	})
}

// RenameTag changes a tag's name. The slug is kept.
func (s *TaxonomyService) RenameTag(ctx context.Context, actor Actor, id int64, name string) (store.Tag, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return store.Tag{}, err
	}
	t, err := s.q.GetTag(ctx, id)
	if err != nil {
		return store.Tag{}, notFound(err)
	}
	if err := ownsTenant(actor, t.TenantID); err != nil {
		return store.Tag{}, err
	}
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.Length(1, 100)); err != nil {
		return store.Tag{}, NewValidationError("name", err.Error())
	}
	return s.q.UpdateTag(ctx, store.UpdateTagParams{ID: id, Name: name, Slug: t.Slug, UpdatedAt: time.Now().UTC()})
}

// DeleteTag removes a tag and its article associations.
func (s *TaxonomyService) DeleteTag(ctx context.Context, actor Actor, id int64) error {
	if err := s.canManage(ctx, actor); err != nil {
		return err
	}
	t, err := s.q.GetTag(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := ownsTenant(actor, t.TenantID); err != nil {
		return err
	}
	return s.q.DeleteTag(ctx, id)
}
