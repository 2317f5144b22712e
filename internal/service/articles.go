// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/olegiv/olib-go/internal/auth"
	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/content"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/util"
)

// ArticleView is the cached read representation of an article.
type ArticleView struct {
	store.Article
	Categories []store.ArticleCategory `json:"categories"`
	Tags       []store.ArticleTag      `json:"tags"`
	// Locked is set when the caller may see the article but not its body.
	Locked bool `json:"locked"`
}

// ArticleInput creates an article.
type ArticleInput struct {
	Title             string     `json:"title"`
	Slug              string     `json:"slug"`
	Excerpt           string     `json:"excerpt"`
	Body              string     `json:"body"`
	Status            string     `json:"status"`
	Visibility        string     `json:"visibility"`
	Password          string     `json:"password"`
	ScheduledAt       *time.Time `json:"scheduled_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	MetaTitle         string     `json:"meta_title"`
	MetaDescription   string     `json:"meta_description"`
	MetaKeywords      string     `json:"meta_keywords"`
	AuthorID          int64      `json:"author_id"`
	CategoryIDs       []int64    `json:"category_ids"`
	PrimaryCategoryID int64      `json:"primary_category_id"`
	TagIDs            []int64    `json:"tag_ids"`
}

// ArticleUpdate edits an article. Nil fields are left untouched.
type ArticleUpdate struct {
	Title             *string    `json:"title"`
	Slug              *string    `json:"slug"`
	Excerpt           *string    `json:"excerpt"`
	Body              *string    `json:"body"`
	Visibility        *string    `json:"visibility"`
	Password          *string    `json:"password"`
	ScheduledAt       *time.Time `json:"scheduled_at"`
	ClearScheduledAt  bool       `json:"clear_scheduled_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	ClearExpiresAt    bool       `json:"clear_expires_at"`
	MetaTitle         *string    `json:"meta_title"`
	MetaDescription   *string    `json:"meta_description"`
	MetaKeywords      *string    `json:"meta_keywords"`
	AuthorID          *int64     `json:"author_id"`
	CategoryIDs       *[]int64   `json:"category_ids"`
	PrimaryCategoryID *int64     `json:"primary_category_id"`
	TagIDs            *[]int64   `json:"tag_ids"`
}

// Listing page sizes.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Status     string
	AuthorID   int64
	CategoryID int64
	TagID      int64
	Search     string
	Limit      int64
	Offset     int64
}

// ArticleStats is the statistics view of an article.
type ArticleStats struct {
	ArticleID      int64                    `json:"article_id"`
	Views          int64                    `json:"views"`
	Shares         int64                    `json:"shares"`
	Comments       int64                    `json:"comments"`
	RatingAverage  float64                  `json:"rating_average"`
	RatingCount    int64                    `json:"rating_count"`
	SharesByMethod []store.ShareMethodCount `json:"shares_by_method"`
	HistoryEntries int64                    `json:"history_entries"`
}

// ArticleService owns the article lifecycle. Every mutation publishes domain
// events to the registry after its transaction commits.
type ArticleService struct {
	store    store.TxStore
	policy   *ArticlePolicy
	perms    *PermissionService
	events   *Registry
	renderer *content.Renderer
	views    *cache.TypedCache[ArticleView]
	logger   *slog.Logger
}

// NewArticleService creates an ArticleService. c may be nil to disable the
// read cache.
func NewArticleService(s store.TxStore, perms *PermissionService, events *Registry, r *content.Renderer,
	c cache.Cacher, cacheTTL time.Duration, logger *slog.Logger) *ArticleService {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &ArticleService{
		store:    s,
		policy:   NewArticlePolicy(perms),
		perms:    perms,
		events:   events,
		renderer: r,
		logger:   logger,
	}
	if c != nil {
		svc.views = cache.NewTypedCache[ArticleView](c, cacheTTL)
	}
	return svc
}

// Policy exposes the authorization predicates used by the service.
func (s *ArticleService) Policy() *ArticlePolicy {
	return s.policy
}

// Create stores a new draft or pending article.
func (s *ArticleService) Create(ctx context.Context, actor Actor, in ArticleInput) (store.Article, error) {
	if err := authorize(s.policy.Create(ctx, actor)); err != nil {
		return store.Article{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	if in.Visibility == "" {
		in.Visibility = model.VisibilityPublic
	}
	if err := validationErr(s.validateCreate(in)); err != nil {
		return store.Article{}, err
	}

	authorID := actor.UserID
	if in.AuthorID > 0 && in.AuthorID != actor.UserID {
		if err := authorize(s.perms.UserHasAny(ctx, actor.UserID, []string{model.RoleAdmin, model.PermArticlesUpdate})); err != nil {
			return store.Article{}, err
		}
		authorID = in.AuthorID
	}

	bodyHTML, err := s.renderer.RenderMarkdown(in.Body)
	if err != nil {
		return store.Article{}, fmt.Errorf("rendering body: %w", err)
	}
	passwordHash := ""
	if in.Visibility == model.VisibilityPasswordProtected {
		if passwordHash, err = auth.HashPassword(in.Password); err != nil {
			return store.Article{}, err
		}
	}

	tenantID := actor.Tenant()
	var created store.Article
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		slug, err := s.resolveSlug(ctx, q, tenantID, in.Slug, in.Title)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		created, err = q.CreateArticle(ctx, store.CreateArticleParams{
			UUID:            uuid.NewString(),
			TenantID:        tenantID,
			Slug:            slug,
			Title:           in.Title,
			Excerpt:         strings.TrimSpace(in.Excerpt),
			Body:            in.Body,
			BodyHTML:        bodyHTML,
			Status:          in.Status,
			Visibility:      in.Visibility,
			PasswordHash:    passwordHash,
			ScheduledAt:     nullTime(in.ScheduledAt),
			ExpiresAt:       nullTime(in.ExpiresAt),
			MetaTitle:       in.MetaTitle,
			MetaDescription: in.MetaDescription,
			MetaKeywords:    in.MetaKeywords,
			AuthorID:        authorID,
			CreatedBy:       actor.UserID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				return NewValidationError("slug", "is already taken")
			}
			return err
		}
		if err := setCategories(ctx, q, tenantID, created.ID, in.CategoryIDs, in.PrimaryCategoryID); err != nil {
			return err
		}
		return setTags(ctx, q, tenantID, created.ID, in.TagIDs)
	})
	if err != nil {
		return store.Article{}, err
	}

	s.events.Publish(ctx, articleEvent(model.EventArticleCreated, created, actor, map[string]any{
		"title": created.Title, "slug": created.Slug, "status": created.Status,
	}))
	return created, nil
}

func (s *ArticleService) validateCreate(in ArticleInput) error {
	now := time.Now().UTC()
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Slug, validation.Length(0, 255), validation.By(slugRule)),
		validation.Field(&in.Excerpt, validation.Length(0, 1000)),
		validation.Field(&in.Status, validation.In(model.StatusDraft, model.StatusPending).
			Error("must be draft or pending")),
		validation.Field(&in.Visibility, validation.By(visibilityRule)),
		validation.Field(&in.Password, validation.When(in.Visibility == model.VisibilityPasswordProtected,
			validation.Required.Error("is required for password protected articles"), validation.Length(4, 128))),
		validation.Field(&in.ExpiresAt, validation.By(expiryRule(in.ScheduledAt, now))),
		validation.Field(&in.MetaTitle, validation.Length(0, 255)),
		validation.Field(&in.MetaDescription, validation.Length(0, 500)),
	)
}

// Update edits a draft or pending article.
func (s *ArticleService) Update(ctx context.Context, actor Actor, id int64, in ArticleUpdate) (store.Article, error) {
	before, err := loadArticle(ctx, s.store, actor, id)
	if err != nil {
		return store.Article{}, err
	}
	if err := authorize(s.policy.Update(ctx, actor, before)); err != nil {
		return store.Article{}, err
	}
	if !model.IsEditable(before.Status) {
		return store.Article{}, ErrInvalidState
	}
	if in.AuthorID != nil && *in.AuthorID != before.AuthorID {
		if err := authorize(s.perms.UserHasAny(ctx, actor.UserID, []string{model.RoleAdmin, model.PermArticlesUpdate})); err != nil {
			return store.Article{}, err
		}
	}

	params, changes, err := s.applyUpdate(before, in, actor)
	if err != nil {
		return store.Article{}, err
	}

	var updated store.Article
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		if params.Slug != before.Slug {
			n, err := q.ArticleSlugExists(ctx, before.TenantID, params.Slug)
			if err != nil {
				return err
			}
			if n > 0 {
				return NewValidationError("slug", "is already taken")
			}
		}

		var err error
		updated, err = q.UpdateArticle(ctx, params)
		if err != nil {
			if store.IsUniqueViolation(err) {
				return NewValidationError("slug", "is already taken")
			}
			return notFound(err)
		}
		if updated.Status != before.Status {
			// a concurrent transition moved the article out of an editable state
			return ErrInvalidState
		}
		if in.CategoryIDs != nil {
			primary := int64(0)
			if in.PrimaryCategoryID != nil {
				primary = *in.PrimaryCategoryID
			}
			if err := setCategories(ctx, q, before.TenantID, id, *in.CategoryIDs, primary); err != nil {
				return err
			}
			changes["categories"] = *in.CategoryIDs
		}
		if in.TagIDs != nil {
			if err := setTags(ctx, q, before.TenantID, id, *in.TagIDs); err != nil {
				return err
			}
			changes["tags"] = *in.TagIDs
		}
		return nil
	})
	if err != nil {
		return store.Article{}, err
	}

	if before.Slug != updated.Slug && s.views != nil {
		_ = s.views.Invalidate(ctx, cache.ArticleSlugKey(before.TenantID, before.Slug))
	}
	s.events.Publish(ctx, articleEvent(model.EventArticleUpdated, updated, actor, changes))
	return updated, nil
}

// applyUpdate merges in onto before and returns the update parameters and the
// change set recorded in history.
func (s *ArticleService) applyUpdate(before store.Article, in ArticleUpdate, actor Actor) (store.UpdateArticleParams, map[string]any, error) {
	p := store.UpdateArticleParams{
		ID:              before.ID,
		Slug:            before.Slug,
		Title:           before.Title,
		Excerpt:         before.Excerpt,
		Body:            before.Body,
		BodyHTML:        before.BodyHTML,
		Status:          before.Status,
		Visibility:      before.Visibility,
		PasswordHash:    before.PasswordHash,
		ScheduledAt:     before.ScheduledAt,
		ExpiresAt:       before.ExpiresAt,
		MetaTitle:       before.MetaTitle,
		MetaDescription: before.MetaDescription,
		MetaKeywords:    before.MetaKeywords,
		AuthorID:        before.AuthorID,
		UpdatedBy:       actor.nullUserID(),
		UpdatedAt:       time.Now().UTC(),
	}
	changes := make(map[string]any)
	track := func(field string, from, to any) {
		if from != to {
			changes[field] = map[string]any{"from": from, "to": to}
		}
	}
	fields := validation.Errors{}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		fields["title"] = validation.Validate(title, validation.Required, validation.Length(1, 255))
		track("title", p.Title, title)
		p.Title = title
	}
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		fields["slug"] = validation.Validate(slug, validation.Required, validation.By(slugRule))
		track("slug", p.Slug, slug)
		p.Slug = slug
	}
	if in.Excerpt != nil {
		track("excerpt", p.Excerpt, *in.Excerpt)
		p.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Body != nil && *in.Body != p.Body {
		html, err := s.renderer.RenderMarkdown(*in.Body)
		if err != nil {
			return p, nil, fmt.Errorf("rendering body: %w", err)
		}
		changes["body"] = true
		p.Body, p.BodyHTML = *in.Body, html
	}
	if in.Visibility != nil {
		fields["visibility"] = visibilityRule(*in.Visibility)
		track("visibility", p.Visibility, *in.Visibility)
		p.Visibility = *in.Visibility
	}
	if p.Visibility == model.VisibilityPasswordProtected {
		switch {
		case in.Password != nil:
			if err := validation.Validate(*in.Password, validation.Required, validation.Length(4, 128)); err != nil {
				fields["password"] = err
				break
			}
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return p, nil, err
			}
			p.PasswordHash = hash
			changes["password"] = true
		case p.PasswordHash == "":
			fields["password"] = errors.New("is required for password protected articles")
		}
	} else {
		p.PasswordHash = ""
	}
	if in.ClearScheduledAt {
		p.ScheduledAt = sql.NullTime{}
	} else if in.ScheduledAt != nil {
		p.ScheduledAt = nullTime(in.ScheduledAt)
	}
	if in.ClearExpiresAt {
		p.ExpiresAt = sql.NullTime{}
	} else if in.ExpiresAt != nil {
		p.ExpiresAt = nullTime(in.ExpiresAt)
	}
	// the merged pair is checked so moving scheduled_at alone cannot pass expires_at
	datesChanged := in.ClearScheduledAt || in.ScheduledAt != nil || in.ExpiresAt != nil
	if datesChanged && p.ExpiresAt.Valid {
		var scheduled *time.Time
		if p.ScheduledAt.Valid {
			scheduled = &p.ScheduledAt.Time
		}
		expires := p.ExpiresAt.Time
		fields["expires_at"] = expiryRule(scheduled, time.Now().UTC())(&expires)
	}
	if in.MetaTitle != nil {
		p.MetaTitle = *in.MetaTitle
	}
	if in.MetaDescription != nil {
		p.MetaDescription = *in.MetaDescription
	}
	if in.MetaKeywords != nil {
		p.MetaKeywords = *in.MetaKeywords
	}
	if in.AuthorID != nil && *in.AuthorID > 0 {
		track("author_id", p.AuthorID, *in.AuthorID)
		p.AuthorID = *in.AuthorID
	}

	if err := validationErr(fields.Filter()); err != nil {
		return p, nil, err
	}
	return p, changes, nil
}

// Submit moves a draft into review.
func (s *ArticleService) Submit(ctx context.Context, actor Actor, id int64) (store.Article, error) {
	return s.transition(ctx, actor, id, model.StatusPending, s.policy.Update, model.EventArticleSubmitted)
}

// Publish makes a draft or pending article public, stamping the publication
// time and the reviewing actor.
func (s *ArticleService) Publish(ctx context.Context, actor Actor, id int64) (store.Article, error) {
	return s.transition(ctx, actor, id, model.StatusPublished, s.policy.Publish, model.EventArticlePublished)
}

// Unpublish returns a published article to draft. Review stamps are kept.
func (s *ArticleService) Unpublish(ctx context.Context, actor Actor, id int64) (store.Article, error) {
	return s.transition(ctx, actor, id, model.StatusDraft, s.policy.Publish, model.EventArticleUnpublished)
}

// Archive retires an article. Only admins may archive and archived articles
// cannot leave that state.
func (s *ArticleService) Archive(ctx context.Context, actor Actor, id int64) (store.Article, error) {
	adminOnly := func(ctx context.Context, actor Actor, _ store.Article) (bool, error) {
		return s.perms.IsAdmin(ctx, actor.UserID)
	}
	return s.transition(ctx, actor, id, model.StatusArchived, adminOnly, model.EventArticleArchived)
}

type articlePredicate func(ctx context.Context, actor Actor, a store.Article) (bool, error)

// transition checks the policy first and the state machine second, then
// applies the status change with a guard on the status that was read so a
// concurrent transition turns this one into ErrInvalidState.
func (s *ArticleService) transition(ctx context.Context, actor Actor, id int64, target string, allowed articlePredicate, event string) (store.Article, error) {
	current, err := loadArticle(ctx, s.store, actor, id)
	if err != nil {
		return store.Article{}, err
	}
	if err := authorize(allowed(ctx, actor, current)); err != nil {
		return store.Article{}, err
	}
	if !model.CanTransition(current.Status, target) {
		return store.Article{}, ErrInvalidState
	}

	now := time.Now().UTC()
	if target == model.StatusPublished && current.ExpiresAt.Valid && !current.ExpiresAt.Time.After(now) {
		return store.Article{}, NewValidationError("expires_at", "must be later than the publication time")
	}

	var updated store.Article
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		updated, err = applyTransition(ctx, q, current, target, actor.nullUserID(), now)
		return err
	})
	if err != nil {
		return store.Article{}, err
	}

	s.events.Publish(ctx, articleEvent(event, updated, actor, map[string]any{
		"status": map[string]any{"from": current.Status, "to": updated.Status},
	}))
	return updated, nil
}

func applyTransition(ctx context.Context, q store.Querier, current store.Article, target string, actorID sql.NullInt64, now time.Time) (store.Article, error) {
	params := store.UpdateArticleStatusParams{
		ID:           current.ID,
		Status:       target,
		PublishedAt:  current.PublishedAt,
		ReviewedBy:   current.ReviewedBy,
		ReviewedAt:   current.ReviewedAt,
		UpdatedBy:    actorID,
		UpdatedAt:    now,
		FromStatuses: []string{current.Status},
	}
	switch target {
	case model.StatusPublished:
		if current.ExpiresAt.Valid && !current.ExpiresAt.Time.After(now) {
			return store.Article{}, ErrInvalidState
		}
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
		params.ReviewedBy = actorID
		params.ReviewedAt = sql.NullTime{Time: now, Valid: true}
	case model.StatusDraft:
		params.PublishedAt = sql.NullTime{}
	}

	n, err := q.UpdateArticleStatus(ctx, params)
	if err != nil {
		return store.Article{}, err
	}
	if n == 0 {
		return store.Article{}, ErrInvalidState
	}

	updated, err := q.GetArticle(ctx, current.ID)
	if err != nil {
		return store.Article{}, err
	}
	if target == model.StatusPublished && updated.ScheduledAt.Valid {
		// the schedule is consumed so a later unpublish is not re-published by cron
		updated, err = q.UpdateArticle(ctx, store.UpdateArticleParams{
			ID: updated.ID, Slug: updated.Slug, Title: updated.Title, Excerpt: updated.Excerpt,
			Body: updated.Body, BodyHTML: updated.BodyHTML, Status: updated.Status,
			Visibility: updated.Visibility, PasswordHash: updated.PasswordHash,
			ExpiresAt: updated.ExpiresAt, MetaTitle: updated.MetaTitle,
			MetaDescription: updated.MetaDescription, MetaKeywords: updated.MetaKeywords,
			AuthorID: updated.AuthorID, UpdatedBy: actorID, UpdatedAt: now,
		})
	}
	return updated, err
}

// Delete soft deletes an article.
func (s *ArticleService) Delete(ctx context.Context, actor Actor, id int64) error {
	a, err := loadArticle(ctx, s.store, actor, id)
	if err != nil {
		return err
	}
	if err := authorize(s.policy.Delete(ctx, actor, a)); err != nil {
		return err
	}

	n, err := s.store.SoftDeleteArticle(ctx, id, actor.nullUserID(), time.Now().UTC())
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	deleted, err := s.store.GetArticleWithTrashed(ctx, id)
	if err != nil {
		return err
	}
	s.events.Publish(ctx, articleEvent(model.EventArticleDeleted, deleted, actor, nil))
	return nil
}

// Restore undoes a soft delete.
func (s *ArticleService) Restore(ctx context.Context, actor Actor, id int64) (store.Article, error) {
	a, err := loadArticleWithTrashed(ctx, s.store, actor, id)
	if err != nil {
		return store.Article{}, err
	}
	if err := authorize(s.policy.Delete(ctx, actor, a)); err != nil {
		return store.Article{}, err
	}
	if !a.DeletedAt.Valid {
		return store.Article{}, ErrInvalidState
	}

	var restored store.Article
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		n, err := q.ArticleSlugExists(ctx, a.TenantID, a.Slug)
		if err != nil {
			return err
		}
		if n > 1 {
			return fmt.Errorf("%w: slug %q is in use", ErrConflict, a.Slug)
		}
		if n, err = q.RestoreArticle(ctx, id, actor.nullUserID(), time.Now().UTC()); err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidState
		}
		restored, err = q.GetArticle(ctx, id)
		return err
	})
	if err != nil {
		return store.Article{}, err
	}

	s.events.Publish(ctx, articleEvent(model.EventArticleRestored, restored, actor, nil))
	return restored, nil
}

// Duplicate copies an article into a new draft owned by actor. The copy has a
// new identity and slug, zero aggregates, no publication or review stamps, and
// the source's category and tag associations.
func (s *ArticleService) Duplicate(ctx context.Context, actor Actor, id int64) (store.Article, error) {
	src, err := loadArticle(ctx, s.store, actor, id)
	if err != nil {
		return store.Article{}, err
	}
	if err := authorize(s.policy.View(ctx, actor, src)); err != nil {
		return store.Article{}, err
	}
	if err := authorize(s.policy.Create(ctx, actor)); err != nil {
		return store.Article{}, err
	}

	var dup store.Article
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		slug, err := util.UniqueSlug(ctx, src.Slug+"-copy", slugExists(q, src.TenantID))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		dup, err = q.CreateArticle(ctx, store.CreateArticleParams{
			UUID:            uuid.NewString(),
			TenantID:        src.TenantID,
			Slug:            slug,
			Title:           src.Title + " (copy)",
			Excerpt:         src.Excerpt,
			Body:            src.Body,
			BodyHTML:        src.BodyHTML,
			Status:          model.StatusDraft,
			Visibility:      src.Visibility,
			PasswordHash:    src.PasswordHash,
			MetaTitle:       src.MetaTitle,
			MetaDescription: src.MetaDescription,
			MetaKeywords:    src.MetaKeywords,
			AuthorID:        actor.UserID,
			CreatedBy:       actor.UserID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		cats, err := q.GetCategoriesForArticle(ctx, src.ID)
		if err != nil {
			return err
		}
		for _, c := range cats {
			if err := q.AddCategoryToArticle(ctx, store.AddCategoryToArticleParams{
				ArticleID: dup.ID, CategoryID: c.CategoryID, IsPrimary: c.IsPrimary, SortOrder: c.SortOrder,
			}); err != nil {
				return err
			}
		}

		tags, err := q.GetTagsForArticle(ctx, src.ID)
		if err != nil {
			return err
		}
		for _, t := range tags {
			if err := q.AddTagToArticle(ctx, store.AddTagToArticleParams{
				ArticleID: dup.ID, TagID: t.TagID, SortOrder: t.SortOrder,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.Article{}, err
	}

	s.events.Publish(ctx, articleEvent(model.EventArticleDuplicated, dup, actor, map[string]any{
		"source_id": src.ID,
	}))
	return dup, nil
}

// Get returns the article by id as actor may see it.
func (s *ArticleService) Get(ctx context.Context, actor Actor, id int64) (ArticleView, error) {
	view, err := s.cachedView(ctx, cache.ArticleIDKey(id), func() (store.Article, error) {
		return s.store.GetArticle(ctx, id)
	})
	if err != nil {
		return ArticleView{}, err
	}
	if err := ownsTenant(actor, view.TenantID); err != nil {
		return ArticleView{}, err
	}
	return s.present(ctx, actor, view)
}

// GetBySlug returns the article by tenant and slug as actor may see it.
func (s *ArticleService) GetBySlug(ctx context.Context, actor Actor, slug string) (ArticleView, error) {
	tenantID := actor.Tenant()
	view, err := s.cachedView(ctx, cache.ArticleSlugKey(tenantID, slug), func() (store.Article, error) {
		return s.store.GetArticleBySlug(ctx, tenantID, slug)
	})
	if err != nil {
		return ArticleView{}, err
	}
	return s.present(ctx, actor, view)
}

// Unlock returns the full view of a password protected article when password
// matches.
func (s *ArticleService) Unlock(ctx context.Context, actor Actor, id int64, password string) (ArticleView, error) {
	a, err := loadArticle(ctx, s.store, actor, id)
	if err != nil {
		return ArticleView{}, err
	}
	if err := authorize(s.policy.View(ctx, actor, a)); err != nil {
		return ArticleView{}, err
	}
	if a.Visibility != model.VisibilityPasswordProtected {
		return ArticleView{}, ErrInvalidState
	}
	ok, err := auth.CheckPassword(password, a.PasswordHash)
	if err != nil || !ok {
		return ArticleView{}, ErrForbidden
	}
	return s.loadView(ctx, a)
}

func (s *ArticleService) cachedView(ctx context.Context, key string, load func() (store.Article, error)) (ArticleView, error) {
	fetch := func() (*ArticleView, error) {
		a, err := load()
		if err != nil {
			return nil, notFound(err)
		}
		v, err := s.loadView(ctx, a)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	if s.views == nil {
		v, err := fetch()
		if err != nil {
			return ArticleView{}, err
		}
		return *v, nil
	}
	v, err := s.views.GetOrSet(ctx, key, fetch)
	if err != nil {
		return ArticleView{}, err
	}
	return *v, nil
}

func (s *ArticleService) loadView(ctx context.Context, a store.Article) (ArticleView, error) {
	cats, err := s.store.GetCategoriesForArticle(ctx, a.ID)
	if err != nil {
		return ArticleView{}, err
	}
	tags, err := s.store.GetTagsForArticle(ctx, a.ID)
	if err != nil {
		return ArticleView{}, err
	}
	return ArticleView{Article: a, Categories: cats, Tags: tags}, nil
}

// present applies the view policies to a loaded article.
func (s *ArticleService) present(ctx context.Context, actor Actor, v ArticleView) (ArticleView, error) {
	if err := authorize(s.policy.View(ctx, actor, v.Article)); err != nil {
		return ArticleView{}, err
	}
	full, err := s.policy.ViewFullContent(ctx, actor, v.Article)
	if err != nil {
		return ArticleView{}, err
	}
	if !full {
		v.Body, v.BodyHTML, v.Locked = "", "", true
	}
	return v, nil
}

// List returns articles matching f. Actors without articles.view only see
// live, non-private articles, except their own when filtering by themselves.
func (s *ArticleService) List(ctx context.Context, actor Actor, f ArticleFilter) ([]store.Article, int64, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	params := store.ListArticlesParams{
		TenantID:   actor.Tenant(),
		Status:     f.Status,
		AuthorID:   f.AuthorID,
		CategoryID: f.CategoryID,
		TagID:      f.TagID,
		Search:     strings.TrimSpace(f.Search),
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
	if params.Status != "" && !model.IsValidStatus(params.Status) {
		return nil, 0, NewValidationError("status", "is not a valid status")
	}

	privileged, err := s.perms.UserHasAny(ctx, actor.UserID, []string{model.RoleAdmin, model.PermArticlesView})
	if err != nil {
		return nil, 0, err
	}
	ownOnly := !actor.IsGuest() && f.AuthorID == actor.UserID
	if !privileged && !ownOnly {
		params.Status = model.StatusPublished
		params.Visibilities = []string{model.VisibilityPublic, model.VisibilityPasswordProtected}
		params.PublishedBefore = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	items, err := s.store.ListArticles(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountArticles(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Stats returns the article's aggregates and share breakdown.
func (s *ArticleService) Stats(ctx context.Context, actor Actor, id int64) (ArticleStats, error) {
	a, err := loadArticle(ctx, s.store, actor, id)
	if err != nil {
		return ArticleStats{}, err
	}
	if err := authorize(s.policy.ViewStats(ctx, actor, a)); err != nil {
		return ArticleStats{}, err
	}

	byMethod, err := s.store.ShareStatsForArticle(ctx, id)
	if err != nil {
		return ArticleStats{}, err
	}
	history, err := s.store.CountArticleHistory(ctx, id)
	if err != nil {
		return ArticleStats{}, err
	}
	return ArticleStats{
		ArticleID:      a.ID,
		Views:          a.ViewCount,
		Shares:         a.ShareCount,
		Comments:       a.CommentCount,
		RatingAverage:  a.RatingAverage,
		RatingCount:    a.RatingCount,
		SharesByMethod: byMethod,
		HistoryEntries: history,
	}, nil
}

// History returns the audit trail of an article, newest first.
func (s *ArticleService) History(ctx context.Context, actor Actor, id, limit, offset int64) ([]store.ArticleHistory, int64, error) {
	a, err := loadArticleWithTrashed(ctx, s.store, actor, id)
	if err != nil {
		return nil, 0, err
	}
	if err := authorize(s.policy.ViewStats(ctx, actor, a)); err != nil {
		return nil, 0, err
	}
	items, err := s.store.ListArticleHistory(ctx, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountArticleHistory(ctx, id)
	return items, total, err
}

// PublishScheduled publishes every draft or pending article whose schedule is
// due. It returns the number of articles published.
func (s *ArticleService) PublishScheduled(ctx context.Context) (int, error) {
	due, err := s.store.ListScheduledArticlesDue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return s.systemTransition(ctx, due, model.StatusPublished, model.EventArticlePublished), nil
}

// ArchiveExpired archives every published article whose expiry has passed.
func (s *ArticleService) ArchiveExpired(ctx context.Context) (int, error) {
	expired, err := s.store.ListExpiredArticles(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return s.systemTransition(ctx, expired, model.StatusArchived, model.EventArticleArchived), nil
}

func (s *ArticleService) systemTransition(ctx context.Context, articles []store.Article, target, event string) int {
	done := 0
	for _, a := range articles {
		if !model.CanTransition(a.Status, target) {
			continue
		}
		var updated store.Article
		err := s.store.ExecTx(ctx, func(q store.Querier) error {
			var err error
			updated, err = applyTransition(ctx, q, a, target, sql.NullInt64{}, time.Now().UTC())
			return err
		})
		if errors.Is(err, ErrInvalidState) {
			continue
		}
		if err != nil {
			s.logger.Error("scheduled transition failed", "article_id", a.ID, "target", target, "error", err)
			continue
		}
		s.events.Publish(ctx, articleEvent(event, updated, Actor{TenantID: a.TenantID}, map[string]any{
			"status": map[string]any{"from": a.Status, "to": target}, "scheduled": true,
		}))
		done++
	}
	return done
}

func (s *ArticleService) resolveSlug(ctx context.Context, q store.Querier, tenantID int64, requested, title string) (string, error) {
	if requested != "" {
		n, err := q.ArticleSlugExists(ctx, tenantID, requested)
		if err != nil {
			return "", err
		}
		if n > 0 {
			return "", NewValidationError("slug", "is already taken")
		}
		return requested, nil
	}
	return util.UniqueSlug(ctx, util.Slugify(title), slugExists(q, tenantID))
}

func slugExists(q store.Querier, tenantID int64) util.SlugExistsFunc {
	return func(ctx context.Context, slug string) (bool, error) {
		n, err := q.ArticleSlugExists(ctx, tenantID, slug)
		return n > 0, err
	}
}

func setCategories(ctx context.Context, q store.Querier, tenantID, articleID int64, ids []int64, primary int64) error {
	if primary > 0 && !slices.Contains(ids, primary) {
		return NewValidationError("primary_category_id", "must be one of category_ids")
	}
	if err := q.ClearArticleCategories(ctx, articleID); err != nil {
		return err
	}
	seen := make(map[int64]bool, len(ids))
	for i, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, err := q.GetCategory(ctx, id)
		if err != nil && !store.IsNoRows(err) {
			return err
		}
		if err != nil || c.TenantID != tenantID {
			return NewValidationError("category_ids", fmt.Sprintf("category %d does not exist", id))
		}
		isPrimary := id == primary || (primary == 0 && i == 0)
		if err := q.AddCategoryToArticle(ctx, store.AddCategoryToArticleParams{
			ArticleID: articleID, CategoryID: id, IsPrimary: isPrimary, SortOrder: int64(i),
		}); err != nil {
			return err
		}
	}
	return nil
}

func setTags(ctx context.Context, q store.Querier, tenantID, articleID int64, ids []int64) error {
	if err := q.ClearArticleTags(ctx, articleID); err != nil {
		return err
	}
	seen := make(map[int64]bool, len(ids))
	for i, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, err := q.GetTag(ctx, id)
		if err != nil && !store.IsNoRows(err) {
			return err
		}
		if err != nil || t.TenantID != tenantID {
			return NewValidationError("tag_ids", fmt.Sprintf("tag %d does not exist", id))
		}
		if err := q.AddTagToArticle(ctx, store.AddTagToArticleParams{
			ArticleID: articleID, TagID: id, SortOrder: int64(i),
		}); err != nil {
			return err
		}
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func slugRule(value any) error {
	s, _ := value.(string)
	if s != "" && !util.IsValidSlug(s) {
		return validation.NewError("validation_slug", "must contain only lowercase letters, digits and single hyphens")
	}
	return nil
}

func visibilityRule(value any) error {
	v, _ := value.(string)
	if !model.IsValidVisibility(v) {
		return validation.NewError("validation_visibility", "must be one of public, private, password_protected")
	}
	return nil
}

// expiryRule requires the expiry to lie in the future and after the schedule.
func expiryRule(scheduled *time.Time, now time.Time) validation.RuleFunc {
	return func(value any) error {
		exp, _ := value.(*time.Time)
		if exp == nil || exp.IsZero() {
			return nil
		}
		if !exp.After(now) {
			return validation.NewError("validation_expiry_past", "must be in the future")
		}
		if scheduled != nil && !scheduled.IsZero() && !exp.After(*scheduled) {
			return validation.NewError("validation_expiry_schedule", "must be later than scheduled_at")
		}
		return nil
	}
}
