// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"time"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// ArticlePolicy decides which actors may act on an article. Every predicate
// follows the same order: public content, admin role, authorship, then the
// named permission. Articles of another tenant are always denied.
type ArticlePolicy struct {
	perms *PermissionService
}

// NewArticlePolicy creates an ArticlePolicy.
func NewArticlePolicy(perms *PermissionService) *ArticlePolicy {
	return &ArticlePolicy{perms: perms}
}

// View reports whether actor may see the article at all. Published articles
// that are not private are open to everyone, including password protected
// ones whose body stays hidden until unlocked.
func (p *ArticlePolicy) View(ctx context.Context, actor Actor, a store.Article) (bool, error) {
	if a.TenantID != actor.Tenant() {
		return false, nil
	}
	if isLive(a) && a.Visibility != model.VisibilityPrivate {
		return true, nil
	}
	return p.check(ctx, actor, &a, model.PermArticlesView)
}

// ViewFullContent reports whether actor may read the full body.
func (p *ArticlePolicy) ViewFullContent(ctx context.Context, actor Actor, a store.Article) (bool, error) {
	if a.TenantID != actor.Tenant() {
		return false, nil
	}
	if isLive(a) && a.Visibility == model.VisibilityPublic {
		return true, nil
	}
	return p.check(ctx, actor, &a, model.PermArticlesViewFull)
}

// Create reports whether actor may create articles.
func (p *ArticlePolicy) Create(ctx context.Context, actor Actor) (bool, error) {
	return p.check(ctx, actor, nil, model.PermArticlesCreate)
}

// Update reports whether actor may edit the article.
func (p *ArticlePolicy) Update(ctx context.Context, actor Actor, a store.Article) (bool, error) {
	return p.check(ctx, actor, &a, model.PermArticlesUpdate)
}

// Delete reports whether actor may delete or restore the article.
func (p *ArticlePolicy) Delete(ctx context.Context, actor Actor, a store.Article) (bool, error) {
	return p.check(ctx, actor, &a, model.PermArticlesDelete)
}

// Publish reports whether actor may change the article's publication status.
func (p *ArticlePolicy) Publish(ctx context.Context, actor Actor, a store.Article) (bool, error) {
	return p.check(ctx, actor, &a, model.PermArticlesPublish)
}

// ViewStats reports whether actor may read the article's statistics.
func (p *ArticlePolicy) ViewStats(ctx context.Context, actor Actor, a store.Article) (bool, error) {
	return p.check(ctx, actor, &a, model.PermArticlesViewStats)
}

func (p *ArticlePolicy) check(ctx context.Context, actor Actor, a *store.Article, perm string) (bool, error) {
	if actor.IsGuest() || (a != nil && a.TenantID != actor.Tenant()) {
		return false, nil
	}
	admin, err := p.perms.IsAdmin(ctx, actor.UserID)
	if err != nil || admin {
		return admin, err
	}
	if a != nil && a.AuthorID == actor.UserID {
		return true, nil
	}
	return p.perms.UserHasAny(ctx, actor.UserID, []string{perm})
}

// authorize turns a policy result into ErrForbidden.
func authorize(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// isLive reports whether a is published and has been neither deleted nor expired.
func isLive(a store.Article) bool {
	if a.Status != model.StatusPublished || a.DeletedAt.Valid {
		return false
	}
	return !a.ExpiresAt.Valid || a.ExpiresAt.Time.After(time.Now())
}
