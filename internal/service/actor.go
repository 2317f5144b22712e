// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"

	"github.com/olegiv/olib-go/internal/store"
)

// DefaultTenantID is used when a request carries no tenant.
const DefaultTenantID int64 = 1

// Actor identifies who performs an operation. A zero UserID is a guest.
type Actor struct {
	UserID    int64
	TenantID  int64
	IP        string
	UserAgent string
}

// Guest returns an anonymous actor in tenant.
func Guest(tenantID int64) Actor {
	return Actor{TenantID: tenantID}
}

// IsGuest reports whether the actor is unauthenticated.
func (a Actor) IsGuest() bool {
	return a.UserID <= 0
}

// Tenant returns the actor's tenant, falling back to DefaultTenantID.
func (a Actor) Tenant() int64 {
	if a.TenantID > 0 {
		return a.TenantID
	}
	return DefaultTenantID
}

func (a Actor) nullUserID() sql.NullInt64 {
	if a.IsGuest() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: a.UserID, Valid: true}
}

// ownsTenant reports ErrNotFound for rows of another tenant.
func ownsTenant(actor Actor, tenantID int64) error {
	if tenantID != actor.Tenant() {
		return ErrNotFound
	}
	return nil
}

// loadArticle returns a non-deleted article of the actor's tenant.
func loadArticle(ctx context.Context, q store.Querier, actor Actor, id int64) (store.Article, error) {
	a, err := q.GetArticle(ctx, id)
	if err != nil {
		return store.Article{}, notFound(err)
	}
	if err := ownsTenant(actor, a.TenantID); err != nil {
		return store.Article{}, err
	}
	return a, nil
}

// loadArticleWithTrashed is loadArticle including soft deleted articles.
func loadArticleWithTrashed(ctx context.Context, q store.Querier, actor Actor, id int64) (store.Article, error) {
	a, err := q.GetArticleWithTrashed(ctx, id)
	if err != nil {
		return store.Article{}, notFound(err)
	}
	if err := ownsTenant(actor, a.TenantID); err != nil {
		return store.Article{}, err
	}
	return a, nil
}
