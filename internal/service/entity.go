// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// EntityInfo describes a resolved EntityRef.
type EntityInfo struct {
	Ref       model.EntityRef `json:"ref"`
	Label     string          `json:"label"`
	ArticleID int64           `json:"article_id,omitempty"`
}

type entityResolveFunc func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error)

// EntityResolver looks up typed references through a per-kind handler table.
type EntityResolver struct {
	q        store.Querier
	handlers map[model.EntityKind]entityResolveFunc
}

// NewEntityResolver creates a resolver with handlers for every known kind.
func NewEntityResolver(q store.Querier) *EntityResolver {
	return &EntityResolver{
		q: q,
		handlers: map[model.EntityKind]entityResolveFunc{
			model.KindArticle: func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error) {
				a, err := q.GetArticleWithTrashed(ctx, id)
				return EntityInfo{Label: a.Title, ArticleID: a.ID}, err
			},
			model.KindComment: func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error) {
				c, err := q.GetCommentWithTrashed(ctx, id)
				return EntityInfo{Label: "comment #" + fmt.Sprint(c.ID), ArticleID: c.ArticleID}, err
			},
			model.KindShare: func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error) {
				s, err := q.GetShareWithTrashed(ctx, id)
				return EntityInfo{Label: s.Method + " share", ArticleID: s.ArticleID}, err
			},
			model.KindCategory: func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error) {
				c, err := q.GetCategory(ctx, id)
				return EntityInfo{Label: c.Name}, err
			},
			model.KindTag: func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error) {
				t, err := q.GetTag(ctx, id)
				return EntityInfo{Label: t.Name}, err
			},
			model.KindUser: func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error) {
				u, err := q.GetUser(ctx, id)
				return EntityInfo{Label: u.Name}, err
			},
			model.KindFile: func(ctx context.Context, q store.Querier, id int64) (EntityInfo, error) {
				f, err := q.GetFile(ctx, id)
				return EntityInfo{Label: f.Name}, err
			},
		},
	}
}

// Resolve returns the description of ref.
func (r *EntityResolver) Resolve(ctx context.Context, ref model.EntityRef) (EntityInfo, error) {
	h, ok := r.handlers[ref.Kind]
	if !ok {
		return EntityInfo{}, fmt.Errorf("no resolver for entity kind %q", ref.Kind)
	}
	info, err := h(ctx, r.q, ref.ID)
	if err != nil {
		return EntityInfo{}, notFound(err)
	}
	info.Ref = ref
	return info, nil
}
