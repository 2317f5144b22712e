// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mileusna/useragent"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/handler"
	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/store"
)

// UnlockRequest is the request body for POST /articles/{id}/unlock.
type UnlockRequest struct {
	Password string `json:"password"`
}

// ViewResponse reports whether a view was counted.
type ViewResponse struct {
	Counted bool `json:"counted"`
}

// ListArticles handles GET /api/v1/articles.
//
// Query parameters: page, per_page, status, author_id, category_id, tag_id, q.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page, perPage := handler.ParsePagination(r)
	query := r.URL.Query()

	// the offset only depends on page and per_page, total is filled in below
	p := handler.NewPagination(page, perPage, 0)
	items, total, err := h.svc.Articles.List(r.Context(), middleware.GetActor(r), service.ArticleFilter{
		Status:     query.Get("status"),
		AuthorID:   handler.ParseInt64Query(r, "author_id"),
		CategoryID: handler.ParseInt64Query(r, "category_id"),
		TagID:      handler.ParseInt64Query(r, "tag_id"),
		Search:     strings.TrimSpace(query.Get("q")),
		Limit:      p.Limit(),
		Offset:     p.Offset(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.Article{}
	}
	WriteList(w, r, items, handler.NewPagination(page, perPage, total), nil)
}

// CreateArticle handles POST /api/v1/articles.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var in service.ArticleInput
	if !decode(w, r, &in) {
		return
	}
	a, err := h.svc.Articles.Create(r.Context(), middleware.GetActor(r), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, a)
}

// GetArticle handles GET /api/v1/articles/{id}.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Articles.Get(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, view)
}

// GetArticleBySlug handles GET /api/v1/articles/slug/{slug}.
func (h *Handler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Articles.GetBySlug(r.Context(), middleware.GetActor(r), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, view)
}

// UnlockArticle handles POST /api/v1/articles/{id}/unlock.
func (h *Handler) UnlockArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UnlockRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.svc.Articles.Unlock(r.Context(), middleware.GetActor(r), id, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, view)
}

// UpdateArticle handles PATCH /api/v1/articles/{id}.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.ArticleUpdate
	if !decode(w, r, &in) {
		return
	}
	a, err := h.svc.Articles.Update(r.Context(), middleware.GetActor(r), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, a)
}

// DeleteArticle handles DELETE /api/v1/articles/{id}.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Articles.Delete(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreArticle handles POST /api/v1/articles/{id}/restore.
func (h *Handler) RestoreArticle(w http.ResponseWriter, r *http.Request) {
	h.articleAction(w, r, h.svc.Articles.Restore)
}

// SubmitArticle handles POST /api/v1/articles/{id}/submit.
func (h *Handler) SubmitArticle(w http.ResponseWriter, r *http.Request) {
	h.articleAction(w, r, h.svc.Articles.Submit)
}

// PublishArticle handles POST /api/v1/articles/{id}/publish.
func (h *Handler) PublishArticle(w http.ResponseWriter, r *http.Request) {
	h.articleAction(w, r, h.svc.Articles.Publish)
}

// UnpublishArticle handles POST /api/v1/articles/{id}/unpublish.
func (h *Handler) UnpublishArticle(w http.ResponseWriter, r *http.Request) {
	h.articleAction(w, r, h.svc.Articles.Unpublish)
}

// ArchiveArticle handles POST /api/v1/articles/{id}/archive.
func (h *Handler) ArchiveArticle(w http.ResponseWriter, r *http.Request) {
	h.articleAction(w, r, h.svc.Articles.Archive)
}

// DuplicateArticle handles POST /api/v1/articles/{id}/duplicate.
func (h *Handler) DuplicateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Articles.Duplicate(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, a)
}

// articleAction runs a lifecycle transition on the article named in the path.
func (h *Handler) articleAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, service.Actor, int64) (store.Article, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := fn(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, a)
}

// ArticleStats handles GET /api/v1/articles/{id}/stats.
func (h *Handler) ArticleStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Articles.Stats(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, stats)
}

// ArticleHistory handles GET /api/v1/articles/{id}/history.
func (h *Handler) ArticleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	page, perPage := handler.ParsePagination(r)
	p := handler.NewPagination(page, perPage, 0)
	items, total, err := h.svc.Articles.History(r.Context(), middleware.GetActor(r), id, p.Limit(), p.Offset())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.ArticleHistory{}
	}
	WriteList(w, r, items, handler.NewPagination(page, perPage, total), nil)
}

// RegisterView handles POST /api/v1/articles/{id}/views. Crawlers are never
// counted and a visitor counts once per article within the dedupe window.
func (h *Handler) RegisterView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor := middleware.GetActor(r)
	if _, err := h.svc.Articles.Get(r.Context(), actor, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	ua := r.UserAgent()
	if ua == "" || useragent.Parse(ua).Bot {
		WriteSuccess(w, ViewResponse{Counted: false})
		return
	}

	key := cache.ViewDedupeKey(id, cache.VisitorFingerprint(actor.IP, ua))
	counted, err := h.svc.Counters.IncrementViews(r.Context(), id, key, h.cfg.ViewDedupeTTL)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, ViewResponse{Counted: counted})
}
