// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/mail"
	"github.com/olegiv/olib-go/internal/metatags"
	"github.com/olegiv/olib-go/internal/store"
)

// JobHandlers executes the background job types.
type JobHandlers struct {
	q      store.Querier
	meta   *metatags.Generator
	mailer mail.Mailer
	cache  cache.Cacher
	logger *slog.Logger
}

// NewJobHandlers creates the handlers. c may be nil.
func NewJobHandlers(q store.Querier, meta *metatags.Generator, mailer mail.Mailer, c cache.Cacher, logger *slog.Logger) *JobHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandlers{q: q, meta: meta, mailer: mailer, cache: c, logger: logger}
}

// Register installs every handler on the pool.
func (h *JobHandlers) Register(p *jobs.Pool) {
	p.Register(jobs.TypeGenerateMeta, h.GenerateMeta)
	p.Register(jobs.TypeRecalculateRating, h.RecalculateRating)
	p.Register(jobs.TypeSendMail, h.SendMail)
}

// GenerateMeta fills the article's empty SEO fields. Fields an editor already
// set are never overwritten.
func (h *JobHandlers) GenerateMeta(ctx context.Context, job store.Job) error {
	var p jobs.ArticlePayload
	if err := jobs.Decode(job, &p); err != nil {
		return jobs.Permanent(err)
	}
	a, err := h.q.GetArticle(ctx, p.ArticleID)
	if err != nil {
		if store.IsNoRows(err) {
			return jobs.Permanent(fmt.Errorf("article %d not found", p.ArticleID))
		}
		return err
	}

	generated, err := h.meta.Generate(ctx, a.Title, a.BodyHTML)
	if err != nil {
		return err
	}
	current := metatags.Meta{Title: a.MetaTitle, Description: a.MetaDescription, Keywords: a.MetaKeywords}
	merged, changed := metatags.FillEmpty(current, generated)
	if !changed {
		return nil
	}

	if err := h.q.UpdateArticleMeta(ctx, store.UpdateArticleMetaParams{
		ID:              a.ID,
		MetaTitle:       merged.Title,
		MetaDescription: merged.Description,
		MetaKeywords:    merged.Keywords,
	}); err != nil {
		return err
	}
	invalidateArticleCache(ctx, h.cache, h.logger, a)
	return nil
}

// RecalculateRating recomputes the article's rating aggregate.
func (h *JobHandlers) RecalculateRating(ctx context.Context, job store.Job) error {
	var p jobs.ArticlePayload
	if err := jobs.Decode(job, &p); err != nil {
		return jobs.Permanent(err)
	}
	a, err := h.q.GetArticleWithTrashed(ctx, p.ArticleID)
	if err != nil {
		if store.IsNoRows(err) {
			return jobs.Permanent(fmt.Errorf("article %d not found", p.ArticleID))
		}
		return err
	}
	if err := h.q.RecalculateArticleRating(ctx, a.ID, time.Now().UTC()); err != nil {
		return err
	}
	invalidateArticleCache(ctx, h.cache, h.logger, a)
	return nil
}

// SendMail delivers a queued message.
func (h *JobHandlers) SendMail(ctx context.Context, job store.Job) error {
	var msg mail.Message
	if err := jobs.Decode(job, &msg); err != nil {
		return jobs.Permanent(err)
	}
	if err := msg.Validate(); err != nil {
		return jobs.Permanent(err)
	}
	return h.mailer.Send(ctx, msg)
}
