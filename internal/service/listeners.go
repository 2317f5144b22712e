// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// WebhookDispatcher queues an outbound webhook delivery for every
// subscription to event.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, event string, data any) error
}

// ArticleWebhookData is the data object sent with article webhook events.
type ArticleWebhookData struct {
	ID          int64          `json:"id"`
	UUID        string         `json:"uuid"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Status      string         `json:"status"`
	Visibility  string         `json:"visibility"`
	AuthorID    int64          `json:"author_id"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	ActorID     int64          `json:"actor_id,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
}

// WebhookKey identifies the article so bursts of the same event coalesce.
func (d ArticleWebhookData) WebhookKey() string {
	return d.UUID
}

// ListenerDeps are the collaborators of the default listeners. Nil members
// disable the corresponding listener.
type ListenerDeps struct {
	Store      store.Querier
	Cache      cache.Cacher
	Queue      *jobs.Queue
	Webhooks   WebhookDispatcher
	Newsletter *NewsletterService
	Events     *EventService
	Logger     *slog.Logger
}

var articleEvents = []string{
	model.EventArticleCreated,
	model.EventArticleUpdated,
	model.EventArticleSubmitted,
	model.EventArticlePublished,
	model.EventArticleUnpublished,
	model.EventArticleArchived,
	model.EventArticleDuplicated,
	model.EventArticleDeleted,
	model.EventArticleRestored,
}

// RegisterListeners wires the default side effects of domain events.
func RegisterListeners(r *Registry, d ListenerDeps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, name := range articleEvents {
		if d.Store != nil {
			r.On(name, "history", HistoryListener(d.Store))
		}
		if d.Cache != nil {
			r.On(name, "cache", CacheListener(d.Cache, logger))
		}
		if d.Webhooks != nil {
			r.On(name, "webhooks", WebhookListener(d.Webhooks))
		}
	}
	if d.Webhooks != nil {
		r.On(model.EventContactSubmitted, "webhooks", WebhookListener(d.Webhooks))
	}
	if d.Queue != nil {
		r.On(model.EventArticleCreated, "meta", MetaJobListener(d.Queue))
		r.On(model.EventArticleDuplicated, "meta", MetaJobListener(d.Queue))
	}
	if d.Newsletter != nil {
		r.On(model.EventArticlePublished, "newsletter", NewsletterListener(d.Newsletter))
	}
	if d.Events != nil {
		r.OnAll("event_log", func(ctx context.Context, ev DomainEvent) error {
			return d.Events.LogDomainEvent(ctx, ev)
		})
	}
}

// HistoryListener appends an audit row for article events.
func HistoryListener(q store.Querier) Listener {
	return func(ctx context.Context, ev DomainEvent) error {
		if ev.Ref.Kind != model.KindArticle {
			return nil
		}
		changes := "{}"
		if len(ev.Changes) > 0 {
			b, err := json.Marshal(ev.Changes)
			if err != nil {
				return err
			}
			changes = string(b)
		}
		return q.CreateArticleHistory(ctx, store.CreateArticleHistoryParams{
			ArticleID: ev.Ref.ID,
			Action:    strings.TrimPrefix(ev.Name, "article."),
			UserID:    ev.Actor.nullUserID(),
			Changes:   changes,
			CreatedAt: ev.At,
		})
	}
}

// CacheListener drops the cached read views of the event's article.
func CacheListener(c cache.Cacher, logger *slog.Logger) Listener {
	return func(ctx context.Context, ev DomainEvent) error {
		if ev.Ref.Kind == model.KindArticle {
			invalidateArticleCache(ctx, c, logger, ev.Article)
		}
		return nil
	}
}

// MetaJobListener queues SEO meta generation for new articles.
func MetaJobListener(q *jobs.Queue) Listener {
	return func(ctx context.Context, ev DomainEvent) error {
		_, err := q.Enqueue(ctx, jobs.TypeGenerateMeta, jobs.ArticlePayload{ArticleID: ev.Ref.ID})
		return err
	}
}

// NewsletterListener mails subscribers when a public article goes live.
func NewsletterListener(n *NewsletterService) Listener {
	return func(ctx context.Context, ev DomainEvent) error {
		if ev.Article.Visibility != model.VisibilityPublic {
			return nil
		}
		_, err := n.NotifyNewArticle(ctx, ev.Article)
		return err
	}
}

// WebhookListener forwards events to webhook subscribers.
func WebhookListener(d WebhookDispatcher) Listener {
	return func(ctx context.Context, ev DomainEvent) error {
		var data any = ev.Payload
		if ev.Ref.Kind == model.KindArticle {
			data = articleWebhookData(ev)
		}
		return d.Dispatch(ctx, ev.Name, data)
	}
}

func articleWebhookData(ev DomainEvent) ArticleWebhookData {
	a := ev.Article
	data := ArticleWebhookData{
		ID:         a.ID,
		UUID:       a.UUID,
		Title:      a.Title,
		Slug:       a.Slug,
		Status:     a.Status,
		Visibility: a.Visibility,
		AuthorID:   a.AuthorID,
		ActorID:    ev.Actor.UserID,
		Changes:    ev.Changes,
	}
	if a.PublishedAt.Valid {
		t := a.PublishedAt.Time
		data.PublishedAt = &t
	}
	return data
}
