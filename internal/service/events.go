// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the article library's business logic: the article
// lifecycle, engagement counters, comments, shares, ratings, newsletter and
// contact flows, authorization policies and the audit event log.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// EventService writes the audit event log.
type EventService struct {
	q        store.Querier
	resolver *EntityResolver
	logger   *slog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(q store.Querier, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{q: q, resolver: NewEntityResolver(q), logger: logger}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, actor Actor, metadata map[string]any) error {
	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.q.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    actor.nullUserID(),
		Metadata:  metadataJSON,
		IpAddress: actor.IP,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to log event", "category", category, "error", err)
		return err
	}
	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, actor Actor, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, actor, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, actor Actor, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, actor, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message string, actor Actor, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelError, category, message, actor, metadata)
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, actor Actor, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, actor, metadata)
}

// LogDomainEvent records ev with the resolved subject entity as metadata.
func (s *EventService) LogDomainEvent(ctx context.Context, ev DomainEvent) error {
	metadata := map[string]any{"event": ev.Name}
	if !ev.Ref.IsZero() {
		metadata["entity"] = ev.Ref.String()
		if info, err := s.resolver.Resolve(ctx, ev.Ref); err == nil {
			metadata["label"] = info.Label
			if info.ArticleID > 0 {
				metadata["article_id"] = info.ArticleID
			}
		}
	}
	if len(ev.Changes) > 0 {
		metadata["changes"] = ev.Changes
	}
	return s.LogInfo(ctx, eventCategory(ev.Ref.Kind), ev.Name, ev.Actor, metadata)
}

// List returns events filtered by level and category, newest first.
func (s *EventService) List(ctx context.Context, level, category string, limit, offset int64) ([]store.Event, error) {
	return s.q.ListEvents(ctx, store.ListEventsParams{Level: level, Category: category, Limit: limit, Offset: offset})
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.q.DeleteOldEvents(ctx, time.Now().UTC().Add(-olderThan))
}

func eventCategory(kind model.EntityKind) string {
	switch kind {
	case model.KindArticle, model.KindShare:
		return model.EventCategoryArticle
	case model.KindComment:
		return model.EventCategoryComment
	case model.KindUser:
		return model.EventCategoryUser
	}
	return model.EventCategorySystem
}

