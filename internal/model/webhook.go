// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// Webhook event types
const (
	EventArticleCreated     = "article.created"
	EventArticleUpdated     = "article.updated"
	EventArticleSubmitted   = "article.submitted"
	EventArticlePublished   = "article.published"
	EventArticleUnpublished = "article.unpublished"
	EventArticleArchived    = "article.archived"
	EventArticleDuplicated  = "article.duplicated"
	EventArticleDeleted     = "article.deleted"
	EventArticleRestored    = "article.restored"
	EventContactSubmitted   = "contact.submitted"
)

// Webhook delivery statuses
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusDead      = "dead"
)

// WebhookEventInfo contains event type and description.
type WebhookEventInfo struct {
	Type        string
	Description string
}

// AllWebhookEvents returns all available webhook event types with descriptions.
func AllWebhookEvents() []WebhookEventInfo {
	return []WebhookEventInfo{
		{EventArticleCreated, "When a new article is created"},
		{EventArticleUpdated, "When an article is edited"},
		{EventArticleSubmitted, "When an article is submitted for review"},
		{EventArticlePublished, "When an article is published"},
		{EventArticleUnpublished, "When an article is returned to draft"},
		{EventArticleArchived, "When an article is archived"},
		{EventArticleDuplicated, "When an article is duplicated"},
		{EventArticleDeleted, "When an article is deleted"},
		{EventArticleRestored, "When a deleted article is restored"},
		{EventContactSubmitted, "When a contact form is submitted"},
	}
}

// IsWebhookEvent reports whether name is a subscribable event type.
func IsWebhookEvent(name string) bool {
	return slices.ContainsFunc(AllWebhookEvents(), func(e WebhookEventInfo) bool { return e.Type == name })
}

// GenerateWebhookSecret generates a random secret for webhook signing.
func GenerateWebhookSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ParseWebhookEvents parses the JSON events column into a slice.
func ParseWebhookEvents(raw string) []string {
	var events []string
	if raw == "" || raw == "[]" {
		return events
	}
	_ = json.Unmarshal([]byte(raw), &events)
	return events
}

// ParseWebhookHeaders parses the JSON headers column into a map.
func ParseWebhookHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" || raw == "{}" {
		return headers
	}
	_ = json.Unmarshal([]byte(raw), &headers)
	return headers
}

// EventsToJSON converts a slice of events to a JSON string.
func EventsToJSON(events []string) string {
	if len(events) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(events)
	return string(data)
}
