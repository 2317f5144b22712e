// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"slices"
	"testing"
)

func TestParseWebhookEvents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"empty array", "[]", nil},
		{"single", `["article.published"]`, []string{EventArticlePublished}},
		{"multiple", `["article.created","article.deleted"]`, []string{EventArticleCreated, EventArticleDeleted}},
		{"invalid json", `not json`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWebhookEvents(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseWebhookEvents(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEventsToJSONRoundTrip(t *testing.T) {
	events := []string{EventArticleCreated, EventArticlePublished}
	got := ParseWebhookEvents(EventsToJSON(events))
	if !slices.Equal(got, events) {
		t.Errorf("round trip = %v, want %v", got, events)
	}
	if EventsToJSON(nil) != "[]" {
		t.Errorf("EventsToJSON(nil) = %q, want []", EventsToJSON(nil))
	}
}

func TestParseWebhookHeaders(t *testing.T) {
	h := ParseWebhookHeaders(`{"X-Env":"prod"}`)
	if h["X-Env"] != "prod" {
		t.Errorf("X-Env = %q, want prod", h["X-Env"])
	}
	if len(ParseWebhookHeaders("")) != 0 {
		t.Error("empty headers should parse to empty map")
	}
}

func TestIsWebhookEvent(t *testing.T) {
	if !IsWebhookEvent(EventArticlePublished) {
		t.Error("article.published should be a webhook event")
	}
	if IsWebhookEvent("page.created") {
		t.Error("page.created should not be a webhook event")
	}
}

func TestGenerateWebhookSecret(t *testing.T) {
	a, err := GenerateWebhookSecret()
	if err != nil {
		t.Fatalf("GenerateWebhookSecret: %v", err)
	}
	b, _ := GenerateWebhookSecret()
	if len(a) != 64 {
		t.Errorf("secret length = %d, want 64", len(a))
	}
	if a == b {
		t.Error("secrets should differ")
	}
}
