// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metatags

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openai/openai-go/v3/option"
)

const sampleHTML = `<h1>Brewing   Coffee</h1>
<p></p>
<p>A short guide to <strong>pour over</strong> brewing at home.</p>
<h2>Grind size</h2>
<p>Use a <em>medium</em> grind.</p>`

func TestExtract(t *testing.T) {
	meta, text, err := Extract("Fallback", sampleHTML)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if meta.Title != "Brewing Coffee" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Description != "A short guide to pour over brewing at home." {
		t.Errorf("Description = %q", meta.Description)
	}
	if meta.Keywords != "pour over, grind size, medium" {
		t.Errorf("Keywords = %q", meta.Keywords)
	}
	if !strings.Contains(text, "Use a medium grind.") {
		t.Errorf("text = %q", text)
	}
}

func TestExtractFallbackTitle(t *testing.T) {
	meta, _, err := Extract("  My   Article ", "<p>Body</p>")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if meta.Title != "My Article" {
		t.Errorf("Title = %q", meta.Title)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("word ", 50)
	got := truncate(long, MaxDescriptionLength)
	if utf8.RuneCountInString(got) > MaxDescriptionLength {
		t.Errorf("len = %d", utf8.RuneCountInString(got))
	}
	if strings.HasSuffix(got, " ") || strings.HasSuffix(got, "wor") {
		t.Errorf("not cut at word boundary: %q", got)
	}
	if truncate("short", 10) != "short" {
		t.Error("short strings must be unchanged")
	}
}

func TestFillEmpty(t *testing.T) {
	cur := Meta{Title: "Kept"}
	got, changed := FillEmpty(cur, Meta{Title: "New", Description: "Desc", Keywords: "a, b"})
	if !changed {
		t.Error("expected change")
	}
	if got.Title != "Kept" || got.Description != "Desc" || got.Keywords != "a, b" {
		t.Errorf("got %+v", got)
	}

	_, changed = FillEmpty(got, Meta{Title: "X", Description: "Y", Keywords: "Z"})
	if changed {
		t.Error("filled meta must not change")
	}
}

type stubSuggester struct {
	meta Meta
	err  error
}

func (s stubSuggester) Suggest(context.Context, string, string) (Meta, error) {
	return s.meta, s.err
}

func TestGeneratorPrefersSuggestion(t *testing.T) {
	g := NewGenerator(stubSuggester{meta: Meta{Description: "Suggested"}}, nil)
	meta, err := g.Generate(context.Background(), "T", sampleHTML)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if meta.Description != "Suggested" || meta.Title != "Brewing Coffee" {
		t.Errorf("got %+v", meta)
	}
}

func TestGeneratorFallsBackOnError(t *testing.T) {
	g := NewGenerator(stubSuggester{err: errors.New("quota")}, nil)
	meta, err := g.Generate(context.Background(), "T", sampleHTML)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if meta.Title != "Brewing Coffee" {
		t.Errorf("got %+v", meta)
	}
}

func TestParseSuggestion(t *testing.T) {
	meta, err := parseSuggestion("```json\n{\"title\":\"T\",\"description\":\"D\",\"keywords\":\"k\"}\n```")
	if err != nil {
		t.Fatalf("parseSuggestion: %v", err)
	}
	if meta != (Meta{Title: "T", Description: "D", Keywords: "k"}) {
		t.Errorf("got %+v", meta)
	}
	if _, err := parseSuggestion("no json here"); err == nil {
		t.Error("expected error")
	}
}

func TestOpenAISuggester(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		content, _ := json.Marshal(Meta{Title: "AI title", Description: "AI description", Keywords: "ai"})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": string(content)},
			}},
		})
	}))
	defer srv.Close()

	s := NewOpenAISuggester("test-key", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	meta, err := s.Suggest(context.Background(), "Title", "Text")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if meta.Title != "AI title" || meta.Keywords != "ai" {
		t.Errorf("got %+v", meta)
	}
}
