// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metatags derives SEO meta fields for an article from its rendered
// HTML, optionally refined by an LLM suggestion.
package metatags

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Field length limits used by search engines.
const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 160
	MaxKeywords          = 10
)

// Meta holds the generated meta fields.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// Suggester proposes meta fields for an article.
type Suggester interface {
	Suggest(ctx context.Context, title, text string) (Meta, error)
}

// Generator builds meta fields from HTML and an optional Suggester.
type Generator struct {
	suggester Suggester
	logger    *slog.Logger
}

// NewGenerator creates a Generator. suggester may be nil.
func NewGenerator(suggester Suggester, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{suggester: suggester, logger: logger}
}

// Generate extracts meta fields from bodyHTML. When a suggester is configured
// its non-empty fields take precedence; a failing suggester is logged and the
// extracted values are used.
func (g *Generator) Generate(ctx context.Context, title, bodyHTML string) (Meta, error) {
	meta, text, err := Extract(title, bodyHTML)
	if err != nil {
		return Meta{}, err
	}
	if g.suggester == nil {
		return meta, nil
	}

	suggested, err := g.suggester.Suggest(ctx, title, truncate(text, 4000))
	if err != nil {
		g.logger.Warn("meta suggestion failed, using extracted values", "error", err)
		return meta, nil
	}
	return Meta{
		Title:       firstNonEmpty(truncate(suggested.Title, MaxTitleLength), meta.Title),
		Description: firstNonEmpty(truncate(suggested.Description, MaxDescriptionLength), meta.Description),
		Keywords:    firstNonEmpty(suggested.Keywords, meta.Keywords),
	}, nil
}

// Extract parses bodyHTML and returns the derived meta fields together with
// the document's plain text.
func Extract(title, bodyHTML string) (Meta, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML))
	if err != nil {
		return Meta{}, "", err
	}

	var meta Meta
	if h1 := collapse(doc.Find("h1").First().Text()); h1 != "" {
		meta.Title = truncate(h1, MaxTitleLength)
	} else {
		meta.Title = truncate(collapse(title), MaxTitleLength)
	}

	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := collapse(s.Text()); text != "" {
			meta.Description = truncate(text, MaxDescriptionLength)
			return false
		}
		return true
	})

	seen := make(map[string]bool)
	var keywords []string
	doc.Find("h2, h3, strong, em").Each(func(_ int, s *goquery.Selection) {
		kw := strings.ToLower(collapse(s.Text()))
		if kw == "" || utf8.RuneCountInString(kw) > 40 || seen[kw] || len(keywords) >= MaxKeywords {
			return
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	})
	meta.Keywords = strings.Join(keywords, ", ")

	return meta, collapse(doc.Text()), nil
}

// FillEmpty copies generated values into the empty fields of current and
// reports whether anything changed.
func FillEmpty(current, generated Meta) (Meta, bool) {
	changed := false
	if current.Title == "" && generated.Title != "" {
		current.Title = generated.Title
		changed = true
	}
	if current.Description == "" && generated.Description != "" {
		current.Description = generated.Description
		changed = true
	}
	if current.Keywords == "" && generated.Keywords != "" {
		current.Keywords = generated.Keywords
		changed = true
	}
	return current, changed
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most n runes, cutting at a word boundary when one
// exists in the second half of the limit.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
