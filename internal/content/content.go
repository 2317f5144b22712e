// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders article Markdown to HTML and sanitizes
// user-supplied markup.
package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts article bodies to safe HTML.
type Renderer struct {
	md       goldmark.Markdown
	articles *bluemonday.Policy
	comments *bluemonday.Policy
	text     *bluemonday.Policy
}

// NewRenderer creates a Renderer with GitHub-flavoured Markdown enabled.
func NewRenderer() *Renderer {
	articles := bluemonday.UGCPolicy()
	articles.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")

	comments := bluemonday.NewPolicy()
	comments.AllowElements("p", "br", "strong", "em", "code", "blockquote")
	comments.AllowStandardURLs()
	comments.AllowAttrs("href").OnElements("a")
	comments.RequireNoFollowOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// raw HTML passes through goldmark and is cleaned by bluemonday afterwards
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		articles: articles,
		comments: comments,
		text:     bluemonday.StrictPolicy(),
	}
}

// RenderMarkdown converts Markdown to sanitized HTML.
func (r *Renderer) RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return r.articles.Sanitize(buf.String()), nil
}

// SanitizeComment strips everything but basic inline formatting from a comment body.
func (r *Renderer) SanitizeComment(body string) string {
	return strings.TrimSpace(r.comments.Sanitize(body))
}

// PlainText removes all markup.
func (r *Renderer) PlainText(s string) string {
	return strings.TrimSpace(r.text.Sanitize(s))
}
