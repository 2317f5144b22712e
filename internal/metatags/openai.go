// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metatags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = `You write SEO metadata for blog articles. Reply with a single JSON object
with the string fields "title" (max 60 characters), "description" (max 160 characters)
and "keywords" (comma separated, max 10). Do not add any other text.`

// OpenAISuggester asks an OpenAI chat model for meta fields.
type OpenAISuggester struct {
	client openai.Client
	model  string
}

// NewOpenAISuggester creates a suggester using apiKey and model. Extra
// request options (base URL, retries) are passed to the client.
func NewOpenAISuggester(apiKey, model string, opts ...option.RequestOption) *OpenAISuggester {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAISuggester{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Suggest implements Suggester.
func (s *OpenAISuggester) Suggest(ctx context.Context, title, text string) (Meta, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Title: " + title + "\n\n" + text),
		},
	})
	if err != nil {
		return Meta{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Meta{}, errors.New("openai: no choices returned")
	}
	return parseSuggestion(resp.Choices[0].Message.Content)
}

// parseSuggestion decodes the JSON object in content, tolerating code fences
// and surrounding prose.
func parseSuggestion(content string) (Meta, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Meta{}, fmt.Errorf("openai: no JSON object in reply %q", content)
	}

	var meta Meta
	if err := json.Unmarshal([]byte(content[start:end+1]), &meta); err != nil {
		return Meta{}, fmt.Errorf("openai decode: %w", err)
	}
	return meta, nil
}
