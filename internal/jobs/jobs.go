// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package jobs implements the database backed background job queue and the
// worker pool that drains it.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olegiv/olib-go/internal/store"
)

// Job types.
const (
	TypeGenerateMeta      = "article.generate_meta"
	TypeRecalculateRating = "article.recalculate_rating"
	TypeSendMail          = "mail.send"
)

// DefaultMaxAttempts is used when a queue is created without a limit.
const DefaultMaxAttempts = 5

// ArticlePayload identifies the article a job works on.
type ArticlePayload struct {
	ArticleID int64 `json:"article_id"`
}

// Creator is the storage capability needed to enqueue jobs. Both a Store and
// a transaction-bound Querier satisfy it.
type Creator interface {
	CreateJob(ctx context.Context, arg store.CreateJobParams) (int64, error)
}

// Queue enqueues jobs.
type Queue struct {
	store       Creator
	maxAttempts int64
}

// NewQueue creates a Queue writing through s.
func NewQueue(s Creator, maxAttempts int) *Queue {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Queue{store: s, maxAttempts: int64(maxAttempts)}
}

// Enqueue schedules a job to run as soon as a worker is free.
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload any) (int64, error) {
	return q.EnqueueWith(ctx, q.store, jobType, payload, time.Time{})
}

// EnqueueAt schedules a job to run no earlier than runAt.
func (q *Queue) EnqueueAt(ctx context.Context, jobType string, payload any, runAt time.Time) (int64, error) {
	return q.EnqueueWith(ctx, q.store, jobType, payload, runAt)
}

// EnqueueWith writes the job through c, typically a transaction, so the job
// only becomes visible when the surrounding write commits.
func (q *Queue) EnqueueWith(ctx context.Context, c Creator, jobType string, payload any, runAt time.Time) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding %s payload: %w", jobType, err)
	}

	now := time.Now().UTC()
	if runAt.IsZero() || runAt.Before(now) {
		runAt = now
	}

	id, err := c.CreateJob(ctx, store.CreateJobParams{
		Type:        jobType,
		Payload:     string(data),
		MaxAttempts: q.maxAttempts,
		RunAt:       runAt.UTC(),
		CreatedAt:   now,
	})
	if err != nil {
		return 0, fmt.Errorf("enqueueing %s: %w", jobType, err)
	}
	return id, nil
}

// Decode unmarshals a job payload into v.
func Decode(job store.Job, v any) error {
	if err := json.Unmarshal([]byte(job.Payload), v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", job.Type, err)
	}
	return nil
}
