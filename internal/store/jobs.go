// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Job statuses.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

const jobColumns = `id, type, payload, status, attempts, max_attempts, last_error, run_at, locked_at,
	completed_at, created_at, updated_at`

func scanJob(row rowScanner) (Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.Type, &j.Payload, &j.Status, &j.Attempts, &j.MaxAttempts, &j.LastError,
		&j.RunAt, &j.LockedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

const createJob = `INSERT INTO jobs (type, payload, status, max_attempts, last_error, run_at, created_at, updated_at)
VALUES (?, ?, 'pending', ?, '', ?, ?, ?)`

type CreateJobParams struct {
	Type        string
	Payload     string
	MaxAttempts int64
	RunAt       time.Time
	CreatedAt   time.Time
}

func (q *Queries) CreateJob(ctx context.Context, arg CreateJobParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createJob, arg.Type, arg.Payload, arg.MaxAttempts, arg.RunAt,
		arg.CreatedAt, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getJob = `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

func (q *Queries) GetJob(ctx context.Context, id int64) (Job, error) {
	return scanJob(q.db.QueryRowContext(ctx, getJob, id))
}

const nextDueJobID = `SELECT id FROM jobs WHERE status = 'pending' AND run_at <= ? ORDER BY run_at, id LIMIT 1`

const lockJob = `UPDATE jobs SET status = 'running', attempts = attempts + 1, locked_at = ?, updated_at = ?
WHERE id = ? AND status = 'pending'`

// ClaimNextJob locks the oldest due pending job. It returns sql.ErrNoRows when
// nothing is due. Losing a race for a row moves on to the next candidate.
func (q *Queries) ClaimNextJob(ctx context.Context, now time.Time) (Job, error) {
	for range 5 {
		var id int64
		if err := q.db.QueryRowContext(ctx, nextDueJobID, now).Scan(&id); err != nil {
			return Job{}, err
		}
		res, err := q.db.ExecContext(ctx, lockJob, now, now, id)
		if err != nil {
			return Job{}, err
		}
		if rowsAffected(res) == 1 {
			return q.GetJob(ctx, id)
		}
	}
	return Job{}, sql.ErrNoRows
}

const completeJob = `UPDATE jobs SET status = 'completed', completed_at = ?, locked_at = NULL, updated_at = ?
WHERE id = ?`

func (q *Queries) CompleteJob(ctx context.Context, id int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, completeJob, now, now, id)
	return err
}

const retryJob = `UPDATE jobs SET status = 'pending', last_error = ?, run_at = ?, locked_at = NULL, updated_at = ?
WHERE id = ?`

func (q *Queries) RetryJob(ctx context.Context, id int64, lastError string, runAt, now time.Time) error {
	_, err := q.db.ExecContext(ctx, retryJob, lastError, runAt, now, id)
	return err
}

const failJob = `UPDATE jobs SET status = 'failed', last_error = ?, locked_at = NULL, updated_at = ? WHERE id = ?`

func (q *Queries) FailJob(ctx context.Context, id int64, lastError string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, failJob, lastError, now, id)
	return err
}

const recoverStaleJobs = `UPDATE jobs SET status = 'pending', locked_at = NULL, updated_at = ?
WHERE status = 'running' AND locked_at < ?`

// RecoverStaleJobs returns jobs locked before cutoff to the pending state.
func (q *Queries) RecoverStaleJobs(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, recoverStaleJobs, now, cutoff)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const countJobsByStatus = `SELECT COUNT(*) FROM jobs WHERE status = ? AND (? = '' OR type = ?)`

func (q *Queries) CountJobsByStatus(ctx context.Context, status, jobType string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countJobsByStatus, status, jobType, jobType).Scan(&n)
	return n, err
}

const deleteFinishedJobs = `DELETE FROM jobs WHERE status IN ('completed', 'failed') AND updated_at < ?`

func (q *Queries) DeleteFinishedJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFinishedJobs, cutoff)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

// IsNoRows reports whether err means an empty result.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
