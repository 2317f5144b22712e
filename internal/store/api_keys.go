// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const apiKeyColumns = `id, name, key_hash, key_prefix, is_active, last_used_at, expires_at, created_by, created_at, updated_at`

func scanApiKey(row rowScanner) (ApiKey, error) {
	var k ApiKey
	err := row.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.IsActive, &k.LastUsedAt, &k.ExpiresAt,
		&k.CreatedBy, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

const createAPIKey = `INSERT INTO api_keys (name, key_hash, key_prefix, is_active, expires_at, created_by, created_at, updated_at)
VALUES (?, ?, ?, 1, ?, ?, ?, ?)`

type CreateAPIKeyParams struct {
	Name      string
	KeyHash   string
	KeyPrefix string
	ExpiresAt sql.NullTime
	CreatedBy int64
	CreatedAt time.Time
}

func (q *Queries) CreateAPIKey(ctx context.Context, arg CreateAPIKeyParams) (ApiKey, error) {
	if _, err := q.db.ExecContext(ctx, createAPIKey, arg.Name, arg.KeyHash, arg.KeyPrefix, arg.ExpiresAt,
		arg.CreatedBy, arg.CreatedAt, arg.CreatedAt); err != nil {
		return ApiKey{}, err
	}
	return q.GetAPIKeyByHash(ctx, arg.KeyHash)
}

const getAPIKeyByHash = `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = ?`

func (q *Queries) GetAPIKeyByHash(ctx context.Context, keyHash string) (ApiKey, error) {
	return scanApiKey(q.db.QueryRowContext(ctx, getAPIKeyByHash, keyHash))
}

const updateAPIKeyLastUsed = `UPDATE api_keys SET last_used_at = ? WHERE id = ?`

type UpdateAPIKeyLastUsedParams struct {
	LastUsedAt sql.NullTime
	ID         int64
}

func (q *Queries) UpdateAPIKeyLastUsed(ctx context.Context, arg UpdateAPIKeyLastUsedParams) error {
	_, err := q.db.ExecContext(ctx, updateAPIKeyLastUsed, arg.LastUsedAt, arg.ID)
	return err
}

const deactivateAPIKey = `UPDATE api_keys SET is_active = 0, updated_at = ? WHERE id = ?`

func (q *Queries) DeactivateAPIKey(ctx context.Context, id int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, deactivateAPIKey, now, id)
	return err
}
