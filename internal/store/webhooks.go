// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const webhookColumns = `id, name, url, secret, events, headers, is_active, created_by, created_at, updated_at`

func scanWebhook(row rowScanner) (Webhook, error) {
	var w Webhook
	err := row.Scan(&w.ID, &w.Name, &w.Url, &w.Secret, &w.Events, &w.Headers, &w.IsActive, &w.CreatedBy,
		&w.CreatedAt, &w.UpdatedAt)
	return w, err
}

const createWebhook = `INSERT INTO webhooks (name, url, secret, events, headers, is_active, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateWebhookParams struct {
	Name      string
	Url       string
	Secret    string
	Events    string
	Headers   string
	IsActive  bool
	CreatedBy int64
	CreatedAt time.Time
}

func (q *Queries) CreateWebhook(ctx context.Context, arg CreateWebhookParams) (Webhook, error) {
	if arg.Headers == "" {
		arg.Headers = "{}"
	}
	res, err := q.db.ExecContext(ctx, createWebhook, arg.Name, arg.Url, arg.Secret, arg.Events, arg.Headers,
		arg.IsActive, arg.CreatedBy, arg.CreatedAt, arg.CreatedAt)
	if err != nil {
		return Webhook{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Webhook{}, err
	}
	return q.GetWebhook(ctx, id)
}

const getWebhook = `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = ?`

func (q *Queries) GetWebhook(ctx context.Context, id int64) (Webhook, error) {
	return scanWebhook(q.db.QueryRowContext(ctx, getWebhook, id))
}

const listWebhooks = `SELECT ` + webhookColumns + ` FROM webhooks ORDER BY id`

func (q *Queries) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	rows, err := q.db.QueryContext(ctx, listWebhooks)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

const setWebhookActive = `UPDATE webhooks SET is_active = ?, updated_at = ? WHERE id = ?`

func (q *Queries) SetWebhookActive(ctx context.Context, id int64, active bool, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, setWebhookActive, active, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const listDeliveriesForWebhook = `SELECT ` + deliveryColumns + ` FROM webhook_deliveries
WHERE webhook_id = ? ORDER BY id DESC LIMIT ?`

func (q *Queries) ListDeliveriesForWebhook(ctx context.Context, webhookID, limit int64) ([]WebhookDelivery, error) {
	rows, err := q.db.QueryContext(ctx, listDeliveriesForWebhook, webhookID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []WebhookDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// listWebhooksForEvent matches the quoted event name inside the JSON events array.
const listWebhooksForEvent = `SELECT ` + webhookColumns + ` FROM webhooks
WHERE is_active = 1 AND events LIKE ?
ORDER BY id`

func (q *Queries) ListWebhooksForEvent(ctx context.Context, event sql.NullString) ([]Webhook, error) {
	rows, err := q.db.QueryContext(ctx, listWebhooksForEvent, "%\""+event.String+"\"%")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

const deliveryColumns = `id, webhook_id, event, payload, response_code, response_body, attempts, next_retry_at,
	delivered_at, status, error_message, created_at, updated_at`

func scanDelivery(row rowScanner) (WebhookDelivery, error) {
	var d WebhookDelivery
	err := row.Scan(&d.ID, &d.WebhookID, &d.Event, &d.Payload, &d.ResponseCode, &d.ResponseBody, &d.Attempts,
		&d.NextRetryAt, &d.DeliveredAt, &d.Status, &d.ErrorMessage, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

const createWebhookDelivery = `INSERT INTO webhook_deliveries (webhook_id, event, payload, status, next_retry_at, created_at, updated_at)
VALUES (?, ?, ?, 'pending', ?, ?, ?)`

// CreateWebhookDeliveryParams describes a new pending delivery. NextRetryAt
// is when the retry sweep may pick it up if the first attempt never ran.
type CreateWebhookDeliveryParams struct {
	WebhookID   int64
	Event       string
	Payload     string
	NextRetryAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateWebhookDelivery(ctx context.Context, arg CreateWebhookDeliveryParams) (WebhookDelivery, error) {
	res, err := q.db.ExecContext(ctx, createWebhookDelivery, arg.WebhookID, arg.Event, arg.Payload, arg.NextRetryAt,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return WebhookDelivery{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return WebhookDelivery{}, err
	}
	return q.GetWebhookDelivery(ctx, id)
}

const getWebhookDelivery = `SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE id = ?`

func (q *Queries) GetWebhookDelivery(ctx context.Context, id int64) (WebhookDelivery, error) {
	return scanDelivery(q.db.QueryRowContext(ctx, getWebhookDelivery, id))
}

const updateDeliverySuccess = `UPDATE webhook_deliveries SET status = 'delivered', response_code = ?, response_body = ?,
	delivered_at = ?, attempts = attempts + 1, updated_at = ?
WHERE id = ?`

type UpdateDeliverySuccessParams struct {
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	DeliveredAt  sql.NullTime
	UpdatedAt    time.Time
	ID           int64
}

func (q *Queries) UpdateDeliverySuccess(ctx context.Context, arg UpdateDeliverySuccessParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliverySuccess, arg.ResponseCode, arg.ResponseBody, arg.DeliveredAt,
		arg.UpdatedAt, arg.ID)
	return err
}

const updateDeliveryRetry = `UPDATE webhook_deliveries SET status = 'pending', response_code = ?, response_body = ?,
	error_message = ?, next_retry_at = ?, attempts = attempts + 1, updated_at = ?
WHERE id = ?`

type UpdateDeliveryRetryParams struct {
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	ErrorMessage sql.NullString
	NextRetryAt  sql.NullTime
	UpdatedAt    time.Time
	ID           int64
}

func (q *Queries) UpdateDeliveryRetry(ctx context.Context, arg UpdateDeliveryRetryParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryRetry, arg.ResponseCode, arg.ResponseBody, arg.ErrorMessage,
		arg.NextRetryAt, arg.UpdatedAt, arg.ID)
	return err
}

const updateDeliveryDead = `UPDATE webhook_deliveries SET status = 'dead', error_message = ?,
	attempts = attempts + 1, updated_at = ?
WHERE id = ?`

type UpdateDeliveryDeadParams struct {
	ErrorMessage sql.NullString
	UpdatedAt    time.Time
	ID           int64
}

func (q *Queries) UpdateDeliveryDead(ctx context.Context, arg UpdateDeliveryDeadParams) error {
	_, err := q.db.ExecContext(ctx, updateDeliveryDead, arg.ErrorMessage, arg.UpdatedAt, arg.ID)
	return err
}

const listPendingDeliveries = `SELECT ` + deliveryColumns + ` FROM webhook_deliveries
WHERE status = 'pending' AND next_retry_at IS NOT NULL AND next_retry_at <= ?
ORDER BY next_retry_at LIMIT ?`

// ListPendingDeliveries returns deliveries whose retry time has passed.
func (q *Queries) ListPendingDeliveries(ctx context.Context, now time.Time, limit int64) ([]WebhookDelivery, error) {
	rows, err := q.db.QueryContext(ctx, listPendingDeliveries, now, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []WebhookDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
