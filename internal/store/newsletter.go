// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const subscriberColumns = `id, tenant_id, email, name, token, confirmed_at, unsubscribed_at, created_at, updated_at`

func scanSubscriber(row rowScanner) (NewsletterSubscriber, error) {
	var s NewsletterSubscriber
	err := row.Scan(&s.ID, &s.TenantID, &s.Email, &s.Name, &s.Token, &s.ConfirmedAt, &s.UnsubscribedAt,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const createSubscriber = `INSERT INTO newsletter_subscribers (tenant_id, email, name, token, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateSubscriberParams struct {
	TenantID  int64
	Email     string
	Name      string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateSubscriber(ctx context.Context, arg CreateSubscriberParams) (NewsletterSubscriber, error) {
	if _, err := q.db.ExecContext(ctx, createSubscriber, arg.TenantID, arg.Email, arg.Name, arg.Token,
		arg.CreatedAt, arg.UpdatedAt); err != nil {
		return NewsletterSubscriber{}, err
	}
	return q.GetSubscriberByToken(ctx, arg.Token)
}

const getSubscriberByEmail = `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE tenant_id = ? AND email = ?`

func (q *Queries) GetSubscriberByEmail(ctx context.Context, tenantID int64, email string) (NewsletterSubscriber, error) {
	return scanSubscriber(q.db.QueryRowContext(ctx, getSubscriberByEmail, tenantID, email))
}

const getSubscriberByToken = `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE token = ?`

func (q *Queries) GetSubscriberByToken(ctx context.Context, token string) (NewsletterSubscriber, error) {
	return scanSubscriber(q.db.QueryRowContext(ctx, getSubscriberByToken, token))
}

const confirmSubscriber = `UPDATE newsletter_subscribers SET confirmed_at = ?, unsubscribed_at = NULL, updated_at = ?
WHERE id = ?`

func (q *Queries) ConfirmSubscriber(ctx context.Context, id int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, confirmSubscriber, now, now, id)
	return err
}

const unsubscribeSubscriber = `UPDATE newsletter_subscribers SET unsubscribed_at = ?, updated_at = ?
WHERE id = ? AND unsubscribed_at IS NULL`

func (q *Queries) UnsubscribeSubscriber(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, unsubscribeSubscriber, now, now, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const resubscribeSubscriber = `UPDATE newsletter_subscribers SET name = ?, token = ?, confirmed_at = NULL,
	unsubscribed_at = NULL, updated_at = ?
WHERE id = ?`

// ResubscribeSubscriber resets a previously unsubscribed address to unconfirmed with a fresh token.
func (q *Queries) ResubscribeSubscriber(ctx context.Context, id int64, name, token string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, resubscribeSubscriber, name, token, now, id)
	return err
}

const listActiveSubscribers = `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers
WHERE tenant_id = ? AND confirmed_at IS NOT NULL AND unsubscribed_at IS NULL
ORDER BY id`

func (q *Queries) ListActiveSubscribers(ctx context.Context, tenantID int64) ([]NewsletterSubscriber, error) {
	rows, err := q.db.QueryContext(ctx, listActiveSubscribers, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []NewsletterSubscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
