// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const contactColumns = `id, tenant_id, name, email, subject, message, status, ip_address, user_agent, created_at`

func scanContactMessage(row rowScanner) (ContactMessage, error) {
	var m ContactMessage
	err := row.Scan(&m.ID, &m.TenantID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status,
		&m.IpAddress, &m.UserAgent, &m.CreatedAt)
	return m, err
}

const createContactMessage = `INSERT INTO contact_messages (tenant_id, name, email, subject, message, status,
	ip_address, user_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateContactMessageParams struct {
	TenantID  int64
	Name      string
	Email     string
	Subject   string
	Message   string
	Status    string
	IpAddress string
	UserAgent string
	CreatedAt time.Time
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	res, err := q.db.ExecContext(ctx, createContactMessage, arg.TenantID, arg.Name, arg.Email, arg.Subject,
		arg.Message, arg.Status, arg.IpAddress, arg.UserAgent, arg.CreatedAt)
	if err != nil {
		return ContactMessage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ContactMessage{}, err
	}
	return q.GetContactMessage(ctx, id)
}

const getContactMessage = `SELECT ` + contactColumns + ` FROM contact_messages WHERE id = ?`

func (q *Queries) GetContactMessage(ctx context.Context, id int64) (ContactMessage, error) {
	return scanContactMessage(q.db.QueryRowContext(ctx, getContactMessage, id))
}

const listContactMessages = `SELECT ` + contactColumns + ` FROM contact_messages
WHERE tenant_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListContactMessages(ctx context.Context, tenantID, limit, offset int64) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, listContactMessages, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ContactMessage
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const updateContactMessageStatus = `UPDATE contact_messages SET status = ? WHERE id = ?`

func (q *Queries) UpdateContactMessageStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.ExecContext(ctx, updateContactMessageStatus, status, id)
	return err
}
