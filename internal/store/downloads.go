// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createFile = `INSERT INTO files (tenant_id, name, path, mime_type, size, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateFileParams struct {
	TenantID  int64
	Name      string
	Path      string
	MimeType  string
	Size      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (File, error) {
	res, err := q.db.ExecContext(ctx, createFile, arg.TenantID, arg.Name, arg.Path, arg.MimeType, arg.Size,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return File{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return File{}, err
	}
	return q.GetFile(ctx, id)
}

const getFile = `SELECT id, tenant_id, name, path, mime_type, size, download_count, created_at, updated_at
FROM files WHERE id = ?`

func (q *Queries) GetFile(ctx context.Context, id int64) (File, error) {
	var f File
	err := q.db.QueryRowContext(ctx, getFile, id).Scan(&f.ID, &f.TenantID, &f.Name, &f.Path, &f.MimeType,
		&f.Size, &f.DownloadCount, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

const incrementFileDownloadCount = `UPDATE files SET download_count = download_count + 1 WHERE id = ?`

func (q *Queries) IncrementFileDownloadCount(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, incrementFileDownloadCount, id)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const updateFileDownloadDaily = `UPDATE file_download_daily SET count = count + 1 WHERE file_id = ? AND day = ?`

// UpdateFileDownloadDaily bumps an existing per-day row and reports how many rows matched.
func (q *Queries) UpdateFileDownloadDaily(ctx context.Context, fileID int64, day string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateFileDownloadDaily, fileID, day)
	if err != nil {
		return 0, err
	}
	return rowsAffected(res), nil
}

const insertFileDownloadDaily = `INSERT INTO file_download_daily (file_id, day, count) VALUES (?, ?, 1)`

func (q *Queries) InsertFileDownloadDaily(ctx context.Context, fileID int64, day string) error {
	_, err := q.db.ExecContext(ctx, insertFileDownloadDaily, fileID, day)
	return err
}

const listFileDownloadDaily = `SELECT id, file_id, day, count FROM file_download_daily
WHERE file_id = ? AND day >= ? ORDER BY day`

func (q *Queries) ListFileDownloadDaily(ctx context.Context, fileID int64, fromDay string) ([]FileDownloadDaily, error) {
	rows, err := q.db.QueryContext(ctx, listFileDownloadDaily, fileID, fromDay)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []FileDownloadDaily
	for rows.Next() {
		var d FileDownloadDaily
		if err := rows.Scan(&d.ID, &d.FileID, &d.Day, &d.Count); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
