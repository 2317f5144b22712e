// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/olib-go/internal/store"
)

// dayLayout formats the per-day aggregate key.
const dayLayout = "2006-01-02"

// DownloadService counts file downloads in total and per day.
type DownloadService struct {
	q store.Querier
}

// NewDownloadService creates a DownloadService.
func NewDownloadService(q store.Querier) *DownloadService {
	return &DownloadService{q: q}
}

// Get returns a file by id.
func (s *DownloadService) Get(ctx context.Context, id int64) (store.File, error) {
	f, err := s.q.GetFile(ctx, id)
	return f, notFound(err)
}

// RecordDownload increments the file's total and today's aggregate. Two
// requests racing to create today's row both succeed: the loser of the insert
// retries as an update.
func (s *DownloadService) RecordDownload(ctx context.Context, fileID int64, at time.Time) error {
	n, err := s.q.IncrementFileDownloadCount(ctx, fileID)
	if err != nil {
		return fmt.Errorf("incrementing download count: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	day := at.UTC().Format(dayLayout)
	updated, err := s.q.UpdateFileDownloadDaily(ctx, fileID, day)
	if err != nil {
		return fmt.Errorf("updating daily downloads: %w", err)
	}
	if updated > 0 {
		return nil
	}

	err = s.q.InsertFileDownloadDaily(ctx, fileID, day)
	if store.IsUniqueViolation(err) {
		_, err = s.q.UpdateFileDownloadDaily(ctx, fileID, day)
	}
	if err != nil {
		return fmt.Errorf("inserting daily downloads: %w", err)
	}
	return nil
}

// Daily returns per-day counts for the last days days including today.
func (s *DownloadService) Daily(ctx context.Context, fileID int64, days int) ([]store.FileDownloadDaily, error) {
	if days < 1 {
		days = 30
	}
	from := time.Now().UTC().AddDate(0, 0, -(days - 1)).Format(dayLayout)
	return s.q.ListFileDownloadDaily(ctx, fileID, from)
}
