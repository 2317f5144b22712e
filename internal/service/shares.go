// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// CountryLookup resolves a client IP to an ISO country code ("" if unknown).
type CountryLookup interface {
	LookupCountry(ip string) string
}

// ShareService records article shares and keeps Article.share_count equal to
// the number of non-deleted shares.
type ShareService struct {
	store    store.TxStore
	counters *CounterService
	perms    *PermissionService
	geo      CountryLookup
	logger   *slog.Logger
}

// NewShareService creates a ShareService. geo may be nil.
func NewShareService(s store.TxStore, counters *CounterService, perms *PermissionService, geo CountryLookup, logger *slog.Logger) *ShareService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShareService{store: s, counters: counters, perms: perms, geo: geo, logger: logger}
}

func shareCounted(s *store.ArticleShare) bool {
	return s != nil && !s.DeletedAt.Valid
}

// shareCounterDeltas returns the share_count change per article for a share
// going from before to after.
func shareCounterDeltas(before, after *store.ArticleShare) map[int64]int64 {
	deltas := make(map[int64]int64, 2)
	if shareCounted(before) {
		deltas[before.ArticleID]--
	}
	if shareCounted(after) {
		deltas[after.ArticleID]++
	}
	return deltas
}

// SharePlatform classifies a User-Agent into desktop, mobile, tablet or bot.
func SharePlatform(ua string) string {
	if ua == "" {
		return ""
	}
	parsed := useragent.Parse(ua)
	switch {
	case parsed.Bot:
		return "bot"
	case parsed.Tablet:
		return "tablet"
	case parsed.Mobile:
		return "mobile"
	case parsed.Desktop:
		return "desktop"
	}
	return "other"
}

// Create records a share by actor (guests allowed).
func (s *ShareService) Create(ctx context.Context, actor Actor, articleID int64, method string) (store.ArticleShare, error) {
	if !slices.Contains(model.AllShareMethods(), method) {
		return store.ArticleShare{}, NewValidationError("method", "must be one of email, social, link, embed, print")
	}

	country := ""
	if s.geo != nil && actor.IP != "" {
		country = s.geo.LookupCountry(actor.IP)
	}

	var created store.ArticleShare
	var deltas map[int64]int64
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		if _, err := loadArticle(ctx, q, actor, articleID); err != nil {
			return err
		}
		now := time.Now().UTC()
		var err error
		created, err = q.CreateShare(ctx, store.CreateShareParams{
			UUID:        uuid.NewString(),
			ArticleID:   articleID,
			UserID:      actor.nullUserID(),
			Method:      method,
			Platform:    SharePlatform(actor.UserAgent),
			CountryCode: country,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		deltas = shareCounterDeltas(nil, &created)
		return s.counters.applyDeltas(ctx, q, store.CounterShares, deltas)
	})
	if err != nil {
		return store.ArticleShare{}, err
	}

	s.counters.afterCommit(ctx, store.CounterShares, deltas)
	return created, nil
}

// Convert marks the share identified by its public UUID as converted. A
// share converts at most once; later calls are no-ops.
func (s *ShareService) Convert(ctx context.Context, shareUUID string) (store.ArticleShare, error) {
	share, err := s.store.GetShareByUUID(ctx, shareUUID)
	if err != nil {
		return store.ArticleShare{}, notFound(err)
	}
	if _, err := s.store.MarkShareConverted(ctx, share.ID, time.Now().UTC()); err != nil {
		return store.ArticleShare{}, err
	}
	share, err = s.store.GetShare(ctx, share.ID)
	return share, notFound(err)
}

// Move re-associates a share with another article. Moderators only.
func (s *ShareService) Move(ctx context.Context, actor Actor, id, articleID int64) (store.ArticleShare, error) {
	if err := s.requireModerator(ctx, actor); err != nil {
		return store.ArticleShare{}, err
	}

	var moved store.ArticleShare
	var deltas map[int64]int64
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		before, err := q.GetShare(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if _, err := loadArticleWithTrashed(ctx, q, actor, before.ArticleID); err != nil {
			return err
		}
		if _, err := loadArticle(ctx, q, actor, articleID); err != nil {
			return err
		}
		if err := q.MoveShare(ctx, id, articleID, time.Now().UTC()); err != nil {
			return err
		}
		moved, err = q.GetShare(ctx, id)
		if err != nil {
			return err
		}
		deltas = shareCounterDeltas(&before, &moved)
		return s.counters.applyDeltas(ctx, q, store.CounterShares, deltas)
	})
	if err != nil {
		return store.ArticleShare{}, err
	}

	s.counters.afterCommit(ctx, store.CounterShares, deltas)
	return moved, nil
}

// Delete soft deletes a share. Moderators only.
func (s *ShareService) Delete(ctx context.Context, actor Actor, id int64) error {
	return s.toggleDeleted(ctx, actor, id, true)
}

// Restore undoes a soft delete. Moderators only.
func (s *ShareService) Restore(ctx context.Context, actor Actor, id int64) error {
	return s.toggleDeleted(ctx, actor, id, false)
}

func (s *ShareService) toggleDeleted(ctx context.Context, actor Actor, id int64, deleting bool) error {
	if err := s.requireModerator(ctx, actor); err != nil {
		return err
	}

	var deltas map[int64]int64
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		before, err := q.GetShareWithTrashed(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if _, err := loadArticleWithTrashed(ctx, q, actor, before.ArticleID); err != nil {
			return err
		}
		now := time.Now().UTC()
		var n int64
		if deleting {
			n, err = q.SoftDeleteShare(ctx, id, now)
		} else {
			n, err = q.RestoreShare(ctx, id, now)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidState
		}
		after, err := q.GetShareWithTrashed(ctx, id)
		if err != nil {
			return err
		}
		deltas = shareCounterDeltas(&before, &after)
		return s.counters.applyDeltas(ctx, q, store.CounterShares, deltas)
	})
	if err != nil {
		return err
	}

	s.counters.afterCommit(ctx, store.CounterShares, deltas)
	return nil
}

// Stats returns the per-method share breakdown of an article.
func (s *ShareService) Stats(ctx context.Context, articleID int64) ([]store.ShareMethodCount, error) {
	return s.store.ShareStatsForArticle(ctx, articleID)
}

func (s *ShareService) requireModerator(ctx context.Context, actor Actor) error {
	return authorize(s.perms.UserHasAny(ctx, actor.UserID, []string{model.RoleAdmin, model.PermCommentsModerate}))
}
