// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/olegiv/olib-go/internal/content"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// CommentService manages comments and keeps Article.comment_count equal to
// the number of approved, non-deleted comments.
type CommentService struct {
	store    store.TxStore
	counters *CounterService
	perms    *PermissionService
	renderer *content.Renderer
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(s store.TxStore, counters *CounterService, perms *PermissionService, r *content.Renderer, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{store: s, counters: counters, perms: perms, renderer: r, logger: logger}
}

// CreateCommentInput is the payload for a new comment.
type CreateCommentInput struct {
	ArticleID  int64  `json:"article_id"`
	ParentID   int64  `json:"parent_id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	Body       string `json:"body"`
	// Status is honoured for moderators only; everyone else starts pending.
	Status string `json:"status"`
}

// UpdateCommentInput changes a comment. Nil fields are left untouched.
type UpdateCommentInput struct {
	ArticleID *int64  `json:"article_id"`
	ParentID  *int64  `json:"parent_id"`
	Body      *string `json:"body"`
	Status    *string `json:"status"`
}

// commentCounted reports whether c contributes to its article's comment_count.
func commentCounted(c *store.Comment) bool {
	return c != nil && c.Status == model.CommentApproved && !c.DeletedAt.Valid
}

// commentCounterDeltas returns the comment_count change per article caused by
// a comment going from before to after. Either side may be nil. A change of
// both status and article yields at most one decrement and one increment.
func commentCounterDeltas(before, after *store.Comment) map[int64]int64 {
	deltas := make(map[int64]int64, 2)
	if commentCounted(before) {
		deltas[before.ArticleID]--
	}
	if commentCounted(after) {
		deltas[after.ArticleID]++
	}
	return deltas
}

// CanModerate reports whether actor may moderate comments.
func (s *CommentService) CanModerate(ctx context.Context, actor Actor) (bool, error) {
	return s.perms.UserHasAny(ctx, actor.UserID, []string{model.RoleAdmin, model.PermCommentsModerate})
}

// Create stores a new comment.
func (s *CommentService) Create(ctx context.Context, actor Actor, in CreateCommentInput) (store.Comment, error) {
	in.Body = strings.TrimSpace(in.Body)
	in.GuestName = strings.TrimSpace(in.GuestName)
	in.GuestEmail = strings.TrimSpace(in.GuestEmail)

	guest := actor.IsGuest()
	err := validation.ValidateStruct(&in,
		validation.Field(&in.ArticleID, validation.Required),
		validation.Field(&in.Body, validation.Required, validation.Length(1, 10000)),
		validation.Field(&in.GuestName, validation.When(guest, validation.Required, validation.Length(1, 100))),
		validation.Field(&in.GuestEmail, validation.When(guest, validation.Required, is.EmailFormat)),
		validation.Field(&in.Status, validation.When(in.Status != "", validation.By(commentStatusRule))),
	)
	if err := validationErr(err); err != nil {
		return store.Comment{}, err
	}

	status := model.CommentPending
	if in.Status != "" {
		mod, err := s.CanModerate(ctx, actor)
		if err != nil {
			return store.Comment{}, err
		}
		if mod {
			status = in.Status
		}
	}

	var created store.Comment
	var deltas map[int64]int64
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		if _, err := loadArticle(ctx, q, actor, in.ArticleID); err != nil {
			return err
		}
		parent, err := checkParent(ctx, q, in.ArticleID, in.ParentID, 0)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		params := store.CreateCommentParams{
			ArticleID: in.ArticleID,
			ParentID:  parent,
			UserID:    actor.nullUserID(),
			Body:      s.renderer.SanitizeComment(in.Body),
			Status:    status,
			IpAddress: actor.IP,
			UserAgent: actor.UserAgent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if guest {
			params.GuestName = in.GuestName
			params.GuestEmail = in.GuestEmail
		}

		created, err = q.CreateComment(ctx, params)
		if err != nil {
			return err
		}
		deltas = commentCounterDeltas(nil, &created)
		return s.counters.applyDeltas(ctx, q, store.CounterComments, deltas)
	})
	if err != nil {
		return store.Comment{}, err
	}

	s.counters.afterCommit(ctx, store.CounterComments, deltas)
	s.logger.Info("comment created", "comment_id", created.ID, "article_id", created.ArticleID, "status", created.Status)
	return created, nil
}

// Update edits a comment. Authors may change the body of their own comments;
// moving a comment or changing its status requires moderation rights.
func (s *CommentService) Update(ctx context.Context, actor Actor, id int64, in UpdateCommentInput) (store.Comment, error) {
	if in.Status != nil {
		if err := commentStatusRule(*in.Status); err != nil {
			return store.Comment{}, NewValidationError("status", err.Error())
		}
	}
	if in.Body != nil {
		body := strings.TrimSpace(*in.Body)
		if body == "" {
			return store.Comment{}, NewValidationError("body", "cannot be blank")
		}
		in.Body = &body
	}

	mod, err := s.CanModerate(ctx, actor)
	if err != nil {
		return store.Comment{}, err
	}

	var updated store.Comment
	var deltas map[int64]int64
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		before, err := q.GetComment(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if _, err := loadArticleWithTrashed(ctx, q, actor, before.ArticleID); err != nil {
			return err
		}

		owner := !actor.IsGuest() && before.UserID.Valid && before.UserID.Int64 == actor.UserID
		if !mod && (!owner || in.Status != nil || in.ArticleID != nil || in.ParentID != nil) {
			return ErrForbidden
		}

		params := store.UpdateCommentParams{
			ID:        id,
			ArticleID: before.ArticleID,
			ParentID:  before.ParentID,
			Body:      before.Body,
			Status:    before.Status,
			UpdatedAt: time.Now().UTC(),
		}
		if in.ArticleID != nil && *in.ArticleID != before.ArticleID {
			if _, err := loadArticle(ctx, q, actor, *in.ArticleID); err != nil {
				return err
			}
			params.ArticleID = *in.ArticleID
			// a reply cannot follow its comment to another article
			params.ParentID = sql.NullInt64{}
		}
		if in.ParentID != nil {
			params.ParentID, err = checkParent(ctx, q, params.ArticleID, *in.ParentID, id)
			if err != nil {
				return err
			}
		}
		if in.Body != nil {
			params.Body = s.renderer.SanitizeComment(*in.Body)
		}
		if in.Status != nil {
			params.Status = *in.Status
		}

		updated, err = q.UpdateComment(ctx, params)
		if err != nil {
			return err
		}
		deltas = commentCounterDeltas(&before, &updated)
		return s.counters.applyDeltas(ctx, q, store.CounterComments, deltas)
	})
	if err != nil {
		return store.Comment{}, err
	}

	s.counters.afterCommit(ctx, store.CounterComments, deltas)
	return updated, nil
}

// Moderate sets a comment's moderation status.
func (s *CommentService) Moderate(ctx context.Context, actor Actor, id int64, status string) (store.Comment, error) {
	return s.Update(ctx, actor, id, UpdateCommentInput{Status: &status})
}

// Delete soft deletes a comment. Owners and moderators may delete.
func (s *CommentService) Delete(ctx context.Context, actor Actor, id int64) error {
	return s.toggleDeleted(ctx, actor, id, true)
}

// Restore undoes a soft delete. Moderators only.
func (s *CommentService) Restore(ctx context.Context, actor Actor, id int64) error {
	return s.toggleDeleted(ctx, actor, id, false)
}

func (s *CommentService) toggleDeleted(ctx context.Context, actor Actor, id int64, deleting bool) error {
	mod, err := s.CanModerate(ctx, actor)
	if err != nil {
		return err
	}

	var deltas map[int64]int64
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		before, err := q.GetCommentWithTrashed(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if _, err := loadArticleWithTrashed(ctx, q, actor, before.ArticleID); err != nil {
			return err
		}
		owner := !actor.IsGuest() && before.UserID.Valid && before.UserID.Int64 == actor.UserID
		if !mod && !(deleting && owner) {
			return ErrForbidden
		}

		now := time.Now().UTC()
		var n int64
		if deleting {
			n, err = q.SoftDeleteComment(ctx, id, now)
		} else {
			n, err = q.RestoreComment(ctx, id, now)
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidState
		}

		after, err := q.GetCommentWithTrashed(ctx, id)
		if err != nil {
			return err
		}
		deltas = commentCounterDeltas(&before, &after)
		return s.counters.applyDeltas(ctx, q, store.CounterComments, deltas)
	})
	if err != nil {
		return err
	}

	s.counters.afterCommit(ctx, store.CounterComments, deltas)
	return nil
}

// Get returns a non-deleted comment.
func (s *CommentService) Get(ctx context.Context, id int64) (store.Comment, error) {
	c, err := s.store.GetComment(ctx, id)
	return c, notFound(err)
}

// List returns comments of an article. Non-moderators only see approved ones.
func (s *CommentService) List(ctx context.Context, actor Actor, articleID int64, status string, limit, offset int64) ([]store.Comment, int64, error) {
	mod, err := s.CanModerate(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	if !mod {
		status = model.CommentApproved
	}

	items, err := s.store.ListCommentsForArticle(ctx, store.ListCommentsForArticleParams{
		ArticleID: articleID, Status: status, Limit: limit, Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountCommentsForArticle(ctx, articleID, status)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// checkParent validates that parentID (0 for none) is a comment on articleID
// other than self.
func checkParent(ctx context.Context, q store.Querier, articleID, parentID, self int64) (sql.NullInt64, error) {
	if parentID <= 0 {
		return sql.NullInt64{}, nil
	}
	if parentID == self {
		return sql.NullInt64{}, NewValidationError("parent_id", "a comment cannot reply to itself")
	}
	parent, err := q.GetComment(ctx, parentID)
	if store.IsNoRows(err) || (err == nil && parent.ArticleID != articleID) {
		return sql.NullInt64{}, NewValidationError("parent_id", "must be a comment on the same article")
	}
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: parentID, Valid: true}, nil
}

func commentStatusRule(value any) error {
	s, _ := value.(string)
	if !model.IsValidCommentStatus(s) {
		return validation.NewError("validation_comment_status", "must be one of pending, approved, rejected, spam")
	}
	return nil
}
