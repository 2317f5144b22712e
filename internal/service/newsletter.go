// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/olegiv/olib-go/internal/auth"
	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/mail"
	"github.com/olegiv/olib-go/internal/store"
)

// NewsletterService handles double opt-in subscriptions and new-article mail.
type NewsletterService struct {
	store   store.TxStore
	queue   *jobs.Queue
	baseURL string
	logger  *slog.Logger
}

// NewNewsletterService creates a NewsletterService. baseURL is used to build
// confirmation, unsubscribe and article links.
func NewNewsletterService(s store.TxStore, queue *jobs.Queue, baseURL string, logger *slog.Logger) *NewsletterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsletterService{store: s, queue: queue, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Subscribe registers email and queues a confirmation mail. Subscribing an
// address that is already active is a no-op; an unsubscribed address starts
// over with a new token.
func (s *NewsletterService) Subscribe(ctx context.Context, tenantID int64, email, name string) (store.NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	err := validation.Errors{
		"email": validation.Validate(email, validation.Required, is.EmailFormat),
		"name":  validation.Validate(name, validation.Length(0, 100)),
	}.Filter()
	if err := validationErr(err); err != nil {
		return store.NewsletterSubscriber{}, err
	}

	var sub store.NewsletterSubscriber
	err = s.store.ExecTx(ctx, func(q store.Querier) error {
		now := time.Now().UTC()
		existing, err := q.GetSubscriberByEmail(ctx, tenantID, email)
		switch {
		case err == nil && !existing.UnsubscribedAt.Valid:
			sub = existing
			if existing.ConfirmedAt.Valid {
				return nil
			}
		case err == nil:
			token, terr := auth.GenerateToken(32)
			if terr != nil {
				return terr
			}
			if err := q.ResubscribeSubscriber(ctx, existing.ID, name, token, now); err != nil {
				return err
			}
			if sub, err = q.GetSubscriberByToken(ctx, token); err != nil {
				return err
			}
		case store.IsNoRows(err):
			token, terr := auth.GenerateToken(32)
			if terr != nil {
				return terr
			}
			sub, err = q.CreateSubscriber(ctx, store.CreateSubscriberParams{
				TenantID: tenantID, Email: email, Name: name, Token: token, CreatedAt: now, UpdatedAt: now,
			})
			if store.IsUniqueViolation(err) {
				// a concurrent request subscribed the same address
				sub, err = q.GetSubscriberByEmail(ctx, tenantID, email)
				return err
			}
			if err != nil {
				return err
			}
		default:
			return err
		}

		_, err = s.queue.EnqueueWith(ctx, q, jobs.TypeSendMail, mail.Message{
			To:      sub.Email,
			Subject: "Confirm your subscription",
			TextBody: fmt.Sprintf("Please confirm your subscription by opening %s\n\nTo unsubscribe: %s\n",
				s.link("/api/v1/newsletter/confirm?token="+sub.Token),
				s.link("/api/v1/newsletter/unsubscribe?token="+sub.Token)),
		}, time.Time{})
		return err
	})
	return sub, err
}

// Confirm activates the subscription identified by token and sends a welcome mail.
func (s *NewsletterService) Confirm(ctx context.Context, token string) (store.NewsletterSubscriber, error) {
	var sub store.NewsletterSubscriber
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		sub, err = q.GetSubscriberByToken(ctx, token)
		if err != nil {
			return notFound(err)
		}
		if sub.ConfirmedAt.Valid && !sub.UnsubscribedAt.Valid {
			return nil
		}
		if err := q.ConfirmSubscriber(ctx, sub.ID, time.Now().UTC()); err != nil {
			return err
		}
		if sub, err = q.GetSubscriberByToken(ctx, token); err != nil {
			return err
		}
		_, err = s.queue.EnqueueWith(ctx, q, jobs.TypeSendMail, mail.Message{
			To:       sub.Email,
			Subject:  "Welcome to the newsletter",
			TextBody: "Your subscription is confirmed. You will be notified when new articles are published.\n",
		}, time.Time{})
		return err
	})
	return sub, err
}

// Unsubscribe deactivates the subscription identified by token.
func (s *NewsletterService) Unsubscribe(ctx context.Context, token string) error {
	sub, err := s.store.GetSubscriberByToken(ctx, token)
	if err != nil {
		return notFound(err)
	}
	_, err = s.store.UnsubscribeSubscriber(ctx, sub.ID, time.Now().UTC())
	return err
}

// NotifyNewArticle queues a new-article mail to every confirmed subscriber of
// the article's tenant. It returns the number of mails queued.
func (s *NewsletterService) NotifyNewArticle(ctx context.Context, a store.Article) (int, error) {
	subs, err := s.store.ListActiveSubscribers(ctx, a.TenantID)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, sub := range subs {
		_, err := s.queue.Enqueue(ctx, jobs.TypeSendMail, mail.Message{
			To:      sub.Email,
			Subject: "New article: " + a.Title,
			TextBody: fmt.Sprintf("%s\n\n%s\n\nRead it at %s\n\nUnsubscribe: %s\n",
				a.Title, a.Excerpt, s.link("/articles/"+a.Slug),
				s.link("/api/v1/newsletter/unsubscribe?token="+sub.Token)),
		})
		if err != nil {
			s.logger.Error("queueing newsletter mail", "subscriber_id", sub.ID, "error", err)
			continue
		}
		queued++
	}
	return queued, nil
}

func (s *NewsletterService) link(path string) string {
	return s.baseURL + path
}
