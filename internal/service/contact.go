// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/mail"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks the submission.
func (in ContactInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat, validation.Length(3, 254)),
		validation.Field(&in.Subject, validation.Length(0, 200)),
		validation.Field(&in.Message, validation.Required, validation.Length(10, 5000)),
	)
}

// ContactService stores contact form messages and queues the related mail.
type ContactService struct {
	store        store.TxStore
	queue        *jobs.Queue
	events       *Registry
	contactEmail string
}

// NewContactService creates a ContactService. contactEmail receives a copy of
// every message when set.
func NewContactService(s store.TxStore, queue *jobs.Queue, events *Registry, contactEmail string) *ContactService {
	return &ContactService{store: s, queue: queue, events: events, contactEmail: contactEmail}
}

// Submit validates and stores a message, then queues a receipt to the sender
// and a notification to the site owner in the same transaction.
func (s *ContactService) Submit(ctx context.Context, actor Actor, in ContactInput) (store.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := validationErr(in.Validate()); err != nil {
		return store.ContactMessage{}, err
	}

	var msg store.ContactMessage
	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		var err error
		msg, err = q.CreateContactMessage(ctx, store.CreateContactMessageParams{
			TenantID:  actor.Tenant(),
			Name:      in.Name,
			Email:     in.Email,
			Subject:   in.Subject,
			Message:   in.Message,
			Status:    model.ContactNew,
			IpAddress: actor.IP,
			UserAgent: actor.UserAgent,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		receipt := mail.Message{
			To:       in.Email,
			Subject:  "We received your message",
			TextBody: fmt.Sprintf("Hello %s,\n\nThank you for getting in touch. We will reply as soon as possible.\n", in.Name),
		}
		if _, err := s.queue.EnqueueWith(ctx, q, jobs.TypeSendMail, receipt, time.Time{}); err != nil {
			return err
		}

		if s.contactEmail != "" {
			notice := mail.Message{
				To:       s.contactEmail,
				Subject:  "Contact form: " + firstNonBlank(in.Subject, "(no subject)"),
				TextBody: fmt.Sprintf("From: %s <%s>\n\n%s\n", in.Name, in.Email, in.Message),
				ReplyTo:  in.Email,
			}
			if _, err := s.queue.EnqueueWith(ctx, q, jobs.TypeSendMail, notice, time.Time{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.ContactMessage{}, err
	}

	s.events.Publish(ctx, DomainEvent{
		Name:    model.EventContactSubmitted,
		Actor:   actor,
		Payload: msg,
		At:      msg.CreatedAt,
	})
	return msg, nil
}

// List returns the tenant's messages, newest first.
func (s *ContactService) List(ctx context.Context, tenantID, limit, offset int64) ([]store.ContactMessage, error) {
	return s.store.ListContactMessages(ctx, tenantID, limit, offset)
}

// MarkRead flags a message as read.
func (s *ContactService) MarkRead(ctx context.Context, id int64) error {
	if _, err := s.store.GetContactMessage(ctx, id); err != nil {
		return notFound(err)
	}
	return s.store.UpdateContactMessageStatus(ctx, id, model.ContactRead)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
