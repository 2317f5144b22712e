// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
)

// SubscribeRequest is the request body for POST /newsletter/subscribe.
type SubscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SubmitContact handles POST /api/v1/contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if !decode(w, r, &in) {
		return
	}
	msg, err := h.svc.Contact.Submit(r.Context(), middleware.GetActor(r), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, map[string]any{"id": msg.ID, "status": msg.Status})
}

// Subscribe handles POST /api/v1/newsletter/subscribe. The response is the
// same whether or not the address was already subscribed.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !decode(w, r, &req) {
		return
	}
	actor := middleware.GetActor(r)
	if _, err := h.svc.Newsletter.Subscribe(r.Context(), actor.Tenant(), req.Email, req.Name); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, Response{Data: map[string]string{"status": "pending_confirmation"}})
}

// ConfirmSubscription handles GET /api/v1/newsletter/confirm?token=.
func (h *Handler) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		WriteBadRequest(w, "Missing token")
		return
	}
	sub, err := h.svc.Newsletter.Confirm(r.Context(), token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]any{"email": sub.Email, "confirmed_at": sub.ConfirmedAt.Time})
}

// Unsubscribe handles GET /api/v1/newsletter/unsubscribe?token=.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		WriteBadRequest(w, "Missing token")
		return
	}
	if err := h.svc.Newsletter.Unsubscribe(r.Context(), token); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]string{"status": "unsubscribed"})
}
