// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/olegiv/olib-go/internal/handler"
	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/webhook"
)

// WebhookRequest is the request body for POST /admin/webhooks.
type WebhookRequest struct {
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Events  []string          `json:"events"`
	Headers map[string]string `json:"headers"`
}

// Validate checks the webhook fields. The target address is checked
// separately since it needs DNS.
func (req WebhookRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.URL, validation.Required, is.URL),
		validation.Field(&req.Events, validation.Required, validation.Each(validation.By(func(v any) error {
			if name, _ := v.(string); !model.IsWebhookEvent(name) {
				return errors.New("unknown event")
			}
			return nil
		}))),
	)
}

// WebhookActiveRequest is the request body for PATCH /admin/webhooks/{id}.
type WebhookActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// WebhookResponse is a webhook without its signing secret.
type WebhookResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	Events    []string          `json:"events"`
	Headers   map[string]string `json:"headers"`
	IsActive  bool              `json:"is_active"`
	CreatedBy int64             `json:"created_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	// Secret is only set in the response to creation.
	Secret string `json:"secret,omitempty"`
}

func webhookResponse(wh store.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:        wh.ID,
		Name:      wh.Name,
		URL:       wh.Url,
		Events:    model.ParseWebhookEvents(wh.Events),
		Headers:   model.ParseWebhookHeaders(wh.Headers),
		IsActive:  wh.IsActive,
		CreatedBy: wh.CreatedBy,
		CreatedAt: wh.CreatedAt,
		UpdatedAt: wh.UpdatedAt,
	}
}

// ListWebhooks handles GET /api/v1/admin/webhooks.
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	hooks, err := h.store.ListWebhooks(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	items := make([]WebhookResponse, 0, len(hooks))
	for _, wh := range hooks {
		items = append(items, webhookResponse(wh))
	}
	WriteSuccess(w, items)
}

// CreateWebhook handles POST /api/v1/admin/webhooks. The generated secret is
// returned once.
func (h *Handler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req WebhookRequest
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if err := req.Validate(); err != nil {
		WriteValidationError(w, validationFields(err))
		return
	}
	if err := webhook.ValidateURL(r.Context(), req.URL); err != nil {
		WriteValidationError(w, map[string]string{"url": err.Error()})
		return
	}

	secret, err := model.GenerateWebhookSecret()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	headers := "{}"
	if len(req.Headers) > 0 {
		raw, err := json.Marshal(req.Headers)
		if err != nil {
			WriteBadRequest(w, "Invalid headers")
			return
		}
		headers = string(raw)
	}

	wh, err := h.store.CreateWebhook(r.Context(), store.CreateWebhookParams{
		Name:      req.Name,
		Url:       req.URL,
		Secret:    secret,
		Events:    model.EventsToJSON(req.Events),
		Headers:   headers,
		IsActive:  true,
		CreatedBy: actor.UserID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.logger.Info("webhook created", "webhook_id", wh.ID, "user_id", actor.UserID)

	resp := webhookResponse(wh)
	resp.Secret = wh.Secret
	WriteCreated(w, resp)
}

// SetWebhookActive handles PATCH /api/v1/admin/webhooks/{id}.
func (h *Handler) SetWebhookActive(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req WebhookActiveRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.store.SetWebhookActive(r.Context(), id, req.IsActive, time.Now().UTC())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if n == 0 {
		WriteNotFound(w, "Webhook not found")
		return
	}
	wh, err := h.store.GetWebhook(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, webhookResponse(wh))
}

// ListDeliveries handles GET /api/v1/admin/webhooks/{id}/deliveries.
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit := handler.ParseIntParam(r, "limit", 50, 1, handler.MaxPerPage)
	items, err := h.store.ListDeliveriesForWebhook(r.Context(), id, int64(limit))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.WebhookDelivery{}
	}
	WriteSuccess(w, items)
}

// ListContactMessages handles GET /api/v1/admin/contact.
func (h *Handler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	page, perPage := handler.ParsePagination(r)
	p := handler.NewPagination(page, perPage, 0)
	items, err := h.svc.Contact.List(r.Context(), actor.Tenant(), p.Limit(), p.Offset())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.ContactMessage{}
	}
	WriteJSON(w, http.StatusOK, Response{Data: items, Meta: map[string]any{"page": page, "per_page": perPage}})
}

// MarkContactRead handles POST /api/v1/admin/contact/{id}/read.
func (h *Handler) MarkContactRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Contact.MarkRead(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /api/v1/admin/events?level=&category=.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	page, perPage := handler.ParsePagination(r)
	p := handler.NewPagination(page, perPage, 0)
	query := r.URL.Query()
	items, err := h.svc.Events.List(r.Context(), query.Get("level"), query.Get("category"), p.Limit(), p.Offset())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.Event{}
	}
	WriteJSON(w, http.StatusOK, Response{Data: items, Meta: map[string]any{"page": page, "per_page": perPage}})
}

// validationFields flattens ozzo validation errors into field messages.
func validationFields(err error) map[string]string {
	fields := map[string]string{}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for name, fe := range errs {
			fields[name] = fe.Error()
		}
		return fields
	}
	fields["_"] = fmt.Sprint(err)
	return fields
}
