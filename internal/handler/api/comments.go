// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/olib-go/internal/handler"
	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/store"
)

// ModerateRequest is the request body for POST /comments/{id}/moderate.
type ModerateRequest struct {
	Status string `json:"status"`
}

// redactComments hides the guest contact details and client metadata from
// callers who cannot moderate.
func redactComments(items []store.Comment, moderator bool) []store.Comment {
	if moderator {
		return items
	}
	for i := range items {
		items[i].GuestEmail = ""
		items[i].IpAddress = ""
		items[i].UserAgent = ""
	}
	return items
}

// ListComments handles GET /api/v1/articles/{id}/comments.
//
// Moderators may filter by status; everyone else sees approved comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor := middleware.GetActor(r)
	if _, err := h.svc.Articles.Get(r.Context(), actor, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	page, perPage := handler.ParsePagination(r)
	p := handler.NewPagination(page, perPage, 0)
	items, total, err := h.svc.Comments.List(r.Context(), actor, id, r.URL.Query().Get("status"), p.Limit(), p.Offset())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	mod, err := h.svc.Comments.CanModerate(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.Comment{}
	}
	WriteList(w, r, redactComments(items, mod), handler.NewPagination(page, perPage, total), nil)
}

// CreateComment handles POST /api/v1/comments. Guests must leave a name and
// email address.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in service.CreateCommentInput
	if !decode(w, r, &in) {
		return
	}
	actor := middleware.GetActor(r)
	if _, err := h.svc.Articles.Get(r.Context(), actor, in.ArticleID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	c, err := h.svc.Comments.Create(r.Context(), actor, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeComment(w, r, http.StatusCreated, c)
}

// UpdateComment handles PATCH /api/v1/comments/{id}.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.UpdateCommentInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.Comments.Update(r.Context(), middleware.GetActor(r), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeComment(w, r, http.StatusOK, c)
}

// ModerateComment handles POST /api/v1/comments/{id}/moderate.
func (h *Handler) ModerateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ModerateRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Comments.Moderate(r.Context(), middleware.GetActor(r), id, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c)
}

// DeleteComment handles DELETE /api/v1/comments/{id}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Comments.Delete(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreComment handles POST /api/v1/comments/{id}/restore.
func (h *Handler) RestoreComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Comments.Restore(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	c, err := h.svc.Comments.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c)
}

func (h *Handler) writeComment(w http.ResponseWriter, r *http.Request, status int, c store.Comment) {
	mod, err := h.svc.Comments.CanModerate(r.Context(), middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	items := redactComments([]store.Comment{c}, mod)
	WriteJSON(w, status, Response{Data: items[0]})
}
