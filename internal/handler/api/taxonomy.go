// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/store"
)

// TagRequest is the request body for tag create and rename.
type TagRequest struct {
	Name string `json:"name"`
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Taxonomy.Categories(r.Context(), middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.Category{}
	}
	WriteSuccess(w, items)
}

// CreateCategory handles POST /api/v1/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.Taxonomy.CreateCategory(r.Context(), middleware.GetActor(r), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, c)
}

// UpdateCategory handles PATCH /api/v1/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.Taxonomy.UpdateCategory(r.Context(), middleware.GetActor(r), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, c)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.DeleteCategory(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /api/v1/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Taxonomy.Tags(r.Context(), middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []store.Tag{}
	}
	WriteSuccess(w, items)
}

// CreateTag handles POST /api/v1/tags.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decode(w, r, &req) {
		return
	}
	tag, err := h.svc.Taxonomy.CreateTag(r.Context(), middleware.GetActor(r), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, tag)
}

// RenameTag handles PATCH /api/v1/tags/{id}.
func (h *Handler) RenameTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req TagRequest
	if !decode(w, r, &req) {
		return
	}
	tag, err := h.svc.Taxonomy.RenameTag(r.Context(), middleware.GetActor(r), id, req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, tag)
}

// DeleteTag handles DELETE /api/v1/tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Taxonomy.DeleteTag(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
