// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/olib-go/internal/handler"
	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/util"
)

// ShareRequest is the request body for POST /shares.
type ShareRequest struct {
	ArticleID int64  `json:"article_id"`
	Method    string `json:"method"`
}

// MoveShareRequest is the request body for POST /shares/{id}/move.
type MoveShareRequest struct {
	ArticleID int64 `json:"article_id"`
}

// RateRequest is the request body for PUT /articles/{id}/rating.
type RateRequest struct {
	Rating int `json:"rating"`
}

// CreateShare handles POST /api/v1/shares.
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !decode(w, r, &req) {
		return
	}
	actor := middleware.GetActor(r)
	if _, err := h.svc.Articles.Get(r.Context(), actor, req.ArticleID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	share, err := h.svc.Shares.Create(r.Context(), actor, req.ArticleID, req.Method)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, share)
}

// ConvertShare handles POST /api/v1/shares/{uuid}/convert.
func (h *Handler) ConvertShare(w http.ResponseWriter, r *http.Request) {
	share, err := h.svc.Shares.Convert(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, share)
}

// MoveShare handles POST /api/v1/shares/{id}/move.
func (h *Handler) MoveShare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req MoveShareRequest
	if !decode(w, r, &req) {
		return
	}
	share, err := h.svc.Shares.Move(r.Context(), middleware.GetActor(r), id, req.ArticleID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, share)
}

// DeleteShare handles DELETE /api/v1/shares/{id}.
func (h *Handler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Shares.Delete(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreShare handles POST /api/v1/shares/{id}/restore.
func (h *Handler) RestoreShare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Shares.Restore(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareStats handles GET /api/v1/articles/{id}/shares/stats.
func (h *Handler) ShareStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.Articles.Get(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	counts, err := h.svc.Shares.Stats(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if counts == nil {
		counts = []store.ShareMethodCount{}
	}
	WriteSuccess(w, counts)
}

// MyRating handles GET /api/v1/articles/{id}/rating.
func (h *Handler) MyRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rating, err := h.svc.Ratings.Mine(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, rating)
}

// Rate handles PUT /api/v1/articles/{id}/rating. The article aggregate is
// recalculated in the background.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Ratings.Rate(r.Context(), middleware.GetActor(r), id, req.Rating); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, Response{Data: RateRequest{Rating: req.Rating}})
}

// RemoveRating handles DELETE /api/v1/articles/{id}/rating.
func (h *Handler) RemoveRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Ratings.Remove(r.Context(), middleware.GetActor(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile handles GET /api/v1/files/{id}/download. The download is
// counted before the body is streamed.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.svc.Downloads.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if f.TenantID != middleware.GetActor(r).Tenant() {
		WriteNotFound(w, "Resource not found")
		return
	}

	path, err := util.SafeJoin(h.cfg.FilesDir, f.Path)
	if err != nil {
		h.logger.Warn("rejected file path", "file_id", f.ID, "path", f.Path, "error", err)
		WriteNotFound(w, "Resource not found")
		return
	}
	if _, err := os.Stat(path); err != nil {
		h.logger.Warn("file missing on disk", "file_id", f.ID, "error", err)
		WriteNotFound(w, "Resource not found")
		return
	}

	if err := h.svc.Downloads.RecordDownload(r.Context(), f.ID, time.Now().UTC()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if f.MimeType != "" {
		w.Header().Set("Content-Type", f.MimeType)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+util.DownloadName(f.Name)+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}

// FileStats handles GET /api/v1/files/{id}/stats?days=N.
func (h *Handler) FileStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, ok := h.requireModerator(w, r); !ok {
		return
	}
	f, err := h.svc.Downloads.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	days := handler.ParseIntParam(r, "days", 30, 1, 365)
	daily, err := h.svc.Downloads.Daily(r.Context(), id, days)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if daily == nil {
		daily = []store.FileDownloadDaily{}
	}
	WriteJSON(w, http.StatusOK, Response{
		Data: daily,
		Meta: map[string]any{"file_id": f.ID, "total": f.DownloadCount, "days": days},
	})
}

// requireModerator reports whether the actor may see moderation data.
func (h *Handler) requireModerator(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	actor := middleware.GetActor(r)
	ok, err := h.svc.Comments.CanModerate(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, r, err)
		return actor, false
	}
	if !ok {
		h.writeServiceError(w, r, service.ErrForbidden)
		return actor, false
	}
	return actor, true
}
