// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST API consumed by the reader and editor
// frontends.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/olib-go/internal/handler"
	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/store"
)

// Services groups the domain services the API exposes.
type Services struct {
	Articles    *service.ArticleService
	Comments    *service.CommentService
	Shares      *service.ShareService
	Ratings     *service.RatingService
	Downloads   *service.DownloadService
	Counters    *service.CounterService
	Taxonomy    *service.TaxonomyService
	Contact     *service.ContactService
	Newsletter  *service.NewsletterService
	Auth        *service.AuthService
	Permissions *service.PermissionService
	Events      *service.EventService
}

// Config holds API settings.
type Config struct {
	// FilesDir is the directory downloadable files are stored under.
	FilesDir string
	// ViewDedupeTTL is how long a repeat view from the same visitor is ignored.
	ViewDedupeTTL time.Duration
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	svc      Services
	store    store.Querier
	sessions *scs.SessionManager
	login    *middleware.LoginProtection
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates the API handler. q backs the admin endpoints that have
// no service of their own (webhooks).
func NewHandler(svc Services, q store.Querier, sm *scs.SessionManager, login *middleware.LoginProtection, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if login == nil {
		login = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	if cfg.ViewDedupeTTL <= 0 {
		cfg.ViewDedupeTTL = 30 * time.Minute
	}
	return &Handler{svc: svc, store: q, sessions: sm, login: login, cfg: cfg, logger: logger}
}

// Response is the standard API response envelope.
type Response struct {
	Data       any                 `json:"data"`
	Pagination *handler.Pagination `json:"pagination,omitempty"`
	Links      *handler.Links      `json:"links,omitempty"`
	Meta       map[string]any      `json:"meta,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response wrapping data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes a 201 response wrapping data.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteList writes a paginated list with navigation links.
func WriteList(w http.ResponseWriter, r *http.Request, data any, p handler.Pagination, meta map[string]any) {
	links := handler.BuildLinks(r.URL, p)
	WriteJSON(w, http.StatusOK, Response{Data: data, Pagination: &p, Links: &links, Meta: meta})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps a service error onto its HTTP status. Unknown errors
// are logged and reported as 500 without details.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteValidationError(w, ve.Fields)
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, "Resource not found")
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "You are not allowed to perform this action", nil)
	case errors.Is(err, service.ErrInvalidState):
		WriteError(w, http.StatusConflict, "invalid_state", "The resource is not in a state that allows this action", nil)
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "The resource already exists", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials", nil)
	default:
		h.logger.Error("api request failed",
			"method", r.Method,
			"url", r.URL.Path,
			"error", err,
		)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

// decode reads the JSON body into dst, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := handler.DecodeJSON(w, r, dst); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// pathID parses the "id" URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid ID")
		return 0, false
	}
	return id, true
}

// requireAdmin reports whether the actor is an administrator, writing the
// error response otherwise.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	actor := middleware.GetActor(r)
	ok, err := h.svc.Permissions.IsAdmin(r.Context(), actor.UserID)
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
