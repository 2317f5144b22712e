// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides the slog setup for oLib and a handler that copies
// WARN+ records into the database-backed event log.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// EventWriter persists one event-log row.
type EventWriter interface {
	CreateEvent(ctx context.Context, arg store.CreateEventParams) (int64, error)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewTextHandler returns the text handler used on stdout.
func NewTextHandler(w io.Writer, level string) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
}

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	events EventWriter
	level  slog.Level
	attrs  []slog.Attr
}

// NewEventLogHandler wraps inner and records WARN+ logs into db.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, store.New(db), slog.LevelWarn)
}

// NewEventLogHandlerWithLevel wraps inner with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, events EventWriter, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, events: events, level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeEvent(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), events: h.events, level: h.level, attrs: merged}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), events: h.events, level: h.level, attrs: h.attrs}
}

// recordFields collects the attributes of r plus those bound with WithAttrs.
func (h *EventLogHandler) recordFields(r slog.Record) []slog.Attr {
	all := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	all = append(all, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		all = append(all, a)
		return true
	})
	return all
}

func (h *EventLogHandler) writeEvent(r slog.Record) {
	attrs := h.recordFields(r)

	arg := store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  inferCategory(r.Message, attrs),
		Message:   r.Message,
		CreatedAt: r.Time.UTC(),
	}

	meta := make(map[string]string, len(attrs))
	for _, a := range attrs {
		switch a.Key {
		case "category":
		case "user_id":
			if id := a.Value.Resolve(); id.Kind() == slog.KindInt64 {
				arg.UserID = sql.NullInt64{Int64: id.Int64(), Valid: true}
			}
		case "ip":
			arg.IpAddress = a.Value.String()
		case "url":
			arg.RequestUrl = a.Value.String()
		default:
			meta[a.Key] = a.Value.String()
		}
	}
	arg.Metadata = "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			arg.Metadata = string(b)
		}
	}

	// request contexts may already be cancelled by the time an error is logged
	_, _ = h.events.CreateEvent(context.Background(), arg)
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// categoryHints is checked in order; the first keyword found in the message wins.
var categoryHints = []struct {
	keyword  string
	category string
}{
	{"login", model.EventCategoryAuth},
	{"logout", model.EventCategoryAuth},
	{"auth", model.EventCategoryAuth},
	{"comment", model.EventCategoryComment},
	{"article", model.EventCategoryArticle},
	{"job", model.EventCategoryJob},
	{"user", model.EventCategoryUser},
	{"cache", model.EventCategoryCache},
	{"redis", model.EventCategoryCache},
}

func inferCategory(msg string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}
	lower := strings.ToLower(msg)
	for _, hint := range categoryHints {
		if strings.Contains(lower, hint.keyword) {
			return hint.category
		}
	}
	return model.EventCategorySystem
}
