// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

type recordingWriter struct {
	mu     sync.Mutex
	events []store.CreateEventParams
}

func (w *recordingWriter) CreateEvent(_ context.Context, arg store.CreateEventParams) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, arg)
	return int64(len(w.events)), nil
}

func (w *recordingWriter) last(t *testing.T) store.CreateEventParams {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.events) == 0 {
		t.Fatal("no events recorded")
	}
	return w.events[len(w.events)-1]
}

func newTestLogger(level slog.Level) (*slog.Logger, *recordingWriter) {
	w := &recordingWriter{}
	return slog.New(NewEventLogHandlerWithLevel(discardHandler{}, w, level)), w
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		want  string
		saved bool
	}{
		{"error", func(l *slog.Logger) { l.Error("boom") }, model.EventLevelError, true},
		{"warn", func(l *slog.Logger) { l.Warn("careful") }, model.EventLevelWarning, true},
		{"info", func(l *slog.Logger) { l.Info("hello") }, "", false},
		{"debug", func(l *slog.Logger) { l.Debug("noise") }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, w := newTestLogger(slog.LevelWarn)
			tt.log(logger)

			if !tt.saved {
				if len(w.events) != 0 {
					t.Fatalf("expected no events, got %d", len(w.events))
				}
				return
			}
			if got := w.last(t).Level; got != tt.want {
				t.Errorf("Level = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	logger, w := newTestLogger(slog.LevelInfo)
	logger.Info("article published", "article_id", 7)

	ev := w.last(t)
	if ev.Level != model.EventLevelInfo || ev.Category != model.EventCategoryArticle {
		t.Errorf("got level %q category %q", ev.Level, ev.Category)
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login failed for user", model.EventCategoryAuth},
		{"comment moderation failed", model.EventCategoryComment},
		{"article cache invalidation failed", model.EventCategoryArticle},
		{"job exhausted retries", model.EventCategoryJob},
		{"user disabled", model.EventCategoryUser},
		{"redis unavailable", model.EventCategoryCache},
		{"disk nearly full", model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			logger, w := newTestLogger(slog.LevelWarn)
			logger.Warn(tt.msg)
			if got := w.last(t).Category; got != tt.want {
				t.Errorf("Category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	logger, w := newTestLogger(slog.LevelWarn)
	logger.Warn("article something", "category", model.EventCategoryJob)

	ev := w.last(t)
	if ev.Category != model.EventCategoryJob {
		t.Errorf("Category = %q, want %q", ev.Category, model.EventCategoryJob)
	}
	if ev.Metadata != "{}" {
		t.Errorf("category should not be copied into metadata: %s", ev.Metadata)
	}
}

func TestEventLogHandler_MetadataAndReservedKeys(t *testing.T) {
	logger, w := newTestLogger(slog.LevelWarn)
	logger.Error("publish failed",
		"user_id", int64(42),
		"ip", "10.0.0.1",
		"url", "/api/v1/articles/3/publish",
		"error", `quote " and newline
`,
	)

	ev := w.last(t)
	if !ev.UserID.Valid || ev.UserID.Int64 != 42 {
		t.Errorf("UserID = %+v", ev.UserID)
	}
	if ev.IpAddress != "10.0.0.1" || ev.RequestUrl != "/api/v1/articles/3/publish" {
		t.Errorf("ip=%q url=%q", ev.IpAddress, ev.RequestUrl)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(ev.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v (%s)", err, ev.Metadata)
	}
	if meta["error"] != "quote \" and newline\n" {
		t.Errorf("error = %q", meta["error"])
	}
	if _, ok := meta["ip"]; ok {
		t.Error("reserved keys should not appear in metadata")
	}
}

func TestEventLogHandler_WithAttrs(t *testing.T) {
	logger, w := newTestLogger(slog.LevelWarn)
	logger.With("worker", "jobs-1").Warn("job retry scheduled", "attempt", 2)

	var meta map[string]string
	_ = json.Unmarshal([]byte(w.last(t).Metadata), &meta)
	if meta["worker"] != "jobs-1" || meta["attempt"] != "2" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestEventLogHandler_WithGroup(t *testing.T) {
	logger, w := newTestLogger(slog.LevelWarn)
	logger.WithGroup("req").Warn("slow request")

	if w.last(t).Message != "slow request" {
		t.Error("grouped logger should still record events")
	}
}

func TestEventLogHandler_Database(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Error("database connection failed", "host", "localhost")
	logger.Info("not persisted")

	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Level != model.EventLevelError || events[0].Category != model.EventCategorySystem {
		t.Errorf("event = %+v", events[0])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
