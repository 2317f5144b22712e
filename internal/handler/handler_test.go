// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/version"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, perPage int
		total         int64
		wantPages     int
		wantOffset    int64
	}{
		{1, 20, 0, 1, 0},
		{1, 20, 20, 1, 0},
		{2, 20, 21, 2, 20},
		{3, 10, 95, 10, 20},
	}
	for _, tt := range tests {
		p := NewPagination(tt.page, tt.perPage, tt.total)
		assert.Equal(t, tt.wantPages, p.TotalPages, "total=%d", tt.total)
		assert.Equal(t, tt.wantOffset, p.Offset())
		assert.Equal(t, int64(tt.perPage), p.Limit())
	}
}

func TestBuildLinks(t *testing.T) {
	u, err := url.Parse("/api/v1/articles?status=published&page=2&per_page=10")
	require.NoError(t, err)

	links := BuildLinks(u, NewPagination(2, 10, 35))
	assert.Equal(t, "/api/v1/articles?page=2&per_page=10&status=published", links.Self)
	assert.Equal(t, "/api/v1/articles?page=1&per_page=10&status=published", links.First)
	assert.Equal(t, "/api/v1/articles?page=1&per_page=10&status=published", links.Prev)
	assert.Equal(t, "/api/v1/articles?page=3&per_page=10&status=published", links.Next)
	assert.Equal(t, "/api/v1/articles?page=4&per_page=10&status=published", links.Last)

	single := BuildLinks(u, NewPagination(1, 10, 3))
	assert.Empty(t, single.Prev)
	assert.Empty(t, single.Next)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, DefaultPerPage},
		{"page=3&per_page=50", 3, 50},
		{"page=0&per_page=0", 1, DefaultPerPage},
		{"page=abc&per_page=1000", 1, DefaultPerPage},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
		page, perPage := ParsePagination(r)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantPerPage, perPage, tt.query)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "ok", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), r, &dst), ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad"))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))

	big := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	assert.ErrorContains(t, DecodeJSON(httptest.NewRecorder(), r, &dst), "exceeds")
}

func TestParseIDParam(t *testing.T) {
	var got int64
	var gotErr error
	router := chi.NewRouter()
	router.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = ParseIDParam(r)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(42), got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/-1", nil))
	assert.Error(t, gotErr)
}

func TestHealth(t *testing.T) {
	mem := cache.NewSimpleMemoryCache(0)
	t.Cleanup(func() { _ = mem.Close() })
	v := version.Info{Version: "v1.2.3"}

	t.Run("guest sees status only", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{}, mem, v)
		w := httptest.NewRecorder()
		h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	})

	t.Run("user sees checks", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{}, mem, v)
		r := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
		r = r.WithContext(middleware.WithActor(r.Context(), service.Actor{UserID: 1}))
		w := httptest.NewRecorder()
		h.Health(w, r)

		var body HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "v1.2.3", body.Version)
		assert.Contains(t, body.Checks, "database")
		assert.Contains(t, body.Checks, "cache")
		assert.NotNil(t, body.CacheStats)
		assert.NotNil(t, body.System)
	})

	t.Run("database down", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{err: errors.New("closed")}, nil, v)
		w := httptest.NewRecorder()
		h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = httptest.NewRecorder()
		h.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = httptest.NewRecorder()
		h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
