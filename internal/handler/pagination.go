// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strconv"
)

// Page size limits for list endpoints.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Links are the navigation URLs of a paginated response. Empty links are
// omitted.
type Links struct {
	Self  string `json:"self"`
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

// NewPagination computes the page count for total items.
func NewPagination(page, perPage int, total int64) Pagination {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

// Offset returns the row offset of the page.
func (p Pagination) Offset() int64 {
	return int64((p.Page - 1) * p.PerPage)
}

// Limit returns the page size as a query limit.
func (p Pagination) Limit() int64 {
	return int64(p.PerPage)
}

// BuildLinks returns the navigation links for p, keeping every query
// parameter of u except page.
func BuildLinks(u *url.URL, p Pagination) Links {
	pageURL := func(n int) string {
		q := u.Query()
		q.Set("page", strconv.Itoa(n))
		return u.Path + "?" + q.Encode()
	}

	links := Links{Self: pageURL(p.Page), First: pageURL(1), Last: pageURL(p.TotalPages)}
	if p.Page > 1 {
		links.Prev = pageURL(min(p.Page-1, p.TotalPages))
	}
	if p.Page < p.TotalPages {
		links.Next = pageURL(p.Page + 1)
	}
	return links
}

// ParsePagination reads page and per_page from the query string.
func ParsePagination(r *http.Request) (page, perPage int) {
	return ParsePageParam(r), ParsePerPageParam(r, DefaultPerPage, MaxPerPage)
}

// ParsePageParam parses the "page" query parameter, defaulting to 1.
func ParsePageParam(r *http.Request) int {
	return ParseIntParam(r, "page", 1, 1, 0)
}

// ParsePerPageParam parses the "per_page" query parameter.
// Values outside [1, maxPerPage] fall back to defaultPerPage.
func ParsePerPageParam(r *http.Request, defaultPerPage, maxPerPage int) int {
	return ParseIntParam(r, "per_page", defaultPerPage, 1, maxPerPage)
}

// ParseIntParam parses an integer query parameter.
// Returns defaultVal if the parameter is missing or invalid.
// If minVal > 0, values below minVal return defaultVal.
// If maxVal > 0, values above maxVal return defaultVal.
func ParseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	str := r.URL.Query().Get(param)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if minVal > 0 && val < minVal {
		return defaultVal
	}
	if maxVal > 0 && val > maxVal {
		return defaultVal
	}
	return val
}

// ParseInt64Query parses a positive int64 query parameter, returning 0 when
// it is missing or invalid.
func ParseInt64Query(r *http.Request, param string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(param), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
