// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and small value types shared by the
// storage, service and HTTP layers: article statuses and visibility, comment
// and share vocabularies, permission names and entity references.
package model

// Article statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Article visibility values.
const (
	VisibilityPublic            = "public"
	VisibilityPrivate           = "private"
	VisibilityPasswordProtected = "password_protected"
)

// AllStatuses returns every article status in lifecycle order.
func AllStatuses() []string {
	return []string{StatusDraft, StatusPending, StatusPublished, StatusArchived}
}

// AllVisibilities returns every article visibility value.
func AllVisibilities() []string {
	return []string{VisibilityPublic, VisibilityPrivate, VisibilityPasswordProtected}
}

// IsValidStatus reports whether s is a known article status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// IsValidVisibility reports whether v is a known visibility value.
func IsValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityPasswordProtected:
		return true
	}
	return false
}

// IsEditable reports whether an article in status may have its content changed.
func IsEditable(status string) bool {
	return status == StatusDraft || status == StatusPending
}

// IsPublishable reports whether an article in status may be published.
func IsPublishable(status string) bool {
	return status == StatusDraft || status == StatusPending
}

// transitions lists the allowed target statuses for each source status.
// Archived has no outgoing transitions.
var transitions = map[string][]string{
	StatusDraft:     {StatusPending, StatusPublished, StatusArchived},
	StatusPending:   {StatusPublished, StatusArchived},
	StatusPublished: {StatusDraft, StatusArchived},
}

// CanTransition reports whether an article may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesFor returns the statuses from which target can be reached.
func SourcesFor(target string) []string {
	var from []string
	for _, s := range AllStatuses() {
		if CanTransition(s, target) {
			from = append(from, s)
		}
	}
	return from
}
