// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Comment moderation statuses. Only approved comments are counted.
const (
	CommentPending  = "pending"
	CommentApproved = "approved"
	CommentRejected = "rejected"
	CommentSpam     = "spam"
)

// IsValidCommentStatus reports whether s is a known moderation status.
func IsValidCommentStatus(s string) bool {
	switch s {
	case CommentPending, CommentApproved, CommentRejected, CommentSpam:
		return true
	}
	return false
}

// Share methods.
const (
	ShareEmail  = "email"
	ShareSocial = "social"
	ShareLink   = "link"
	ShareEmbed  = "embed"
	SharePrint  = "print"
)

// AllShareMethods returns every accepted share method.
func AllShareMethods() []string {
	return []string{ShareEmail, ShareSocial, ShareLink, ShareEmbed, SharePrint}
}

// Contact message statuses.
const (
	ContactNew     = "new"
	ContactRead    = "read"
	ContactReplied = "replied"
)
