// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Role slugs created by the seeder.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleAuthor = "author"
	RoleReader = "reader"
)

// Article permissions. Names are matched literally; there are no wildcards.
const (
	PermArticlesView      = "articles.view"
	PermArticlesViewFull  = "articles.view_full"
	PermArticlesCreate    = "articles.create"
	PermArticlesUpdate    = "articles.update"
	PermArticlesDelete    = "articles.delete"
	PermArticlesPublish   = "articles.publish"
	PermArticlesViewStats = "articles.view_stats"
	PermCommentsModerate  = "comments.moderate"
	PermTaxonomyManage    = "taxonomy.manage"
)

// PermissionInfo describes a permission for seeding.
type PermissionInfo struct {
	Name        string
	Description string
}

// AllPermissions returns every permission known to the application.
func AllPermissions() []PermissionInfo {
	return []PermissionInfo{
		{PermArticlesView, "View non-public articles"},
		{PermArticlesViewFull, "Read the full content of restricted articles"},
		{PermArticlesCreate, "Create articles"},
		{PermArticlesUpdate, "Edit any article"},
		{PermArticlesDelete, "Delete articles"},
		{PermArticlesPublish, "Publish any article"},
		{PermArticlesViewStats, "View article statistics"},
		{PermCommentsModerate, "Moderate comments"},
		{PermTaxonomyManage, "Manage categories and tags"},
	}
}

// DefaultRolePermissions maps seeded role slugs to their permissions.
// The admin role bypasses permission checks and needs no grants.
func DefaultRolePermissions() map[string][]string {
	return map[string][]string{
		RoleEditor: {
			PermArticlesView, PermArticlesViewFull, PermArticlesCreate, PermArticlesUpdate,
			PermArticlesDelete, PermArticlesPublish, PermArticlesViewStats, PermCommentsModerate,
			PermTaxonomyManage,
		},
		RoleAuthor: {
			PermArticlesCreate,
		},
		RoleReader: {
			PermArticlesView,
		},
	}
}
