// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
)

// PermissionService resolves roles and permissions. Results are not cached.
type PermissionService struct {
	q store.Querier
}

// NewPermissionService creates a PermissionService.
func NewPermissionService(q store.Querier) *PermissionService {
	return &PermissionService{q: q}
}

// UserHasAny reports whether the user holds a role matching one of names
// (role name case-insensitively, or slug) or a permission named exactly one
// of names. Names are literal; "articles.*" has no special meaning.
func (s *PermissionService) UserHasAny(ctx context.Context, userID int64, names []string) (bool, error) {
	if userID <= 0 || len(names) == 0 {
		return false, nil
	}

	ok, err := s.q.UserHasRole(ctx, userID, names)
	if err != nil || ok {
		return ok, err
	}
	return s.q.UserHasPermission(ctx, userID, names)
}

// IsAdmin reports whether the user holds the admin role.
func (s *PermissionService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	return s.q.UserHasRole(ctx, userID, []string{model.RoleAdmin})
}

// Permissions lists the permission names granted to the user.
func (s *PermissionService) Permissions(ctx context.Context, userID int64) ([]string, error) {
	return s.q.GetPermissionNamesForUser(ctx, userID)
}
