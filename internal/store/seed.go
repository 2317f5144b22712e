// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/olib-go/internal/auth"
	"github.com/olegiv/olib-go/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

var defaultRoles = []CreateRoleParams{
	{Name: "Administrator", Slug: model.RoleAdmin, Description: "Full access"},
	{Name: "Editor", Slug: model.RoleEditor, Description: "Reviews and publishes any article"},
	{Name: "Author", Slug: model.RoleAuthor, Description: "Writes and publishes own articles"},
	{Name: "Reader", Slug: model.RoleReader, Description: "Reads restricted articles"},
}

// Seed creates roles, permissions and the default admin user. It is safe to
// run repeatedly.
func Seed(ctx context.Context, db *sql.DB) error {
	s := NewStore(db)
	return s.ExecTx(ctx, func(q Querier) error {
		now := time.Now().UTC()

		roles := make(map[string]int64, len(defaultRoles))
		for _, r := range defaultRoles {
			role, err := q.GetRoleBySlug(ctx, r.Slug)
			if errors.Is(err, sql.ErrNoRows) {
				r.CreatedAt = now
				role, err = q.CreateRole(ctx, r)
			}
			if err != nil {
				return fmt.Errorf("seeding role %s: %w", r.Slug, err)
			}
			roles[r.Slug] = role.ID
		}

		perms := make(map[string]int64)
		for _, p := range model.AllPermissions() {
			perm, err := q.GetPermissionByName(ctx, p.Name)
			if errors.Is(err, sql.ErrNoRows) {
				perm, err = q.CreatePermission(ctx, p.Name, p.Description, now)
			}
			if err != nil {
				return fmt.Errorf("seeding permission %s: %w", p.Name, err)
			}
			perms[p.Name] = perm.ID
		}

		for slug, names := range model.DefaultRolePermissions() {
			for _, name := range names {
				if err := q.GrantPermission(ctx, roles[slug], perms[name]); err != nil {
					return fmt.Errorf("granting %s to %s: %w", name, slug, err)
				}
			}
		}

		_, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
		if err == nil {
			slog.Info("admin user already exists, skipping user seed")
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking for admin user: %w", err)
		}

		passwordHash, err := auth.HashPassword(DefaultAdminPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		user, err := q.CreateUser(ctx, CreateUserParams{
			TenantID:     1,
			Email:        DefaultAdminEmail,
			PasswordHash: passwordHash,
			Name:         DefaultAdminName,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
		if err := q.AssignRole(ctx, user.ID, roles[model.RoleAdmin]); err != nil {
			return fmt.Errorf("assigning admin role: %w", err)
		}

		slog.Info("created default admin user",
			"id", user.ID,
			"email", user.Email,
			"password", DefaultAdminPassword,
		)
		return nil
	})
}
