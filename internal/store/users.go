// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"
)

const userColumns = `id, tenant_id, email, password_hash, name, is_active, last_login_at, created_at, updated_at`

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Name, &u.IsActive,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const createUser = `INSERT INTO users (tenant_id, email, password_hash, name, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	TenantID     int64
	Email        string
	PasswordHash string
	Name         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx, createUser, arg.TenantID, arg.Email, arg.PasswordHash, arg.Name,
		arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUser(ctx, id)
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

const updateUserLastLogin = `UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, now, now, id)
	return err
}

const updateUserPassword = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, passwordHash, now, id)
	return err
}

// Roles

const createRole = `INSERT INTO roles (name, slug, description, created_at) VALUES (?, ?, ?, ?)`

type CreateRoleParams struct {
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
}

func (q *Queries) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	res, err := q.db.ExecContext(ctx, createRole, arg.Name, arg.Slug, arg.Description, arg.CreatedAt)
	if err != nil {
		return Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Role{}, err
	}
	var r Role
	err = q.db.QueryRowContext(ctx, `SELECT id, name, slug, description, created_at FROM roles WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.CreatedAt)
	return r, err
}

const getRoleBySlug = `SELECT id, name, slug, description, created_at FROM roles WHERE slug = ?`

func (q *Queries) GetRoleBySlug(ctx context.Context, slug string) (Role, error) {
	var r Role
	err := q.db.QueryRowContext(ctx, getRoleBySlug, slug).Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.CreatedAt)
	return r, err
}

const getRolesForUser = `SELECT r.id, r.name, r.slug, r.description, r.created_at
FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = ?
ORDER BY r.name`

func (q *Queries) GetRolesForUser(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := q.db.QueryContext(ctx, getRolesForUser, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.Description, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const assignRole = `INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`

func (q *Queries) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := q.db.ExecContext(ctx, assignRole, userID, roleID)
	if IsUniqueViolation(err) {
		return nil
	}
	return err
}

// Permissions

const createPermission = `INSERT INTO permissions (name, description, created_at) VALUES (?, ?, ?)`

func (q *Queries) CreatePermission(ctx context.Context, name, description string, now time.Time) (Permission, error) {
	res, err := q.db.ExecContext(ctx, createPermission, name, description, now)
	if err != nil {
		return Permission{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Permission{}, err
	}
	return Permission{ID: id, Name: name, Description: description, CreatedAt: now}, nil
}

const getPermissionByName = `SELECT id, name, description, created_at FROM permissions WHERE name = ?`

func (q *Queries) GetPermissionByName(ctx context.Context, name string) (Permission, error) {
	var p Permission
	err := q.db.QueryRowContext(ctx, getPermissionByName, name).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	return p, err
}

const grantPermission = `INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`

func (q *Queries) GrantPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := q.db.ExecContext(ctx, grantPermission, roleID, permissionID)
	if IsUniqueViolation(err) {
		return nil
	}
	return err
}

const getPermissionNamesForUser = `SELECT DISTINCT p.name
FROM permissions p
JOIN role_permissions rp ON rp.permission_id = p.id
JOIN user_roles ur ON ur.role_id = rp.role_id
WHERE ur.user_id = ?
ORDER BY p.name`

func (q *Queries) GetPermissionNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getPermissionNamesForUser, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UserHasRole reports whether the user holds a role whose name matches one of
// names case-insensitively or whose slug equals one of them.
func (q *Queries) UserHasRole(ctx context.Context, userID int64, names []string) (bool, error) {
	if len(names) == 0 {
		return false, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	query := `SELECT COUNT(*) FROM user_roles ur JOIN roles r ON r.id = ur.role_id
WHERE ur.user_id = ? AND (LOWER(r.name) IN (` + placeholders + `) OR r.slug IN (` + placeholders + `))`

	args := make([]any, 0, 1+2*len(names))
	args = append(args, userID)
	for _, n := range names {
		args = append(args, strings.ToLower(n))
	}
	for _, n := range names {
		args = append(args, n)
	}

	var count int64
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UserHasPermission reports whether any of the user's roles grants one of names.
func (q *Queries) UserHasPermission(ctx context.Context, userID int64, names []string) (bool, error) {
	if len(names) == 0 {
		return false, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	query := `SELECT COUNT(*) FROM user_roles ur
JOIN role_permissions rp ON rp.role_id = ur.role_id
JOIN permissions p ON p.id = rp.permission_id
WHERE ur.user_id = ? AND p.name IN (` + placeholders + `)`

	args := make([]any, 0, 1+len(names))
	args = append(args, userID)
	for _, n := range names {
		args = append(args, n)
	}

	var count int64
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
