// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the oLib project.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/olib-go/internal/model"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/util"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied and the
// default roles and permissions seeded.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "olib-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	if err := store.Seed(context.Background(), db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Seed: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// TestMemoryDB creates an in-memory SQLite database for testing.
// Useful for tests that don't need persistent storage or migrations.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// a second pooled connection would see a different empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var fixtureSeq atomic.Int64

// CreateUser inserts an active user holding the given role slugs.
func CreateUser(t *testing.T, db *sql.DB, roles ...string) store.User {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)
	now := time.Now().UTC()

	n := fixtureSeq.Add(1)
	user, err := q.CreateUser(ctx, store.CreateUserParams{
		TenantID:     1,
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "x",
		Name:         fmt.Sprintf("User %d", n),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for _, slug := range roles {
		role, err := q.GetRoleBySlug(ctx, slug)
		if err != nil {
			t.Fatalf("GetRoleBySlug(%s): %v", slug, err)
		}
		if err := q.AssignRole(ctx, user.ID, role.ID); err != nil {
			t.Fatalf("AssignRole: %v", err)
		}
	}
	return user
}

// CreateArticle inserts an article authored by authorID in the given status.
func CreateArticle(t *testing.T, db *sql.DB, authorID int64, status string) store.Article {
	t.Helper()
	now := time.Now().UTC()
	n := fixtureSeq.Add(1)

	params := store.CreateArticleParams{
		UUID:       uuid.NewString(),
		TenantID:   1,
		Slug:       fmt.Sprintf("article-%d", n),
		Title:      fmt.Sprintf("Article %d", n),
		Body:       "Body",
		BodyHTML:   "<p>Body</p>",
		Status:     status,
		Visibility: model.VisibilityPublic,
		AuthorID:   authorID,
		CreatedBy:  authorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == model.StatusPublished {
		params.PublishedAt = sql.NullTime{Time: now.Add(-time.Minute), Valid: true}
	}

	article, err := store.New(db).CreateArticle(context.Background(), params)
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return article
}

// CreateCategory inserts a category with a slug derived from name.
func CreateCategory(t *testing.T, db *sql.DB, name string) store.Category {
	t.Helper()
	now := time.Now().UTC()
	c, err := store.New(db).CreateCategory(context.Background(), store.CreateCategoryParams{
		TenantID:  1,
		Name:      name,
		Slug:      util.Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

// CreateTag inserts a tag with a slug derived from name.
func CreateTag(t *testing.T, db *sql.DB, name string) store.Tag {
	t.Helper()
	now := time.Now().UTC()
	tag, err := store.New(db).CreateTag(context.Background(), store.CreateTagParams{
		TenantID:  1,
		Name:      name,
		Slug:      util.Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	return tag
}
