// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDefaults(t *testing.T) {
	sm := New(setupTestDB(t), Config{Driver: "sqlite"})
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if sm.Cookie.Name != "olib_session" {
		t.Errorf("Cookie.Name = %q", sm.Cookie.Name)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v", sm.Cookie.SameSite)
	}
	if sm.Cookie.Secure {
		t.Error("Secure should follow config")
	}
}

func TestNewSecure(t *testing.T) {
	sm := New(nil, Config{Driver: "mysql", Lifetime: time.Hour, CookieName: "sid", Secure: true})
	if !sm.Cookie.Secure || sm.Cookie.Name != "sid" || sm.Lifetime != time.Hour {
		t.Errorf("config not applied: %+v", sm.Cookie)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	for _, driver := range []string{"sqlite", "memory"} {
		t.Run(driver, func(t *testing.T) {
			sm := New(setupTestDB(t), Config{Driver: driver})

			mux := http.NewServeMux()
			mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
				if err := Login(r.Context(), sm, 42); err != nil {
					t.Errorf("Login: %v", err)
				}
			})
			mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(strconv.FormatInt(UserID(r.Context(), sm), 10)))
			})
			mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
				if err := Logout(r.Context(), sm); err != nil {
					t.Errorf("Logout: %v", err)
				}
			})
			h := sm.LoadAndSave(mux)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
			cookies := rec.Result().Cookies()
			if len(cookies) == 0 {
				t.Fatal("login did not set a cookie")
			}

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.AddCookie(cookies[0])
			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Body.String() != "42" {
				t.Errorf("UserID = %q, want 42", rec.Body.String())
			}

			req = httptest.NewRequest(http.MethodPost, "/logout", nil)
			req.AddCookie(cookies[0])
			h.ServeHTTP(httptest.NewRecorder(), req)

			req = httptest.NewRequest(http.MethodGet, "/me", nil)
			req.AddCookie(cookies[0])
			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Body.String() != "0" {
				t.Errorf("UserID after logout = %q, want 0", rec.Body.String())
			}
		})
	}
}
