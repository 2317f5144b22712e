// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	other, _ := HashPassword("changeme")
	if hash == other {
		t.Error("hashes of the same password should use different salts")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-article")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct", "s3cret-article", true},
		{"wrong", "wrongpassword", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckPassword(tt.password, hash)
			if err != nil {
				t.Fatalf("CheckPassword error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$x$y$z$w", "$argon2id$v=19$m=1,t=1,p=1$!!!$abc"} {
		if ok, err := CheckPassword("x", h); ok || err == nil {
			t.Errorf("CheckPassword with %q = %v, %v; want false and error", h, ok, err)
		}
	}
	if _, err := CheckPassword("x", "plain"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("err = %v, want ErrInvalidHash", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, _ := HashPassword("changeme")
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need rehash")
	}
	old := strings.Replace(hash, "m=19456,t=2,p=1", "m=65536,t=1,p=4", 1)
	if !NeedsRehash(old) {
		t.Error("hash with old parameters should need rehash")
	}
	if !NeedsRehash("garbage") {
		t.Error("invalid hash should need rehash")
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(16)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	b, _ := GenerateToken(16)
	if len(a) != 32 || a == b {
		t.Errorf("tokens %q %q", a, b)
	}
}
