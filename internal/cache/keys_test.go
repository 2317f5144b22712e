// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"strings"
	"testing"
)

func TestArticleKeys(t *testing.T) {
	if got := ArticleIDKey(12); got != "article:id:12" {
		t.Errorf("ArticleIDKey = %q", got)
	}
	if got := ArticleSlugKey(3, "hello"); got != "article:slug:3:hello" {
		t.Errorf("ArticleSlugKey = %q", got)
	}
	keys := ArticleKeys(12, 3, "hello")
	if len(keys) != 2 || keys[0] != "article:id:12" || keys[1] != "article:slug:3:hello" {
		t.Errorf("ArticleKeys = %v", keys)
	}
}

func TestVisitorFingerprint(t *testing.T) {
	a := VisitorFingerprint("10.0.0.1", "Mozilla/5.0")
	b := VisitorFingerprint("10.0.0.1", "Mozilla/5.0")
	c := VisitorFingerprint("10.0.0.2", "Mozilla/5.0")

	if a != b {
		t.Error("fingerprint should be stable")
	}
	if a == c {
		t.Error("different IPs should produce different fingerprints")
	}
	if len(a) != 64 || strings.Contains(a, "10.0.0.1") {
		t.Errorf("fingerprint should be a hex digest, got %q", a)
	}
	if got := ViewDedupeKey(5, a); !strings.HasPrefix(got, "view:5:") {
		t.Errorf("ViewDedupeKey = %q", got)
	}
}
