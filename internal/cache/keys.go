// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Key prefixes shared by every process using the same backend.
const (
	PrefixArticle = "article:"
	PrefixView    = "view:"
)

// ArticleIDKey is the read-cache key for an article by numeric id.
func ArticleIDKey(id int64) string {
	return PrefixArticle + "id:" + strconv.FormatInt(id, 10)
}

// ArticleSlugKey is the read-cache key for an article by tenant and slug.
func ArticleSlugKey(tenantID int64, slug string) string {
	return PrefixArticle + "slug:" + strconv.FormatInt(tenantID, 10) + ":" + slug
}

// ArticleKeys returns both read-cache keys of an article.
func ArticleKeys(id, tenantID int64, slug string) []string {
	return []string{ArticleIDKey(id), ArticleSlugKey(tenantID, slug)}
}

// ViewDedupeKey is the marker key for one visitor fingerprint on one article.
func ViewDedupeKey(articleID int64, fingerprint string) string {
	return PrefixView + strconv.FormatInt(articleID, 10) + ":" + fingerprint
}

// VisitorFingerprint hashes client IP and User-Agent into a stable token so
// raw addresses are never used as cache keys.
func VisitorFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}
