// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityKind tags the type of record an EntityRef points at.
type EntityKind string

// Known entity kinds.
const (
	KindArticle  EntityKind = "article"
	KindComment  EntityKind = "comment"
	KindShare    EntityKind = "share"
	KindCategory EntityKind = "category"
	KindTag      EntityKind = "tag"
	KindUser     EntityKind = "user"
	KindFile     EntityKind = "file"
)

// EntityRef is a typed reference to a stored record.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   int64      `json:"id"`
}

// Ref builds an EntityRef.
func Ref(kind EntityKind, id int64) EntityRef {
	return EntityRef{Kind: kind, ID: id}
}

// String renders the reference as "kind:id".
func (r EntityRef) String() string {
	return string(r.Kind) + ":" + strconv.FormatInt(r.ID, 10)
}

// IsZero reports whether the reference is unset.
func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

// ParseEntityRef parses the "kind:id" form produced by String.
func ParseEntityRef(s string) (EntityRef, error) {
	kind, idStr, ok := strings.Cut(s, ":")
	if !ok || kind == "" {
		return EntityRef{}, fmt.Errorf("invalid entity reference %q", s)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return EntityRef{}, fmt.Errorf("invalid entity id in %q", s)
	}
	return EntityRef{Kind: EntityKind(kind), ID: id}, nil
}
