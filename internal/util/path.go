// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrPathEscapesBase is returned when a stored path resolves outside its
// base directory.
var ErrPathEscapesBase = errors.New("path escapes base directory")

// SafeJoin resolves rel, a path stored in the database, below baseDir.
// Absolute paths and paths that climb out of baseDir are rejected.
func SafeJoin(baseDir, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", ErrPathEscapesBase
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	full := filepath.Join(base, rel)
	r, err := filepath.Rel(base, full)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", ErrPathEscapesBase
	}
	return full, nil
}

// DownloadName returns a filename safe to put in a Content-Disposition
// header: the base name with quotes and control characters removed.
func DownloadName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
