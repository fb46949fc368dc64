// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil holds filesystem helpers for the export tree: path-safe
// names, idempotent directory creation and atomic file writes.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var unsafeReplacer = strings.NewReplacer("/", "_", "\\", "_")

// SanitizeName replaces path separators in name so it can be used as a
// single path segment.
func SanitizeName(name string) string {
	return unsafeReplacer.Replace(name)
}

// SafeFilename sanitises name and rejects values that would not name a
// file inside the destination directory. It returns fallback when name is
// empty, "." or "..".
func SafeFilename(name, fallback string) string {
	name = strings.TrimSpace(SanitizeName(name))
	switch name {
	case "", ".", "..":
		return fallback
	}
	return name
}

// EnsureDirs creates every directory in dirs. Existing directories are not
// an error.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteFile streams r into path through a temporary file in the same
// directory and renames it into place, replacing any existing file.
func WriteFile(path string, r io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file for %s: %w", path, closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	return nil
}

// WriteString writes s to path atomically.
func WriteString(path, s string) error {
	return WriteFile(path, strings.NewReader(s))
}
