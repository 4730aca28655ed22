// Package security guards generated output paths.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a path resolves outside its directory.
var ErrPathTraversal = errors.New("path traversal detected")

// ValidatePathLexically checks that filePath stays inside safeDir after
// cleaning, without touching the filesystem. Use it for paths on virtual
// filesystems; ValidatePathWithinDirectory also resolves symlinks.
func ValidatePathLexically(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}
	return contained(absPath, absSafeDir, filePath, safeDir)
}

// ValidatePathWithinDirectory checks if a file path is within a safe directory.
// It prevents path traversal attacks by ensuring the resolved path doesn't escape
// the specified safe directory. This includes protection against symlink-based
// attacks. safeDir must exist.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	canonicalSafeDir, err := filepath.EvalSymlinks(absSafeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory symlinks: %w", err)
	}
	return contained(canonicalize(absPath), canonicalSafeDir, filePath, safeDir)
}

// canonicalize resolves symlinks in absPath. When absPath does not exist yet
// its nearest existing parent is resolved instead, so a new file under a
// symlinked directory is still attributed to the link target.
func canonicalize(absPath string) string {
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved
	}
	for dir := filepath.Dir(absPath); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rel, _ := filepath.Rel(dir, absPath)
			return filepath.Join(resolved, rel)
		}
		if filepath.Dir(dir) == dir {
			return absPath
		}
	}
}

func contained(path, dir, origPath, origDir string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s attempts to escape %s", ErrPathTraversal, origPath, origDir)
	}
	return nil
}
