// Package utils provides internal helpers shared by the logging packages.
//
// The path helpers normalise user supplied log locations coming from
// configuration documents and reject relative paths that try to climb out of
// their base directory.
package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hyp3rd/ewrap"
)

// CleanPath normalises path and returns its absolute form.
//
// Relative paths must not contain ".." segments; absolute paths are accepted
// as given after cleaning.
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ewrap.New("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !filepath.IsAbs(cleanPath) && hasTraversal(cleanPath) {
		return "", ewrap.New("invalid path contains directory traversal sequence").
			WithMetadata("path", path)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", ewrap.Wrap(err, "resolving absolute path").WithMetadata("path", path)
	}

	return absPath, nil
}

// JoinName joins a file name produced from a template onto dir. The name must
// stay inside dir.
func JoinName(dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ewrap.New("file name cannot be empty").WithMetadata("dir", dir)
	}

	if filepath.IsAbs(name) || hasTraversal(filepath.Clean(name)) {
		return "", ewrap.New("file name escapes its directory").
			WithMetadata("dir", dir).
			WithMetadata("name", name)
	}

	base, err := CleanPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(base, name), nil
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string, perm os.FileMode) error {
	err := os.MkdirAll(dir, perm)
	if err != nil {
		return ewrap.Wrapf(err, "creating log directory").WithMetadata("path", dir)
	}

	return nil
}

func hasTraversal(cleanPath string) bool {
	for part := range strings.SplitSeq(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return true
		}
	}

	return false
}
