package fsutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CreateDir creates a directory (and any parents) if it doesn't exist.
func CreateDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ReadFileIfExists reads path. A missing file is not an error: it returns
// (nil, false, nil).
func ReadFileIfExists(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, true, nil
}

// WriteFileAtomic replaces path with content in a single step. The data is
// written to a temporary file in the same directory, synced, and renamed over
// the destination so readers never see a partially written file.
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	// Remove the temp file on any failure path; after a successful rename this is a no-op.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// RemoveIfExists deletes path; a missing file is not an error.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Missing, or some other stat error (e.g. permissions): treat as absent.
		return false
	}
	return !info.IsDir()
}

// nonAlphanumericRegex matches any character that is NOT a lowercase letter, number, underscore or period.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9_.]+`)
var collapseUnderscoreRegex = regexp.MustCompile(`_+`) // Consecutive underscores

// SanitizeFilename converts a string into a safe format suitable for filenames.
// It converts to lowercase, replaces spaces and disallowed characters with underscores,
// and collapses consecutive underscores.
func SanitizeFilename(name string) string {
	// 1. Lowercase and trim
	trimmed := strings.TrimSpace(strings.ToLower(name))

	// 2. Replace spaces and everything else we don't allow
	sanitized := nonAlphanumericRegex.ReplaceAllString(strings.ReplaceAll(trimmed, " ", "_"), "_")

	// 3. Collapse runs of underscores
	collapsed := collapseUnderscoreRegex.ReplaceAllString(sanitized, "_")

	// Never return "", "." or ".." for non-empty input; those are not usable file names.
	if (collapsed == "" || collapsed == "." || collapsed == "..") && name != "" {
		return "_"
	}
	return collapsed
}
