// Package pathutil provides shared path validation helpers for paths that
// arrive through settings files rather than the command line.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects empty paths, null bytes and parent-directory
// traversal. Traversal is detected per segment before any cleaning, so
// "scripts/../../etc/passwd" fails even though its cleaned form would slip
// past a prefix check.
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("file path contains invalid characters")
	}

	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return fmt.Errorf("file path contains path traversal: %q", path)
		}
	}
	return nil
}
