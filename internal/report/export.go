package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/tack/internal/errors"
)

// Export writes a report to path after validating it. The file must be a .md
// file directly inside the exports directory; the directory is created on
// first use.
func Export(path, markdown string) error {
	if err := ValidateExportPath(path); err != nil {
		return err
	}

	dir, err := DefaultExportsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create exports directory: %w", err))
	}
	_ = os.Chmod(dir, 0700)

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	f, err := openFileNoFollow(abs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		if _, ok := err.(*errors.TackError); ok {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to open export file: %w", err))
	}
	defer f.Close()

	if _, err := f.WriteString(markdown); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	return nil
}

// ValidatePath checks:
// 1. Path traversal (.. sequences)
// 2. Extension (.md required)
// 3. Directory restriction (file must be DIRECTLY in the exports dir, no
//    subdirectories, which removes TOCTOU races on intermediate components)
// 4. Symlink safety (neither the parent directory nor the file may be one)
func ValidateExportPath(path string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".md" {
		return errors.NewInvalidRequest("path must have .md extension")
	}

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	exportsDir, err := DefaultExportsDir()
	if err != nil {
		return err
	}
	parentDir := filepath.Dir(abs)
	if filepath.Clean(parentDir) != filepath.Clean(exportsDir) {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in %s (no subdirectories)", exportsDir))
	}

	if info, err := os.Lstat(parentDir); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}
	if info, err := os.Lstat(abs); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
	}
	return nil
}

// DefaultExportsDir returns the exports directory (~/.tack/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".tack", "exports"), nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check forward slashes on all platforms (e.g., user input).
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
