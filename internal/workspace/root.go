// Package workspace defines roots and the path-comparison policy that every
// membership and hierarchy decision is built on.
package workspace

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Marker directory and document names, fixed for interop with other writers.
const (
	MarkerDir     = ".tack"
	PartsFile     = "parts.json"
	BlacklistFile = "blacklist.json"
)

// Root is one workspace folder with its own parts and blacklist documents.
// Roots are supplied once at startup and are immutable for the engine's
// lifetime.
type Root struct {
	Path          string
	PartsPath     string
	BlacklistPath string
}

// NewRoot builds a Root for the given directory.
func NewRoot(dir string) Root {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	marker := filepath.Join(abs, MarkerDir)
	return Root{
		Path:          abs,
		PartsPath:     filepath.Join(marker, PartsFile),
		BlacklistPath: filepath.Join(marker, BlacklistFile),
	}
}

// Roots builds the deduplicated root set for the given directories.
func Roots(dirs []string) []Root {
	seen := make(map[string]bool, len(dirs))
	roots := make([]Root, 0, len(dirs))
	for _, dir := range dirs {
		r := NewRoot(dir)
		key := Normalize(r.Path)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		roots = append(roots, r)
	}
	return roots
}

// Contains reports whether path is the root itself or a descendant of it.
func (r Root) Contains(path string) bool {
	return UnderPath(path, r.Path)
}

// Rel returns the root-relative form of path, or false when path is outside
// the root. Used for display titles.
func (r Root) Rel(path string) (string, bool) {
	if !r.Contains(path) {
		return "", false
	}
	rel, err := filepath.Rel(r.Path, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Normalize maps a path to its canonical comparison form: cleaned, forward
// slashes, case-folded. Path membership is decided case-insensitively on
// every platform, matching the documents' external writers.
func Normalize(p string) string {
	return strings.ToLower(filepath.ToSlash(filepath.Clean(p)))
}

// UnderPath reports whether path equals base or is nested under it, using the
// normalized comparison form with a separator boundary so that /a/bc is not
// under /a/b.
func UnderPath(path, base string) bool {
	p := Normalize(path)
	b := Normalize(base)
	if p == b {
		return true
	}
	if !strings.HasSuffix(b, "/") {
		b += "/"
	}
	return strings.HasPrefix(p, b)
}

// Discover walks every root directory for marker directories and returns the
// paths of all parts documents found, including nested sub-projects that were
// never configured as roots. Unreadable directories are skipped rather than
// failing the scan.
func Discover(roots []Root) []string {
	seen := make(map[string]bool)
	var docs []string
	add := func(p string) {
		key := Normalize(p)
		if !seen[key] {
			seen[key] = true
			docs = append(docs, p)
		}
	}

	for _, r := range roots {
		// The root's own document participates even before it exists on disk.
		add(r.PartsPath)

		_ = filepath.WalkDir(r.Path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() && d.Name() == MarkerDir {
				add(filepath.Join(p, PartsFile))
				return filepath.SkipDir
			}
			return nil
		})
	}
	return docs
}

// BlacklistSibling returns the blacklist document path next to a parts
// document.
func BlacklistSibling(partsPath string) string {
	return filepath.Join(filepath.Dir(partsPath), BlacklistFile)
}
