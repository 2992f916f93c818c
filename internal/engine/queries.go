package engine

import (
	"sort"
	"strings"

	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/workspace"
)

// Children lists the entries directly below a base path, reconstructed purely
// from indexed leaves. Directories that contain no captured file never
// appear.
type Children struct {
	Dirs  []string `json:"dirs"`
	Files []string `json:"files"`
}

// IsActive reports whether at least one active part exists for path. The
// index is rebuilt first so concurrent writers' edits are reflected.
func (e *Engine) IsActive(path string) bool {
	e.Reconcile()
	return len(e.index[workspace.Normalize(path)]) > 0
}

// PartsFor returns the active parts for path, ordered by creation time with
// id as a stable tie-break.
func (e *Engine) PartsFor(path string) []part.Part {
	e.Reconcile()
	bucket := e.index[workspace.Normalize(path)]
	out := make([]part.Part, len(bucket))
	copy(out, bucket)
	return out
}

// FilePaths returns every indexed file path in its original spelling, sorted.
func (e *Engine) FilePaths() []string {
	e.Reconcile()
	paths := make([]string, 0, len(e.display))
	for _, p := range e.display {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// AllParts returns every active part, grouped by sorted file path. Feeds the
// search index and the report builder.
func (e *Engine) AllParts() []part.Part {
	e.Reconcile()
	keys := make([]string, 0, len(e.index))
	for key := range e.index {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []part.Part
	for _, key := range keys {
		out = append(out, e.index[key]...)
	}
	return out
}

// RootsWithContent returns the configured roots that have at least one
// indexed descendant.
func (e *Engine) RootsWithContent() []workspace.Root {
	e.Reconcile()
	var out []workspace.Root
	for _, r := range e.roots {
		for key := range e.index {
			if workspace.UnderPath(key, r.Path) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// ChildrenOf derives the immediate children of basePath from the indexed
// leaves: a path one segment below is a file entry, a path two or more
// segments below contributes one synthetic directory entry named after its
// first segment.
func (e *Engine) ChildrenOf(basePath string) Children {
	e.Reconcile()
	return e.childrenLocked(basePath)
}

// childrenLocked is ChildrenOf without the reconcile, for callers that
// already hold a fresh index.
func (e *Engine) childrenLocked(basePath string) Children {
	base := workspace.Normalize(basePath)
	dirSeen := make(map[string]bool)
	var children Children

	for key, display := range e.display {
		if key == base || !workspace.UnderPath(key, base) {
			continue
		}
		rest := strings.TrimPrefix(key, base)
		rest = strings.TrimPrefix(rest, "/")
		segs := strings.Split(rest, "/")

		// Take entry names from the display path so original casing survives.
		displaySegs := lastSegments(display, len(segs))
		if len(segs) == 1 {
			children.Files = append(children.Files, displaySegs[0])
			continue
		}
		name := displaySegs[0]
		if !dirSeen[strings.ToLower(name)] {
			dirSeen[strings.ToLower(name)] = true
			children.Dirs = append(children.Dirs, name)
		}
	}

	sort.Strings(children.Dirs)
	sort.Strings(children.Files)
	return children
}

// lastSegments returns the final n slash-separated segments of path.
func lastSegments(path string, n int) []string {
	segs := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	if len(segs) > n {
		segs = segs[len(segs)-n:]
	}
	return segs
}
