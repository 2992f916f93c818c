// Package engine implements the reconciliation and tombstone-store engine.
// The on-disk JSON documents are the single source of truth; the in-memory
// index is a disposable cache rebuilt from scratch before every externally
// visible read so that edits made by other processes are always picked up.
package engine

import (
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tack/internal/ident"
	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/store"
	"github.com/hpungsan/tack/internal/workspace"
)

// Engine owns the in-memory index for one set of roots. State is private to
// the instance so multiple engines (e.g. in tests) never share it. Roots are
// fixed at construction.
type Engine struct {
	roots []workspace.Root

	// Session identifiers stamped on every part this engine creates. Present
	// for record shape compatibility with external writers only.
	sessionID string
	messageID string
	callID    string

	// index maps normalized file path to the ordered active parts for that
	// file. display preserves the first-seen original spelling of each
	// normalized path. owner maps part id to the parts document it was read
	// from, for ban targeting.
	index   map[string][]part.Part
	display map[string]string
	owner   map[string]string
	banned  map[string]bool

	lastScanID   string
	lastScanTime time.Time
}

// Stats describes the most recent reconciliation pass.
type Stats struct {
	ScanID   string    `json:"scan_id"`
	ScanTime time.Time `json:"scan_time"`
	Files    int       `json:"files"`
	Parts    int       `json:"parts"`
	Banned   int       `json:"banned"`
}

// New creates an engine over the given root directories.
func New(rootDirs []string) *Engine {
	return &Engine{
		roots:     workspace.Roots(rootDirs),
		sessionID: ident.New(ident.PrefixSession),
		messageID: ident.New(ident.PrefixMessage),
		callID:    ident.New(ident.PrefixCall),
	}
}

// Roots returns the configured roots.
func (e *Engine) Roots() []workspace.Root {
	return e.roots
}

// Reconcile discards the index and rebuilds it from every discoverable parts
// document. Parts excluded by the union of all blacklists, and parts whose
// file path does not fall under a configured root, are left out. Records
// missing an id are assigned one and written back to their document, so the
// assigned id is stable across scans and bannable. Running Reconcile twice
// with no intervening disk change produces an identical index.
func (e *Engine) Reconcile() {
	docs := workspace.Discover(e.roots)

	type loaded struct {
		doc   string
		parts []part.Part
	}

	// First pass: read everything and union the blacklists, so a tombstone
	// written by any writer in any root excludes the part everywhere.
	banned := make(map[string]bool)
	all := make([]loaded, 0, len(docs))
	for _, doc := range docs {
		st := store.New(doc)
		for id := range st.ReadBlacklist() {
			banned[id] = true
		}
		parts := st.ReadParts()
		healed := false
		for i := range parts {
			if parts[i].ID == "" {
				parts[i].ID = ident.New(ident.PrefixPart)
				healed = true
			}
		}
		// Write assigned ids back so they survive the next scan and a ban
		// on an observed id sticks.
		if healed {
			st.RewriteParts(parts)
		}
		all = append(all, loaded{doc: doc, parts: parts})
	}

	index := make(map[string][]part.Part)
	display := make(map[string]string)
	owner := make(map[string]string)

	for _, l := range all {
		for _, p := range l.parts {
			if !e.underAnyRoot(p.FilePath()) {
				continue
			}
			owner[p.ID] = l.doc
			if banned[p.ID] {
				continue
			}
			key := workspace.Normalize(p.FilePath())
			if _, ok := display[key]; !ok {
				display[key] = p.FilePath()
			}
			index[key] = append(index[key], p)
		}
	}

	// Stable query order: creation time, id as tie-break.
	for key := range index {
		bucket := index[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].State.Time.Start != bucket[j].State.Time.Start {
				return bucket[i].State.Time.Start < bucket[j].State.Time.Start
			}
			return bucket[i].ID < bucket[j].ID
		})
	}

	e.index = index
	e.display = display
	e.owner = owner
	e.banned = banned
	e.lastScanID = ulid.Make().String()
	e.lastScanTime = time.Now()
}

// Stats returns counters for the most recent reconciliation pass.
func (e *Engine) Stats() Stats {
	parts := 0
	for _, bucket := range e.index {
		parts += len(bucket)
	}
	return Stats{
		ScanID:   e.lastScanID,
		ScanTime: e.lastScanTime,
		Files:    len(e.index),
		Parts:    parts,
		Banned:   len(e.banned),
	}
}

// underAnyRoot reports whether path belongs to a configured root.
func (e *Engine) underAnyRoot(path string) bool {
	for _, r := range e.roots {
		if r.Contains(path) {
			return true
		}
	}
	return false
}

// owningRoot returns the configured root containing path.
func (e *Engine) owningRoot(path string) (workspace.Root, bool) {
	for _, r := range e.roots {
		if r.Contains(path) {
			return r, true
		}
	}
	return workspace.Root{}, false
}
