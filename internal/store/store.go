// Package store reads and writes the per-root parts and blacklist documents.
// All operations are best-effort: transient I/O failures and malformed
// documents degrade to empty results or unpersisted writes, never to errors
// propagated out of this package. The documents on disk remain the single
// source of truth.
package store

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/workspace"
)

// Store is the persistence unit for one parts document and its sibling
// blacklist document.
type Store struct {
	PartsPath     string
	BlacklistPath string
}

// New creates a Store for a parts document path.
func New(partsPath string) *Store {
	return &Store{
		PartsPath:     partsPath,
		BlacklistPath: workspace.BlacklistSibling(partsPath),
	}
}

// ForRoot creates a Store for a root's own documents.
func ForRoot(r workspace.Root) *Store {
	return &Store{PartsPath: r.PartsPath, BlacklistPath: r.BlacklistPath}
}

// partsDoc is the parts document wire shape.
type partsDoc struct {
	Parts []json.RawMessage `json:"parts"`
}

// blacklistDoc is the blacklist document wire shape.
type blacklistDoc struct {
	IDs []string `json:"ids"`
}

// ReadParts parses the parts document. A missing or malformed document reads
// as empty; a record that fails shape validation is dropped individually
// without invalidating its siblings.
func (s *Store) ReadParts() []part.Part {
	data, err := os.ReadFile(s.PartsPath)
	if err != nil {
		return nil
	}

	var doc partsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	parts := make([]part.Part, 0, len(doc.Parts))
	for _, raw := range doc.Parts {
		if p, ok := part.Decode(raw); ok {
			parts = append(parts, p)
		}
	}
	return parts
}

// ReadBlacklist parses the blacklist document into a set of ids. A missing or
// malformed document reads as an empty set.
func (s *Store) ReadBlacklist() map[string]bool {
	ids := make(map[string]bool)

	data, err := os.ReadFile(s.BlacklistPath)
	if err != nil {
		return ids
	}

	var doc blacklistDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ids
	}

	for _, id := range doc.IDs {
		if id != "" {
			ids[id] = true
		}
	}
	return ids
}

// AppendParts merges new parts into the document by id. An entry with an
// existing id replaces that record in place rather than duplicating it, and
// rewrites the whole document sorted by filePath for deterministic diffs.
func (s *Store) AppendParts(newParts []part.Part) {
	if len(newParts) == 0 {
		return
	}

	existing := s.ReadParts()

	byID := make(map[string]int, len(existing))
	merged := make([]part.Part, 0, len(existing)+len(newParts))
	for _, p := range existing {
		if p.ID != "" {
			byID[p.ID] = len(merged)
		}
		merged = append(merged, p)
	}
	for _, p := range newParts {
		if i, ok := byID[p.ID]; ok && p.ID != "" {
			merged[i] = p
			continue
		}
		if p.ID != "" {
			byID[p.ID] = len(merged)
		}
		merged = append(merged, p)
	}

	s.RewriteParts(merged)
}

// RewriteParts replaces the whole parts document with the given records,
// sorted by filePath with id as tie-break. Records dropped by validation on
// read do not survive a rewrite.
func (s *Store) RewriteParts(parts []part.Part) {
	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].FilePath() != parts[j].FilePath() {
			return parts[i].FilePath() < parts[j].FilePath()
		}
		return parts[i].ID < parts[j].ID
	})

	s.writeDoc(s.PartsPath, partsDocOut{Parts: parts})
}

// WriteBlacklist rewrites the blacklist document as a sorted, de-duplicated
// array.
func (s *Store) WriteBlacklist(ids map[string]bool) {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		if id != "" {
			sorted = append(sorted, id)
		}
	}
	sort.Strings(sorted)

	s.writeDoc(s.BlacklistPath, blacklistDoc{IDs: sorted})
}

// partsDocOut is the write-side parts document shape.
type partsDocOut struct {
	Parts []part.Part `json:"parts"`
}

// writeDoc pretty-prints a document, creating the marker directory on demand.
// Failures log and return; the change stays visible in memory for this
// process run but is not persisted.
func (s *Store) writeDoc(path string, doc any) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Printf("tack: encode %s: %v", path, err)
		return
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("tack: create %s: %v", filepath.Dir(path), err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("tack: write %s: %v", path, err)
	}
}
