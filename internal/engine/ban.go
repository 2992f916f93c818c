package engine

import (
	"github.com/hpungsan/tack/internal/store"
	"github.com/hpungsan/tack/internal/workspace"
)

// Ban tombstones a single part id and returns true when the id was newly
// banned. The blacklist is append-only: once an id is banned it is never
// removed by the engine, so a concurrent writer re-appending the same record
// cannot silently undo the delete.
func (e *Engine) Ban(id string) bool {
	if id == "" {
		return false
	}
	e.Reconcile()
	if e.banned[id] {
		return false
	}

	if doc, ok := e.owner[id]; ok {
		e.appendToBlacklist(store.New(doc), []string{id})
	} else {
		// Owning root unknown: write the tombstone into every root's
		// blacklist. Ids are globally unique, so the extra entries in
		// unrelated roots are harmless, and this keeps the part bannable in
		// every code path. Known, accepted redundancy.
		for _, r := range e.roots {
			e.appendToBlacklist(store.ForRoot(r), []string{id})
		}
	}

	e.Reconcile()
	return true
}

// BanUnderPath tombstones every indexed part whose file path equals basePath
// or is nested under it, persisting each affected blacklist once. Returns the
// number of newly banned ids.
func (e *Engine) BanUnderPath(basePath string) int {
	e.Reconcile()

	byDoc := make(map[string][]string)
	count := 0
	for key, bucket := range e.index {
		if !workspace.UnderPath(key, basePath) {
			continue
		}
		for _, p := range bucket {
			doc := e.owner[p.ID]
			byDoc[doc] = append(byDoc[doc], p.ID)
			count++
		}
	}
	if count == 0 {
		return 0
	}

	for doc, ids := range byDoc {
		e.appendToBlacklist(store.New(doc), ids)
	}

	e.Reconcile()
	return count
}

// BanAll tombstones every currently indexed part. Returns the count of newly
// banned ids, 0 when the operation changed nothing, so callers can report
// whether it had any effect.
func (e *Engine) BanAll() int {
	e.Reconcile()

	byDoc := make(map[string][]string)
	count := 0
	for _, bucket := range e.index {
		for _, p := range bucket {
			doc := e.owner[p.ID]
			byDoc[doc] = append(byDoc[doc], p.ID)
			count++
		}
	}
	if count == 0 {
		return 0
	}

	for doc, ids := range byDoc {
		e.appendToBlacklist(store.New(doc), ids)
	}

	e.Reconcile()
	return count
}

// appendToBlacklist merges ids into a store's blacklist and persists it. The
// read-merge-write keeps entries added by other writers since our last scan.
func (e *Engine) appendToBlacklist(st *store.Store, ids []string) {
	set := st.ReadBlacklist()
	for _, id := range ids {
		set[id] = true
	}
	st.WriteBlacklist(set)
}
