package engine

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/tack/internal/ident"
	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/store"
	"github.com/hpungsan/tack/internal/workspace"
)

// CaptureFile captures an entire file as a new part, appends it to the owning
// root's parts document, and reconciles. Returns nil when the capture is a
// no-op: target outside every configured root, not a regular file, or
// unreadable. These are expected, frequent inputs, not errors.
func (e *Engine) CaptureFile(path string) *part.Part {
	root, abs, content, ok := e.readTarget(path)
	if !ok {
		return nil
	}

	f := part.FormatFile(content)
	p := e.newPart(root, abs, f)

	store.ForRoot(root).AppendParts([]part.Part{p})
	e.Reconcile()
	return &p
}

// CaptureSelection captures a line-range selection of a file. Returns nil for
// the same no-op conditions as CaptureFile and additionally when the
// selection collapses to nothing after the trailing-newline adjustment.
func (e *Engine) CaptureSelection(path string, sel part.Selection) *part.Part {
	root, abs, content, ok := e.readTarget(path)
	if !ok {
		return nil
	}

	f, ok := part.FormatSelection(content, sel)
	if !ok {
		return nil
	}
	p := e.newPart(root, abs, f)

	store.ForRoot(root).AppendParts([]part.Part{p})
	e.Reconcile()
	return &p
}

// readTarget validates a capture target and reads its content, returning the
// owning root and the absolute path. Failures are silent no-ops per the
// engine's error policy.
func (e *Engine) readTarget(path string) (workspace.Root, string, string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return workspace.Root{}, "", "", false
	}

	root, ok := e.owningRoot(abs)
	if !ok {
		return workspace.Root{}, "", "", false
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return workspace.Root{}, "", "", false
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return workspace.Root{}, "", "", false
	}
	return root, abs, string(data), true
}

// newPart assembles a part record with this engine's session identifiers.
func (e *Engine) newPart(root workspace.Root, path string, f part.Formatted) part.Part {
	title := path
	if rel, ok := root.Rel(path); ok {
		title = rel
	}

	now := time.Now().UnixMilli()
	return part.Part{
		ID:        ident.New(ident.PrefixPart),
		SessionID: e.sessionID,
		MessageID: e.messageID,
		CallID:    e.callID,
		Type:      part.TypeTool,
		Tool:      part.ToolRead,
		State: part.State{
			Status:   part.StatusCompleted,
			Input:    part.Input{FilePath: path},
			Output:   f.Output,
			Title:    title,
			Metadata: part.Metadata{Preview: f.Preview, Truncated: f.Truncated},
			Time:     part.Timespan{Start: now, End: now},
		},
	}
}
