// Package report renders the active parts of an engine as a markdown
// document, optionally exported to a file for sharing outside the tool.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/tack/internal/engine"
	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/workspace"
)

// Input contains parameters for the Build operation.
type Input struct {
	Path *string // optional: restrict the report to parts under this path
}

// Output contains the result of the Build operation.
type Output struct {
	Markdown string `json:"markdown"`
	Chars    int    `json:"chars"`
	Files    int    `json:"files"`
	Parts    int    `json:"parts"`
}

type fileGroup struct {
	display string
	parts   []part.Part
}

type rootGroup struct {
	root  workspace.Root
	files []fileGroup
}

// Build assembles a markdown report of every active part, grouped by root and
// then by file. Files appear in sorted path order; parts within a file keep
// their creation order.
func Build(e *engine.Engine, input Input) (*Output, error) {
	parts := e.AllParts()
	if input.Path != nil && strings.TrimSpace(*input.Path) != "" {
		base := *input.Path
		filtered := parts[:0]
		for _, p := range parts {
			if workspace.UnderPath(p.FilePath(), base) {
				filtered = append(filtered, p)
			}
		}
		parts = filtered
	}

	// Bucket by root, then by normalized path. A part whose file falls under
	// no configured root cannot be active, so every part lands somewhere.
	// With nested roots a file matches more than one; it belongs to the
	// deepest match only.
	roots := e.Roots()
	owners := make([]int, len(parts))
	for i, p := range parts {
		owners[i] = -1
		depth := -1
		for ri, r := range roots {
			if r.Contains(p.FilePath()) && len(r.Path) > depth {
				owners[i] = ri
				depth = len(r.Path)
			}
		}
	}

	groups := make([]rootGroup, 0, len(roots))
	for ri, r := range roots {
		byFile := make(map[string]*fileGroup)
		var keys []string
		for i, p := range parts {
			if owners[i] != ri {
				continue
			}
			key := workspace.Normalize(p.FilePath())
			g, ok := byFile[key]
			if !ok {
				g = &fileGroup{display: p.FilePath()}
				byFile[key] = g
				keys = append(keys, key)
			}
			g.parts = append(g.parts, p)
		}
		if len(keys) == 0 {
			continue
		}
		sort.Strings(keys)
		rg := rootGroup{root: r}
		for _, key := range keys {
			rg.files = append(rg.files, *byFile[key])
		}
		groups = append(groups, rg)
	}

	files := 0
	count := 0
	for _, rg := range groups {
		files += len(rg.files)
		for _, fg := range rg.files {
			count += len(fg.parts)
		}
	}

	markdown := assembleMarkdown(groups, files, count)
	return &Output{
		Markdown: markdown,
		Chars:    utf8.RuneCountInString(markdown),
		Files:    files,
		Parts:    count,
	}, nil
}

// assembleMarkdown creates the report text: a summary header, one section per
// root, one subsection per file, each excerpt inside a text fence.
func assembleMarkdown(groups []rootGroup, files, parts int) string {
	var sb strings.Builder
	sb.WriteString("# Captured excerpts\n\n")
	sb.WriteString(fmt.Sprintf("Generated %s. %d excerpt(s) across %d file(s).\n",
		time.Now().UTC().Format(time.RFC3339), parts, files))

	for _, rg := range groups {
		sb.WriteString("\n## ")
		sb.WriteString(rg.root.Path)
		sb.WriteString("\n")
		for _, fg := range rg.files {
			heading := fg.display
			if rel, ok := rg.root.Rel(fg.display); ok {
				heading = rel
			}
			sb.WriteString("\n### ")
			sb.WriteString(heading)
			sb.WriteString("\n")
			for _, p := range fg.parts {
				sb.WriteString(fmt.Sprintf("\n`%s` captured %s\n\n",
					p.ID, time.UnixMilli(p.State.Time.Start).UTC().Format(time.RFC3339)))
				// Excerpts hold arbitrary source text, so the fence is wider
				// than any run of backticks markdown itself would use.
				sb.WriteString("````text\n")
				sb.WriteString(p.State.Output)
				if !strings.HasSuffix(p.State.Output, "\n") {
					sb.WriteString("\n")
				}
				sb.WriteString("````\n")
			}
		}
	}
	return sb.String()
}
