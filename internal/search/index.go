package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/tack/internal/errors"
	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/workspace"

	_ "modernc.org/sqlite"
)

// openIndex builds a fresh in-memory index over the given parts. The caller
// owns the returned handle and must close it.
func openIndex(ctx context.Context, parts []part.Part) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to open search index: %w", err))
	}
	// The in-memory database lives on a single connection. A second
	// connection would see an unrelated empty database.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE parts (
	  id             TEXT PRIMARY KEY,
	  file_path      TEXT NOT NULL,
	  file_path_norm TEXT NOT NULL,
	  title          TEXT NOT NULL,
	  output         TEXT NOT NULL,
	  created        INTEGER NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewInternal(fmt.Errorf("failed to create search index: %w", err))
	}

	stmt, err := db.PrepareContext(ctx,
		`INSERT OR REPLACE INTO parts (id, file_path, file_path_norm, title, output, created)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, errors.NewInternal(fmt.Errorf("failed to prepare search index: %w", err))
	}
	defer stmt.Close()

	for _, p := range parts {
		path := p.FilePath()
		_, err := stmt.ExecContext(ctx, p.ID, path, workspace.Normalize(path),
			p.State.Title, p.State.Output, p.State.Time.Start)
		if err != nil {
			db.Close()
			return nil, errors.NewInternal(fmt.Errorf("failed to populate search index: %w", err))
		}
	}
	return db, nil
}

// escapeLike escapes LIKE metacharacters so the query matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// snippetAround returns match context from output, falling back to the title
// when only the title matched. Matching is case-insensitive.
func snippetAround(output, title, query string) string {
	idx := strings.Index(strings.ToLower(output), strings.ToLower(query))
	if idx < 0 {
		return truncateSnippet(title, MaxSnippetChars)
	}

	// Center the window on the match.
	start := idx - (MaxSnippetChars-len(query))/2
	if start < 0 {
		start = 0
	}
	end := start + MaxSnippetChars
	if end > len(output) {
		end = len(output)
		start = max(end-MaxSnippetChars, 0)
	}

	// Never split a multi-byte rune at either edge.
	for start > 0 && !utf8.RuneStart(output[start]) {
		start--
	}
	for end < len(output) && !utf8.RuneStart(output[end]) {
		end++
	}

	snippet := output[start:end]
	// Collapse the line-numbered rows into a single readable line.
	snippet = strings.Join(strings.Fields(snippet), " ")
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(output) {
		snippet += "..."
	}
	return snippet
}

// truncateSnippet trims s to approximately maxChars without splitting a
// multi-byte rune, preferring a word boundary when one is close enough.
func truncateSnippet(s string, maxChars int) string {
	if maxChars <= 0 {
		return "..."
	}
	if len(s) <= maxChars {
		return s
	}

	truncateAt := maxChars
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	if truncateAt == 0 {
		return "..."
	}

	truncated := s[:truncateAt]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > truncateAt/2 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
