// Package search provides substring search over the active parts of an
// engine. The index is disposable: it is rebuilt in an in-memory SQLite
// database on every call, so it can never drift from the documents on disk.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/tack/internal/engine"
	"github.com/hpungsan/tack/internal/errors"
	"github.com/hpungsan/tack/internal/workspace"
)

// Search limits
const (
	DefaultLimit    = 20
	MaxLimit        = 100
	MaxQueryChars   = 500
	MaxSnippetChars = 300
)

// Input contains parameters for the Search operation.
type Input struct {
	Query  string  // required
	Path   *string // optional filter: only parts under this path
	Limit  int     // default: 20, max: 100
	Offset int     // default: 0
}

// ResultItem is one matching part with a plain-text match snippet.
type ResultItem struct {
	ID       string `json:"id"`
	FilePath string `json:"filePath"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"` // match context, ~300 chars max
	Created  int64  `json:"created"` // unix ms
}

// Pagination describes the window a result set covers.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Output contains the result of the Search operation.
type Output struct {
	Items      []ResultItem `json:"items"`
	Pagination Pagination   `json:"pagination"`
	Sort       string       `json:"sort"` // "path"
}

// Run searches titles and captured excerpt text for a substring match.
// Matching is case-insensitive. Results are ordered by file path, then by
// creation time within a file.
func Run(ctx context.Context, e *engine.Engine, input Input) (*Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryChars {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryChars))
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := max(input.Offset, 0)

	parts := e.AllParts()
	if input.Path != nil && strings.TrimSpace(*input.Path) != "" {
		base := workspace.Normalize(*input.Path)
		filtered := parts[:0]
		for _, p := range parts {
			if workspace.UnderPath(p.FilePath(), base) {
				filtered = append(filtered, p)
			}
		}
		parts = filtered
	}

	db, err := openIndex(ctx, parts)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	pattern := "%" + escapeLike(query) + "%"

	var total int
	row := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parts WHERE title LIKE ? ESCAPE '\' OR output LIKE ? ESCAPE '\'`,
		pattern, pattern)
	if err := row.Scan(&total); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("search count failed: %w", err))
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, file_path, title, output, created
		 FROM parts
		 WHERE title LIKE ? ESCAPE '\' OR output LIKE ? ESCAPE '\'
		 ORDER BY file_path_norm, created, id
		 LIMIT ? OFFSET ?`,
		pattern, pattern, limit, offset)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("search query failed: %w", err))
	}
	defer rows.Close()

	items := make([]ResultItem, 0, limit)
	for rows.Next() {
		var item ResultItem
		var output string
		if err := rows.Scan(&item.ID, &item.FilePath, &item.Title, &output, &item.Created); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("search scan failed: %w", err))
		}
		item.Snippet = snippetAround(output, item.Title, query)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("search rows failed: %w", err))
	}

	return &Output{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "path",
	}, nil
}
