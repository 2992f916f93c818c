package web

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hpungsan/tack/internal/config"
	"github.com/hpungsan/tack/internal/engine"
	"github.com/hpungsan/tack/internal/errors"
	"github.com/hpungsan/tack/internal/report"
	"github.com/hpungsan/tack/internal/search"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	engine   *engine.Engine
	cfg      *config.Config
	renderer *Renderer
}

// HandleBrowse handles GET /browse: list roots, or the children of ?path.
func (h *Handlers) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	data := BrowsePageData{
		PageData: PageData{
			Title:   "Browse",
			Version: h.renderer.version,
			Nav:     "browse",
		},
		Path:    path,
		AtRoots: path == "",
	}

	if path == "" {
		for _, root := range h.engine.RootsWithContent() {
			data.Roots = append(data.Roots, root.Path)
		}
		data.Stats = h.engine.Stats()
		h.renderer.renderPage(w, r, "browse", data)
		return
	}

	children := h.engine.ChildrenOf(path)
	data.Dirs = children.Dirs
	data.Files = children.Files
	data.Stats = h.engine.Stats()

	// Link back to the parent until we step above every root.
	parent := filepath.Dir(path)
	if parent != path {
		for _, root := range h.engine.Roots() {
			if root.Contains(parent) {
				data.ParentOK = true
				data.Parent = parent
				break
			}
		}
	}

	h.renderer.renderPage(w, r, "browse", data)
}

// HandleFile handles GET /files: the excerpts captured for one file.
func (h *Handlers) HandleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("path is required"))
		return
	}

	parts := h.engine.PartsFor(path)
	if len(parts) == 0 {
		h.renderer.renderError(w, r, errors.NewNotFound(path))
		return
	}

	h.renderer.renderPage(w, r, "file", FilePageData{
		PageData: PageData{
			Title:   filepath.Base(path),
			Version: h.renderer.version,
			Nav:     "browse",
		},
		Path:  path,
		Parts: parts,
	})
}

// HandleSearch handles GET /search: substring search across excerpts.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		HasQuery: query != "",
	}

	if query == "" {
		h.renderer.renderPage(w, r, "search", data)
		return
	}

	input := search.Input{
		Query:  query,
		Path:   ptrString(r.URL.Query().Get("path")),
		Limit:  parseIntParam(r, "limit", search.DefaultLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := search.Run(r.Context(), h.engine, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data.Items = result.Items
	data.Pagination = result.Pagination
	h.renderer.renderPage(w, r, "search", data)
}

// HandleReport handles GET /report: the rendered markdown report.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	input := report.Input{
		Path: ptrString(r.URL.Query().Get("path")),
	}

	result, err := report.Build(h.engine, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "report", ReportPageData{
		PageData: PageData{
			Title:   "Report",
			Version: h.renderer.version,
			Nav:     "report",
		},
		RenderedHTML: renderMarkdown(result.Markdown),
		Files:        result.Files,
		Parts:        result.Parts,
	})
}

// HandleBan handles POST /parts/{id}/ban: tombstone a single part.
func (h *Handlers) HandleBan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("part ID is required"))
		return
	}

	banned := h.engine.Ban(id)

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"banned": banned,
			"id":     id,
		})
		return
	}

	// Back to the page the form came from, or the browse listing.
	target := r.FormValue("back")
	if target == "" || !strings.HasPrefix(target, "/") {
		target = "/browse"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleBanPath handles POST /ban-path: tombstone every part under a path.
func (h *Handlers) HandleBanPath(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	path := r.FormValue("path")
	if path == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("path is required"))
		return
	}

	banned := h.engine.BanUnderPath(path)

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"banned": banned,
			"path":   path,
		})
		return
	}

	http.Redirect(w, r, "/browse", http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
