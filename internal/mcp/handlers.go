package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tack/internal/config"
	"github.com/hpungsan/tack/internal/engine"
	"github.com/hpungsan/tack/internal/errors"
	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/report"
	"github.com/hpungsan/tack/internal/search"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	engine *engine.Engine
	cfg    *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(e *engine.Engine, cfg *config.Config) *Handlers {
	return &Handlers{engine: e, cfg: cfg}
}

// decode maps the request's argument object onto a typed request struct by
// round-tripping it through JSON, so the struct tags above define the
// accepted argument names.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// Request types for each tool

// CaptureRequest represents the arguments for capture.
type CaptureRequest struct {
	FilePath string `json:"file_path"`
}

// SnipRequest represents the arguments for snip.
type SnipRequest struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col,omitempty"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col,omitempty"`
}

// BanRequest represents the arguments for ban.
type BanRequest struct {
	ID string `json:"id"`
}

// BanPathRequest represents the arguments for ban_path.
type BanPathRequest struct {
	Path string `json:"path"`
}

// TreeRequest represents the arguments for tree.
type TreeRequest struct {
	Path string `json:"path"`
}

// PartsRequest represents the arguments for parts.
type PartsRequest struct {
	Path string `json:"path"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Query  string  `json:"query"`
	Path   *string `json:"path,omitempty"`
	Limit  int     `json:"limit,omitempty"`
	Offset int     `json:"offset,omitempty"`
}

// ReportRequest represents the arguments for report.
type ReportRequest struct {
	Path       *string `json:"path,omitempty"`
	ExportPath string  `json:"export_path,omitempty"`
}

// Handler implementations

// HandleCapture handles the capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.FilePath == "" {
		return errorResult(errors.NewInvalidRequest("file_path is required")), nil
	}

	p := h.engine.CaptureFile(input.FilePath)
	if p == nil {
		return successResult(map[string]any{"captured": false})
	}
	return successResult(map[string]any{"captured": true, "part": p})
}

// HandleSnip handles the snip tool call.
func (h *Handlers) HandleSnip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnipRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.FilePath == "" {
		return errorResult(errors.NewInvalidRequest("file_path is required")), nil
	}

	sel := part.Selection{
		Start: part.Position{Line: input.StartLine, Col: input.StartCol},
		End:   part.Position{Line: input.EndLine, Col: input.EndCol},
	}
	p := h.engine.CaptureSelection(input.FilePath, sel)
	if p == nil {
		return successResult(map[string]any{"captured": false})
	}
	return successResult(map[string]any{"captured": true, "part": p})
}

// HandleBan handles the ban tool call.
func (h *Handlers) HandleBan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BanRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	banned := h.engine.Ban(input.ID)
	return successResult(map[string]any{"banned": banned, "id": input.ID})
}

// HandleBanPath handles the ban_path tool call.
func (h *Handlers) HandleBanPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BanPathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	count := h.engine.BanUnderPath(input.Path)
	return successResult(map[string]any{"banned": count, "path": input.Path})
}

// HandleBanAll handles the ban_all tool call.
func (h *Handlers) HandleBanAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := h.engine.BanAll()
	return successResult(map[string]any{"banned": count})
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := h.engine.FilePaths()
	return successResult(map[string]any{"files": paths, "count": len(paths)})
}

// HandleTree handles the tree tool call.
func (h *Handlers) HandleTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TreeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	return successResult(h.engine.ChildrenOf(input.Path))
}

// HandleParts handles the parts tool call.
func (h *Handlers) HandleParts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PartsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	parts := h.engine.PartsFor(input.Path)
	return successResult(map[string]any{"parts": parts, "count": len(parts)})
}

// HandleRoots handles the roots tool call.
func (h *Handlers) HandleRoots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roots := h.engine.RootsWithContent()
	paths := make([]string, len(roots))
	for i, r := range roots {
		paths[i] = r.Path
	}
	return successResult(map[string]any{"roots": paths, "count": len(paths)})
}

// HandleSearch handles the search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := search.Run(ctx, h.engine, search.Input{
		Query:  input.Query,
		Path:   input.Path,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleReport handles the report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := report.Build(h.engine, report.Input{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	if input.ExportPath != "" {
		if err := report.Export(input.ExportPath, result.Markdown); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{
			"exported": input.ExportPath,
			"chars":    result.Chars,
			"files":    result.Files,
			"parts":    result.Parts,
		})
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.TackError); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
