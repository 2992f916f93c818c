package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tack/internal/config"
	"github.com/hpungsan/tack/internal/engine"
)

// testSetup creates an engine over a temporary root for testing.
func testSetup(t *testing.T) (*Handlers, string) {
	t.Helper()
	root := t.TempDir()
	e := engine.New([]string{root})
	return NewHandlers(e, config.DefaultConfig()), root
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// writeSource writes a file under root and returns its absolute path.
func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// resultJSON unmarshals a success result's text content.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractErrorMessage(result))
	}
	var out map[string]any
	text := result.Content[0].(mcp.TextContent).Text
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	return out
}

// extractErrorMessage pulls the error message out of an error result.
func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

// assertErrorCode checks that an error result carries the expected code.
func assertErrorCode(t *testing.T, result *mcp.CallToolResult, code string) {
	t.Helper()
	if !strings.Contains(extractErrorMessage(result), code) {
		t.Errorf("error result %q does not contain code %q", extractErrorMessage(result), code)
	}
}

func TestHandleCapture(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()
	path := writeSource(t, root, "a.go", "package a\n")

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		captured  bool
	}{
		{
			name:     "capture file under root",
			args:     map[string]any{"file_path": path},
			captured: true,
		},
		{
			name:     "capture outside root is a no-op",
			args:     map[string]any{"file_path": filepath.Join(t.TempDir(), "other.go")},
			captured: false,
		},
		{
			name:      "missing file_path",
			args:      map[string]any{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCapture(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if tt.wantError {
				if !result.IsError {
					t.Error("expected error result, got success")
				}
				assertErrorCode(t, result, "INVALID_REQUEST")
				return
			}
			out := resultJSON(t, result)
			if out["captured"] != tt.captured {
				t.Errorf("captured = %v, want %v", out["captured"], tt.captured)
			}
		})
	}
}

func TestHandleSnip(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()
	path := writeSource(t, root, "a.go", "line one\nline two\nline three\n")

	result, err := h.HandleSnip(ctx, makeRequest(map[string]any{
		"file_path":  path,
		"start_line": 0,
		"end_line":   1,
		"end_col":    4,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	out := resultJSON(t, result)
	if out["captured"] != true {
		t.Fatal("snip did not capture")
	}

	// Collapsed selection is a silent no-op, not an error.
	result, err = h.HandleSnip(ctx, makeRequest(map[string]any{
		"file_path":  path,
		"start_line": 1,
		"end_line":   1,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	out = resultJSON(t, result)
	if out["captured"] != false {
		t.Error("collapsed selection should not capture")
	}
}

func TestHandleBanLifecycle(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()
	path := writeSource(t, root, "a.go", "package a\n")

	capOut := resultJSON(t, mustResult(t)(h.HandleCapture(ctx, makeRequest(map[string]any{"file_path": path}))))
	partObj := capOut["part"].(map[string]any)
	id := partObj["id"].(string)

	banOut := resultJSON(t, mustResult(t)(h.HandleBan(ctx, makeRequest(map[string]any{"id": id}))))
	if banOut["banned"] != true {
		t.Fatal("ban did not report success")
	}

	// Second ban of the same id reports false.
	banOut = resultJSON(t, mustResult(t)(h.HandleBan(ctx, makeRequest(map[string]any{"id": id}))))
	if banOut["banned"] != false {
		t.Error("repeat ban should report false")
	}

	listOut := resultJSON(t, mustResult(t)(h.HandleList(ctx, makeRequest(nil))))
	if listOut["count"].(float64) != 0 {
		t.Errorf("count = %v, want 0 after ban", listOut["count"])
	}
}

func TestHandleBanPathAndBanAll(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()
	a := writeSource(t, root, "sub/a.go", "package sub\n")
	b := writeSource(t, root, "b.go", "package main\n")
	resultJSON(t, mustResult(t)(h.HandleCapture(ctx, makeRequest(map[string]any{"file_path": a}))))
	resultJSON(t, mustResult(t)(h.HandleCapture(ctx, makeRequest(map[string]any{"file_path": b}))))

	out := resultJSON(t, mustResult(t)(h.HandleBanPath(ctx, makeRequest(map[string]any{
		"path": filepath.Join(root, "sub"),
	}))))
	if out["banned"].(float64) != 1 {
		t.Errorf("banned = %v, want 1", out["banned"])
	}

	out = resultJSON(t, mustResult(t)(h.HandleBanAll(ctx, makeRequest(nil))))
	if out["banned"].(float64) != 1 {
		t.Errorf("ban_all banned = %v, want 1", out["banned"])
	}
}

func TestHandleTreeAndParts(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()
	a := writeSource(t, root, "pkg/a.go", "package pkg\n")
	resultJSON(t, mustResult(t)(h.HandleCapture(ctx, makeRequest(map[string]any{"file_path": a}))))

	tree := resultJSON(t, mustResult(t)(h.HandleTree(ctx, makeRequest(map[string]any{"path": root}))))
	dirs := tree["dirs"].([]any)
	if len(dirs) != 1 || dirs[0] != "pkg" {
		t.Errorf("dirs = %v, want [pkg]", dirs)
	}

	parts := resultJSON(t, mustResult(t)(h.HandleParts(ctx, makeRequest(map[string]any{"path": a}))))
	if parts["count"].(float64) != 1 {
		t.Errorf("parts count = %v, want 1", parts["count"])
	}

	result, _ := h.HandleParts(ctx, makeRequest(map[string]any{}))
	if !result.IsError {
		t.Error("missing path should be an error")
	}
}

func TestHandleRoots(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()

	out := resultJSON(t, mustResult(t)(h.HandleRoots(ctx, makeRequest(nil))))
	if out["count"].(float64) != 0 {
		t.Errorf("count = %v, want 0 before any capture", out["count"])
	}

	a := writeSource(t, root, "a.go", "package a\n")
	resultJSON(t, mustResult(t)(h.HandleCapture(ctx, makeRequest(map[string]any{"file_path": a}))))

	out = resultJSON(t, mustResult(t)(h.HandleRoots(ctx, makeRequest(nil))))
	if out["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", out["count"])
	}
}

func TestHandleSearchTool(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()
	a := writeSource(t, root, "a.go", "package a\n\nfunc Frobnicate() {}\n")
	resultJSON(t, mustResult(t)(h.HandleCapture(ctx, makeRequest(map[string]any{"file_path": a}))))

	out := resultJSON(t, mustResult(t)(h.HandleSearch(ctx, makeRequest(map[string]any{"query": "frobnicate"}))))
	items := out["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}

	result, _ := h.HandleSearch(ctx, makeRequest(map[string]any{"query": ""}))
	if !result.IsError {
		t.Error("empty query should be an error")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleReportTool(t *testing.T) {
	h, root := testSetup(t)
	ctx := context.Background()
	a := writeSource(t, root, "a.go", "package a\n")
	resultJSON(t, mustResult(t)(h.HandleCapture(ctx, makeRequest(map[string]any{"file_path": a}))))

	out := resultJSON(t, mustResult(t)(h.HandleReport(ctx, makeRequest(nil))))
	if !strings.Contains(out["markdown"].(string), "# Captured excerpts") {
		t.Error("report markdown missing heading")
	}

	result, _ := h.HandleReport(ctx, makeRequest(map[string]any{"export_path": "../escape.md"}))
	if !result.IsError {
		t.Error("traversal export path should be rejected")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestDisabledToolsExcludedFromRegistry(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"part_capture", "nope"})
	if len(unknown) != 1 || unknown[0] != "nope" {
		t.Errorf("unknown = %v, want [nope]", unknown)
	}

	unknown = ValidateDisabledTypes([]string{"part", "note"})
	if len(unknown) != 1 || unknown[0] != "note" {
		t.Errorf("unknown types = %v, want [note]", unknown)
	}

	tools := ExpandTypesToTools([]string{"part"})
	if len(tools) != len(toolRegistry) {
		t.Errorf("expanded %d tools, want %d", len(tools), len(toolRegistry))
	}
}

func TestGetTypeForTool(t *testing.T) {
	if got := GetTypeForTool("part_capture"); got != "part" {
		t.Errorf("got %q, want part", got)
	}
	if got := GetTypeForTool("plain"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

// mustResult fails the test when the handler itself errored.
func mustResult(t *testing.T) func(*mcp.CallToolResult, error) *mcp.CallToolResult {
	t.Helper()
	return func(result *mcp.CallToolResult, err error) *mcp.CallToolResult {
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		return result
	}
}
