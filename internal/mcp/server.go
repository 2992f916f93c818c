// Package mcp exposes the engine to MCP clients over stdio.
package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/tack/internal/config"
	"github.com/hpungsan/tack/internal/engine"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"part"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"part_capture": {
		def:     captureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapture },
	},
	"part_snip": {
		def:     snipToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnip },
	},
	"part_ban": {
		def:     banToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBan },
	},
	"part_ban_path": {
		def:     banPathToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBanPath },
	},
	"part_ban_all": {
		def:     banAllToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBanAll },
	},
	"part_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"part_tree": {
		def:     treeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTree },
	},
	"part_parts": {
		def:     partsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleParts },
	},
	"part_roots": {
		def:     rootsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRoots },
	},
	"part_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"part_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "part_capture" → "part").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Tack tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(e *engine.Engine, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tack",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(e, cfg)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(e *engine.Engine, cfg *config.Config, version string) error {
	s := NewServer(e, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
