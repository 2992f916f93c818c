package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Coordinates in snip are 0-based; the end line is
// inclusive except when the selection ends at column 0 of a later line, in
// which case the previous line is the last one captured.

var captureToolDef = mcp.NewTool("part_capture",
	mcp.WithDescription("Capture an entire file as an excerpt. The file must be a regular file under a configured root; anything else is a no-op."),
	mcp.WithString("file_path", mcp.Required(),
		mcp.Description("Path of the file to capture")),
)

var snipToolDef = mcp.NewTool("part_snip",
	mcp.WithDescription("Capture a selection of a file as an excerpt. A collapsed selection is a no-op."),
	mcp.WithString("file_path", mcp.Required(),
		mcp.Description("Path of the file to capture from")),
	mcp.WithNumber("start_line", mcp.Required(),
		mcp.Description("First line of the selection (0-based)")),
	mcp.WithNumber("start_col",
		mcp.Description("Column on the first line (0-based, default 0)")),
	mcp.WithNumber("end_line", mcp.Required(),
		mcp.Description("Last line of the selection (0-based)")),
	mcp.WithNumber("end_col",
		mcp.Description("Column on the last line (0-based, default 0); column 0 excludes the end line itself")),
)

var banToolDef = mcp.NewTool("part_ban",
	mcp.WithDescription("Tombstone a single excerpt by id. Banned excerpts are excluded from every query but never physically removed by this tool."),
	mcp.WithString("id", mcp.Required(),
		mcp.Description("Part id to ban")),
)

var banPathToolDef = mcp.NewTool("part_ban_path",
	mcp.WithDescription("Tombstone every active excerpt for files at or under a path."),
	mcp.WithString("path", mcp.Required(),
		mcp.Description("File or directory path")),
)

var banAllToolDef = mcp.NewTool("part_ban_all",
	mcp.WithDescription("Tombstone every active excerpt in every configured root."),
)

var listToolDef = mcp.NewTool("part_list",
	mcp.WithDescription("List every file that has at least one active excerpt."),
)

var treeToolDef = mcp.NewTool("part_tree",
	mcp.WithDescription("List the directories and files directly below a path, derived from captured files only."),
	mcp.WithString("path", mcp.Required(),
		mcp.Description("Base directory path")),
)

var partsToolDef = mcp.NewTool("part_parts",
	mcp.WithDescription("Fetch the active excerpts captured for one file, in creation order."),
	mcp.WithString("path", mcp.Required(),
		mcp.Description("File path")),
)

var rootsToolDef = mcp.NewTool("part_roots",
	mcp.WithDescription("List the configured roots that contain at least one active excerpt."),
)

var searchToolDef = mcp.NewTool("part_search",
	mcp.WithDescription("Case-insensitive substring search over excerpt titles and text."),
	mcp.WithString("query", mcp.Required(),
		mcp.Description("Text to search for")),
	mcp.WithString("path",
		mcp.Description("Only search excerpts under this path")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum results to return (default 20, max 100)")),
	mcp.WithNumber("offset",
		mcp.Description("Results to skip for pagination")),
)

var reportToolDef = mcp.NewTool("part_report",
	mcp.WithDescription("Build a markdown report of all active excerpts, optionally exporting it to a .md file in the exports directory."),
	mcp.WithString("path",
		mcp.Description("Only include excerpts under this path")),
	mcp.WithString("export_path",
		mcp.Description("Write the report to this file (must be directly in the exports directory)")),
)
