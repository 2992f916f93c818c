package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tack/internal/config"
	"github.com/hpungsan/tack/internal/engine"
	"github.com/hpungsan/tack/internal/errors"
	"github.com/hpungsan/tack/internal/part"
	"github.com/hpungsan/tack/internal/report"
	"github.com/hpungsan/tack/internal/search"
	"github.com/hpungsan/tack/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *engine.Engine, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tack",
		Usage:   "File excerpt capture store",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(e),
			snipCmd(e),
			banCmd(e),
			banPathCmd(e),
			banAllCmd(e),
			lsCmd(e),
			treeCmd(e),
			partsCmd(e),
			rootsCmd(e),
			searchCmd(e),
			reportCmd(e),
			statsCmd(e),
			webCmd(e, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     "Capture an entire file as an excerpt",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("file path is required"))
			}

			p := e.CaptureFile(c.Args().First())
			if p == nil {
				return outputJSON(map[string]any{"captured": false})
			}
			return outputJSON(map[string]any{"captured": true, "part": p})
		},
	}
}

// snipCmd creates the snip command.
func snipCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "snip",
		Usage:     "Capture a selection of a file (0-based lines and columns)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "start-line", Required: true, Usage: "First line of the selection"},
			&cli.IntFlag{Name: "start-col", Value: 0, Usage: "Column on the first line"},
			&cli.IntFlag{Name: "end-line", Required: true, Usage: "Last line of the selection"},
			&cli.IntFlag{Name: "end-col", Value: 0, Usage: "Column on the last line (0 excludes the end line)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("file path is required"))
			}

			sel := part.Selection{
				Start: part.Position{Line: c.Int("start-line"), Col: c.Int("start-col")},
				End:   part.Position{Line: c.Int("end-line"), Col: c.Int("end-col")},
			}
			p := e.CaptureSelection(c.Args().First(), sel)
			if p == nil {
				return outputJSON(map[string]any{"captured": false})
			}
			return outputJSON(map[string]any{"captured": true, "part": p})
		},
	}
}

// banCmd creates the ban command.
func banCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "ban",
		Usage:     "Tombstone a single excerpt by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("part id is required"))
			}

			id := c.Args().First()
			return outputJSON(map[string]any{"banned": e.Ban(id), "id": id})
		},
	}
}

// banPathCmd creates the ban-path command.
func banPathCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "ban-path",
		Usage:     "Tombstone every excerpt for files at or under a path",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}

			path := c.Args().First()
			return outputJSON(map[string]any{"banned": e.BanUnderPath(path), "path": path})
		},
	}
}

// banAllCmd creates the ban-all command.
func banAllCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "ban-all",
		Usage: "Tombstone every active excerpt in every root",
		Action: func(c *cli.Context) error {
			return outputJSON(map[string]any{"banned": e.BanAll()})
		},
	}
}

// lsCmd creates the ls command.
func lsCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List every file with at least one active excerpt",
		Action: func(c *cli.Context) error {
			paths := e.FilePaths()
			return outputJSON(map[string]any{"files": paths, "count": len(paths)})
		},
	}
}

// treeCmd creates the tree command.
func treeCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "List the entries directly below a path, derived from captured files",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			return outputJSON(e.ChildrenOf(c.Args().First()))
		},
	}
}

// partsCmd creates the parts command.
func partsCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "parts",
		Usage:     "Show the active excerpts captured for one file",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("file path is required"))
			}

			parts := e.PartsFor(c.Args().First())
			return outputJSON(map[string]any{"parts": parts, "count": len(parts)})
		},
	}
}

// rootsCmd creates the roots command.
func rootsCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "roots",
		Usage: "List the roots that contain at least one active excerpt",
		Action: func(c *cli.Context) error {
			roots := e.RootsWithContent()
			paths := make([]string, len(roots))
			for i, r := range roots {
				paths[i] = r.Path
			}
			return outputJSON(map[string]any{"roots": paths, "count": len(paths)})
		},
	}
}

// searchCmd creates the search command.
func searchCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Case-insensitive substring search over excerpts",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Only search under this path"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: search.DefaultLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("query is required"))
			}

			input := search.Input{
				Query:  c.Args().First(),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			}
			if path := c.String("path"); path != "" {
				input.Path = &path
			}

			output, err := search.Run(c.Context, e, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// reportCmd creates the report command.
func reportCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Build a markdown report of all active excerpts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Only include excerpts under this path"},
			&cli.StringFlag{Name: "export", Usage: "Write the report to a .md file in the exports directory"},
			&cli.BoolFlag{Name: "raw", Usage: "Print the markdown itself instead of a JSON summary"},
		},
		Action: func(c *cli.Context) error {
			input := report.Input{}
			if path := c.String("path"); path != "" {
				input.Path = &path
			}

			output, err := report.Build(e, input)
			if err != nil {
				return outputError(err)
			}

			if exportPath := c.String("export"); exportPath != "" {
				if err := report.Export(exportPath, output.Markdown); err != nil {
					return outputError(err)
				}
				return outputJSON(map[string]any{
					"exported": exportPath,
					"chars":    output.Chars,
					"files":    output.Files,
					"parts":    output.Parts,
				})
			}

			if c.Bool("raw") {
				fmt.Fprint(os.Stdout, output.Markdown)
				return nil
			}
			return outputJSON(output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(e *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show counters for the latest reconciliation pass",
		Action: func(c *cli.Context) error {
			e.Reconcile()
			return outputJSON(e.Stats())
		},
	}
}

// webCmd creates the web command.
func webCmd(e *engine.Engine, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the web viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Address to listen on (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv := web.NewServer(e, cfg, Version, bind, port)
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TackError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
