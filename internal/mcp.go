package internal

import (
	"context"

	"github.com/starford/localref/internal/mcpserver"
)

// RunMCP serves the MCP tools over stdin/stdout until stdin closes.
// Logs must not go to stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	comps, err := Open(app.config, app.logger, app.notifier, nil)
	if err != nil {
		return err
	}
	defer comps.Close()

	version := app.version
	if version == "" {
		version = "dev"
	}
	srv := mcpserver.New(mcpserver.Deps{
		Service:    comps.Service,
		Store:      comps.Store,
		History:    comps.History,
		DefaultDir: comps.DefaultDir,
	}, version)
	app.logger.Info("mcp: serving on stdio")
	return srv.ServeStdio()
}
