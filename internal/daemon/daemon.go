// Package daemon runs the serving half of the program: the MCP stdio loop
// and, when configured, the diagnostics HTTP API beside it.
package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"log"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// Daemon serves a registered MCP server over stdio, with an optional HTTP
// API alongside, until the context is canceled or the client closes stdin.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger hclog.Logger
	mcp    *server.MCPServer
	api    *APIServer
	stdin  io.Reader
	stdout io.Writer
}

// NewDaemon creates a daemon from validated dependencies and options.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for daemon: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	return &Daemon{
		logger: deps.Logger.Named("daemon"),
		mcp:    deps.MCP,
		api:    deps.API,
		stdin:  opts.Stdin,
		stdout: opts.Stdout,
	}, nil
}

// StartAndManage serves until the context is canceled or the stdio session
// ends. Closing stdin shuts the API server down too; a clean stop by either
// path returns nil.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// A closed stdin ends the whole session, not just the MCP loop.
		defer cancel()

		stdio := server.NewStdioServer(d.mcp)
		stdio.SetErrorLogger(log.New(
			d.logger.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true}), "", 0,
		))

		d.logger.Info("Serving MCP over stdio")
		if err := stdio.Listen(ctx, d.stdin, d.stdout); err != nil && !stdErrors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server error: %w", err)
		}
		d.logger.Info("Stdio session ended")

		return nil
	})

	if d.api != nil {
		g.Go(func() error {
			if err := d.api.Start(ctx); err != nil && !stdErrors.Is(err, context.Canceled) {
				return fmt.Errorf("API server error: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
