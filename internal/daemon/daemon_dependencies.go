package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/server"
)

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Logger for daemon and subcomponent operations.
	Logger hclog.Logger

	// MCP is the fully registered MCP server to expose over stdio.
	MCP *server.MCPServer

	// API optionally serves the diagnostics HTTP API alongside the stdio loop.
	// Nil disables the HTTP surface entirely.
	API *APIServer
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(logger hclog.Logger, mcpServer *server.MCPServer, apiServer *APIServer) (Dependencies, error) {
	deps := Dependencies{
		Logger: logger,
		MCP:    mcpServer,
		API:    apiServer,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
// The API server is optional and may be nil.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	if d.MCP == nil {
		return fmt.Errorf("MCP server cannot be nil")
	}
	return nil
}
