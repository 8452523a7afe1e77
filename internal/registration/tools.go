package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/forcemcp/forcemcp/internal/roots"
)

// registerUtilities binds the built-in tools. These exist regardless of how
// command discovery went, so a client can always manage roots and the cache.
func (r *Registrar) registerUtilities(srv ToolServer) {
	srv.AddTool(mcp.NewTool(ToolSetProjectRoot,
		mcp.WithDescription("Register or update a Salesforce project directory so project-bound sf commands can run inside it."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a directory containing "+roots.MarkerFile+"."),
		),
		mcp.WithString("name",
			mcp.Description("Short name for this root. Defaults to the directory name."),
		),
		mcp.WithString("description",
			mcp.Description("What this project is, for your own reference."),
		),
		mcp.WithBoolean("isDefault",
			mcp.Description("Make this the default root for commands that need a project."),
		),
	), r.handleSetProjectRoot)

	srv.AddTool(mcp.NewTool(ToolListProjectRoots,
		mcp.WithDescription("List the registered Salesforce project roots and which one is the default."),
	), r.handleListProjectRoots)

	srv.AddTool(mcp.NewTool(ToolRefreshCommands,
		mcp.WithDescription("Re-discover sf commands and rewrite the command cache. New commands appear as tools after a server restart."),
	), r.handleRefreshCommands)

	srv.AddTool(mcp.NewTool(ToolCacheClear,
		mcp.WithDescription("Remove the cached sf command listing so the next start discovers from scratch."),
	), r.handleCacheClear)

	srv.AddTool(mcp.NewTool(ToolResolveCommand,
		mcp.WithDescription("Show how a raw sf command line would run: working directory, project requirement, and org sentinel substitution. Does not execute it."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The sf command line without the leading 'sf', e.g. 'org open --target-org default'."),
		),
		mcp.WithString(rootArgument,
			mcp.Description("Name of a registered project root to resolve against."),
		),
	), r.handleResolveCommand)
}

func (r *Registrar) handleSetProjectRoot(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()

	var opts []roots.Option
	if v, ok := args["name"].(string); ok && strings.TrimSpace(v) != "" {
		opts = append(opts, roots.WithName(v))
	}
	if v, ok := args["description"].(string); ok {
		opts = append(opts, roots.WithDescription(v))
	}
	if v, ok := args["isDefault"].(bool); ok {
		opts = append(opts, roots.WithDefault(v))
	}

	root, err := r.roots.SetRoot(path, opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := fmt.Sprintf("Project root %q registered at %s.", root.Name, root.Path)
	if root.IsDefault {
		msg = fmt.Sprintf("Project root %q registered at %s and set as the default.", root.Name, root.Path)
	}

	return mcp.NewToolResultText(msg), nil
}

func (r *Registrar) handleListProjectRoots(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := r.roots.ListRoots()
	if len(list) == 0 {
		return mcp.NewToolResultText("No project roots configured. Use " + ToolSetProjectRoot + " to add one."), nil
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not render project roots: %s", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (r *Registrar) handleRefreshCommands(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := r.RefreshCommands(ctx)
	if err != nil {
		if n > 0 {
			// Discovery worked; only persisting failed.
			return mcp.NewToolResultText(fmt.Sprintf(
				"Discovered %d commands, but updating the cache failed: %s", n, err,
			)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("cannot refresh: %s", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Discovered %d commands and refreshed the cache. Restart the server to expose newly added tools.", n,
	)), nil
}

func (r *Registrar) handleCacheClear(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	existed, err := r.store.Clear()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !existed {
		return mcp.NewToolResultText("No command cache existed."), nil
	}

	return mcp.NewToolResultText("Command cache cleared."), nil
}

func (r *Registrar) handleResolveCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolution, err := r.engine.Resolve(ctx, line, req.GetString(rootArgument, ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(resolution, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not render resolution: %s", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}
