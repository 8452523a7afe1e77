// Package registration assembles the MCP surface: it resolves the active
// command set, synthesizes argument schemas, plans tool names, and binds
// handlers. Nothing in here aborts the run; commands that cannot be
// registered are skipped and reported so everything else still comes up.
package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/discover"
	"github.com/forcemcp/forcemcp/internal/executor"
	"github.com/forcemcp/forcemcp/internal/helptext"
	"github.com/forcemcp/forcemcp/internal/naming"
	"github.com/forcemcp/forcemcp/internal/roots"
	"github.com/forcemcp/forcemcp/internal/schema"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// Built-in utility tool names. They are registered before any discovered
// command and form the reserved set no derived name may take.
const (
	ToolSetProjectRoot   = "sf_set_project_root"
	ToolListProjectRoots = "sf_list_project_roots"
	ToolRefreshCommands  = "sf_refresh_commands"
	ToolCacheClear       = "sf_cache_clear"
	ToolResolveCommand   = "sf_resolve_command"
)

// rootArgument is the optional argument on every generated tool that
// selects a named project root for the call.
const rootArgument = "projectRoot"

// Labels for Summary.Source.
const (
	SourceCache     = "cache"
	SourceDiscovery = "discovery"
	SourceHelpProbe = "help-probe"
	SourceNone      = "none"
)

// ReservedToolNames returns the utility names excluded from derivation.
func ReservedToolNames() []string {
	return []string{
		ToolSetProjectRoot,
		ToolListProjectRoots,
		ToolRefreshCommands,
		ToolCacheClear,
		ToolResolveCommand,
	}
}

// ToolServer is the part of an MCP server that registration binds against.
// *server.MCPServer satisfies it.
type ToolServer interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
	AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc)
}

// Summary reports what one registration run produced.
type Summary struct {
	CLIVersion string
	Source     string
	Commands   int
	Tools      int
	Aliases    int
	Utilities  int
	Plan       naming.Plan
}

// Dependencies contains the required external dependencies for a Registrar.
// NewRegistrar should be used to create instances of Registrar.
type Dependencies struct {
	// Logger for registration operations.
	Logger hclog.Logger

	// CLI probes the sf version and backs the help-text fallback.
	CLI sfcli.Runner

	// Store is the durable command cache.
	Store *cache.Store

	// Source supplies commands via structured discovery.
	Source discover.Source

	// Engine executes bound commands.
	Engine *executor.Engine

	// Roots manages project root state for the utility tools.
	Roots *roots.Manager
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	if d.CLI == nil || reflect.ValueOf(d.CLI).IsNil() {
		return fmt.Errorf("CLI runner cannot be nil")
	}
	if d.Store == nil {
		return fmt.Errorf("cache store cannot be nil")
	}
	if d.Source == nil || reflect.ValueOf(d.Source).IsNil() {
		return fmt.Errorf("command source cannot be nil")
	}
	if d.Engine == nil {
		return fmt.Errorf("executor engine cannot be nil")
	}
	if d.Roots == nil {
		return fmt.Errorf("root manager cannot be nil")
	}
	return nil
}

// Registrar performs one registration run and retains its outcome for
// diagnostics.
type Registrar struct {
	logger hclog.Logger
	cli    sfcli.Runner
	store  *cache.Store
	source discover.Source
	engine *executor.Engine
	roots  *roots.Manager

	mu       sync.RWMutex
	summary  Summary
	commands []command.Descriptor
}

// NewRegistrar creates a registrar from validated dependencies.
func NewRegistrar(deps Dependencies) (*Registrar, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for registrar: %w", err)
	}

	return &Registrar{
		logger: deps.Logger.Named("registration"),
		cli:    deps.CLI,
		store:  deps.Store,
		source: deps.Source,
		engine: deps.Engine,
		roots:  deps.Roots,
	}, nil
}

// Register binds the utility tools, every resolvable command, and the
// per-command reference resources onto srv. Failures shrink the surface but
// never abort it.
func (r *Registrar) Register(ctx context.Context, srv ToolServer) Summary {
	r.registerUtilities(srv)

	commands, version, source := r.resolveCommands(ctx)
	plan := naming.NewPlan(commands, ReservedToolNames())

	bound := 0
	aliases := 0
	for _, b := range plan.Bindings {
		raw, err := schema.ForCommand(b.Command)
		if err != nil {
			r.logger.Error("Skipping command with unbuildable schema", "id", b.Command.ID, "error", err)
			continue
		}
		raw, err = withRootArgument(raw)
		if err != nil {
			r.logger.Error("Skipping command with unbuildable schema", "id", b.Command.ID, "error", err)
			continue
		}

		tool := mcp.NewToolWithRawSchema(b.ToolName, toolDescription(b.Command), raw)
		srv.AddTool(tool, r.commandHandler(b.Command, raw))

		bound++
		if b.IsAlias {
			aliases++
		}
	}

	for _, s := range plan.Skipped {
		if s.IsAlias {
			continue
		}
		r.logger.Warn("Command not registered", "command", s.CommandID, "reason", s.Reason)
	}

	r.registerResources(srv, commands)

	summary := Summary{
		CLIVersion: version,
		Source:     source,
		Commands:   len(commands),
		Tools:      bound,
		Aliases:    aliases,
		Utilities:  len(ReservedToolNames()),
		Plan:       plan,
	}

	r.mu.Lock()
	r.summary = summary
	r.commands = commands
	r.mu.Unlock()

	r.logger.Info("Registration complete",
		"source", source,
		"commands", len(commands),
		"tools", bound,
		"aliases", aliases,
		"skipped", len(plan.Skipped),
	)

	return summary
}

// Summary returns the outcome of the last registration run.
func (r *Registrar) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.summary
}

// Commands returns a snapshot of the command set the last run registered.
func (r *Registrar) Commands() []command.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]command.Descriptor, len(r.commands))
	copy(out, r.commands)

	return out
}

// RefreshCommands re-runs discovery and rewrites the cache artifact. It
// returns the number of commands discovered; a non-nil error alongside a
// positive count means discovery worked but persisting the result failed.
// Newly discovered commands become tools on the next registration run.
func (r *Registrar) RefreshCommands(ctx context.Context) (int, error) {
	version, err := r.cli.Version(ctx)
	if err != nil {
		return 0, fmt.Errorf("sf CLI version probe failed: %w", err)
	}

	commands, err := r.store.Refresh(ctx, version, r.source)

	return len(commands), err
}

// resolveCommands picks the active command set: a usable cache first,
// structured discovery second, help-text probing of stale cache entries as
// the last resort. An empty set with no source is a degraded but legal
// outcome; the utility tools still work.
func (r *Registrar) resolveCommands(ctx context.Context) ([]command.Descriptor, string, string) {
	version, err := r.cli.Version(ctx)
	if err != nil {
		r.logger.Warn("Could not determine sf CLI version", "error", err)
		version = ""
	}

	if version != "" {
		commands, err := r.store.Load(version)
		if err == nil {
			r.logger.Info("Using cached command set", "count", len(commands), "version", version)
			return commands, version, SourceCache
		}
		r.logger.Debug("Cache unusable", "reason", err)
	}

	commands, err := r.source.Commands(ctx)
	if err == nil && len(commands) > 0 {
		if version != "" {
			if err := r.store.Save(version, commands); err != nil {
				r.logger.Warn("Could not persist command cache", "error", err)
			}
		}
		return commands, version, SourceDiscovery
	}
	if err != nil {
		r.logger.Warn("Structured discovery failed, falling back to help-text probing", "error", err)
	}

	stale, err := r.store.LoadStale()
	if err != nil {
		r.logger.Warn("No usable command source", "reason", err)
		return nil, version, SourceNone
	}

	ids := make([]string, 0, len(stale))
	for _, d := range stale {
		ids = append(ids, d.ID)
	}

	prober, err := helptext.NewProber(r.logger, r.cli, sfcli.DefaultBinary, ids)
	if err != nil {
		r.logger.Warn("Could not build help-text prober", "error", err)
		return nil, version, SourceNone
	}

	probed, err := prober.Commands(ctx)
	if err != nil {
		r.logger.Warn("Help-text probing failed", "error", err)
		return nil, version, SourceNone
	}

	return probed, version, SourceHelpProbe
}

// commandHandler produces the tool handler for one command. The handler
// validates arguments, builds the command line, and relays the execution
// result. It never returns a Go error; failures become error results.
func (r *Registrar) commandHandler(d command.Descriptor, raw json.RawMessage) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		if err := schema.Validate(raw, args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rootName, _ := args[rootArgument].(string)
		line := BuildCommandLine(d, args)

		res := r.engine.Execute(ctx, line, rootName)
		if res.IsError {
			return mcp.NewToolResultError(res.Output), nil
		}

		return mcp.NewToolResultText(res.Output), nil
	}
}

// toolDescription renders the description shown to MCP clients.
func toolDescription(d command.Descriptor) string {
	desc := d.Description
	if desc == "" {
		desc = d.ID
	}

	return fmt.Sprintf("%s (runs: sf %s)", desc, d.FullCommand())
}

// withRootArgument adds the optional project root selector to a generated
// schema, unless the command already declares a flag by that name.
func withRootArgument(raw json.RawMessage) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	properties, ok := doc["properties"].(map[string]any)
	if !ok {
		properties = map[string]any{}
		doc["properties"] = properties
	}
	if _, exists := properties[rootArgument]; exists {
		return raw, nil
	}

	properties[rootArgument] = map[string]any{
		"type":        "string",
		"description": "Name of a registered project root to run this command in. Defaults to the default project root.",
	}

	return json.Marshal(doc)
}
