package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/forcemcp/forcemcp/internal/cache"
	internalcmd "github.com/forcemcp/forcemcp/internal/cmd"
	cmdopts "github.com/forcemcp/forcemcp/internal/cmd/options"
	"github.com/forcemcp/forcemcp/internal/config"
	"github.com/forcemcp/forcemcp/internal/daemon"
	"github.com/forcemcp/forcemcp/internal/discover"
	"github.com/forcemcp/forcemcp/internal/executor"
	"github.com/forcemcp/forcemcp/internal/flags"
	"github.com/forcemcp/forcemcp/internal/registration"
	"github.com/forcemcp/forcemcp/internal/roots"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// serverInstructions is handed to MCP clients at initialization time so the
// model knows how the tool set maps onto the Salesforce CLI.
const serverInstructions = `Every tool wraps one command of the local Salesforce CLI ('sf').
Tool names mirror command IDs with underscores, e.g. 'sf_org_list' runs 'sf org list'.
Results are the CLI's own JSON output. Tools accept an optional 'projectRoot'
argument naming a declared Salesforce DX project root to run the command in;
'sf_list_project_roots' shows the declared roots and 'sf_set_project_root'
declares one. 'sf_resolve_command' maps a raw CLI invocation to its tool.`

// ServeCmd represents the 'serve' command.
type ServeCmd struct {
	*internalcmd.BaseCmd
	Addr          string
	cfgLoader     config.Loader
	runnerBuilder cmdopts.RunnerBuilder
}

// NewServeCmd creates a newly configured (Cobra) command.
func NewServeCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ServeCmd{
		BaseCmd:       baseCmd,
		cfgLoader:     opts.ConfigLoader,
		runnerBuilder: opts.RunnerBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "serve [--addr]",
		Short: "Serves the discovered `sf` commands as MCP tools over stdio",
		Long: "Serves the discovered `sf` commands as MCP tools over stdio, " +
			"optionally exposing a diagnostics HTTP API alongside the MCP session",
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"",
		"Address to bind the diagnostics HTTP API (e.g. 127.0.0.1:8611), no API is served when unset",
	)

	return cobraCommand, nil
}

// run is configured (via NewServeCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *ServeCmd) run(_ *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(c.cfgLoader, flags.ConfigFile)
	if err != nil {
		return err
	}

	// Create the signal handling context for the whole serving session.
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	d, err := c.buildDaemon(ctx, logger, cfg)
	if err != nil {
		return err
	}

	return d.StartAndManage(ctx)
}

// buildDaemon wires every serving dependency together, registers the tool
// set and returns a daemon ready to start.
func (c *ServeCmd) buildDaemon(ctx context.Context, logger hclog.Logger, cfg *config.Config) (*daemon.Daemon, error) {
	cli, err := c.runnerBuilder(logger, cfg.SF.BinaryOrDefault(flags.SFBinaryOrDefault(sfcli.DefaultBinary)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Salesforce CLI client: %w", err)
	}

	store, err := newStore(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create command cache: %w", err)
	}

	rootManager := roots.NewManager(logger)
	registerConfiguredRoots(logger, rootManager, cfg.ListRoots())

	engine, err := executor.NewEngine(logger, cli, rootManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution engine: %w", err)
	}

	lister, err := discover.NewLister(logger, cli)
	if err != nil {
		return nil, fmt.Errorf("failed to create command lister: %w", err)
	}

	registrar, err := registration.NewRegistrar(registration.Dependencies{
		Logger: logger,
		CLI:    cli,
		Store:  store,
		Source: lister,
		Engine: engine,
		Roots:  rootManager,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registrar: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"forcemcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions(serverInstructions),
		server.WithRecovery(),
	)

	summary := registrar.Register(ctx, mcpServer)
	logger.Info("Command registration complete",
		"cli_version", summary.CLIVersion,
		"source", summary.Source,
		"commands", summary.Commands,
		"tools", summary.Tools,
		"aliases", summary.Aliases,
		"utilities", summary.Utilities,
	)

	apiServer, err := c.buildAPIServer(logger, cfg, registrar, store, rootManager)
	if err != nil {
		return nil, err
	}

	deps, err := daemon.NewDependencies(logger, mcpServer, apiServer)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble daemon dependencies: %w", err)
	}

	d, err := daemon.NewDaemon(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon: %w", err)
	}

	return d, nil
}

// buildAPIServer constructs the diagnostics HTTP API when an address was
// requested via flag or configuration, returning nil when it wasn't.
func (c *ServeCmd) buildAPIServer(
	logger hclog.Logger,
	cfg *config.Config,
	registrar *registration.Registrar,
	store *cache.Store,
	rootManager *roots.Manager,
) (*daemon.APIServer, error) {
	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		addr = cfg.API.AddrOrDefault("")
	}
	if addr == "" {
		return nil, nil
	}

	deps, err := daemon.NewAPIDependencies(logger, registrar, store, rootManager, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble API dependencies: %w", err)
	}

	var corsSection *config.CORSConfigSection
	if cfg.API != nil {
		corsSection = cfg.API.CORS
	}

	apiOpts := []daemon.APIOption{
		daemon.WithCORSEnabled(corsSection.EnableOrDefault(false)),
	}
	if corsSection != nil && len(corsSection.Origins) > 0 {
		apiOpts = append(apiOpts, daemon.WithCORSAllowOrigins(corsSection.Origins))
	}

	apiServer, err := daemon.NewAPIServer(deps, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}

	return apiServer, nil
}

// newStore builds the command cache store from configuration.
func newStore(logger hclog.Logger, cfg *config.Config) (*cache.Store, error) {
	opts := []cache.Option{
		cache.WithMaxAge(cfg.Cache.MaxAgeOrDefault(cache.DefaultMaxAge)),
		cache.WithCaching(!cfg.Cache.DisabledOrDefault(false)),
	}
	if dir := cfg.Cache.DirectoryOrDefault(""); dir != "" {
		opts = append(opts, cache.WithDirectory(dir))
	}

	return cache.NewStore(logger, opts...)
}

// registerConfiguredRoots feeds declared project roots through the normal
// validation path, logging and skipping entries that no longer validate so a
// stale config cannot keep the server from starting.
func registerConfiguredRoots(logger hclog.Logger, manager *roots.Manager, entries []config.RootEntry) {
	for _, entry := range entries {
		var opts []roots.Option
		if entry.Name != "" {
			opts = append(opts, roots.WithName(entry.Name))
		}
		if entry.Description != "" {
			opts = append(opts, roots.WithDescription(entry.Description))
		}
		if entry.Default {
			opts = append(opts, roots.WithDefault(true))
		}

		if _, err := manager.SetRoot(entry.Path, opts...); err != nil {
			logger.Warn("Skipping configured project root", "path", entry.Path, "error", err)
		}
	}
}
