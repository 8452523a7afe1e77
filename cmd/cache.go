package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forcemcp/forcemcp/internal/cache"
	internalcmd "github.com/forcemcp/forcemcp/internal/cmd"
	cmdopts "github.com/forcemcp/forcemcp/internal/cmd/options"
	"github.com/forcemcp/forcemcp/internal/cmd/output"
	"github.com/forcemcp/forcemcp/internal/config"
	"github.com/forcemcp/forcemcp/internal/discover"
	"github.com/forcemcp/forcemcp/internal/flags"
	"github.com/forcemcp/forcemcp/internal/printer"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// NewCacheCmd creates the parent (Cobra) command grouping cache maintenance.
func NewCacheCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	cobraCommand := &cobra.Command{
		Use:   "cache",
		Short: "Manages the on-disk command cache",
		Long:  "Manages the on-disk cache of discovered `sf` commands that backs tool registration",
	}

	builders := []func(*internalcmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error){
		NewCacheInfoCmd,
		NewCacheClearCmd,
		NewCacheRefreshCmd,
	}
	for _, builder := range builders {
		subCmd, err := builder(baseCmd, opt...)
		if err != nil {
			return nil, err
		}
		cobraCommand.AddCommand(subCmd)
	}

	return cobraCommand, nil
}

// CacheInfoCmd represents the 'cache info' command.
type CacheInfoCmd struct {
	*internalcmd.BaseCmd
	Format      internalcmd.OutputFormat
	cfgLoader   config.Loader
	infoPrinter output.Printer[cache.Info]
}

// NewCacheInfoCmd creates a newly configured (Cobra) command.
func NewCacheInfoCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CacheInfoCmd{
		BaseCmd:     baseCmd,
		cfgLoader:   opts.ConfigLoader,
		Format:      internalcmd.FormatText, // Default to plain text
		infoPrinter: &printer.CacheInfoPrinter{},
	}

	cobraCommand := &cobra.Command{
		Use:   "info",
		Short: "Shows the state of the cached command listing",
		Long:  "Shows the location, age and validity of the cached command listing",
		RunE:  c.run,
	}

	allowed := internalcmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCommand, nil
}

// run is configured (via NewCacheInfoCmd) to be called by the Cobra framework when the command is executed.
func (c *CacheInfoCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(c.cfgLoader, flags.ConfigFile)
	if err != nil {
		return err
	}

	store, err := newStore(logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create command cache: %w", err)
	}

	handler, err := internalcmd.FormatHandler(cobraCmd.OutOrStdout(), c.Format, c.infoPrinter)
	if err != nil {
		return err
	}

	return handler.HandleResult(store.Stat())
}

// CacheClearCmd represents the 'cache clear' command.
type CacheClearCmd struct {
	*internalcmd.BaseCmd
	cfgLoader config.Loader
}

// NewCacheClearCmd creates a newly configured (Cobra) command.
func NewCacheClearCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CacheClearCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "clear",
		Short: "Removes the cached command listing",
		Long:  "Removes the cached command listing so the next run rediscovers commands from the CLI",
		RunE:  c.run,
	}

	return cobraCommand, nil
}

// run is configured (via NewCacheClearCmd) to be called by the Cobra framework when the command is executed.
func (c *CacheClearCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(c.cfgLoader, flags.ConfigFile)
	if err != nil {
		return err
	}

	store, err := newStore(logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create command cache: %w", err)
	}

	removed, err := store.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear command cache: %w", err)
	}

	if removed {
		_, err = fmt.Fprintf(cobraCmd.OutOrStdout(), "Removed cache artifact: %s\n", store.Path())
	} else {
		_, err = fmt.Fprintf(cobraCmd.OutOrStdout(), "No cache artifact to remove (%s)\n", store.Path())
	}

	return err
}

// CacheRefreshCmd represents the 'cache refresh' command.
type CacheRefreshCmd struct {
	*internalcmd.BaseCmd
	cfgLoader     config.Loader
	runnerBuilder cmdopts.RunnerBuilder
}

// NewCacheRefreshCmd creates a newly configured (Cobra) command.
func NewCacheRefreshCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CacheRefreshCmd{
		BaseCmd:       baseCmd,
		cfgLoader:     opts.ConfigLoader,
		runnerBuilder: opts.RunnerBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "refresh",
		Short: "Rediscovers commands from the CLI and rewrites the cache",
		Long:  "Rediscovers commands from the CLI and rewrites the cached listing, regardless of its current validity",
		RunE:  c.run,
	}

	return cobraCommand, nil
}

// run is configured (via NewCacheRefreshCmd) to be called by the Cobra framework when the command is executed.
func (c *CacheRefreshCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(c.cfgLoader, flags.ConfigFile)
	if err != nil {
		return err
	}

	cli, err := c.runnerBuilder(logger, cfg.SF.BinaryOrDefault(flags.SFBinaryOrDefault(sfcli.DefaultBinary)))
	if err != nil {
		return fmt.Errorf("failed to create Salesforce CLI client: %w", err)
	}

	store, err := newStore(logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create command cache: %w", err)
	}

	lister, err := discover.NewLister(logger, cli)
	if err != nil {
		return fmt.Errorf("failed to create command lister: %w", err)
	}

	ctx := cobraCmd.Context()

	// A refresh stamps the snapshot with the CLI version, so the probe must
	// succeed before anything is rewritten.
	version, err := cli.Version(ctx)
	if err != nil {
		return fmt.Errorf("cannot refresh cache without the CLI version: %w", err)
	}

	descriptors, err := store.Refresh(ctx, version, lister)
	if err != nil {
		return fmt.Errorf("failed to refresh command cache: %w", err)
	}

	_, err = fmt.Fprintf(
		cobraCmd.OutOrStdout(),
		"Refreshed command cache: %d commands (CLI %s)\n", len(descriptors), version,
	)

	return err
}
