package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/forcemcp/forcemcp/internal/cache"
	internalcmd "github.com/forcemcp/forcemcp/internal/cmd"
	cmdopts "github.com/forcemcp/forcemcp/internal/cmd/options"
	"github.com/forcemcp/forcemcp/internal/cmd/output"
	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/config"
	"github.com/forcemcp/forcemcp/internal/discover"
	"github.com/forcemcp/forcemcp/internal/filter"
	"github.com/forcemcp/forcemcp/internal/flags"
	"github.com/forcemcp/forcemcp/internal/printer"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// CommandsCmd represents the 'commands' command.
type CommandsCmd struct {
	*internalcmd.BaseCmd
	Format          internalcmd.OutputFormat
	Refresh         bool
	Filters         []string
	cfgLoader       config.Loader
	runnerBuilder   cmdopts.RunnerBuilder
	commandsPrinter output.Printer[command.Descriptor]
}

// NewCommandsCmd creates a newly configured (Cobra) command.
func NewCommandsCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CommandsCmd{
		BaseCmd:         baseCmd,
		cfgLoader:       opts.ConfigLoader,
		runnerBuilder:   opts.RunnerBuilder,
		Format:          internalcmd.FormatText, // Default to plain text
		commandsPrinter: &printer.CommandListPrinter{},
	}

	cobraCommand := &cobra.Command{
		Use:   "commands",
		Short: "Lists the `sf` commands the server would expose as tools",
		Long: "Lists the `sf` commands the server would expose as tools, " +
			"served from the cache when it is usable and rediscovered otherwise",
		RunE: c.run,
	}

	allowed := internalcmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	cobraCommand.Flags().BoolVar(
		&c.Refresh,
		"refresh",
		false,
		"Bypass the cache and rediscover commands from the CLI",
	)

	cobraCommand.Flags().StringArrayVar(
		&c.Filters,
		"filter",
		nil,
		fmt.Sprintf("Filter listed commands as key=value, repeatable (keys: %s)",
			strings.Join(supportedFilterKeys(), ", ")),
	)

	return cobraCommand, nil
}

// run is configured (via NewCommandsCmd) to be called by the Cobra framework when the command is executed.
func (c *CommandsCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	filters, err := parseFilters(c.Filters)
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

	descriptors, err := c.listCommands(cobraCmd.Context(), logger, cli, store, lister)
	if err != nil {
		return err
	}

	if len(filters) > 0 {
		descriptors, err = filterCommands(descriptors, filters)
		if err != nil {
			return err
		}
	}

	handler, err := internalcmd.FormatHandler(cobraCmd.OutOrStdout(), c.Format, c.commandsPrinter)
	if err != nil {
		return err
	}

	return handler.HandleResults(descriptors...)
}

// listCommands resolves the command set the way the server does at startup:
// cache first when it is usable for the current CLI version, discovery
// otherwise. A failed version probe skips the cache entirely since cached
// snapshots cannot be validated against an unknown version.
func (c *CommandsCmd) listCommands(
	ctx context.Context,
	logger hclog.Logger,
	cli sfcli.Runner,
	store *cache.Store,
	lister *discover.Lister,
) ([]command.Descriptor, error) {
	version, err := cli.Version(ctx)
	if err != nil {
		logger.Warn("CLI version probe failed, listing without cache", "error", err)

		descriptors, err := lister.Commands(ctx)
		if err != nil {
			return nil, fmt.Errorf("command discovery failed: %w", err)
		}

		return descriptors, nil
	}

	if !c.Refresh {
		if cached, err := store.Load(version); err == nil {
			return cached, nil
		}
	}

	descriptors, err := store.Refresh(ctx, version, lister)
	if err != nil {
		if descriptors == nil {
			return nil, fmt.Errorf("command discovery failed: %w", err)
		}
		// Discovery itself worked, only persisting the snapshot failed.
		logger.Warn("Discovered commands but failed to update cache", "error", err)
	}

	return descriptors, nil
}

// descriptorMatchers maps the supported filter keys onto descriptor fields.
func descriptorMatchers() map[string]filter.Predicate[command.Descriptor] {
	return map[string]filter.Predicate[command.Descriptor]{
		"id":          filter.Partial(func(d command.Descriptor) string { return d.ID }),
		"topic":       filter.Equals(func(d command.Descriptor) string { return d.Topic }),
		"name":        filter.Equals(func(d command.Descriptor) string { return d.Name }),
		"description": filter.Partial(func(d command.Descriptor) string { return d.Description }),
		"flag":        filter.HasAll(flagNames),
	}
}

func flagNames(d command.Descriptor) []string {
	names := make([]string, 0, len(d.Flags))
	for _, f := range d.Flags {
		names = append(names, f.Name)
	}

	return names
}

func supportedFilterKeys() []string {
	return slices.Sorted(maps.Keys(descriptorMatchers()))
}

// parseFilters turns repeated key=value flag values into a filter map,
// rejecting malformed pairs and unknown keys up front.
func parseFilters(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	matchers := descriptorMatchers()
	filters := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, found := strings.Cut(pair, "=")
		key = filter.NormalizeString(key)
		if !found || key == "" || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("invalid filter '%s', expected key=value", pair)
		}
		if _, ok := matchers[key]; !ok {
			return nil, fmt.Errorf(
				"unsupported filter key '%s' (must be one of: %s)",
				key, strings.Join(supportedFilterKeys(), ", "),
			)
		}
		filters[key] = value
	}

	return filters, nil
}

// filterCommands keeps the descriptors matching every given filter.
func filterCommands(descriptors []command.Descriptor, filters map[string]string) ([]command.Descriptor, error) {
	matched := make([]command.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		ok, err := filter.Match(d, filters, filter.WithMatchers(descriptorMatchers()))
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, d)
		}
	}

	return matched, nil
}
