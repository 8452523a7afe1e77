package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/forcemcp/forcemcp/internal/cmd"
	cmdopts "github.com/forcemcp/forcemcp/internal/cmd/options"
	"github.com/forcemcp/forcemcp/internal/cmd/output"
	"github.com/forcemcp/forcemcp/internal/config"
	"github.com/forcemcp/forcemcp/internal/flags"
	"github.com/forcemcp/forcemcp/internal/printer"
	"github.com/forcemcp/forcemcp/internal/roots"
)

// NewRootsCmd creates the parent (Cobra) command grouping project root management.
func NewRootsCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	cobraCommand := &cobra.Command{
		Use:   "roots",
		Short: "Manages declared Salesforce DX project roots",
		Long: "Manages the Salesforce DX project roots declared in the configuration file, " +
			"which the server registers at startup",
	}

	builders := []func(*internalcmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error){
		NewRootsListCmd,
		NewRootsSetCmd,
		NewRootsRemoveCmd,
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

// RootsListCmd represents the 'roots list' command.
type RootsListCmd struct {
	*internalcmd.BaseCmd
	Format       internalcmd.OutputFormat
	Check        bool
	cfgLoader    config.Loader
	rootsPrinter output.Printer[config.RootEntry]
}

// NewRootsListCmd creates a newly configured (Cobra) command.
func NewRootsListCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &RootsListCmd{
		BaseCmd:      baseCmd,
		cfgLoader:    opts.ConfigLoader,
		Format:       internalcmd.FormatText, // Default to plain text
		rootsPrinter: &printer.RootListPrinter{},
	}

	cobraCommand := &cobra.Command{
		Use:   "list",
		Short: "Lists the declared project roots",
		Long:  "Lists the project roots declared in the configuration file",
		RunE:  c.run,
	}

	allowed := internalcmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	cobraCommand.Flags().BoolVar(
		&c.Check,
		"check",
		false,
		"Fail when a declared root is no longer a Salesforce DX project",
	)

	return cobraCommand, nil
}

// run is configured (via NewRootsListCmd) to be called by the Cobra framework when the command is executed.
func (c *RootsListCmd) run(cobraCmd *cobra.Command, _ []string) error {
	loader := c.cfgLoader
	if c.Check {
		loader = config.NewValidatingLoader(loader, config.ValidateRootMarkers)
	}

	cfg, err := config.LoadOrDefault(loader, flags.ConfigFile)
	if err != nil {
		return err
	}

	handler, err := internalcmd.FormatHandler(cobraCmd.OutOrStdout(), c.Format, c.rootsPrinter)
	if err != nil {
		return err
	}

	return handler.HandleResults(cfg.ListRoots()...)
}

// RootsSetCmd represents the 'roots set' command.
type RootsSetCmd struct {
	*internalcmd.BaseCmd
	Name           string
	Description    string
	Default        bool
	cfgLoader      config.Loader
	cfgInitializer config.Initializer
}

// NewRootsSetCmd creates a newly configured (Cobra) command.
func NewRootsSetCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &RootsSetCmd{
		BaseCmd:        baseCmd,
		cfgLoader:      opts.ConfigLoader,
		cfgInitializer: opts.ConfigInitializer,
	}

	cobraCommand := &cobra.Command{
		Use:   "set <path>",
		Short: "Declares a project root in the configuration file",
		Long: "Declares a Salesforce DX project root in the configuration file, " +
			"creating the file first when it does not exist.\n\n" +
			"The path must contain an sfdx-project.json marker file. " +
			"An existing declaration with the same name (or path, for unnamed roots) is replaced.",
		RunE: c.run,
		Args: cobra.ExactArgs(1),
	}

	cobraCommand.Flags().StringVar(
		&c.Name,
		"name",
		"",
		"Name to register the root under (defaults to the directory basename at runtime)",
	)

	cobraCommand.Flags().StringVar(
		&c.Description,
		"description",
		"",
		"Human readable description of the project",
	)

	cobraCommand.Flags().BoolVar(
		&c.Default,
		"default",
		false,
		"Use this root when a tool call names no project root",
	)

	return cobraCommand, nil
}

// run is configured (via NewRootsSetCmd) to be called by the Cobra framework when the command is executed.
func (c *RootsSetCmd) run(cobraCmd *cobra.Command, args []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	// Validate through the same path the server uses at startup, so a bad
	// path is rejected before it is persisted. The returned root carries
	// the absolutized path.
	manager := roots.NewManager(logger)
	root, err := manager.SetRoot(args[0], c.rootOptions()...)
	if err != nil {
		return fmt.Errorf("invalid project root: %w", err)
	}

	cfg, err := c.loadOrInitConfig(cobraCmd)
	if err != nil {
		return err
	}

	entry := config.RootEntry{
		Path:        root.Path,
		Name:        strings.TrimSpace(c.Name),
		Description: strings.TrimSpace(c.Description),
		Default:     c.Default,
	}

	result, err := cfg.UpsertRoot(entry)
	if err != nil {
		return fmt.Errorf("failed to declare project root: %w", err)
	}

	switch result {
	case config.Created:
		_, err = fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Declared project root '%s' (%s)\n", root.Name, root.Path)
	case config.Updated:
		_, err = fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Updated project root '%s' (%s)\n", root.Name, root.Path)
	}

	return err
}

func (c *RootsSetCmd) rootOptions() []roots.Option {
	var opts []roots.Option
	if name := strings.TrimSpace(c.Name); name != "" {
		opts = append(opts, roots.WithName(name))
	}
	if description := strings.TrimSpace(c.Description); description != "" {
		opts = append(opts, roots.WithDescription(description))
	}
	if c.Default {
		opts = append(opts, roots.WithDefault(true))
	}

	return opts
}

// loadOrInitConfig loads the configuration file, creating a skeleton first
// when none exists yet. Declaring the first root should not require a
// separate 'init' run.
func (c *RootsSetCmd) loadOrInitConfig(cobraCmd *cobra.Command) (config.Modifier, error) {
	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}

	if _, err := fmt.Fprintf(
		cobraCmd.OutOrStdout(),
		"📄 Creating config file: %s\n", flags.ConfigFile,
	); err != nil {
		return nil, err
	}
	if err := c.cfgInitializer.Init(flags.ConfigFile); err != nil {
		return nil, fmt.Errorf("error initializing forcemcp configuration: %w", err)
	}

	return c.cfgLoader.Load(flags.ConfigFile)
}

// RootsRemoveCmd represents the 'roots remove' command.
type RootsRemoveCmd struct {
	*internalcmd.BaseCmd
	cfgLoader config.Loader
}

// NewRootsRemoveCmd creates a newly configured (Cobra) command.
func NewRootsRemoveCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &RootsRemoveCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "remove <name-or-path>",
		Short: "Removes a declared project root from the configuration file",
		Long:  "Removes a project root declaration from the configuration file, matched by name or path",
		RunE:  c.run,
		Args:  cobra.ExactArgs(1),
	}

	return cobraCommand, nil
}

// run is configured (via NewRootsRemoveCmd) to be called by the Cobra framework when the command is executed.
func (c *RootsRemoveCmd) run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(c.cfgLoader, flags.ConfigFile)
	if err != nil {
		return err
	}

	if err := cfg.RemoveRoot(args[0]); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Removed project root '%s'\n", args[0])

	return err
}
