package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	internalcmd "github.com/forcemcp/forcemcp/internal/cmd"
	cmdopts "github.com/forcemcp/forcemcp/internal/cmd/options"
	"github.com/forcemcp/forcemcp/internal/flags"
)

var version = "dev" // Set at build time using -ldflags

// RootCmd represents the top-level 'forcemcp' command.
type RootCmd struct {
	*internalcmd.BaseCmd
}

// Execute builds the command tree and runs it, returning any error to main.
func Execute() error {
	rootCmd, err := NewRootCmd()
	if err != nil {
		return fmt.Errorf("error building root command: %w", err)
	}

	return rootCmd.Execute()
}

// NewRootCmd creates a newly configured (Cobra) root command with all
// subcommands attached.
func NewRootCmd() (*cobra.Command, error) {
	baseCmd := &internalcmd.BaseCmd{}

	c := &RootCmd{
		BaseCmd: baseCmd,
	}

	rootCmd := &cobra.Command{
		Use:          "forcemcp <command> [args]",
		Short:        "'forcemcp' exposes the Salesforce CLI as typed MCP tools",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      version,
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	for _, builder := range commandBuilders() {
		subCmd, err := builder(baseCmd)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(subCmd)
	}

	return rootCmd, nil
}

// commandBuilders lists the constructors for every top-level subcommand.
func commandBuilders() []func(*internalcmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error) {
	return []func(*internalcmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error){
		NewInitCmd,
		NewServeCmd,
		NewCommandsCmd,
		NewCacheCmd,
		NewRootsCmd,
	}
}

func (c *RootCmd) longDescription() string {
	return `The 'forcemcp' CLI discovers the commands of a locally installed Salesforce
CLI ('sf') and serves them to MCP clients as typed tools, alongside helpers to
inspect the discovered command set, the on-disk cache and declared project roots.`
}
