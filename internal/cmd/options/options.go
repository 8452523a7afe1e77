package options

import (
	"github.com/hashicorp/go-hclog"

	"github.com/forcemcp/forcemcp/internal/config"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

type CmdOption func(*CmdOptions) error

// RunnerBuilder constructs the Salesforce CLI runner commands talk to.
// Tests swap it for a fake so no sf process is ever spawned.
type RunnerBuilder func(logger hclog.Logger, binary string) (sfcli.Runner, error)

type CmdOptions struct {
	ConfigLoader      config.Loader
	ConfigInitializer config.Initializer
	RunnerBuilder     RunnerBuilder
}

func defaultOptions() CmdOptions {
	configLoader := &config.DefaultLoader{}

	return CmdOptions{
		ConfigLoader:      configLoader,
		ConfigInitializer: configLoader,
		RunnerBuilder: func(logger hclog.Logger, binary string) (sfcli.Runner, error) {
			return sfcli.NewClient(logger, sfcli.WithBinary(binary))
		},
	}
}

func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}

	return opts, nil
}

func WithConfigLoader(l config.Loader) CmdOption {
	return func(o *CmdOptions) error {
		o.ConfigLoader = l
		return nil
	}
}

func WithConfigInitializer(i config.Initializer) CmdOption {
	return func(o *CmdOptions) error {
		o.ConfigInitializer = i
		return nil
	}
}

func WithRunnerBuilder(b RunnerBuilder) CmdOption {
	return func(o *CmdOptions) error {
		o.RunnerBuilder = b
		return nil
	}
}
