package sfcli

import (
	"fmt"
	"strings"
)

// Option defines a functional option for configuring Client.
type Option func(*Options) error

// Options contains optional configuration for the client.
type Options struct {
	// binary is the CLI executable name or path to invoke.
	binary string
}

func NewOptions(opts ...Option) (Options, error) {
	// Default options.
	o := Options{
		binary: DefaultBinary,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithBinary sets the CLI executable name or path.
func WithBinary(binary string) Option {
	return func(o *Options) error {
		binary = strings.TrimSpace(binary)
		if binary == "" {
			return fmt.Errorf("binary cannot be empty")
		}
		o.binary = binary
		return nil
	}
}
