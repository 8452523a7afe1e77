package daemon

import (
	"fmt"
	"io"
	"os"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Stdin is the reader the MCP stdio loop consumes.
	Stdin io.Reader

	// Stdout is the writer MCP responses are written to.
	Stdout io.Writer
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Defaults to the process's own standard streams.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithStdio overrides the streams the MCP loop reads from and writes to.
func WithStdio(stdin io.Reader, stdout io.Writer) Option {
	return func(o *Options) error {
		if stdin == nil {
			return fmt.Errorf("stdin cannot be nil")
		}
		if stdout == nil {
			return fmt.Errorf("stdout cannot be nil")
		}
		o.Stdin = stdin
		o.Stdout = stdout
		return nil
	}
}
