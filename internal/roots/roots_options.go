package roots

import (
	"errors"
	"strings"
)

// Options contains configurable values for a SetRoot call. Absent values
// keep whatever the existing root already has.
type Options struct {
	name           string
	hasName        bool
	description    string
	hasDescription bool
	isDefault      bool
	hasDefault     bool
}

// Option is a function that configures a SetRoot call.
type Option func(*Options) error

// NewOptions applies the given options.
func NewOptions(opt ...Option) (Options, error) {
	opts := Options{}

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options{}, err
		}
	}

	return opts, nil
}

// WithName overrides the root's name.
func WithName(name string) Option {
	return func(o *Options) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.New("root name cannot be empty")
		}
		o.name = name
		o.hasName = true
		return nil
	}
}

// WithDescription sets the root's description. An empty value clears it.
func WithDescription(description string) Option {
	return func(o *Options) error {
		o.description = strings.TrimSpace(description)
		o.hasDescription = true
		return nil
	}
}

// WithDefault marks or unmarks the root as the default working directory.
func WithDefault(isDefault bool) Option {
	return func(o *Options) error {
		o.isDefault = isDefault
		o.hasDefault = true
		return nil
	}
}
