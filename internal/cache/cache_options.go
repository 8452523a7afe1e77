package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/forcemcp/forcemcp/internal/files"
)

// Option defines a functional option for configuring Store.
type Option func(*Options) error

// Options contains optional configuration for the cache store.
type Options struct {
	// dir is the directory where the cache artifact is stored.
	dir string

	// maxAge is how old a snapshot may be before it is discarded.
	maxAge time.Duration

	// enabled determines if caching is enabled.
	enabled bool
}

func NewOptions(opts ...Option) (Options, error) {
	dir, err := files.UserSpecificCacheDir()
	if err != nil {
		return Options{}, err
	}

	// Default options.
	o := Options{
		dir:     dir,
		maxAge:  DefaultMaxAge,
		enabled: true,
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

// WithDirectory sets the cache directory.
func WithDirectory(dir string) Option {
	return func(o *Options) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return fmt.Errorf("cache directory cannot be empty")
		}
		o.dir = dir
		return nil
	}
}

// WithMaxAge sets the maximum usable snapshot age.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *Options) error {
		if maxAge <= 0 {
			return fmt.Errorf("max age must be positive, got %v", maxAge)
		}
		o.maxAge = maxAge
		return nil
	}
}

// WithCaching configures whether caching is enabled.
func WithCaching(enabled bool) Option {
	return func(o *Options) error {
		o.enabled = enabled
		return nil
	}
}
