package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forcemcp/forcemcp/internal/roots"
)

// ValidationPredicate evaluates a loaded Config and returns an error if invalid.
type ValidationPredicate func(*Config) error

// validatingLoader wraps a Loader to run additional validation predicates at load time.
// Uses decorator pattern to preserve custom loader implementations while adding validation.
type validatingLoader struct {
	Loader
	predicates []ValidationPredicate
}

// NewValidatingLoader creates a loader that runs validation predicates after Load().
func NewValidatingLoader(inner Loader, predicates ...ValidationPredicate) *validatingLoader {
	return &validatingLoader{
		Loader:     inner,
		predicates: predicates,
	}
}

// Load delegates to inner loader, then runs validation predicates.
func (l *validatingLoader) Load(path string) (Modifier, error) {
	mod, err := l.Loader.Load(path)
	if err != nil {
		return nil, err
	}

	cfg, ok := mod.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config structure")
	}

	for _, predicate := range l.predicates {
		if err := predicate(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)
		}
	}

	return cfg, nil
}

// ValidateRootMarkers verifies that every declared root exists on disk and
// contains the project marker file. Structural validation cannot touch the
// filesystem, so commands that are about to rely on the declared roots opt in
// to this check.
func ValidateRootMarkers(cfg *Config) error {
	var validationErrors []error

	for _, entry := range cfg.Roots {
		marker := filepath.Join(entry.Path, roots.MarkerFile)
		if _, err := os.Stat(marker); err != nil {
			validationErrors = append(
				validationErrors,
				fmt.Errorf("declared root '%s' is not a Salesforce DX project (missing %s)", entry.Path, roots.MarkerFile),
			)
		}
	}

	return errors.Join(validationErrors...)
}
