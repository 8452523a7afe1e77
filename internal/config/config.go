package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/forcemcp/forcemcp/internal/perms"
)

// Init creates the base skeleton configuration file for a forcemcp project.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `roots = []`

	if err := os.WriteFile(path, []byte(content), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (d *DefaultLoader) Load(path string) (Modifier, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w: %s", ErrConfigLoadFailed, ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	_, err = toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return cfg, nil
}

// LoadOrDefault loads the configuration at path through loader, returning an
// empty default configuration when the file does not exist. The config file
// is optional; only a file that exists but cannot be used is an error.
func LoadOrDefault(loader Loader, path string) (*Config, error) {
	mod, err := loader.Load(path)
	if errors.Is(err, ErrConfigNotFound) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	cfg, ok := mod.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config structure")
	}

	return cfg, nil
}

// UpsertRoot adds or replaces a declared project root and persists the
// configuration file (.forcemcp.toml). Entries match on name when the new
// entry carries one, otherwise on path.
func (c *Config) UpsertRoot(entry RootEntry) (UpsertResult, error) {
	idx := slices.IndexFunc(c.Roots, func(r RootEntry) bool {
		if entry.Name != "" {
			return r.Name == entry.Name
		}
		return r.Path == entry.Path
	})

	op := Created
	if idx >= 0 {
		c.Roots[idx] = entry
		op = Updated
	} else {
		c.Roots = append(c.Roots, entry)
	}

	if err := c.validate(); err != nil {
		return op, err
	}

	if err := c.saveConfig(); err != nil {
		return op, fmt.Errorf("failed to save updated config: %w", err)
	}

	return op, nil
}

// RemoveRoot removes a declared project root by name or path from the
// configuration file (.forcemcp.toml).
func (c *Config) RemoveRoot(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("root reference cannot be empty")
	}

	filtered := make([]RootEntry, 0, len(c.Roots))
	for _, r := range c.Roots {
		if r.Name != ref && r.Path != ref {
			filtered = append(filtered, r)
		}
	}

	if len(filtered) == len(c.Roots) {
		return fmt.Errorf("root '%s' not found in config", ref)
	}

	c.Roots = filtered

	if err := c.validate(); err != nil {
		return err
	}

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// ListRoots returns a copy of the currently declared project roots.
// This provides read-only access to the internal configuration without exposing direct mutation of the underlying slice.
func (c *Config) ListRoots() []RootEntry {
	return slices.Clone(c.Roots)
}

// SaveConfig saves the current configuration to the config file.
func (c *Config) SaveConfig() error {
	return c.saveConfig()
}

func (c *Config) saveConfig() error {
	if c.configFilePath == "" {
		return fmt.Errorf("config file path not present")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configFilePath, data, perms.RegularFile)
}

// validate orchestrates validation of configuration structure.
func (c *Config) validate() error {
	if err := c.validateRoots(); err != nil {
		return err
	}

	if err := c.SF.Validate(); err != nil {
		return fmt.Errorf("sf configuration error: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache configuration error: %w", err)
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("API configuration error: %w", err)
	}

	return nil
}

// validateRoots checks the declared roots to ensure paths are present, names
// and paths are distinct, and at most one entry is marked default.
func (c *Config) validateRoots() error {
	seenNames := map[string]struct{}{}
	seenPaths := map[string]struct{}{}
	defaults := 0

	for _, entry := range c.Roots {
		if strings.TrimSpace(entry.Path) == "" {
			return fmt.Errorf("root entry has empty path")
		}
		if _, ok := seenPaths[entry.Path]; ok {
			return fmt.Errorf("duplicate root path '%s'", entry.Path)
		}
		seenPaths[entry.Path] = struct{}{}

		if entry.Default {
			defaults++
		}

		if entry.Name == "" {
			continue
		}
		if _, ok := seenNames[entry.Name]; ok {
			return fmt.Errorf("duplicate root name '%s'", entry.Name)
		}
		seenNames[entry.Name] = struct{}{}
	}

	if defaults > 1 {
		return fmt.Errorf("multiple roots marked as default")
	}

	return nil
}

// Validate checks the sf section for invalid values.
func (s *SFConfigSection) Validate() error {
	if s == nil || s.Binary == nil {
		return nil
	}

	if strings.TrimSpace(*s.Binary) == "" {
		return NewErrInvalidValue("sf.binary", *s.Binary)
	}

	return nil
}

// Validate checks the cache section for invalid values.
func (c *CacheConfigSection) Validate() error {
	if c == nil {
		return nil
	}

	var validationErrors []error

	if c.Directory != nil && strings.TrimSpace(*c.Directory) == "" {
		validationErrors = append(validationErrors, NewErrInvalidValue("cache.directory", *c.Directory))
	}

	if c.MaxAge != nil && *c.MaxAge <= 0 {
		validationErrors = append(validationErrors, fmt.Errorf("cache max age must be positive"))
	}

	return errors.Join(validationErrors...)
}

// Validate checks the API section for invalid values.
func (a *APIConfigSection) Validate() error {
	if a == nil {
		return nil
	}

	var validationErrors []error

	if a.Addr != nil {
		if *a.Addr == "" {
			validationErrors = append(validationErrors, fmt.Errorf("API address cannot be empty"))
		} else if !isValidAddr(*a.Addr) {
			validationErrors = append(
				validationErrors,
				fmt.Errorf("API address %q appears to be invalid (expected format: host:port)", *a.Addr),
			)
		}
	}

	if err := a.CORS.Validate(); err != nil {
		validationErrors = append(validationErrors, fmt.Errorf("CORS configuration error: %w", err))
	}

	return errors.Join(validationErrors...)
}

// Validate checks the CORS section for invalid values.
func (c *CORSConfigSection) Validate() error {
	if c == nil {
		return nil
	}

	var validationErrors []error

	for _, origin := range c.Origins {
		// Wildcard origins are always acceptable.
		if origin == "*" {
			continue
		}

		if strings.TrimSpace(origin) == "" {
			validationErrors = append(validationErrors, fmt.Errorf("CORS origin cannot be empty"))
		}
	}

	return errors.Join(validationErrors...)
}

// isValidAddr performs basic validation for host:port format using stdlib.
func isValidAddr(addr string) bool {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}

	if _, err := strconv.Atoi(port); err == nil {
		return true
	}

	// Named ports such as "http" resolve via the services database.
	_, err = net.LookupPort("tcp", port)

	return err == nil
}
