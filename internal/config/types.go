package config

import (
	"fmt"
	"strings"
	"time"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*Config)(nil)
)

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type Modifier interface {
	UpsertRoot(entry RootEntry) (UpsertResult, error)
	RemoveRoot(ref string) error
	ListRoots() []RootEntry
}

// UpsertResult describes the effect an upsert had on the configuration.
type UpsertResult string

const (
	// Created indicates the entry did not exist before.
	Created UpsertResult = "created"

	// Updated indicates an existing entry was replaced.
	Updated UpsertResult = "updated"
)

type DefaultLoader struct{}

// Config represents the .forcemcp.toml file structure.
type Config struct {
	// SF configures how the Salesforce CLI binary is located.
	SF *SFConfigSection `json:"sf,omitempty" toml:"sf,omitempty" yaml:"sf,omitempty"`

	// Cache configures the discovered-command cache artifact.
	Cache *CacheConfigSection `json:"cache,omitempty" toml:"cache,omitempty" yaml:"cache,omitempty"`

	// API configures the optional diagnostics HTTP API.
	API *APIConfigSection `json:"api,omitempty" toml:"api,omitempty" yaml:"api,omitempty"`

	// Roots declares Salesforce DX projects to register at startup.
	Roots []RootEntry `json:"roots" toml:"roots" yaml:"roots"`

	configFilePath string `toml:"-"`
}

// RootEntry represents a single declared project root.
type RootEntry struct {
	// Path is the directory containing sfdx-project.json.
	Path string `json:"path" toml:"path" yaml:"path"`

	// Name optionally identifies the root; when empty the directory basename is used.
	Name string `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`

	// Description is free-form text shown when listing roots.
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`

	// Default marks this root as the one commands run in when no root is named.
	Default bool `json:"default,omitempty" toml:"default,omitempty" yaml:"default,omitempty"`
}

// SFConfigSection contains Salesforce CLI invocation settings.
type SFConfigSection struct {
	// Binary overrides the sf executable name or path.
	Binary *string `json:"binary,omitempty" toml:"binary,omitempty" yaml:"binary,omitempty"`
}

// BinaryOrDefault returns the configured binary, or defaultBinary when not set.
func (s *SFConfigSection) BinaryOrDefault(defaultBinary string) string {
	if s == nil || s.Binary == nil || strings.TrimSpace(*s.Binary) == "" {
		return defaultBinary
	}

	return strings.TrimSpace(*s.Binary)
}

// CacheConfigSection contains command cache settings.
type CacheConfigSection struct {
	// Directory overrides where the cache artifact is written.
	Directory *string `json:"directory,omitempty" toml:"directory,omitempty" yaml:"directory,omitempty"`

	// MaxAge overrides how long a cached command listing stays fresh.
	MaxAge *Duration `json:"maxAge,omitempty" toml:"max_age,omitempty" yaml:"max_age,omitempty"`

	// Disabled skips reading and writing the cache artifact entirely.
	Disabled *bool `json:"disabled,omitempty" toml:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// DirectoryOrDefault returns the configured cache directory, or defaultDir when not set.
func (c *CacheConfigSection) DirectoryOrDefault(defaultDir string) string {
	if c == nil || c.Directory == nil || strings.TrimSpace(*c.Directory) == "" {
		return defaultDir
	}

	return strings.TrimSpace(*c.Directory)
}

// MaxAgeOrDefault returns the configured cache max age, or defaultAge when not set.
func (c *CacheConfigSection) MaxAgeOrDefault(defaultAge time.Duration) time.Duration {
	if c == nil || c.MaxAge == nil || *c.MaxAge <= 0 {
		return defaultAge
	}

	return time.Duration(*c.MaxAge)
}

// DisabledOrDefault returns whether the cache is disabled, or defaultDisabled when not set.
func (c *CacheConfigSection) DisabledOrDefault(defaultDisabled bool) bool {
	if c == nil || c.Disabled == nil {
		return defaultDisabled
	}

	return *c.Disabled
}

// APIConfigSection contains diagnostics API server settings.
type APIConfigSection struct {
	// Addr to bind the API server (e.g. "127.0.0.1:8611").
	// The --addr flag takes precedence when both are set.
	Addr *string `json:"addr,omitempty" toml:"addr,omitempty" yaml:"addr,omitempty"`

	// CORS configures cross-origin request handling.
	CORS *CORSConfigSection `json:"cors,omitempty" toml:"cors,omitempty" yaml:"cors,omitempty"`
}

// AddrOrDefault returns the configured API address, or defaultAddr when not set.
func (a *APIConfigSection) AddrOrDefault(defaultAddr string) string {
	if a == nil || a.Addr == nil || strings.TrimSpace(*a.Addr) == "" {
		return defaultAddr
	}

	return strings.TrimSpace(*a.Addr)
}

// CORSConfigSection contains Cross-Origin Resource Sharing settings.
type CORSConfigSection struct {
	// Enable CORS support.
	Enable *bool `json:"enable,omitempty" toml:"enable,omitempty" yaml:"enable,omitempty"`

	// Origins allowed to make CORS requests.
	Origins []string `json:"allowOrigins,omitempty" toml:"allow_origins,omitempty" yaml:"allow_origins,omitempty"`
}

// EnableOrDefault returns whether CORS is enabled, or defaultEnable when not set.
func (c *CORSConfigSection) EnableOrDefault(defaultEnable bool) bool {
	if c == nil || c.Enable == nil {
		return defaultEnable
	}

	return *c.Enable
}

// Duration is a custom time.Duration type that provides improved marshaling.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler for Duration.
func (d *Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String returns a human-readable string representation of the duration.
func (d *Duration) String() string {
	if d == nil {
		return ""
	}

	duration := time.Duration(*d)

	// List of duration units in descending order.
	units := []struct {
		unit   time.Duration
		suffix string
	}{
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
		{time.Millisecond, "ms"},
	}

	for _, u := range units {
		if duration%u.unit == 0 {
			return fmt.Sprintf("%d%s", duration/u.unit, u.suffix)
		}
	}

	// Fallback to nanoseconds if no exact match.
	return fmt.Sprintf("%dns", duration)
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(duration)

	return nil
}
