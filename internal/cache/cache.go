// Package cache persists the discovered command set between runs, keyed by
// the CLI version that produced it and bounded by a maximum age.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/discover"
	"github.com/forcemcp/forcemcp/internal/files"
	"github.com/forcemcp/forcemcp/internal/perms"
)

// ArtifactName is the cache file name inside the cache directory.
const ArtifactName = "commands.json"

// DefaultMaxAge is how long a cached command set stays usable (7 days).
const DefaultMaxAge = 7 * 24 * time.Hour

// ErrNoUsableCache indicates the cache artifact cannot serve the current
// run: missing, malformed, expired, or captured by a different CLI version.
// Every Load failure wraps this error; callers fall through to discovery.
var ErrNoUsableCache = errors.New("no usable command cache")

// snapshot is the durable artifact layout. Timestamp is the capture instant
// in integer milliseconds since the Unix epoch.
type snapshot struct {
	Version   string               `json:"version"`
	Timestamp int64                `json:"timestamp"`
	Commands  []command.Descriptor `json:"commands"`
}

// Info summarizes the artifact on disk for diagnostics.
type Info struct {
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	Version  string    `json:"version,omitempty"`
	Captured time.Time `json:"captured,omitzero"`
	Age      string    `json:"age,omitempty"`
	Commands int       `json:"commands"`
	Expired  bool      `json:"expired"`
}

// Store manages the cached command set.
// NewStore should be used to create instances of Store.
type Store struct {
	// dir is the directory where the cache artifact is stored.
	dir string

	// maxAge is how old a snapshot may be before it is discarded.
	maxAge time.Duration

	// enabled determines if caching is enabled.
	enabled bool

	// logger is used for logging cache operations.
	logger hclog.Logger
}

// NewStore creates a new cache store for discovered commands.
func NewStore(logger hclog.Logger, opts ...Option) (*Store, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		dir:     options.dir,
		maxAge:  options.maxAge,
		enabled: options.enabled,
		logger:  logger.Named("cache"),
	}, nil
}

// Path returns the location of the cache artifact.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ArtifactName)
}

// Load returns the cached command set if it is usable for the given current
// CLI version. Every failure reason wraps ErrNoUsableCache; they are
// distinguishable in the message but identical to callers, which fall
// through to discovery.
func (s *Store) Load(currentVersion string) ([]command.Descriptor, error) {
	if !s.enabled {
		return nil, fmt.Errorf("%w: caching disabled", ErrNoUsableCache)
	}

	snap, err := s.read()
	if err != nil {
		return nil, err
	}

	age := time.Since(time.UnixMilli(snap.Timestamp))
	if age > s.maxAge {
		s.logger.Debug("Cache expired", "age", age, "max_age", s.maxAge)
		return nil, fmt.Errorf("%w: snapshot is %s old (max %s)", ErrNoUsableCache, age.Round(time.Minute), s.maxAge)
	}

	if snap.Version != currentVersion {
		s.logger.Debug("Cache version mismatch", "cached", snap.Version, "current", currentVersion)
		return nil, fmt.Errorf(
			"%w: captured by version %q, current is %q",
			ErrNoUsableCache, snap.Version, currentVersion,
		)
	}

	s.logger.Debug("Loaded commands from cache", "count", len(snap.Commands), "age", age)

	return snap.Commands, nil
}

// LoadStale returns the cached command set while ignoring age and version,
// as long as the artifact is structurally valid. It supplies command IDs to
// the help-text fallback when fresh discovery is unavailable.
func (s *Store) LoadStale() ([]command.Descriptor, error) {
	snap, err := s.read()
	if err != nil {
		return nil, err
	}

	return snap.Commands, nil
}

// Save persists the command set, stamping it with the CLI version and the
// current time. The write goes through a temp file and rename so a torn
// write parses as invalid on the next load rather than half-applied.
func (s *Store) Save(version string, commands []command.Descriptor) error {
	if !s.enabled {
		s.logger.Debug("Caching disabled, skipping save")
		return nil
	}

	if err := files.EnsureAtLeastRegularDir(s.dir); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	snap := snapshot{
		Version:   version,
		Timestamp: time.Now().UnixMilli(),
		Commands:  commands,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache snapshot: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath) // Clean up on any error.
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Chmod(tmpPath, perms.RegularFile); err != nil {
		return fmt.Errorf("failed to set cache file permissions: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	s.logger.Info("Saved command cache", "path", s.Path(), "count", len(commands), "version", version)

	return nil
}

// Clear removes the cache artifact and reports whether it existed.
func (s *Store) Clear() (bool, error) {
	err := os.Remove(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove cache artifact: %w", err)
	}

	s.logger.Info("Cleared command cache", "path", s.Path())

	return true, nil
}

// Refresh clears the artifact, rediscovers commands from src, and saves the
// result, regardless of current cache validity. When discovery succeeds but
// the save fails, the discovered commands are returned alongside the error.
func (s *Store) Refresh(ctx context.Context, version string, src discover.Source) ([]command.Descriptor, error) {
	if _, err := s.Clear(); err != nil {
		s.logger.Warn("Failed to clear cache before refresh", "error", err)
	}

	commands, err := src.Commands(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh discovery failed: %w", err)
	}

	if err := s.Save(version, commands); err != nil {
		return commands, fmt.Errorf("refresh save failed: %w", err)
	}

	return commands, nil
}

// Stat reports the state of the artifact on disk for diagnostics. It never
// fails: unreadable or malformed artifacts report Exists with zero metadata.
func (s *Store) Stat() Info {
	info := Info{Path: s.Path()}

	if _, err := os.Stat(s.Path()); err != nil {
		return info
	}
	info.Exists = true

	snap, err := s.read()
	if err != nil {
		return info
	}

	captured := time.UnixMilli(snap.Timestamp)
	age := time.Since(captured)

	info.Version = snap.Version
	info.Captured = captured
	info.Age = age.Round(time.Second).String()
	info.Commands = len(snap.Commands)
	info.Expired = age > s.maxAge

	return info
}

// read loads and structurally validates the artifact.
func (s *Store) read() (snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot{}, fmt.Errorf("%w: artifact does not exist at %s", ErrNoUsableCache, s.Path())
		}
		return snapshot{}, fmt.Errorf("%w: artifact unreadable: %s", ErrNoUsableCache, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot{}, fmt.Errorf("%w: artifact is not valid JSON: %s", ErrNoUsableCache, err)
	}

	if err := snap.validate(); err != nil {
		return snapshot{}, fmt.Errorf("%w: %s", ErrNoUsableCache, err)
	}

	return snap, nil
}

// validate checks the structural invariants of a decoded snapshot.
func (s snapshot) validate() error {
	if s.Version == "" {
		return errors.New("missing version")
	}
	if s.Timestamp <= 0 {
		return errors.New("missing or invalid timestamp")
	}
	if s.Commands == nil {
		return errors.New("missing commands")
	}
	for i, c := range s.Commands {
		if c.ID == "" {
			return fmt.Errorf("command %d has no id", i)
		}
	}
	return nil
}
