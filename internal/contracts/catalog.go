// Package contracts defines the interfaces the API layer consumes, keeping it
// decoupled from the concrete registration, cache, and root implementations.
package contracts

import (
	"context"

	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/registration"
	"github.com/forcemcp/forcemcp/internal/roots"
)

// CommandCatalog provides read access to the outcome of tool registration.
type CommandCatalog interface {
	// Summary returns the result of the last registration run.
	Summary() registration.Summary

	// Commands returns a copy of the registered command descriptors.
	Commands() []command.Descriptor

	// RefreshCommands re-runs discovery and rewrites the command cache.
	// It returns the number of commands discovered.
	RefreshCommands(ctx context.Context) (int, error)
}

// RootDirectory provides read access to the configured project roots.
type RootDirectory interface {
	// ListRoots returns a copy of every registered project root.
	ListRoots() []roots.Root

	// Lookup returns the root registered under the given name.
	// It returns a boolean to indicate whether the root was found.
	Lookup(name string) (roots.Root, bool)
}

// CacheManager inspects and clears the on-disk command cache.
type CacheManager interface {
	// Stat describes the cache artifact without loading it.
	Stat() cache.Info

	// Clear removes the cache artifact, reporting whether one existed.
	Clear() (bool, error)
}
