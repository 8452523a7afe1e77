package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/contracts"
	"github.com/forcemcp/forcemcp/internal/registration"
	"github.com/forcemcp/forcemcp/internal/roots"
)

// The concrete implementations behind the API's contract interfaces.
var (
	_ contracts.CommandCatalog = (*registration.Registrar)(nil)
	_ contracts.RootDirectory  = (*roots.Manager)(nil)
	_ contracts.CacheManager   = (*cache.Store)(nil)
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "127.0.0.1:8611").
	Addr string

	// Catalog exposes the registered command set and refresh operation.
	Catalog contracts.CommandCatalog

	// CacheManager inspects and clears the command cache.
	CacheManager contracts.CacheManager

	// RootDirectory lists the configured project roots.
	RootDirectory contracts.RootDirectory

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	catalog contracts.CommandCatalog,
	cacheManager contracts.CacheManager,
	rootDirectory contracts.RootDirectory,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:          addr,
		Catalog:       catalog,
		CacheManager:  cacheManager,
		RootDirectory: rootDirectory,
		Logger:        logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Catalog == nil || reflect.ValueOf(d.Catalog).IsNil() {
		return fmt.Errorf("command catalog cannot be nil")
	}
	if d.CacheManager == nil || reflect.ValueOf(d.CacheManager).IsNil() {
		return fmt.Errorf("cache manager cannot be nil")
	}
	if d.RootDirectory == nil || reflect.ValueOf(d.RootDirectory).IsNil() {
		return fmt.Errorf("root directory cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}
