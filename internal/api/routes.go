package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/forcemcp/forcemcp/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(
	router huma.API,
	catalog contracts.CommandCatalog,
	cacheManager contracts.CacheManager,
	rootDirectory contracts.RootDirectory,
) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if catalog == nil || reflect.ValueOf(catalog).IsNil() {
		return "", fmt.Errorf("command catalog cannot be nil")
	}
	if cacheManager == nil || reflect.ValueOf(cacheManager).IsNil() {
		return "", fmt.Errorf("cache manager cannot be nil")
	}
	if rootDirectory == nil || reflect.ValueOf(rootDirectory).IsNil() {
		return "", fmt.Errorf("root directory cannot be nil")
	}

	// Extract API version from the router's OpenAPI spec.
	apiVersionID := router.OpenAPI().Info.Version

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", apiVersionID)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterHealthRoutes(versionedGroup, catalog, "/health")
	RegisterCommandRoutes(versionedGroup, catalog, "/commands")
	RegisterToolRoutes(versionedGroup, catalog, "/tools")
	RegisterRootRoutes(versionedGroup, rootDirectory, "/roots")
	RegisterCacheRoutes(versionedGroup, catalog, cacheManager, "/cache")

	return apiPathPrefix, nil
}
