//go:build docsgen_api
// +build docsgen_api

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/forcemcp/forcemcp/internal/api"
	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/registration"
	"github.com/forcemcp/forcemcp/internal/roots"
)

// stubCatalog provides a stub implementation for documentation generation.
type stubCatalog struct{}

func (s *stubCatalog) Summary() registration.Summary                { return registration.Summary{} }
func (s *stubCatalog) Commands() []command.Descriptor               { return nil }
func (s *stubCatalog) RefreshCommands(context.Context) (int, error) { return 0, nil }

// stubCacheManager provides a stub implementation for documentation generation.
type stubCacheManager struct{}

func (s *stubCacheManager) Stat() cache.Info     { return cache.Info{} }
func (s *stubCacheManager) Clear() (bool, error) { return false, nil }

// stubRootDirectory provides a stub implementation for documentation generation.
type stubRootDirectory struct{}

func (s *stubRootDirectory) ListRoots() []roots.Root          { return nil }
func (s *stubRootDirectory) Lookup(string) (roots.Root, bool) { return roots.Root{}, false }

// main generates the OpenAPI specification for the forcemcp diagnostics API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "forcemcp.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI spec, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	// Create a chi router (same as the daemon).
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	// Create Huma config and router (same as the daemon).
	config := huma.DefaultConfig("forcemcp docs", api.APIVersion)
	router := humachi.New(mux, config)

	// Register routes using stub dependencies.
	// The OpenAPI spec generation only needs the route definitions, not the actual handlers.
	apiPathPrefix, err := api.RegisterRoutes(router, &stubCatalog{}, &stubCacheManager{}, &stubRootDirectory{})
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	// Get the OpenAPI spec as YAML.
	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	// Ensure the docs directory exists.
	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	// Write the YAML to the output file.
	if err := os.WriteFile(outputPath, yamlBytes, 0o644); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
