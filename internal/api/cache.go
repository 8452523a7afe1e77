package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/contracts"
	"github.com/forcemcp/forcemcp/internal/errors"
)

// DomainCacheInfo is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainCacheInfo cache.Info

// CacheInfo describes the on-disk command cache artifact.
type CacheInfo struct {
	Path     string     `json:"path" doc:"Filesystem location of the cache artifact"`
	Exists   bool       `json:"exists" doc:"Whether an artifact is present"`
	Version  string     `json:"version,omitempty" doc:"CLI version that captured the artifact" example:"@salesforce/cli/2.56.7"`
	Captured *time.Time `json:"captured,omitempty" doc:"When the artifact was written"`
	Age      string     `json:"age,omitempty" doc:"Artifact age at the time of the request" example:"26h3m0s"`
	Commands int        `json:"commands" doc:"Number of commands in the artifact"`
	Expired  bool       `json:"expired" doc:"Whether the artifact is past its maximum age"`
}

// CacheInfoResponse is the response for GET /cache.
type CacheInfoResponse struct {
	Body CacheInfo
}

// CacheRefreshResponse is the response for POST /cache/refresh.
type CacheRefreshResponse struct {
	Body struct {
		Commands int    `json:"commands" doc:"Number of commands discovered"`
		Message  string `json:"message" doc:"Outcome of the refresh"`
	}
}

// CacheClearResponse is the response for DELETE /cache.
type CacheClearResponse struct {
	Body struct {
		Cleared bool `json:"cleared" doc:"Whether an artifact existed and was removed"`
	}
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainCacheInfo) ToAPIType() CacheInfo {
	var captured *time.Time
	if !d.Captured.IsZero() {
		c := d.Captured
		captured = &c
	}

	return CacheInfo{
		Path:     d.Path,
		Exists:   d.Exists,
		Version:  d.Version,
		Captured: captured,
		Age:      d.Age,
		Commands: d.Commands,
		Expired:  d.Expired,
	}
}

// RegisterCacheRoutes sets up the command cache API endpoint routes.
func RegisterCacheRoutes(
	routerAPI huma.API,
	catalog contracts.CommandCatalog,
	cacheManager contracts.CacheManager,
	apiPathPrefix string,
) {
	cacheAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Cache"}

	huma.Register(
		cacheAPI,
		huma.Operation{
			OperationID: "getCacheInfo",
			Method:      http.MethodGet,
			Summary:     "Describe the command cache artifact",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*CacheInfoResponse, error) {
			return handleCacheInfo(cacheManager)
		},
	)

	huma.Register(
		cacheAPI,
		huma.Operation{
			OperationID: "refreshCache",
			Method:      http.MethodPost,
			Path:        "/refresh",
			Summary:     "Re-discover commands and rewrite the cache",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*CacheRefreshResponse, error) {
			return handleCacheRefresh(ctx, catalog)
		},
	)

	huma.Register(
		cacheAPI,
		huma.Operation{
			OperationID: "clearCache",
			Method:      http.MethodDelete,
			Summary:     "Remove the command cache artifact",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*CacheClearResponse, error) {
			return handleCacheClear(cacheManager)
		},
	)
}

// handleCacheInfo describes the artifact without loading it.
func handleCacheInfo(cacheManager contracts.CacheManager) (*CacheInfoResponse, error) {
	resp := &CacheInfoResponse{}
	resp.Body = DomainCacheInfo(cacheManager.Stat()).ToAPIType()

	return resp, nil
}

// handleCacheRefresh re-runs discovery. A failed cache write after a
// successful discovery still reports the discovered count.
func handleCacheRefresh(ctx context.Context, catalog contracts.CommandCatalog) (*CacheRefreshResponse, error) {
	n, err := catalog.RefreshCommands(ctx)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrDiscoveryFailed, err)
	}

	resp := &CacheRefreshResponse{}
	resp.Body.Commands = n
	resp.Body.Message = fmt.Sprintf("Discovered %d commands and refreshed the cache. Tools update on the next server start.", n)
	if err != nil {
		resp.Body.Message = fmt.Sprintf("Discovered %d commands, but updating the cache failed: %s", n, err)
	}

	return resp, nil
}

// handleCacheClear removes the artifact.
func handleCacheClear(cacheManager contracts.CacheManager) (*CacheClearResponse, error) {
	cleared, err := cacheManager.Clear()
	if err != nil {
		return nil, err
	}

	resp := &CacheClearResponse{}
	resp.Body.Cleared = cleared

	return resp, nil
}
