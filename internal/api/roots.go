package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/forcemcp/forcemcp/internal/contracts"
	"github.com/forcemcp/forcemcp/internal/errors"
	"github.com/forcemcp/forcemcp/internal/roots"
)

// DomainRoot is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainRoot roots.Root

// ProjectRoot describes one registered Salesforce project directory.
type ProjectRoot struct {
	Path        string `json:"path" doc:"Absolute path of the project directory" example:"/home/dev/my-app"`
	Name        string `json:"name" doc:"Short name used to select this root" example:"my-app"`
	Description string `json:"description,omitempty" doc:"Free-form note about the project"`
	IsDefault   bool   `json:"isDefault" doc:"Whether project commands run here when no root is named"`
}

// RootsResponse is the response for GET /roots.
type RootsResponse struct {
	Body struct {
		Roots []ProjectRoot `json:"roots" doc:"Registered project roots"`
	}
}

// RootRequest represents the incoming request for a single project root lookup.
type RootRequest struct {
	Name string `doc:"Name of the project root" example:"my-app" path:"name"`
}

// RootResponse is the response for GET /roots/{name}.
type RootResponse struct {
	Body ProjectRoot
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainRoot) ToAPIType() ProjectRoot {
	return ProjectRoot{
		Path:        d.Path,
		Name:        d.Name,
		Description: d.Description,
		IsDefault:   d.IsDefault,
	}
}

// RegisterRootRoutes sets up the project root API endpoint routes.
func RegisterRootRoutes(routerAPI huma.API, rootDirectory contracts.RootDirectory, apiPathPrefix string) {
	rootsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Roots"}

	huma.Register(
		rootsAPI,
		huma.Operation{
			OperationID: "listRoots",
			Method:      http.MethodGet,
			Summary:     "List registered project roots",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*RootsResponse, error) {
			return handleRoots(rootDirectory)
		},
	)

	huma.Register(
		rootsAPI,
		huma.Operation{
			OperationID: "getRoot",
			Method:      http.MethodGet,
			Path:        "/{name}",
			Summary:     "Get a single project root by name",
			Tags:        tags,
		},
		func(ctx context.Context, input *RootRequest) (*RootResponse, error) {
			return handleRoot(rootDirectory, input.Name)
		},
	)
}

// handleRoots returns every registered project root.
func handleRoots(rootDirectory contracts.RootDirectory) (*RootsResponse, error) {
	domainRoots := rootDirectory.ListRoots()

	list := make([]ProjectRoot, 0, len(domainRoots))
	for _, r := range domainRoots {
		list = append(list, DomainRoot(r).ToAPIType())
	}

	resp := &RootsResponse{}
	resp.Body.Roots = list

	return resp, nil
}

// handleRoot returns one project root by name.
func handleRoot(rootDirectory contracts.RootDirectory, name string) (*RootResponse, error) {
	root, ok := rootDirectory.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrRootNotFound, name)
	}

	resp := &RootResponse{}
	resp.Body = DomainRoot(root).ToAPIType()

	return resp, nil
}
