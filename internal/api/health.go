package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/forcemcp/forcemcp/internal/contracts"
	"github.com/forcemcp/forcemcp/internal/registration"
)

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
)

// HealthStatus summarizes whether the server has a usable command set.
type HealthStatus string

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Body struct {
		Status     HealthStatus `json:"status" doc:"Overall server status" example:"ok"`
		CLIVersion string       `json:"cliVersion,omitempty" doc:"Detected sf CLI version" example:"@salesforce/cli/2.56.7"`
		Source     string       `json:"source" doc:"Where the command set came from" example:"cache"`
		Commands   int          `json:"commands" doc:"Number of commands in the active set"`
		Tools      int          `json:"tools" doc:"Number of command tools bound, aliases included"`
		Uptime     string       `json:"uptime" doc:"Time since the server registered its tools" example:"1h2m3s"`
	}
}

// RegisterHealthRoutes sets up the health API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, catalog contracts.CommandCatalog, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}
	started := time.Now()

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getHealth",
			Method:      http.MethodGet,
			Summary:     "Report server health and command set provenance",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
			return handleHealth(catalog, started)
		},
	)
}

// handleHealth reports the outcome of the last registration run. The server
// is degraded when no command source could be used; the utility tools still
// work in that state, so it is not an error.
func handleHealth(catalog contracts.CommandCatalog, started time.Time) (*HealthResponse, error) {
	summary := catalog.Summary()

	status := HealthStatusOK
	if summary.Source == registration.SourceNone {
		status = HealthStatusDegraded
	}

	resp := &HealthResponse{}
	resp.Body.Status = status
	resp.Body.CLIVersion = summary.CLIVersion
	resp.Body.Source = summary.Source
	resp.Body.Commands = summary.Commands
	resp.Body.Tools = summary.Tools
	resp.Body.Uptime = time.Since(started).Round(time.Second).String()

	return resp, nil
}
