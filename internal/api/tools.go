package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/forcemcp/forcemcp/internal/contracts"
)

// ToolBinding describes one MCP tool bound to an sf command.
type ToolBinding struct {
	Tool    string `json:"tool" doc:"Registered MCP tool name" example:"sf_apex_log_get"`
	Command string `json:"command" doc:"Command the tool runs" example:"apex:log:get"`
	Alias   bool   `json:"alias" doc:"Whether this is a short alias for a deeply nested command"`
}

// SkippedTool describes a name that could not be bound during registration.
type SkippedTool struct {
	Tool    string `json:"tool" doc:"Tool name that was not bound" example:"sf_get"`
	Command string `json:"command" doc:"Command the name would have run" example:"apex:log:get"`
	Reason  string `json:"reason" doc:"Why the name was skipped"`
	Alias   bool   `json:"alias" doc:"Whether the skipped name was an alias"`
}

// ToolsResponse is the response for GET /tools.
type ToolsResponse struct {
	Body struct {
		Tools   []ToolBinding `json:"tools" doc:"Tool names bound to commands"`
		Skipped []SkippedTool `json:"skipped,omitempty" doc:"Names that collided and were not bound"`
	}
}

// RegisterToolRoutes sets up the tool listing API endpoint routes.
func RegisterToolRoutes(routerAPI huma.API, catalog contracts.CommandCatalog, apiPathPrefix string) {
	toolsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Tools"}

	huma.Register(
		toolsAPI,
		huma.Operation{
			OperationID: "listTools",
			Method:      http.MethodGet,
			Summary:     "List bound tool names and skipped collisions",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ToolsResponse, error) {
			return handleTools(catalog)
		},
	)
}

// handleTools reports the naming outcome of the last registration run.
func handleTools(catalog contracts.CommandCatalog) (*ToolsResponse, error) {
	plan := catalog.Summary().Plan

	tools := make([]ToolBinding, 0, len(plan.Bindings))
	for _, b := range plan.Bindings {
		tools = append(tools, ToolBinding{
			Tool:    b.ToolName,
			Command: b.Command.ID,
			Alias:   b.IsAlias,
		})
	}

	skipped := make([]SkippedTool, 0, len(plan.Skipped))
	for _, s := range plan.Skipped {
		skipped = append(skipped, SkippedTool{
			Tool:    s.ToolName,
			Command: s.CommandID,
			Reason:  s.Reason,
			Alias:   s.IsAlias,
		})
	}

	resp := &ToolsResponse{}
	resp.Body.Tools = tools
	resp.Body.Skipped = skipped

	return resp, nil
}
