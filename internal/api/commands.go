package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/contracts"
	"github.com/forcemcp/forcemcp/internal/errors"
)

// DomainCommand is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainCommand command.Descriptor

// Flag describes one flag of an sf command.
type Flag struct {
	Name        string   `json:"name" doc:"Long flag name without leading dashes" example:"target-org"`
	Char        string   `json:"char,omitempty" doc:"Single-letter short form" example:"o"`
	Description string   `json:"description,omitempty" doc:"Human readable flag description"`
	Required    bool     `json:"required" doc:"Whether the flag must be provided"`
	Type        string   `json:"type,omitempty" doc:"Flag value type as reported by the CLI" example:"string"`
	Options     []string `json:"options,omitempty" doc:"Closed set of accepted values"`
	Default     any      `json:"default,omitempty" doc:"Default value applied by the CLI"`
}

// Command describes one discovered sf command.
type Command struct {
	ID          string   `json:"id" doc:"Colon separated command identifier" example:"apex:log:get"`
	Name        string   `json:"name" doc:"Leaf command name" example:"get"`
	Topic       string   `json:"topic,omitempty" doc:"Topic path above the command" example:"apex:log"`
	Description string   `json:"description,omitempty" doc:"Human readable command description"`
	Flags       []Flag   `json:"flags,omitempty" doc:"Flags the command accepts"`
	Examples    []string `json:"examples,omitempty" doc:"Example invocations from the CLI help"`
}

// CommandsResponse is the response for GET /commands.
type CommandsResponse struct {
	Body struct {
		Commands []Command `json:"commands" doc:"Every command in the active set"`
	}
}

// CommandRequest represents the incoming request for a single command lookup.
type CommandRequest struct {
	ID string `doc:"Colon separated command identifier" example:"apex:log:get" path:"id"`
}

// CommandResponse is the response for GET /commands/{id}.
type CommandResponse struct {
	Body Command
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainCommand) ToAPIType() Command {
	flags := make([]Flag, 0, len(d.Flags))
	for _, f := range d.Flags {
		flags = append(flags, Flag{
			Name:        f.Name,
			Char:        f.Char,
			Description: f.Description,
			Required:    f.Required,
			Type:        f.Type,
			Options:     f.Options,
			Default:     f.Default,
		})
	}

	return Command{
		ID:          d.ID,
		Name:        d.Name,
		Topic:       d.Topic,
		Description: d.Description,
		Flags:       flags,
		Examples:    d.Examples,
	}
}

// RegisterCommandRoutes sets up the command listing API endpoint routes.
func RegisterCommandRoutes(routerAPI huma.API, catalog contracts.CommandCatalog, apiPathPrefix string) {
	commandsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Commands"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		commandsAPI,
		huma.Operation{
			OperationID: "listCommands",
			Method:      http.MethodGet,
			Summary:     "List all discovered commands",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*CommandsResponse, error) {
			return handleCommands(catalog)
		},
	)

	huma.Register(
		commandsAPI,
		huma.Operation{
			OperationID: "getCommand",
			Method:      http.MethodGet,
			Path:        "/{id}",
			Summary:     "Get a single command by ID",
			Tags:        tags,
		},
		func(ctx context.Context, input *CommandRequest) (*CommandResponse, error) {
			return handleCommand(catalog, input.ID)
		},
	)
}

// handleCommands returns the full active command set.
func handleCommands(catalog contracts.CommandCatalog) (*CommandsResponse, error) {
	domainCommands := catalog.Commands()

	commands := make([]Command, 0, len(domainCommands))
	for _, d := range domainCommands {
		commands = append(commands, DomainCommand(d).ToAPIType())
	}

	resp := &CommandsResponse{}
	resp.Body.Commands = commands

	return resp, nil
}

// handleCommand returns one command by its colon separated ID.
func handleCommand(catalog contracts.CommandCatalog, id string) (*CommandResponse, error) {
	for _, d := range catalog.Commands() {
		if d.ID == id {
			resp := &CommandResponse{}
			resp.Body = DomainCommand(d).ToAPIType()

			return resp, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", errors.ErrCommandNotFound, id)
}
