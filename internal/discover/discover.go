// Package discover enumerates the commands the Salesforce CLI reports about
// itself and normalizes them into descriptors.
package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// Source supplies a command set, either from the CLI's machine-readable
// listing or from a fallback parser. A Source error means "nothing usable";
// callers degrade to an empty set rather than aborting.
type Source interface {
	Commands(ctx context.Context) ([]command.Descriptor, error)
}

// ignoredTopics are meta commands (or whole topics) that manage the CLI
// itself rather than acting on an org or project, matched case-insensitively
// against the first ID segment.
var ignoredTopics = map[string]struct{}{
	"alias":        {},
	"autocomplete": {},
	"commands":     {},
	"doctor":       {},
	"help":         {},
	"info":         {},
	"interactive":  {},
	"plugins":      {},
	"search":       {},
	"update":       {},
	"version":      {},
	"which":        {},
	"whatsnew":     {},
}

// rawEntry is one element of the CLI's `commands --json` output.
type rawEntry struct {
	ID          string             `json:"id"`
	Summary     string             `json:"summary"`
	Description string             `json:"description"`
	Flags       map[string]rawFlag `json:"flags"`
}

// rawFlag is the loosely-typed flag metadata attached to a raw entry.
type rawFlag struct {
	Char        string   `json:"char"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
	Default     any      `json:"default"`
}

// Lister discovers commands via the CLI's own machine-readable listing.
// NewLister should be used to create instances of Lister.
type Lister struct {
	cli    sfcli.Runner
	logger hclog.Logger
}

var _ Source = (*Lister)(nil)

// NewLister creates a structured command discoverer backed by the given CLI.
func NewLister(logger hclog.Logger, cli sfcli.Runner) (*Lister, error) {
	if cli == nil {
		return nil, fmt.Errorf("CLI runner cannot be nil")
	}

	return &Lister{
		cli:    cli,
		logger: logger.Named("discover"),
	}, nil
}

// Commands invokes the CLI's listing command and normalizes the output.
// Entries on the ignore-list are dropped.
func (l *Lister) Commands(ctx context.Context) ([]command.Descriptor, error) {
	result, err := l.cli.Run(ctx, "", "commands", "--json")
	if err != nil {
		return nil, fmt.Errorf("command listing failed: %w", err)
	}

	var entries []rawEntry
	if err := json.Unmarshal([]byte(result.Stdout), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse command listing: %w", err)
	}

	descriptors := make([]command.Descriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if Ignored(entry.ID) {
			l.logger.Debug("Skipping meta command", "id", entry.ID)
			continue
		}
		descriptors = append(descriptors, normalize(entry))
	}

	l.logger.Info("Discovered commands", "count", len(descriptors))

	return descriptors, nil
}

// Ignored reports whether the command ID belongs to the fixed ignore-list,
// judged by its first segment (or the bare ID for top-level commands).
func Ignored(id string) bool {
	first, _, _ := strings.Cut(id, command.Separator)
	_, ok := ignoredTopics[strings.ToLower(first)]
	return ok
}

// normalize converts a raw listing entry into a command descriptor.
func normalize(entry rawEntry) command.Descriptor {
	topic, name := command.SplitID(entry.ID)

	description := strings.TrimSpace(entry.Summary)
	if description == "" {
		description = strings.TrimSpace(entry.Description)
	}
	if description == "" {
		description = entry.ID
	}

	// Flag metadata arrives as a map; sort by name so descriptor order is
	// deterministic across runs and cache round-trips.
	flagNames := make([]string, 0, len(entry.Flags))
	for flagName := range entry.Flags {
		flagNames = append(flagNames, flagName)
	}
	sort.Strings(flagNames)

	flags := make([]command.Flag, 0, len(flagNames))
	for _, flagName := range flagNames {
		raw := entry.Flags[flagName]

		flagType := strings.TrimSpace(raw.Type)
		if flagType == "" {
			flagType = "string"
		}

		flags = append(flags, command.Flag{
			Name:        flagName,
			Char:        raw.Char,
			Description: raw.Description,
			Required:    raw.Required,
			Type:        flagType,
			Options:     raw.Options,
			Default:     raw.Default,
		})
	}

	return command.Descriptor{
		ID:          entry.ID,
		Name:        name,
		Topic:       topic,
		Description: description,
		Flags:       flags,
	}
}
