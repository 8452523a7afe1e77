// Package naming derives unique, endpoint-safe tool names for discovered
// commands.
//
// Resolution is a pure pass over the full command set: every candidate name
// is computed up front, collisions are resolved deterministically in order,
// and the resulting plan is handed to registration. No registration side
// effects happen here, which keeps the collision policy testable on its own.
package naming

import (
	"fmt"
	"strings"

	"github.com/forcemcp/forcemcp/internal/command"
)

// Prefix starts every derived tool name.
const Prefix = "sf_"

// MaxNameLength is the hard ceiling on a tool name.
const MaxNameLength = 64

// minAliasNameLength is the shortest leaf name that still earns an alias.
// Single-letter or two-letter leaves make unhelpfully cryptic aliases.
const minAliasNameLength = 3

// Binding maps one tool name to the command it invokes.
type Binding struct {
	ToolName string
	Command  command.Descriptor
	IsAlias  bool
}

// Skip records a candidate name that could not be registered.
type Skip struct {
	ToolName  string
	CommandID string
	Reason    string
	IsAlias   bool
}

// Plan is the resolved set of name bindings for one registration run.
type Plan struct {
	Bindings []Binding
	Skipped  []Skip
}

// Canonical derives the full tool name for a command:
// "sf_" + topic with separators as underscores + "_" + leaf name.
func Canonical(d command.Descriptor) string {
	name := Prefix + d.Name
	if d.Topic != "" {
		name = Prefix + strings.ReplaceAll(d.Topic, command.Separator, "_") + "_" + d.Name
	}

	return truncate(sanitize(name))
}

// Alias derives the simplified short name for a deeply nested command and
// reports whether the command qualifies for one. Only commands nested at
// least two topic levels deep with a leaf name longer than two characters
// get an alias.
func Alias(d command.Descriptor) (string, bool) {
	if !d.Nested() || len(d.Name) < minAliasNameLength {
		return "", false
	}

	return truncate(sanitize(Prefix + strings.ToLower(d.Name))), true
}

// NewPlan resolves names for all commands against a reserved set of built-in
// tool names. Canonical names are resolved for every command first, then
// aliases are granted only where they collide with nothing already planned.
func NewPlan(commands []command.Descriptor, reserved []string) Plan {
	taken := make(map[string]struct{}, len(commands)+len(reserved))
	for _, r := range reserved {
		taken[r] = struct{}{}
	}

	plan := Plan{}
	registered := make([]command.Descriptor, 0, len(commands))

	for _, d := range commands {
		name := Canonical(d)
		if _, exists := taken[name]; exists {
			plan.Skipped = append(plan.Skipped, Skip{
				ToolName:  name,
				CommandID: d.ID,
				Reason:    fmt.Sprintf("canonical name %q is already taken", name),
			})
			continue
		}

		taken[name] = struct{}{}
		plan.Bindings = append(plan.Bindings, Binding{ToolName: name, Command: d})
		registered = append(registered, d)
	}

	// Aliases come second so no alias can shadow a later canonical name.
	for _, d := range registered {
		alias, ok := Alias(d)
		if !ok {
			continue
		}
		if _, exists := taken[alias]; exists {
			plan.Skipped = append(plan.Skipped, Skip{
				ToolName:  alias,
				CommandID: d.ID,
				Reason:    fmt.Sprintf("alias %q is already taken", alias),
				IsAlias:   true,
			})
			continue
		}

		taken[alias] = struct{}{}
		plan.Bindings = append(plan.Bindings, Binding{ToolName: alias, Command: d, IsAlias: true})
	}

	return plan
}

// sanitize replaces every character outside the safe identifier set with an
// underscore.
func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}

// truncate enforces the name length ceiling.
func truncate(name string) string {
	if len(name) > MaxNameLength {
		return name[:MaxNameLength]
	}

	return name
}
