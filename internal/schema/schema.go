// Package schema synthesizes JSON Schema documents for discovered commands
// and validates incoming tool arguments against them.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/forcemcp/forcemcp/internal/command"
)

// ErrInvalidArguments indicates a tool call carried arguments that do not
// satisfy the command's synthesized schema.
var ErrInvalidArguments = errors.New("arguments do not match the command schema")

// Property maps one flag to its JSON Schema property.
//
// When the flag carries a closed option set, the property is an enumeration
// over that set regardless of the declared type. Otherwise the raw type
// string selects the rule, first match wins, defaulting to a free-form
// string for anything unrecognized (file, directory, url, date, id, ...).
func Property(f command.Flag) map[string]any {
	var prop map[string]any

	switch {
	case len(f.Options) > 0:
		values := make([]any, 0, len(f.Options))
		for _, o := range f.Options {
			values = append(values, o)
		}
		prop = map[string]any{"enum": values}
	default:
		switch f.Type {
		case "number", "integer", "int":
			prop = map[string]any{"type": "number"}
		case "boolean", "flag":
			prop = map[string]any{"type": "boolean"}
		case "array", "string[]":
			prop = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}
		case "json", "object":
			// Callers may pass structured data either pre-serialized or raw.
			prop = map[string]any{"type": []any{"string", "object"}}
		default:
			prop = map[string]any{"type": "string"}
		}
	}

	if f.Description != "" {
		prop["description"] = f.Description
	}
	if f.Default != nil {
		prop["default"] = f.Default
	}

	return prop
}

// ForCommand synthesizes the full argument schema for a command: an object
// with one property per flag and a required list for mandatory flags.
func ForCommand(d command.Descriptor) (json.RawMessage, error) {
	properties := make(map[string]any, len(d.Flags))
	required := make([]string, 0)

	for _, f := range d.Flags {
		if f.Name == "" {
			continue
		}
		properties[f.Name] = Property(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema for command '%s': %w", d.ID, err)
	}

	return data, nil
}

// Validate checks a tool call's arguments against a synthesized schema.
// Violations are collected into a single wrapped ErrInvalidArguments so the
// caller can report every problem at once.
func Validate(schema json.RawMessage, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate arguments: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(problems, "; "))
}
