package registration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/forcemcp/forcemcp/internal/command"
)

// BuildCommandLine renders validated tool arguments into the sf command
// line for one command. Only flags the command declares are rendered, so
// stray argument keys can never smuggle extra flags into the invocation.
func BuildCommandLine(d command.Descriptor, args map[string]any) string {
	parts := []string{d.FullCommand()}

	for _, f := range d.Flags {
		v, ok := args[f.Name]
		if !ok || v == nil {
			continue
		}

		switch value := v.(type) {
		case bool:
			if value {
				parts = append(parts, "--"+f.Name)
			}
		case []any:
			for _, item := range value {
				parts = append(parts, "--"+f.Name, quoteArg(stringify(item)))
			}
		default:
			parts = append(parts, "--"+f.Name, quoteArg(stringify(v)))
		}
	}

	return strings.Join(parts, " ")
}

// stringify renders one argument value as a command-line token. Structured
// values are serialized to JSON, which the CLI's json-typed flags accept.
func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	}
}

// quoteArg wraps a token in double quotes when it would otherwise split or
// be misread during command line parsing.
func quoteArg(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\n\"'\\") {
		return s
	}

	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	return `"` + s + `"`
}
