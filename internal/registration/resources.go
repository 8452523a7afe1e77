package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/forcemcp/forcemcp/internal/command"
)

// resourceURIPrefix namespaces the per-command reference resources.
const resourceURIPrefix = "sf://commands/"

// registerResources exposes one plain-text reference per command so clients
// can read flag details without calling anything.
func (r *Registrar) registerResources(srv ToolServer, commands []command.Descriptor) {
	for _, d := range commands {
		uri := resourceURIPrefix + d.ID
		text := renderCommandReference(d)

		resource := mcp.NewResource(uri, "sf "+d.FullCommand(),
			mcp.WithResourceDescription(d.Description),
			mcp.WithMIMEType("text/plain"),
		)

		srv.AddResource(resource, func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "text/plain",
					Text:     text,
				},
			}, nil
		})
	}

	if len(commands) > 0 {
		r.logger.Debug("Registered command reference resources", "count", len(commands))
	}
}

// renderCommandReference formats one descriptor as readable reference text.
func renderCommandReference(d command.Descriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "sf %s\n", d.FullCommand())
	if d.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Description)
	}

	if len(d.Flags) > 0 {
		b.WriteString("\nFLAGS\n")
		for _, f := range d.Flags {
			marker := "  "
			if f.Required {
				marker = "* "
			}

			if f.Char != "" {
				fmt.Fprintf(&b, "%s-%s, --%s", marker, f.Char, f.Name)
			} else {
				fmt.Fprintf(&b, "%s--%s", marker, f.Name)
			}

			if f.Type != "" && f.Type != "boolean" && f.Type != "flag" {
				fmt.Fprintf(&b, " <%s>", f.Type)
			}
			if f.Description != "" {
				fmt.Fprintf(&b, "  %s", f.Description)
			}
			if len(f.Options) > 0 {
				fmt.Fprintf(&b, " (one of: %s)", strings.Join(f.Options, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n* required\n")
	}

	if len(d.Examples) > 0 {
		b.WriteString("\nEXAMPLES\n")
		for _, e := range d.Examples {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	return b.String()
}
