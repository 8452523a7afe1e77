package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/forcemcp/forcemcp/internal/cmd/output"
	"github.com/forcemcp/forcemcp/internal/command"
)

var _ output.Printer[command.Descriptor] = (*CommandListPrinter)(nil)

// CommandListPrinter renders discovered sf commands, one per line.
type CommandListPrinter struct{}

func (p *CommandListPrinter) Header(w io.Writer, count int) {
	_, _ = fmt.Fprintf(w, "Discovered %d sf commands:\n\n", count)
}

func (p *CommandListPrinter) Item(w io.Writer, elem command.Descriptor) error {
	_, _ = fmt.Fprintf(w, "  sf %s", elem.FullCommand())

	if desc := firstLine(elem.Description); desc != "" {
		_, _ = fmt.Fprintf(w, "  %s", desc)
	}

	if n := len(elem.Flags); n == 1 {
		_, _ = fmt.Fprint(w, " (1 flag)")
	} else if n > 1 {
		_, _ = fmt.Fprintf(w, " (%d flags)", n)
	}

	_, _ = fmt.Fprintln(w)

	return nil
}

func (p *CommandListPrinter) Footer(w io.Writer, count int) {}

// firstLine truncates multi-line descriptions for single-line listings.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	return s
}
