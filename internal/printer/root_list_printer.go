package printer

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/forcemcp/forcemcp/internal/cmd/output"
	"github.com/forcemcp/forcemcp/internal/config"
)

var _ output.Printer[config.RootEntry] = (*RootListPrinter)(nil)

// RootListPrinter renders declared project roots.
type RootListPrinter struct{}

func (p *RootListPrinter) Header(w io.Writer, count int) {
	_, _ = fmt.Fprintf(w, "Declared project roots (%d):\n\n", count)
}

func (p *RootListPrinter) Item(w io.Writer, elem config.RootEntry) error {
	name := elem.Name
	if name == "" {
		// Unnamed roots take the directory basename, matching runtime behavior.
		name = filepath.Base(elem.Path)
	}

	_, _ = fmt.Fprintf(w, "  %s  %s", name, elem.Path)
	if elem.Default {
		_, _ = fmt.Fprint(w, "  (default)")
	}
	_, _ = fmt.Fprintln(w)

	if elem.Description != "" {
		_, _ = fmt.Fprintf(w, "      %s\n", elem.Description)
	}

	return nil
}

func (p *RootListPrinter) Footer(w io.Writer, count int) {}
