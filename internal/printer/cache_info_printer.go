package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/cmd/output"
)

var _ output.Printer[cache.Info] = (*CacheInfoPrinter)(nil)

// CacheInfoPrinter renders the state of the command cache artifact.
type CacheInfoPrinter struct{}

func (p *CacheInfoPrinter) Header(w io.Writer, count int) {}

func (p *CacheInfoPrinter) Item(w io.Writer, elem cache.Info) error {
	_, _ = fmt.Fprintf(w, "Cache artifact: %s\n", elem.Path)

	if !elem.Exists {
		_, _ = fmt.Fprintln(w, "  No cached command listing exists.")
		return nil
	}

	_, _ = fmt.Fprintf(w, "  CLI version: %s\n", elem.Version)
	_, _ = fmt.Fprintf(w, "  Captured:    %s (%s ago)\n", elem.Captured.Format(time.RFC3339), elem.Age)
	_, _ = fmt.Fprintf(w, "  Commands:    %d\n", elem.Commands)

	state := "fresh"
	if elem.Expired {
		state = "expired"
	}
	_, _ = fmt.Fprintf(w, "  State:       %s\n", state)

	return nil
}

func (p *CacheInfoPrinter) Footer(w io.Writer, count int) {}
