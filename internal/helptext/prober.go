package helptext

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/discover"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// Prober builds command descriptors by running `--help` per command ID and
// parsing the output. It serves the same role as the structured lister when
// the machine-readable listing is unavailable; the IDs to probe come from
// the caller (typically a stale cache).
// NewProber should be used to create instances of Prober.
type Prober struct {
	cli    sfcli.Runner
	parser *Parser
	ids    []string
	logger hclog.Logger
}

var _ discover.Source = (*Prober)(nil)

// NewProber creates a help-text prober for the given command IDs.
func NewProber(logger hclog.Logger, cli sfcli.Runner, tool string, ids []string) (*Prober, error) {
	if cli == nil {
		return nil, fmt.Errorf("CLI runner cannot be nil")
	}

	return &Prober{
		cli:    cli,
		parser: NewParser(tool),
		ids:    ids,
		logger: logger.Named("helptext"),
	}, nil
}

// Commands probes each ID and returns the descriptors that could be built.
// Individual probe failures are logged and skipped; an error is returned
// only when not a single command could be probed.
func (p *Prober) Commands(ctx context.Context) ([]command.Descriptor, error) {
	descriptors := make([]command.Descriptor, 0, len(p.ids))

	for _, id := range p.ids {
		if id == "" || discover.Ignored(id) {
			continue
		}

		args := append(strings.Split(id, command.Separator), "--help")
		result, err := p.cli.Run(ctx, "", args...)
		if err != nil && strings.TrimSpace(result.Stdout) == "" {
			p.logger.Warn("Help probe failed", "id", id, "error", err)
			continue
		}

		help := p.parser.Parse(result.Stdout)
		for _, miss := range help.Misses {
			p.logger.Debug("Unparsed flag-like line", "id", id, "line", miss)
		}

		topic, name := command.SplitID(id)
		description := help.Description
		if description == "" {
			description = id
		}

		descriptors = append(descriptors, command.Descriptor{
			ID:          id,
			Name:        name,
			Topic:       topic,
			Description: description,
			Flags:       help.Flags,
			Examples:    help.Examples,
		})
	}

	if len(descriptors) == 0 && len(p.ids) > 0 {
		return nil, fmt.Errorf("no commands could be probed from help output")
	}

	return descriptors, nil
}
