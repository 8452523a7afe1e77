package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// fakeRunner returns canned CLI output and records invocations.
type fakeRunner struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
	calls    [][]string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) (sfcli.Result, error) {
	f.calls = append(f.calls, args)
	return sfcli.Result{Stdout: f.stdout, Stderr: f.stderr, ExitCode: f.exitCode}, f.err
}

func (f *fakeRunner) Version(_ context.Context) (string, error) {
	return "@salesforce/cli/2.0.0", nil
}

func TestLister_Commands(t *testing.T) {
	t.Parallel()

	listing := `[
		{
			"id": "apex:log:get",
			"summary": "Fetch debug logs.",
			"description": "Fetch the specified log or list the most recent logs.",
			"flags": {
				"target-org": {"char": "o", "description": "Target org.", "type": "option", "required": true},
				"number": {"char": "n", "description": "Number of logs.", "type": "integer"},
				"json": {"type": "boolean"}
			}
		},
		{
			"id": "org:list",
			"description": "List orgs."
		},
		{
			"id": "login"
		},
		{
			"id": "version"
		},
		{
			"id": "plugins:install",
			"summary": "Install a plugin."
		}
	]`

	runner := &fakeRunner{stdout: listing}
	lister, err := NewLister(hclog.NewNullLogger(), runner)
	require.NoError(t, err)

	commands, err := lister.Commands(context.Background())
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	require.Equal(t, []string{"commands", "--json"}, runner.calls[0])

	require.Len(t, commands, 3)

	apex := commands[0]
	require.Equal(t, "apex:log:get", apex.ID)
	require.Equal(t, "get", apex.Name)
	require.Equal(t, "apex:log", apex.Topic)
	require.Equal(t, "Fetch debug logs.", apex.Description)

	// Flags are sorted by name.
	require.Equal(t, []command.Flag{
		{Name: "json", Type: "boolean"},
		{Name: "number", Char: "n", Description: "Number of logs.", Type: "integer"},
		{Name: "target-org", Char: "o", Description: "Target org.", Required: true, Type: "option"},
	}, apex.Flags)

	org := commands[1]
	require.Equal(t, "org:list", org.ID)
	require.Equal(t, "list", org.Name)
	require.Equal(t, "org", org.Topic)
	require.Equal(t, "List orgs.", org.Description, "description field is the fallback when summary is absent")
	require.Empty(t, org.Flags)

	login := commands[2]
	require.Equal(t, "login", login.ID)
	require.Equal(t, "login", login.Name)
	require.Empty(t, login.Topic)
	require.Equal(t, "login", login.Description, "raw ID is the final description fallback")
}

func TestLister_Commands_FlagTypeDefaultsToString(t *testing.T) {
	t.Parallel()

	listing := `[
		{
			"id": "data:query",
			"summary": "Run a query.",
			"flags": {
				"query": {"char": "q", "description": "SOQL query."},
				"wait": {"type": "  "}
			}
		}
	]`

	lister, err := NewLister(hclog.NewNullLogger(), &fakeRunner{stdout: listing})
	require.NoError(t, err)

	commands, err := lister.Commands(context.Background())
	require.NoError(t, err)
	require.Len(t, commands, 1)

	for _, f := range commands[0].Flags {
		require.Equal(t, "string", f.Type)
		require.False(t, f.Required)
	}
}

func TestLister_Commands_ListingError(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("exec failed"), exitCode: -1}
	lister, err := NewLister(hclog.NewNullLogger(), runner)
	require.NoError(t, err)

	_, err = lister.Commands(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "command listing failed")
}

func TestLister_Commands_MalformedListing(t *testing.T) {
	t.Parallel()

	lister, err := NewLister(hclog.NewNullLogger(), &fakeRunner{stdout: "not json at all"})
	require.NoError(t, err)

	_, err = lister.Commands(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse command listing")
}

func TestLister_Commands_SkipsEntriesWithoutID(t *testing.T) {
	t.Parallel()

	listing := `[{"summary": "no id here"}, {"id": "org:list"}]`

	lister, err := NewLister(hclog.NewNullLogger(), &fakeRunner{stdout: listing})
	require.NoError(t, err)

	commands, err := lister.Commands(context.Background())
	require.NoError(t, err)
	require.Len(t, commands, 1)
	require.Equal(t, "org:list", commands[0].ID)
}

func TestNewLister_NilRunner(t *testing.T) {
	t.Parallel()

	_, err := NewLister(hclog.NewNullLogger(), nil)
	require.Error(t, err)
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{name: "bare meta command", id: "version", expected: true},
		{name: "meta command case-insensitive", id: "Help", expected: true},
		{name: "meta topic with subcommand", id: "plugins:install", expected: true},
		{name: "meta topic nested", id: "plugins:trust:verify", expected: true},
		{name: "regular top-level command", id: "login", expected: false},
		{name: "regular topic", id: "org:list", expected: false},
		{name: "topic containing meta name as suffix", id: "org:update", expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, Ignored(tc.id))
		})
	}
}
