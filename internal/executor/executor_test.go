package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/forcemcp/forcemcp/internal/roots"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

type fakeResponse struct {
	stdout string
	stderr string
	exit   int
	err    error
}

// fakeRunner serves canned responses keyed by the joined argument list and
// records every invocation.
type fakeRunner struct {
	responses map[string]fakeResponse
	calls     [][]string
	dirs      []string
}

func (f *fakeRunner) Run(_ context.Context, dir string, args ...string) (sfcli.Result, error) {
	f.calls = append(f.calls, args)
	f.dirs = append(f.dirs, dir)

	r, ok := f.responses[strings.Join(args, " ")]
	if !ok {
		return sfcli.Result{ExitCode: -1}, fmt.Errorf("unexpected command: %s", strings.Join(args, " "))
	}

	return sfcli.Result{Stdout: r.stdout, Stderr: r.stderr, ExitCode: r.exit}, r.err
}

func (f *fakeRunner) Version(_ context.Context) (string, error) {
	return "@salesforce/cli/2.0.0", nil
}

const orgListJSON = `{
  "status": 0,
  "result": {
    "nonScratchOrgs": [
      {"username": "alice@example.com", "isDefaultUsername": true}
    ],
    "devHubs": [
      {"username": "hub@example.com", "isDefaultDevHubUsername": true}
    ],
    "sandboxes": [],
    "scratchOrgs": [],
    "other": []
  }
}`

func makeProject(t *testing.T, name string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, roots.MarkerFile), []byte("{}"), 0o644))

	return dir
}

func newTestEngine(t *testing.T, cli sfcli.Runner, m *roots.Manager) *Engine {
	t.Helper()

	if m == nil {
		m = roots.NewManager(hclog.NewNullLogger())
	}

	e, err := NewEngine(hclog.NewNullLogger(), cli, m)
	require.NoError(t, err)

	return e
}

func TestNewEngine_RequiresDependencies(t *testing.T) {
	t.Parallel()

	m := roots.NewManager(hclog.NewNullLogger())

	_, err := NewEngine(hclog.NewNullLogger(), nil, m)
	require.Error(t, err)

	_, err = NewEngine(hclog.NewNullLogger(), &fakeRunner{}, nil)
	require.Error(t, err)
}

func TestEngine_Execute_Success(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list": {stdout: "my orgs\n"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org list", "")
	require.False(t, res.IsError)
	require.Equal(t, "my orgs\n", res.Output)
	require.Equal(t, "my orgs\n", res.Stdout)
	require.Equal(t, [][]string{{"org", "list"}}, cli.calls)
	require.Equal(t, []string{""}, cli.dirs)
}

func TestEngine_Execute_SuccessWithOnlyStderr(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list": {stderr: "Warning: using API v60\n"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org list", "")
	require.False(t, res.IsError)
	require.Equal(t, "Warning: using API v60\n", res.Output)
}

func TestEngine_Execute_NoOutput(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list": {},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org list", "")
	require.False(t, res.IsError)
	require.Equal(t, "command completed with no output", res.Output)
}

func TestEngine_Execute_NonZeroExitPrefersStdout(t *testing.T) {
	t.Parallel()

	diagnostic := `{"status": 1, "message": "no default org"}`
	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org open": {stdout: diagnostic, stderr: "boom", exit: 1, err: fmt.Errorf("exit status 1")},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open", "")
	require.True(t, res.IsError)
	require.Equal(t, diagnostic, res.Output, "stdout is returned verbatim on failure")
	require.Equal(t, "boom", res.Stderr)
}

func TestEngine_Execute_NonZeroExitFallsBackToStderr(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org open": {stderr: "ERROR: NoDefaultEnvError\n", exit: 1, err: fmt.Errorf("exit status 1")},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open", "")
	require.True(t, res.IsError)
	require.Equal(t, "ERROR: NoDefaultEnvError\n", res.Output)
}

func TestEngine_Execute_SpawnFailureSurfacesError(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org open": {exit: -1, err: fmt.Errorf("'sf org open': executable not found")},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open", "")
	require.True(t, res.IsError)
	require.Contains(t, res.Output, "executable not found")
}

func TestEngine_Execute_EmptyCommand(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "   ", "")
	require.True(t, res.IsError)
	require.Equal(t, "no command provided", res.Output)
	require.Empty(t, cli.calls)
}

func TestEngine_Execute_QuotedArgumentsStayWhole(t *testing.T) {
	t.Parallel()

	query := "SELECT Id FROM Account"
	cli := &fakeRunner{responses: map[string]fakeResponse{
		"data query --query " + query: {stdout: "rows"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), `data query --query "SELECT Id FROM Account"`, "")
	require.False(t, res.IsError)
	require.Equal(t, [][]string{{"data", "query", "--query", query}}, cli.calls)
}

func TestEngine_Execute_ProjectCommandWithoutRoot(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "source deploy", "")
	require.True(t, res.IsError)
	require.Contains(t, res.Output, "sf_set_project_root")
	require.Contains(t, res.Output, roots.MarkerFile)
	require.Empty(t, cli.calls, "the process must not be spawned")
}

func TestEngine_Execute_ProjectCommandWithDefaultRoot(t *testing.T) {
	t.Parallel()

	dir := makeProject(t, "app")
	m := roots.NewManager(hclog.NewNullLogger())
	_, err := m.SetRoot(dir)
	require.NoError(t, err)

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"project deploy start": {stdout: "Deployed."},
	}}
	e := newTestEngine(t, cli, m)

	res := e.Execute(context.Background(), "project deploy start", "")
	require.False(t, res.IsError)
	require.Equal(t, []string{dir}, cli.dirs)
}

func TestEngine_Execute_NamedRoot(t *testing.T) {
	t.Parallel()

	mainDir := makeProject(t, "main")
	qaDir := makeProject(t, "qa")

	m := roots.NewManager(hclog.NewNullLogger())
	_, err := m.SetRoot(mainDir)
	require.NoError(t, err)
	_, err = m.SetRoot(qaDir, roots.WithName("qa"))
	require.NoError(t, err)

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"apex run": {stdout: "ok"},
	}}
	e := newTestEngine(t, cli, m)

	e.Execute(context.Background(), "apex run", "qa")
	require.Equal(t, []string{qaDir}, cli.dirs)

	// An unknown name falls back to the default root.
	e.Execute(context.Background(), "apex run", "staging")
	require.Equal(t, []string{qaDir, mainDir}, cli.dirs)
}

func TestEngine_Execute_SentinelSubstitution(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list --json":                        {stdout: orgListJSON},
		"org open --target-org alice@example.com": {stdout: "opened"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open --target-org default", "")
	require.False(t, res.IsError)
	require.Len(t, cli.calls, 2)
	require.Equal(t, []string{"org", "list", "--json"}, cli.calls[0])
	require.Equal(t, []string{"org", "open", "--target-org", "alice@example.com"}, cli.calls[1])
}

func TestEngine_Execute_SentinelShortFlag(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list --json":               {stdout: orgListJSON},
		"org open -o alice@example.com": {stdout: "opened"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open -o default", "")
	require.False(t, res.IsError)
	require.Equal(t, []string{"org", "open", "-o", "alice@example.com"}, cli.calls[1])
}

func TestEngine_Execute_SentinelDevHub(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list --json": {stdout: orgListJSON},
		"org create scratch --target-dev-hub hub@example.com": {stdout: "created"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org create scratch --target-dev-hub default", "")
	require.False(t, res.IsError)
	require.Equal(t,
		[]string{"org", "create", "scratch", "--target-dev-hub", "hub@example.com"},
		cli.calls[1],
		"the dev hub flag resolves against the dev hub default, not the org default",
	)
}

func TestEngine_Execute_SentinelBucketOrder(t *testing.T) {
	t.Parallel()

	listing := `{
  "result": {
    "nonScratchOrgs": [{"username": "carol@example.com"}],
    "scratchOrgs": [{"username": "bob@example.com", "isDefaultUsername": true}]
  }
}`
	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list --json":                      {stdout: listing},
		"org open --target-org bob@example.com": {stdout: "opened"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open --target-org default", "")
	require.False(t, res.IsError)
	require.Equal(t, []string{"org", "open", "--target-org", "bob@example.com"}, cli.calls[1])
}

func TestEngine_Execute_SentinelNoDefaultConfigured(t *testing.T) {
	t.Parallel()

	listing := `{"result": {"nonScratchOrgs": [{"username": "carol@example.com"}]}}`
	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list --json":               {stdout: listing},
		"org open --target-org default": {stdout: "opened"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open --target-org default", "")
	require.False(t, res.IsError)
	require.Equal(t, []string{"org", "open", "--target-org", "default"}, cli.calls[1],
		"without a default org the sentinel is passed through literally")
}

func TestEngine_Execute_SentinelProbeFailure(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list --json":               {stderr: "no auth", exit: 1, err: fmt.Errorf("exit status 1")},
		"org open --target-org default": {stdout: "opened"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "org open --target-org default", "")
	require.False(t, res.IsError)
	require.Equal(t, []string{"org", "open", "--target-org", "default"}, cli.calls[1])
}

func TestEngine_Execute_SentinelValueElsewhereUntouched(t *testing.T) {
	t.Parallel()

	// "default" only counts directly after an org flag.
	cli := &fakeRunner{responses: map[string]fakeResponse{
		"config set org-metadata-rest-deploy default": {stdout: "set"},
	}}
	e := newTestEngine(t, cli, nil)

	res := e.Execute(context.Background(), "config set org-metadata-rest-deploy default", "")
	require.False(t, res.IsError)
	require.Len(t, cli.calls, 1, "no probe runs when no org flag carries the sentinel")
}

func TestEngine_Resolve(t *testing.T) {
	t.Parallel()

	cli := &fakeRunner{responses: map[string]fakeResponse{
		"org list --json": {stdout: orgListJSON},
	}}
	e := newTestEngine(t, cli, nil)

	resolution, err := e.Resolve(context.Background(), "source deploy --target-org default", "")
	require.NoError(t, err)
	require.Equal(t, "source deploy --target-org alice@example.com", resolution.CommandLine)
	require.True(t, resolution.RequiresProject)
	require.False(t, resolution.Runnable, "project command with no root is not runnable")
	require.Empty(t, resolution.WorkingDir)
}

func TestEngine_Resolve_WithRoot(t *testing.T) {
	t.Parallel()

	dir := makeProject(t, "app")
	m := roots.NewManager(hclog.NewNullLogger())
	_, err := m.SetRoot(dir)
	require.NoError(t, err)

	e := newTestEngine(t, &fakeRunner{}, m)

	resolution, err := e.Resolve(context.Background(), "org list", "")
	require.NoError(t, err)
	require.False(t, resolution.RequiresProject)
	require.True(t, resolution.Runnable)
	require.Equal(t, dir, resolution.WorkingDir)
}
