// Package executor resolves and runs sf command lines on behalf of
// registered tools.
//
// Execution never surfaces ordinary failures as errors. Every outcome,
// including spawn failures and non-zero exits, is folded into a Result so a
// caller relaying output always has something to show. Callers branch on
// the IsError flag, not on the shape of the output text.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/hashicorp/go-hclog"

	"github.com/forcemcp/forcemcp/internal/roots"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

// Sentinel is the placeholder org value resolved to the CLI's current
// default before execution.
const Sentinel = "default"

// orgFlags maps flags whose value may carry the sentinel to whether they
// address a Dev Hub rather than a regular target org.
var orgFlags = map[string]bool{
	"--target-org":     false,
	"-o":               false,
	"--target-dev-hub": true,
}

// projectTopics lists first command segments that only work inside a
// Salesforce project directory.
var projectTopics = map[string]struct{}{
	"apex":            {},
	"deploy":          {},
	"lightning":       {},
	"mdapi":           {},
	"package":         {},
	"project":         {},
	"retrieve":        {},
	"source":          {},
	"static-resource": {},
}

// Result is the outcome of one execution attempt. Stdout and Stderr keep
// the raw captures that produced Output.
type Result struct {
	Output  string `json:"output"`
	IsError bool   `json:"isError"`
	Stdout  string `json:"stdout,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

// Resolution describes how a command line would run, without running it.
type Resolution struct {
	CommandLine     string `json:"commandLine"`
	WorkingDir      string `json:"workingDir,omitempty"`
	RequiresProject bool   `json:"requiresProject"`
	Runnable        bool   `json:"runnable"`
}

// Engine executes sf command lines with sentinel substitution and project
// root resolution applied.
// NewEngine should be used to create instances of Engine.
type Engine struct {
	cli    sfcli.Runner
	roots  *roots.Manager
	logger hclog.Logger
}

// NewEngine creates a command execution engine.
func NewEngine(logger hclog.Logger, cli sfcli.Runner, rootManager *roots.Manager) (*Engine, error) {
	if cli == nil {
		return nil, fmt.Errorf("CLI runner is required")
	}
	if rootManager == nil {
		return nil, fmt.Errorf("root manager is required")
	}

	return &Engine{
		cli:    cli,
		roots:  rootManager,
		logger: logger.Named("executor"),
	}, nil
}

// Execute runs a command line, optionally inside a named project root.
func (e *Engine) Execute(ctx context.Context, commandLine string, rootName string) Result {
	tokens, err := shlex.Split(commandLine)
	if err != nil {
		return Result{Output: fmt.Sprintf("could not parse command line %q: %s", commandLine, err), IsError: true}
	}
	if len(tokens) == 0 {
		return Result{Output: "no command provided", IsError: true}
	}

	tokens = e.resolveSentinels(ctx, tokens)

	dir, hasDir := e.resolveWorkdir(rootName)

	if requiresProject(tokens) && !hasDir {
		e.logger.Debug("Refusing to run project command without a root", "command", tokens[0])
		return Result{Output: projectContextInstruction(strings.Join(tokens, " ")), IsError: true}
	}

	e.logger.Info("Executing command", "command", strings.Join(tokens, " "), "dir", dir)

	res, runErr := e.cli.Run(ctx, dir, tokens...)
	e.logger.Debug("Command finished", "exit_code", res.ExitCode)

	out := Result{Stdout: res.Stdout, Stderr: res.Stderr}

	if runErr == nil {
		out.Output = res.Stdout
		if strings.TrimSpace(out.Output) == "" {
			out.Output = res.Stderr
		}
		if strings.TrimSpace(out.Output) == "" {
			out.Output = "command completed with no output"
		}
		return out
	}

	// Failed runs still often emit usable diagnostics, most of the time as
	// JSON on stdout. Prefer those over the bare process error.
	out.IsError = true
	switch {
	case strings.TrimSpace(res.Stdout) != "":
		out.Output = res.Stdout
	case strings.TrimSpace(res.Stderr) != "":
		out.Output = res.Stderr
	default:
		out.Output = runErr.Error()
	}

	return out
}

// Resolve reports how a command line would execute: the line after sentinel
// substitution, the working directory, and whether the project context
// requirement is satisfied. Nothing is spawned beyond the org probe.
func (e *Engine) Resolve(ctx context.Context, commandLine string, rootName string) (Resolution, error) {
	tokens, err := shlex.Split(commandLine)
	if err != nil {
		return Resolution{}, fmt.Errorf("could not parse command line %q: %w", commandLine, err)
	}
	if len(tokens) == 0 {
		return Resolution{}, fmt.Errorf("no command provided")
	}

	tokens = e.resolveSentinels(ctx, tokens)
	dir, hasDir := e.resolveWorkdir(rootName)
	needsProject := requiresProject(tokens)

	return Resolution{
		CommandLine:     strings.Join(tokens, " "),
		WorkingDir:      dir,
		RequiresProject: needsProject,
		Runnable:        !needsProject || hasDir,
	}, nil
}

// resolveSentinels replaces sentinel org values with the CLI's current
// default for the matching flag flavor. The org listing is probed at most
// once per call. When no default exists or the probe fails, the sentinel is
// left as written and the command proceeds literally.
func (e *Engine) resolveSentinels(ctx context.Context, tokens []string) []string {
	var listing *orgListing

	for i := 0; i+1 < len(tokens); i++ {
		devHub, ok := orgFlags[tokens[i]]
		if !ok || tokens[i+1] != Sentinel {
			continue
		}

		if listing == nil {
			listing = e.probeOrgs(ctx)
			if listing == nil {
				return tokens
			}
		}

		username, found := listing.defaultFor(devHub)
		if !found {
			e.logger.Debug("No default org found for sentinel", "flag", tokens[i])
			continue
		}

		e.logger.Debug("Substituted sentinel org value", "flag", tokens[i], "username", username)
		tokens[i+1] = username
	}

	return tokens
}

// probeOrgs runs the read-only org listing. Returns nil when not even a
// parseable listing could be obtained.
func (e *Engine) probeOrgs(ctx context.Context) *orgListing {
	res, err := e.cli.Run(ctx, "", "org", "list", "--json")
	if err != nil && strings.TrimSpace(res.Stdout) == "" {
		e.logger.Debug("Org listing probe failed", "error", err)
		return nil
	}

	var listing orgListing
	if err := json.Unmarshal([]byte(res.Stdout), &listing); err != nil {
		e.logger.Debug("Org listing probe produced unparseable output", "error", err)
		return nil
	}

	return &listing
}

// resolveWorkdir picks the working directory for a run: the named root if
// it exists, otherwise the default root, otherwise none.
func (e *Engine) resolveWorkdir(rootName string) (string, bool) {
	if rootName != "" {
		if r, ok := e.roots.Lookup(rootName); ok {
			return r.Path, true
		}
		e.logger.Warn("Unknown project root, falling back to default", "name", rootName)
	}

	if r, ok := e.roots.DefaultRoot(); ok {
		return r.Path, true
	}

	return "", false
}

// requiresProject reports whether the command's first segment belongs to
// the project-bound command families.
func requiresProject(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}

	_, ok := projectTopics[tokens[0]]

	return ok
}

// projectContextInstruction tells the caller how to supply a project
// directory for a command that needs one.
func projectContextInstruction(commandLine string) string {
	return fmt.Sprintf(
		"The command 'sf %s' must run inside a Salesforce project directory, but no project root is configured. "+
			"Register one with the sf_set_project_root tool, pointing at a directory that contains %s, then retry.",
		commandLine, roots.MarkerFile,
	)
}

// orgListing mirrors the JSON shape of `sf org list --json`.
type orgListing struct {
	Result struct {
		NonScratchOrgs []orgEntry `json:"nonScratchOrgs"`
		DevHubs        []orgEntry `json:"devHubs"`
		Sandboxes      []orgEntry `json:"sandboxes"`
		ScratchOrgs    []orgEntry `json:"scratchOrgs"`
		Other          []orgEntry `json:"other"`
	} `json:"result"`
}

type orgEntry struct {
	Username                string `json:"username"`
	Alias                   string `json:"alias"`
	IsDefaultUsername       bool   `json:"isDefaultUsername"`
	IsDefaultDevHubUsername bool   `json:"isDefaultDevHubUsername"`
}

// defaultFor scans the category buckets in a fixed order and returns the
// first entry carrying the wanted default flag.
func (l *orgListing) defaultFor(devHub bool) (string, bool) {
	buckets := [][]orgEntry{
		l.Result.NonScratchOrgs,
		l.Result.DevHubs,
		l.Result.Sandboxes,
		l.Result.ScratchOrgs,
		l.Result.Other,
	}

	for _, bucket := range buckets {
		for _, entry := range bucket {
			if entry.Username == "" {
				continue
			}
			if devHub && entry.IsDefaultDevHubUsername {
				return entry.Username, true
			}
			if !devHub && entry.IsDefaultUsername {
				return entry.Username, true
			}
		}
	}

	return "", false
}
