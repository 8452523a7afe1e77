// Package sfcli provides access to the Salesforce CLI binary: running
// commands with captured output, and probing the installed CLI version.
package sfcli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// DefaultBinary is the Salesforce CLI executable name resolved via PATH.
const DefaultBinary = "sf"

// maxCaptureBytes caps the bytes retained per output stream (10 MiB).
// Output beyond the cap is discarded, not buffered.
const maxCaptureBytes = 10 << 20

// Result holds the captured output of a single CLI invocation.
// ExitCode is -1 when the process could not be started.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts execution of the Salesforce CLI binary.
type Runner interface {
	// Run executes the CLI with the given arguments in dir (empty dir runs
	// in the process working directory), capturing stdout and stderr.
	// The returned Result is populated with whatever was captured even when
	// the invocation fails; err is non-nil unless the process exited zero.
	Run(ctx context.Context, dir string, args ...string) (Result, error)

	// Version reports the CLI's version string (first output line, trimmed).
	Version(ctx context.Context) (string, error)
}

// Client runs the Salesforce CLI via the local binary.
// NewClient should be used to create instances of Client.
type Client struct {
	// binary is the executable name or path to invoke.
	binary string

	// logger is used for logging CLI invocations.
	logger hclog.Logger
}

var _ Runner = (*Client)(nil)

// NewClient creates a new Salesforce CLI client.
func NewClient(logger hclog.Logger, opts ...Option) (*Client, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		binary: options.binary,
		logger: logger.Named("sfcli"),
	}, nil
}

// Run executes the CLI with the given arguments, inheriting the process
// environment. Both output streams are captured up to maxCaptureBytes each.
func (c *Client) Run(ctx context.Context, dir string, args ...string) (Result, error) {
	c.logger.Debug("Running CLI command", "binary", c.binary, "args", args, "dir", dir)

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir

	stdout := newCappedBuffer(maxCaptureBytes)
	stderr := newCappedBuffer(maxCaptureBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}

		return result, fmt.Errorf("'%s %s': %w", c.binary, strings.Join(args, " "), err)
	}

	return result, nil
}

// Version probes the CLI for its version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	result, err := c.Run(ctx, "", "--version")
	if err != nil {
		return "", fmt.Errorf("failed to probe CLI version: %w", err)
	}

	line, _, _ := strings.Cut(result.Stdout, "\n")
	version := strings.TrimSpace(line)
	if version == "" {
		return "", fmt.Errorf("CLI version probe produced no output")
	}

	return version, nil
}
