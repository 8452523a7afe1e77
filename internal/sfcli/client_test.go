package sfcli

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

// writeFakeCLI writes an executable shell script standing in for the real
// CLI binary and returns its path.
func writeFakeCLI(t *testing.T, script string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake CLI scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-sf")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)
	require.NoError(t, err)

	return path
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c, err := NewClient(hclog.NewNullLogger())
	require.NoError(t, err)
	require.Equal(t, DefaultBinary, c.binary)
}

func TestNewClient_WithBinary(t *testing.T) {
	t.Parallel()

	c, err := NewClient(hclog.NewNullLogger(), WithBinary("/usr/local/bin/sf"))
	require.NoError(t, err)
	require.Equal(t, "/usr/local/bin/sf", c.binary)
}

func TestNewClient_WithEmptyBinary(t *testing.T) {
	t.Parallel()

	_, err := NewClient(hclog.NewNullLogger(), WithBinary("   "))
	require.Error(t, err)
	require.Contains(t, err.Error(), "binary cannot be empty")
}

func TestClient_Run_CapturesOutput(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `echo "hello stdout"
echo "hello stderr" >&2`)

	c, err := NewClient(hclog.NewNullLogger(), WithBinary(bin))
	require.NoError(t, err)

	result, err := c.Run(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.Equal(t, "hello stdout\n", result.Stdout)
	require.Equal(t, "hello stderr\n", result.Stderr)
}

func TestClient_Run_NonZeroExit(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `echo "partial output"
exit 3`)

	c, err := NewClient(hclog.NewNullLogger(), WithBinary(bin))
	require.NoError(t, err)

	result, err := c.Run(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, 3, result.ExitCode)
	require.Equal(t, "partial output\n", result.Stdout)
}

func TestClient_Run_MissingBinary(t *testing.T) {
	t.Parallel()

	c, err := NewClient(hclog.NewNullLogger(), WithBinary("forcemcp-test-no-such-binary"))
	require.NoError(t, err)

	result, err := c.Run(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, -1, result.ExitCode)
}

func TestClient_Run_WorkingDirectory(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `pwd`)
	dir := t.TempDir()

	c, err := NewClient(hclog.NewNullLogger(), WithBinary(bin))
	require.NoError(t, err)

	result, err := c.Run(context.Background(), dir)
	require.NoError(t, err)

	// Resolve symlinks so the comparison holds on systems where the temp
	// directory path is itself a symlink (e.g. /tmp on macOS).
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	require.Equal(t, resolved, strings.TrimSpace(result.Stdout))
}

func TestClient_Version(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `echo "@salesforce/cli/2.56.7 linux-x64 node-v20.17.0"
echo "extra line that must be ignored"`)

	c, err := NewClient(hclog.NewNullLogger(), WithBinary(bin))
	require.NoError(t, err)

	version, err := c.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "@salesforce/cli/2.56.7 linux-x64 node-v20.17.0", version)
}

func TestClient_Version_EmptyOutput(t *testing.T) {
	t.Parallel()

	bin := writeFakeCLI(t, `true`)

	c, err := NewClient(hclog.NewNullLogger(), WithBinary(bin))
	require.NoError(t, err)

	_, err = c.Version(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no output")
}

func TestCappedBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		max            int
		writes         []string
		expected       string
		expectTruncate bool
	}{
		{
			name:     "under cap",
			max:      16,
			writes:   []string{"hello"},
			expected: "hello",
		},
		{
			name:           "single write over cap",
			max:            4,
			writes:         []string{"hello"},
			expected:       "hell",
			expectTruncate: true,
		},
		{
			name:           "second write crosses cap",
			max:            6,
			writes:         []string{"hello", "world"},
			expected:       "hellow",
			expectTruncate: true,
		},
		{
			name:           "writes after cap are dropped",
			max:            2,
			writes:         []string{"ab", "cd", "ef"},
			expected:       "ab",
			expectTruncate: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := newCappedBuffer(tc.max)
			for _, w := range tc.writes {
				n, err := b.Write([]byte(w))
				require.NoError(t, err)
				require.Equal(t, len(w), n)
			}

			require.Equal(t, tc.expected, b.String())
			require.Equal(t, tc.expectTruncate, b.Truncated())
		})
	}
}
