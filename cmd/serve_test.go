package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forcemcp/forcemcp/internal/cache"
	internalcmd "github.com/forcemcp/forcemcp/internal/cmd"
	"github.com/forcemcp/forcemcp/internal/config"
	"github.com/forcemcp/forcemcp/internal/roots"
	"github.com/forcemcp/forcemcp/internal/sfcli"
)

func newServeCmdForTest(r sfcli.Runner) *ServeCmd {
	base := &internalcmd.BaseCmd{}
	base.SetLogger(hclog.NewNullLogger())

	return &ServeCmd{
		BaseCmd:   base,
		cfgLoader: &config.DefaultLoader{},
		runnerBuilder: func(hclog.Logger, string) (sfcli.Runner, error) {
			return r, nil
		},
	}
}

func cacheOnlyConfig(t *testing.T) (*config.Config, string) {
	t.Helper()

	cacheDir := t.TempDir()

	return &config.Config{Cache: &config.CacheConfigSection{Directory: &cacheDir}}, cacheDir
}

func TestNewServeCmd_AddrFlag(t *testing.T) {
	base := &internalcmd.BaseCmd{}

	cobraCmd, err := NewServeCmd(base)
	require.NoError(t, err)

	flag := cobraCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	require.Empty(t, flag.DefValue)
}

func TestServeCmd_BuildDaemon(t *testing.T) {
	cfg, cacheDir := cacheOnlyConfig(t)

	c := newServeCmdForTest(listingRunner())
	d, err := c.buildDaemon(context.Background(), hclog.NewNullLogger(), cfg)
	require.NoError(t, err)
	require.NotNil(t, d)

	// Registration runs discovery and persists the snapshot for next time.
	require.FileExists(t, filepath.Join(cacheDir, cache.ArtifactName))
}

func TestServeCmd_BuildDaemon_ToleratesUnusableCLI(t *testing.T) {
	cfg, cacheDir := cacheOnlyConfig(t)

	// No version, no listing: registration degrades to the utility tools
	// instead of refusing to start.
	broken := &fakeRunner{versionErr: context.DeadlineExceeded}
	c := newServeCmdForTest(broken)

	d, err := c.buildDaemon(context.Background(), hclog.NewNullLogger(), cfg)
	require.NoError(t, err)
	require.NotNil(t, d)
	require.NoFileExists(t, filepath.Join(cacheDir, cache.ArtifactName))
}

func TestServeCmd_BuildDaemon_WithAPI(t *testing.T) {
	cfg, _ := cacheOnlyConfig(t)

	c := newServeCmdForTest(listingRunner())
	c.Addr = "127.0.0.1:0"

	d, err := c.buildDaemon(context.Background(), hclog.NewNullLogger(), cfg)
	require.NoError(t, err)
	require.NotNil(t, d)
}

func TestServeCmd_BuildDaemon_APIAddrFromConfig(t *testing.T) {
	cfg, _ := cacheOnlyConfig(t)
	addr := "127.0.0.1:0"
	cfg.API = &config.APIConfigSection{Addr: &addr}

	c := newServeCmdForTest(listingRunner())

	d, err := c.buildDaemon(context.Background(), hclog.NewNullLogger(), cfg)
	require.NoError(t, err)
	require.NotNil(t, d)
}

func TestServeCmd_BuildDaemon_RejectsBadAPIAddr(t *testing.T) {
	cfg, _ := cacheOnlyConfig(t)

	c := newServeCmdForTest(listingRunner())
	c.Addr = "not-an-address"

	_, err := c.buildDaemon(context.Background(), hclog.NewNullLogger(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid API address")
}

func TestRegisterConfiguredRoots_SkipsInvalidEntries(t *testing.T) {
	project := makeProject(t)
	manager := roots.NewManager(hclog.NewNullLogger())

	registerConfiguredRoots(hclog.NewNullLogger(), manager, []config.RootEntry{
		{Path: project, Name: "demo", Description: "Main project", Default: true},
		{Path: filepath.Join(t.TempDir(), "missing"), Name: "ghost"},
	})

	registered := manager.ListRoots()
	require.Len(t, registered, 1)
	assert.Equal(t, "demo", registered[0].Name)
	assert.Equal(t, project, registered[0].Path)
	assert.True(t, registered[0].IsDefault)
}
