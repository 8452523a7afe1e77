package daemon

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/errors"
	"github.com/forcemcp/forcemcp/internal/registration"
	"github.com/forcemcp/forcemcp/internal/roots"
)

// fakeCatalog implements contracts.CommandCatalog.
type fakeCatalog struct {
	summary  registration.Summary
	commands []command.Descriptor
}

func (f *fakeCatalog) Summary() registration.Summary  { return f.summary }
func (f *fakeCatalog) Commands() []command.Descriptor { return f.commands }

func (f *fakeCatalog) RefreshCommands(_ context.Context) (int, error) {
	return len(f.commands), nil
}

// fakeRootDirectory implements contracts.RootDirectory.
type fakeRootDirectory struct {
	roots []roots.Root
}

func (f *fakeRootDirectory) ListRoots() []roots.Root { return f.roots }

func (f *fakeRootDirectory) Lookup(name string) (roots.Root, bool) {
	for _, r := range f.roots {
		if r.Name == name {
			return r, true
		}
	}
	return roots.Root{}, false
}

// fakeCacheManager implements contracts.CacheManager.
type fakeCacheManager struct {
	info cache.Info
}

func (f *fakeCacheManager) Stat() cache.Info     { return f.info }
func (f *fakeCacheManager) Clear() (bool, error) { return f.info.Exists, nil }

func validAPIDependencies() APIDependencies {
	return APIDependencies{
		Addr:          "127.0.0.1:0",
		Catalog:       &fakeCatalog{},
		CacheManager:  &fakeCacheManager{},
		RootDirectory: &fakeRootDirectory{},
		Logger:        hclog.NewNullLogger(),
	}
}

func TestNewAPIServer(t *testing.T) {
	t.Parallel()

	srv, err := NewAPIServer(validAPIDependencies())
	require.NoError(t, err)
	require.NotNil(t, srv)
	require.Equal(t, DefaultAPIShutdownTimeout(), srv.shutdownTimeout)
	require.False(t, srv.cors.Enabled)
}

func TestNewAPIServer_AppliesOptions(t *testing.T) {
	t.Parallel()

	srv, err := NewAPIServer(validAPIDependencies(),
		WithCORSEnabled(true),
		WithCORSAllowOrigins([]string{"https://example.com"}),
		WithShutdownTimeout(time.Second),
	)
	require.NoError(t, err)
	require.True(t, srv.cors.Enabled)
	require.Equal(t, []string{"https://example.com"}, srv.cors.AllowOrigins)
	require.Equal(t, time.Second, srv.shutdownTimeout)
}

func TestNewAPIServer_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := NewAPIServer(validAPIDependencies(), WithShutdownTimeout(0))
	require.Error(t, err)
	require.Contains(t, err.Error(), "shutdown timeout must be positive")
}

func TestAPIDependencies_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(d *APIDependencies)
	}{
		{name: "empty address", mutate: func(d *APIDependencies) { d.Addr = "" }},
		{name: "address without port", mutate: func(d *APIDependencies) { d.Addr = "localhost" }},
		{name: "nil catalog", mutate: func(d *APIDependencies) { d.Catalog = nil }},
		{name: "nil cache manager", mutate: func(d *APIDependencies) { d.CacheManager = nil }},
		{name: "nil root directory", mutate: func(d *APIDependencies) { d.RootDirectory = nil }},
		{name: "nil logger", mutate: func(d *APIDependencies) { d.Logger = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps := validAPIDependencies()
			tc.mutate(&deps)
			require.Error(t, deps.Validate())
		})
	}

	require.NoError(t, validAPIDependencies().Validate())
}

func TestAPIServer_StartStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewAPIServer(validAPIDependencies(), WithShutdownTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err = srv.Start(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	logger := hclog.NewNullLogger()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "ErrBadRequest maps to 400",
			err:            errors.ErrBadRequest,
			expectedStatus: 400,
		},
		{
			name:           "ErrCommandNotFound maps to 404",
			err:            errors.ErrCommandNotFound,
			expectedStatus: 404,
		},
		{
			name:           "ErrRootNotFound maps to 404",
			err:            errors.ErrRootNotFound,
			expectedStatus: 404,
		},
		{
			name:           "ErrDiscoveryFailed maps to 502",
			err:            errors.ErrDiscoveryFailed,
			expectedStatus: 502,
		},
		{
			name:           "wrapped errors keep their mapping",
			err:            fmt.Errorf("%w: apex:log:get", errors.ErrCommandNotFound),
			expectedStatus: 404,
		},
		{
			name:           "Unknown error maps to 500",
			err:            fmt.Errorf("unknown error"),
			expectedStatus: 500,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			statusErr := mapError(logger, tc.err)
			require.Equal(t, tc.expectedStatus, statusErr.GetStatus())
		})
	}
}
