package api

import (
	"context"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/forcemcp/forcemcp/internal/cache"
	"github.com/forcemcp/forcemcp/internal/command"
	"github.com/forcemcp/forcemcp/internal/registration"
	"github.com/forcemcp/forcemcp/internal/roots"
)

// fakeCatalog implements contracts.CommandCatalog.
type fakeCatalog struct {
	summary    registration.Summary
	commands   []command.Descriptor
	refreshN   int
	refreshErr error
	refreshes  int
}

func (f *fakeCatalog) Summary() registration.Summary  { return f.summary }
func (f *fakeCatalog) Commands() []command.Descriptor { return f.commands }

func (f *fakeCatalog) RefreshCommands(_ context.Context) (int, error) {
	f.refreshes++
	return f.refreshN, f.refreshErr
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
	info     cache.Info
	cleared  bool
	clearErr error
}

func (f *fakeCacheManager) Stat() cache.Info { return f.info }

func (f *fakeCacheManager) Clear() (bool, error) { return f.cleared, f.clearErr }

func newRouter() huma.API {
	return humachi.New(chi.NewMux(), huma.DefaultConfig("forcemcp test", APIVersion))
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	prefix, err := RegisterRoutes(newRouter(), &fakeCatalog{}, &fakeCacheManager{}, &fakeRootDirectory{})
	require.NoError(t, err)
	require.Equal(t, "/api/v1", prefix)
}

func TestRegisterRoutes_RequiresDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		router  huma.API
		catalog *fakeCatalog
		cache   *fakeCacheManager
		roots   *fakeRootDirectory
	}{
		{name: "nil router", catalog: &fakeCatalog{}, cache: &fakeCacheManager{}, roots: &fakeRootDirectory{}},
		{name: "nil catalog", router: newRouter(), cache: &fakeCacheManager{}, roots: &fakeRootDirectory{}},
		{name: "nil cache manager", router: newRouter(), catalog: &fakeCatalog{}, roots: &fakeRootDirectory{}},
		{name: "nil root directory", router: newRouter(), catalog: &fakeCatalog{}, cache: &fakeCacheManager{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := RegisterRoutes(tc.router, tc.catalog, tc.cache, tc.roots)
			require.Error(t, err)
		})
	}
}
