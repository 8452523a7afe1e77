package api

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forcemcp/forcemcp/internal/errors"
	"github.com/forcemcp/forcemcp/internal/roots"
)

func TestHandleRoots(t *testing.T) {
	t.Parallel()

	dir := &fakeRootDirectory{roots: []roots.Root{
		{Path: "/home/dev/app-one", Name: "app-one", IsDefault: true},
		{Path: "/home/dev/app-two", Name: "app-two", Description: "QA sandbox"},
	}}

	resp, err := handleRoots(dir)
	require.NoError(t, err)
	require.Len(t, resp.Body.Roots, 2)
	require.Equal(t, ProjectRoot{Path: "/home/dev/app-one", Name: "app-one", IsDefault: true}, resp.Body.Roots[0])
	require.Equal(t, "QA sandbox", resp.Body.Roots[1].Description)
}

func TestHandleRoots_Empty(t *testing.T) {
	t.Parallel()

	resp, err := handleRoots(&fakeRootDirectory{})
	require.NoError(t, err)
	require.Empty(t, resp.Body.Roots)
	require.NotNil(t, resp.Body.Roots, "renders as an empty JSON array, not null")
}

func TestHandleRoot(t *testing.T) {
	t.Parallel()

	dir := &fakeRootDirectory{roots: []roots.Root{
		{Path: "/home/dev/app-one", Name: "app-one", IsDefault: true},
	}}

	resp, err := handleRoot(dir, "app-one")
	require.NoError(t, err)
	require.Equal(t, "/home/dev/app-one", resp.Body.Path)
	require.True(t, resp.Body.IsDefault)
}

func TestHandleRoot_NotFound(t *testing.T) {
	t.Parallel()

	_, err := handleRoot(&fakeRootDirectory{}, "missing")
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrRootNotFound)
	require.Contains(t, err.Error(), "missing")
}
