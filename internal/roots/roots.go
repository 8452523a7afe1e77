// Package roots manages named working-directory contexts for commands that
// operate against a Salesforce project on disk.
package roots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// MarkerFile must exist directly inside a directory for it to validate as a
// project root.
const MarkerFile = "sfdx-project.json"

// ErrRootInvalid indicates a candidate path failed validation. No state is
// mutated when this is returned.
var ErrRootInvalid = errors.New("invalid project root")

// ErrNameConflict indicates the requested root name already belongs to a
// root at a different path.
var ErrNameConflict = errors.New("root name already in use")

// Root is one named working-directory context.
type Root struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

// Manager holds the process-lifetime root set. State lives in memory only
// and is mutated exclusively through SetRoot. Safe for concurrent use since
// the diagnostics API reads while the MCP loop mutates.
// NewManager should be used to create instances of Manager.
type Manager struct {
	mu     sync.RWMutex
	roots  []Root
	logger hclog.Logger
}

// NewManager creates an empty root manager.
func NewManager(logger hclog.Logger) *Manager {
	return &Manager{
		logger: logger.Named("roots"),
	}
}

// SetRoot validates a path and inserts or updates its root entry.
//
// New roots default their name to the last path segment and become the
// default only when they are the first root added. Updates merge: provided
// values override, absent values keep what was there. Whenever a root
// becomes the default, the flag is cleared on every other root in the same
// operation.
func (m *Manager) SetRoot(path string, opt ...Option) (Root, error) {
	options, err := NewOptions(opt...)
	if err != nil {
		return Root{}, err
	}

	abs, err := validatePath(path)
	if err != nil {
		return Root{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, r := range m.roots {
		if r.Path == abs {
			idx = i
			break
		}
	}

	var root Root
	if idx >= 0 {
		root = m.roots[idx]
		if options.hasName {
			root.Name = options.name
		}
		if options.hasDescription {
			root.Description = options.description
		}
		if options.hasDefault {
			root.IsDefault = options.isDefault
		}
	} else {
		root = Root{
			Path:      abs,
			Name:      filepath.Base(abs),
			IsDefault: len(m.roots) == 0,
		}
		if options.hasName {
			root.Name = options.name
		}
		if options.hasDescription {
			root.Description = options.description
		}
		if options.hasDefault {
			root.IsDefault = options.isDefault || root.IsDefault
		}
	}

	for i, r := range m.roots {
		if i != idx && r.Name == root.Name {
			return Root{}, fmt.Errorf("%w: %q already names %s", ErrNameConflict, root.Name, r.Path)
		}
	}

	if idx >= 0 {
		m.roots[idx] = root
	} else {
		m.roots = append(m.roots, root)
		idx = len(m.roots) - 1
	}

	if root.IsDefault {
		for i := range m.roots {
			if i != idx {
				m.roots[i].IsDefault = false
			}
		}
	}

	m.ensureDefault()

	// Re-read after the invariant pass so the caller sees the final state.
	root = m.roots[idx]

	m.logger.Info("Project root set", "name", root.Name, "path", root.Path, "default", root.IsDefault)

	return root, nil
}

// ListRoots returns a snapshot of all roots in registration order.
func (m *Manager) ListRoots() []Root {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Root, len(m.roots))
	copy(out, m.roots)

	return out
}

// DefaultRoot returns the current default root, if any.
func (m *Manager) DefaultRoot() (Root, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.roots {
		if r.IsDefault {
			return r, true
		}
	}

	return Root{}, false
}

// Lookup finds a root by name.
func (m *Manager) Lookup(name string) (Root, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.roots {
		if r.Name == name {
			return r, true
		}
	}

	return Root{}, false
}

// ensureDefault promotes the first root when nothing is marked default.
// Callers must hold the write lock.
func (m *Manager) ensureDefault() {
	if len(m.roots) == 0 {
		return
	}

	for _, r := range m.roots {
		if r.IsDefault {
			return
		}
	}

	m.roots[0].IsDefault = true
	m.logger.Debug("Promoted first root to default", "name", m.roots[0].Name)
}

// validatePath checks that the path is an existing directory carrying the
// project marker file, and returns it in absolute form.
func validatePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve path %q: %s", ErrRootInvalid, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: path does not exist: %s", ErrRootInvalid, abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: path is not a directory: %s", ErrRootInvalid, abs)
	}

	marker := filepath.Join(abs, MarkerFile)
	markerInfo, err := os.Stat(marker)
	if err != nil || markerInfo.IsDir() {
		return "", fmt.Errorf("%w: %s not found in %s", ErrRootInvalid, MarkerFile, abs)
	}

	return abs, nil
}
