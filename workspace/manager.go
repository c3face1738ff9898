// Package workspace manages the ephemeral per-request directories that hold
// the automation script and the analysis engine's output files.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Workspace is a uniquely named directory owned by exactly one analysis
// request. It is destroyed exactly once; further Destroy calls are no-ops.
type Workspace struct {
	dir string

	mu        sync.Mutex
	destroyed bool
}

// Dir returns the absolute path of the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the path of a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Manager creates and removes workspaces under a single staging root.
// It is safe for unlimited concurrent use; every request gets a disjoint
// subtree, so no cross-request locking is needed.
type Manager struct {
	logger zerolog.Logger
	root   string
}

// NewManager ensures the staging root exists and returns a manager for it.
// The root itself is created once and never removed; only per-request
// subdirectories are.
func NewManager(logger zerolog.Logger, root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging root %s: %w", root, err)
	}
	return &Manager{
		logger: logger.With().Str("component", "workspace").Logger(),
		root:   root,
	}, nil
}

// Root returns the staging root directory.
func (m *Manager) Root() string {
	return m.root
}

// Create makes a fresh workspace directory named from the current process id
// and the request's correlation id.
func (m *Manager) Create(correlationID string) (*Workspace, error) {
	dir := filepath.Join(m.root, fmt.Sprintf("spectrace_%d_%s", os.Getpid(), correlationID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	m.logger.Debug().Str("dir", dir).Msg("Workspace created")
	return &Workspace{dir: dir}, nil
}

// Destroy recursively removes the workspace tree. Removal errors are logged
// and swallowed so cleanup can never mask the caller's own failure, and a
// second call on an already-destroyed workspace is a no-op.
func (m *Manager) Destroy(ws *Workspace) {
	if ws == nil {
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.destroyed {
		return
	}
	ws.destroyed = true

	if err := os.RemoveAll(ws.dir); err != nil {
		m.logger.Warn().Err(err).Str("dir", ws.dir).Msg("Failed to clean up workspace")
		return
	}
	m.logger.Debug().Str("dir", ws.dir).Msg("Workspace cleaned up")
}
