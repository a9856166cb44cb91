package service

import (
	"log/slog"
	"sync"

	"github.com/pouriya/restcommander-sub000/command"
)

// Tree holds the current command tree. Reload swaps in a freshly discovered
// root; callers keep using the snapshot they obtained from Root.
type Tree struct {
	mux          sync.RWMutex
	root         *command.Node
	rootDir      string
	httpBasePath string
	logger       *slog.Logger
}

// NewTree discovers the tree rooted at rootDir.
func NewTree(rootDir, httpBasePath string, logger *slog.Logger) (*Tree, error) {
	t := &Tree{rootDir: rootDir, httpBasePath: httpBasePath, logger: logger}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Root returns the current snapshot.
func (t *Tree) Root() *command.Node {
	t.mux.RLock()
	defer t.mux.RUnlock()
	return t.root
}

// Reload rebuilds the tree. The previous root stays in place on failure.
func (t *Tree) Reload() error {
	root, err := command.Build(t.rootDir, t.httpBasePath, t.logger)
	if err != nil {
		return &ReloadError{Err: err}
	}
	t.mux.Lock()
	t.root = root
	t.mux.Unlock()
	t.logger.Debug("loaded commands", "root", t.rootDir, "commands", len(root.Leaves()))
	return nil
}
