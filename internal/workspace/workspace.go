// Package workspace manages the scratch directory tree and transient
// artifacts that live for exactly one scenario run.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"tetherharness/internal/shared/logging"
)

// Workspace is a per-run scratch area: <base>/input for the harness-written
// container, <base>/output as the hand-off zone the worker writes into, plus
// transient schema and launcher files. Every run gets a unique base
// directory so scenarios can execute in parallel.
type Workspace struct {
	base       string
	transients []string
	logger     logging.Logger

	mu       sync.Mutex
	tornDown bool
}

// New creates the workspace under root, or under the OS temp directory when
// root is empty. The input directory is created eagerly; the output
// directory is left to the worker, which may insist on creating it itself.
func New(root string, logger logging.Logger) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}

	base := filepath.Join(root, "tether-wc-"+uuid.NewString())

	// A collision is nearly impossible, but the contract is a fresh tree.
	if err := os.RemoveAll(base); err != nil {
		return nil, fmt.Errorf("workspace: clearing %s: %w", base, err)
	}
	if err := os.MkdirAll(filepath.Join(base, "input"), 0o755); err != nil {
		return nil, fmt.Errorf("workspace: creating %s: %w", base, err)
	}

	return &Workspace{base: base, logger: logger}, nil
}

// Base returns the workspace root directory.
func (w *Workspace) Base() string { return w.base }

// InputDir returns the directory holding the input container.
func (w *Workspace) InputDir() string { return filepath.Join(w.base, "input") }

// OutputDir returns the hand-off directory the worker writes into.
func (w *Workspace) OutputDir() string { return filepath.Join(w.base, "output") }

// InputFile returns the path for an input container file with the given name.
func (w *Workspace) InputFile(name string) string {
	return filepath.Join(w.InputDir(), name)
}

// MaterializeSchema writes schemaText to a fresh transient .avsc file and
// returns its path. The file is removed at teardown.
func (w *Workspace) MaterializeSchema(schemaText string) (string, error) {
	return w.materialize("wordcount-*.avsc", schemaText, 0o644)
}

// MaterializeLauncher writes scriptText to a fresh transient file, marks it
// executable for all principals, and returns its path. The file is removed
// at teardown.
func (w *Workspace) MaterializeLauncher(scriptText string) (string, error) {
	return w.materialize("exec-word-count-*", scriptText, 0o755)
}

func (w *Workspace) materialize(pattern, content string, mode os.FileMode) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("workspace: creating transient file: %w", err)
	}
	path := file.Name()

	w.mu.Lock()
	w.transients = append(w.transients, path)
	w.mu.Unlock()

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return "", fmt.Errorf("workspace: writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("workspace: closing %s: %w", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return "", fmt.Errorf("workspace: chmod %s: %w", path, err)
	}
	return path, nil
}

// Teardown removes the base directory and every transient artifact.
// Removal is best-effort: each failure is logged and the rest are still
// attempted. Safe to call more than once; later calls are no-ops.
func (w *Workspace) Teardown() {
	w.mu.Lock()
	if w.tornDown {
		w.mu.Unlock()
		return
	}
	w.tornDown = true
	transients := w.transients
	w.mu.Unlock()

	if err := os.RemoveAll(w.base); err != nil {
		w.logger.Warn("Failed to remove workspace", "path", w.base, "error", err)
	}
	for _, path := range transients {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			w.logger.Warn("Failed to remove transient artifact", "path", path, "error", err)
		}
	}
}
