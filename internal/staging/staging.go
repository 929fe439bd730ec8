// Package staging buffers version updates and flushes them as one batch.
package staging

import (
	"context"
	"fmt"
	"maps"
)

// Writer persists a whole batch of module versions, keyed by module id.
// It must either apply every entry or report failure.
type Writer interface {
	WriteVersions(ctx context.Context, versions map[string]string) error
}

// WriterFunc adapts a function to the Writer interface
type WriterFunc func(ctx context.Context, versions map[string]string) error

// WriteVersions calls f
func (f WriterFunc) WriteVersions(ctx context.Context, versions map[string]string) error {
	return f(ctx, versions)
}

// Manager stages per-module versions in memory until Commit.
//
// A Manager is not safe for concurrent use; the release pipeline stages
// from a single goroutine.
type Manager struct {
	writer Writer
	staged map[string]string
}

// New creates a manager that flushes to w
func New(w Writer) *Manager {
	return &Manager{writer: w, staged: make(map[string]string)}
}

// Stage records version for moduleID. A later call for the same module wins.
func (m *Manager) Stage(moduleID, version string) {
	m.staged[moduleID] = version
}

// HasPending reports whether anything is staged
func (m *Manager) HasPending() bool {
	return len(m.staged) > 0
}

// Pending returns a copy of the staged batch
func (m *Manager) Pending() map[string]string {
	return maps.Clone(m.staged)
}

// Clear drops everything staged without writing
func (m *Manager) Clear() {
	clear(m.staged)
}

// Commit hands the full batch to the writer exactly once. The buffer is
// cleared only on success, so a failed commit can be retried as is.
func (m *Manager) Commit(ctx context.Context) error {
	if len(m.staged) == 0 {
		return nil
	}
	if err := m.writer.WriteVersions(ctx, maps.Clone(m.staged)); err != nil {
		return fmt.Errorf("failed to write %d staged versions: %w", len(m.staged), err)
	}
	clear(m.staged)
	return nil
}
