// Package source provides line-level access to file content for the
// renderer. Lookups never fail hard: an unavailable line is reported with
// a false flag and the caller substitutes its fallback text.
package source

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Lines serves the literal text of individual lines.
type Lines interface {
	// Line returns the 0-indexed line's text, or false if the line is
	// unavailable (out of range, file unreadable).
	Line(n uint32) (string, bool)

	// LineCount returns the number of known lines.
	LineCount() int
}

// MemStore is an in-memory Lines implementation, mainly for tests and for
// content that arrives over a protocol rather than from disk.
type MemStore struct {
	mu    sync.RWMutex
	lines []string
}

// NewMemStore creates a store over the given content.
func NewMemStore(content string) *MemStore {
	return &MemStore{lines: splitLines(content)}
}

// Line implements Lines.
func (m *MemStore) Line(n uint32) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(n) >= len(m.lines) {
		return "", false
	}
	return m.lines[n], true
}

// LineCount implements Lines.
func (m *MemStore) LineCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines)
}

// SetContent replaces the stored content.
func (m *MemStore) SetContent(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = splitLines(content)
}

// FileStore serves lines from a file on disk, reloading when the file
// changes (see Watch).
type FileStore struct {
	path string

	mu    sync.RWMutex
	lines []string

	watcher *watcher
}

// NewFileStore loads path into memory and returns the store.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	if err := fs.reload(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return fs, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Line implements Lines.
func (f *FileStore) Line(n uint32) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if int(n) >= len(f.lines) {
		return "", false
	}
	return f.lines[n], true
}

// LineCount implements Lines.
func (f *FileStore) LineCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.lines)
}

// Reload re-reads the file from disk.
func (f *FileStore) Reload() error {
	return f.reload()
}

func (f *FileStore) reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.lines = splitLines(string(data))
	f.mu.Unlock()
	return nil
}

// Close stops the watcher, if one was started.
func (f *FileStore) Close() error {
	if f.watcher == nil {
		return nil
	}
	return f.watcher.close()
}

// splitLines splits content into lines without trailing newlines. A final
// newline does not produce a phantom empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
