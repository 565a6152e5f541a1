// Package session persists fold open/closed state across runs, keyed by
// file path and region line range, in a single JSON document. Updates are
// applied in place so unrelated state survives untouched.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store is a JSON-backed fold-state store. Safe for concurrent use.
type Store struct {
	path string

	mu    sync.Mutex
	data  []byte
	dirty bool
}

// Open loads the session file at path. A missing file yields an empty
// store; it is created on the first Flush.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{path: path, data: []byte("{}")}, nil
		}
		return nil, fmt.Errorf("session: reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		// A corrupt session file is not worth failing over; start fresh.
		return &Store{path: path, data: []byte("{}")}, nil
	}
	return &Store{path: path, data: data}, nil
}

// SetOpen records the open state for one region of one file.
func (s *Store) SetOpen(file string, startLine, endLine uint32, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := sjson.SetBytes(s.data, foldKey(file, startLine, endLine), open)
	if err != nil {
		return fmt.Errorf("session: recording fold state: %w", err)
	}
	s.data = data
	s.dirty = true
	return nil
}

// IsOpen reports the recorded state for a region. known is false when the
// session has no record, in which case callers keep their default.
func (s *Store) IsOpen(file string, startLine, endLine uint32) (open, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := gjson.GetBytes(s.data, foldKey(file, startLine, endLine))
	if !r.Exists() {
		return false, false
	}
	return r.Bool(), true
}

// Forget drops all recorded state for a file.
func (s *Store) Forget(file string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := sjson.DeleteBytes(s.data, "files."+escapeKey(file))
	if err != nil {
		return fmt.Errorf("session: forgetting %s: %w", file, err)
	}
	s.data = data
	s.dirty = true
	return nil
}

// Flush writes the store to disk atomically (temp file + rename). A clean
// store is a no-op.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("session: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(s.data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("session: writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("session: replacing %s: %w", s.path, err)
	}

	s.dirty = false
	return nil
}

// foldKey builds the JSON path for one region's state.
func foldKey(file string, startLine, endLine uint32) string {
	return fmt.Sprintf("files.%s.folds.%d-%d", escapeKey(file), startLine, endLine)
}

// escapeKey escapes path-syntax characters so a file path acts as a single
// JSON object key.
var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

func escapeKey(k string) string {
	return keyEscaper.Replace(k)
}
