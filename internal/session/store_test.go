package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, known := s.IsOpen("/tmp/a.go", 1, 5); known {
		t.Error("expected empty store to know nothing")
	}
}

func TestOpenCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, known := s.IsOpen("/tmp/a.go", 1, 5); known {
		t.Error("expected fresh store after corrupt file")
	}
}

func TestSetOpenAndIsOpen(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatal(err)
	}

	// Paths with dots must not split into nested keys.
	file := "/home/user/pkg.name/main.go"

	if err := s.SetOpen(file, 10, 20, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetOpen(file, 30, 40, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	open, known := s.IsOpen(file, 10, 20)
	if !known || open {
		t.Errorf("expected (closed, known), got (%v, %v)", open, known)
	}
	open, known = s.IsOpen(file, 30, 40)
	if !known || !open {
		t.Errorf("expected (open, known), got (%v, %v)", open, known)
	}
	if _, known := s.IsOpen(file, 50, 60); known {
		t.Error("expected unrecorded region unknown")
	}
	if _, known := s.IsOpen("/other/file.go", 10, 20); known {
		t.Error("expected other file unknown")
	}
}

func TestFlushAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetOpen("/tmp/a.go", 3, 9, false); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	open, known := reopened.IsOpen("/tmp/a.go", 3, 9)
	if !known || open {
		t.Errorf("expected persisted closed state, got (%v, %v)", open, known)
	}
}

func TestFlushCleanStoreIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file written for clean store")
	}
}

func TestForget(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetOpen("/tmp/a.go", 1, 2, false); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOpen("/tmp/b.go", 1, 2, false); err != nil {
		t.Fatal(err)
	}

	if err := s.Forget("/tmp/a.go"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, known := s.IsOpen("/tmp/a.go", 1, 2); known {
		t.Error("expected forgotten file unknown")
	}
	if _, known := s.IsOpen("/tmp/b.go", 1, 2); !known {
		t.Error("expected other file retained")
	}
}
