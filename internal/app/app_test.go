package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestApplicationLifecycle(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "doc.go", "func a() {\n\tx := 1\n\ty := 2\n}\nvar z = 3\n")

	a, err := New(Options{File: file})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	a.AddRegion(0, 3, "region")
	if _, ok := a.ToggleFold(1); !ok {
		t.Fatal("expected toggle inside region to succeed")
	}

	rows := a.View().VisibleRows(0, 10, 40)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after fold, got %d", len(rows))
	}
	if !rows[0].Folded {
		t.Error("expected first row folded")
	}
}

func TestApplicationOpenMissingFile(t *testing.T) {
	a, err := New(Options{File: filepath.Join(t.TempDir(), "absent.go")})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if err := a.Open(context.Background()); err == nil {
		t.Error("expected error opening missing file")
	}
}

func TestApplicationSessionRestoresFoldState(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "doc.go", "func a() {\n\tx := 1\n}\nvar z = 3\n")
	cfgPath := writeFile(t, dir, "foldview.toml",
		"[session]\npath = \""+filepath.ToSlash(filepath.Join(dir, "session.json"))+"\"\n")

	opts := Options{File: file, ConfigPath: cfgPath}

	first, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := first.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	first.AddRegion(0, 2, "region")
	if _, ok := first.ToggleFold(0); !ok {
		t.Fatal("expected toggle to succeed")
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer second.Close()
	if err := second.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	second.AddRegion(0, 2, "region")

	r, ok := second.Regions().ClosedAt(0)
	if !ok {
		t.Fatal("expected fold to come back closed from the session store")
	}
	if r.EndLine != 2 {
		t.Errorf("expected restored region 0-2, got %d-%d", r.StartLine, r.EndLine)
	}
}

func TestApplicationConfigReload(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "doc.go", "func a() {\n\tx := 1\n}\n")
	cfgPath := writeFile(t, dir, "foldview.toml", "[render]\ntab_width = 4\n")

	a, err := New(Options{File: file, ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()
	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	changed := make(chan struct{}, 4)
	if err := a.Watch(func() { changed <- struct{}{} }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	before := a.View()
	writeFile(t, dir, "foldview.toml", "[render]\ntab_width = 8\n")

	deadline := time.After(5 * time.Second)
	for a.Config().Render.TabWidth != 8 {
		select {
		case <-changed:
		case <-deadline:
			t.Fatal("expected config reload to take effect")
		}
	}
	if a.View() == before {
		t.Error("expected view rebuilt after config reload")
	}
}

func TestHighlighterFor(t *testing.T) {
	if highlighterFor("main.go") == nil {
		t.Error("expected a highlighter for .go files")
	}
	if highlighterFor("notes.txt") != nil {
		t.Error("expected no highlighter for unknown extensions")
	}
}

func TestLanguageID(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"main.go", "go"},
		{"lib.rs", "rust"},
		{"app.py", "python"},
		{"notes.txt", "plaintext"},
	}

	for _, tt := range tests {
		if got := languageID(tt.path); got != tt.expected {
			t.Errorf("languageID(%q) = %q, expected %q", tt.path, got, tt.expected)
		}
	}
}
