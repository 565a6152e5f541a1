package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Render.TabWidth != 4 {
		t.Errorf("expected tab width 4, got %d", cfg.Render.TabWidth)
	}
	if cfg.FillRune() != '·' {
		t.Errorf("expected fill rune ·, got %q", cfg.FillRune())
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Render.TabWidth != Default().Render.TabWidth {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foldview.toml")
	data := `
[render]
fill_char = " "
tab_width = 8

[theme]
path = "/etc/foldview/theme.toml"

[lua]
script = "foldtext.lua"

[lsp]
command = "gopls"
args = ["serve"]

[session]
path = "state.json"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Render.TabWidth != 8 {
		t.Errorf("expected tab width 8, got %d", cfg.Render.TabWidth)
	}
	if cfg.FillRune() != ' ' {
		t.Errorf("expected space fill, got %q", cfg.FillRune())
	}
	if cfg.Theme.Path != "/etc/foldview/theme.toml" {
		t.Errorf("unexpected theme path %q", cfg.Theme.Path)
	}
	if cfg.LSP.Command != "gopls" || len(cfg.LSP.Args) != 1 {
		t.Errorf("unexpected lsp config %+v", cfg.LSP)
	}
	if cfg.Session.Path != "state.json" {
		t.Errorf("unexpected session path %q", cfg.Session.Path)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[render\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.toml")
	data := "[render]\nfill_char = \"abc\"\ntab_width = -2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Render.TabWidth != 4 {
		t.Errorf("expected repaired tab width 4, got %d", cfg.Render.TabWidth)
	}
	if cfg.Render.FillChar != "·" {
		t.Errorf("expected repaired fill char, got %q", cfg.Render.FillChar)
	}
	if cfg.Render.SuffixFormat != Default().Render.SuffixFormat {
		t.Errorf("expected repaired suffix format, got %q", cfg.Render.SuffixFormat)
	}
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		hidden   int
		expected string
	}{
		{"default", Default().Render.SuffixFormat, 42, " ... 42 lines ... "},
		{"custom", " [+%d] ", 7, " [+7] "},
		{"static marker", " <folded> ", 7, " <folded> "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Render.SuffixFormat = tt.format
			if got := cfg.Suffix(tt.hidden); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foldview.toml")
	if err := os.WriteFile(path, []byte("[render]\ntab_width = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan Config, 1)
	w, err := Watch(path, func(cfg Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[render]\ntab_width = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.Render.TabWidth != 2 {
			t.Errorf("expected reloaded tab width 2, got %d", cfg.Render.TabWidth)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
