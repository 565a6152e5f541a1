// Package config loads foldview configuration from TOML. A missing file is
// not an error; every field has a working default.
package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the full foldview configuration.
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Theme   ThemeConfig   `toml:"theme"`
	Lua     LuaConfig     `toml:"lua"`
	LSP     LSPConfig     `toml:"lsp"`
	Session SessionConfig `toml:"session"`
}

// RenderConfig controls the preview renderer.
type RenderConfig struct {
	// FillChar pads unused preview width. Must be a single rune.
	FillChar string `toml:"fill_char"`

	// TabWidth is the tab stop width used for display measurement.
	TabWidth int `toml:"tab_width"`

	// SuffixFormat is the fmt pattern for the fold suffix; %d receives
	// the hidden line count.
	SuffixFormat string `toml:"suffix_format"`
}

// ThemeConfig points at the theme file.
type ThemeConfig struct {
	Path string `toml:"path"`
}

// LuaConfig points at the optional foldtext script.
type LuaConfig struct {
	Script string `toml:"script"`
}

// LSPConfig describes the optional language server used for folding ranges.
type LSPConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// SessionConfig controls fold-state persistence.
type SessionConfig struct {
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: RenderConfig{
			FillChar:     "·",
			TabWidth:     4,
			SuffixFormat: " ... %d lines ... ",
		},
	}
}

// Load reads configuration from path, layered over the defaults. A missing
// file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg.normalized(), nil
}

// normalized repairs out-of-range values rather than erroring: a bad config
// should degrade, not prevent startup.
func (c Config) normalized() Config {
	if c.Render.TabWidth < 1 {
		c.Render.TabWidth = Default().Render.TabWidth
	}
	if utf8.RuneCountInString(c.Render.FillChar) != 1 {
		c.Render.FillChar = Default().Render.FillChar
	}
	if c.Render.SuffixFormat == "" {
		c.Render.SuffixFormat = Default().Render.SuffixFormat
	}
	return c
}

// Suffix formats the fold suffix for a hidden line count. A format without
// %d is a static marker and is returned as-is.
func (c Config) Suffix(hidden int) string {
	if !strings.Contains(c.Render.SuffixFormat, "%d") {
		return c.Render.SuffixFormat
	}
	return fmt.Sprintf(c.Render.SuffixFormat, hidden)
}

// FillRune returns the fill character as a rune.
func (c Config) FillRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Render.FillChar)
	return r
}
