package theme

import (
	"fmt"
	"os"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dshills/foldview/internal/renderer/core"
)

// themeFile is the on-disk TOML shape.
type themeFile struct {
	Name       string              `toml:"name"`
	Background string              `toml:"background"`
	Foreground string              `toml:"foreground"`
	Tags       map[string]tagStyle `toml:"tags"`
}

type tagStyle struct {
	Fg        string `toml:"fg"`
	Bg        string `toml:"bg"`
	Bold      bool   `toml:"bold"`
	Dim       bool   `toml:"dim"`
	Italic    bool   `toml:"italic"`
	Underline bool   `toml:"underline"`
}

// parseColor accepts "#rrggbb" and "#rgb" hex forms plus a bare terminal
// palette index like "208".
func parseColor(s string) (core.Color, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return core.Color{}, fmt.Errorf("palette index %d out of range", n)
		}
		return core.ColorFromIndex(uint8(n)), nil
	}
	return core.ColorFromHex(s)
}

// Load reads a theme from a TOML file. A missing file is not an error: the
// default theme is returned, matching how absent configuration is treated
// elsewhere.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading theme file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses TOML theme data.
func Parse(data []byte) (*Theme, error) {
	var tf themeFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing theme: %w", err)
	}

	t := &Theme{
		Name:       tf.Name,
		Background: core.ColorFromRGB(30, 30, 30),
		Foreground: core.ColorFromRGB(212, 212, 212),
		TagStyles:  make(map[string]core.Style, len(tf.Tags)),
	}

	if tf.Background != "" {
		c, err := parseColor(tf.Background)
		if err != nil {
			return nil, fmt.Errorf("theme background: %w", err)
		}
		t.Background = c
	}
	if tf.Foreground != "" {
		c, err := parseColor(tf.Foreground)
		if err != nil {
			return nil, fmt.Errorf("theme foreground: %w", err)
		}
		t.Foreground = c
	}

	for tag, ts := range tf.Tags {
		style := core.DefaultStyle()
		if ts.Fg != "" {
			c, err := parseColor(ts.Fg)
			if err != nil {
				return nil, fmt.Errorf("theme tag %q fg: %w", tag, err)
			}
			style = style.WithForeground(c)
		}
		if ts.Bg != "" {
			c, err := parseColor(ts.Bg)
			if err != nil {
				return nil, fmt.Errorf("theme tag %q bg: %w", tag, err)
			}
			style = style.WithBackground(c)
		}
		if ts.Bold {
			style = style.Bold()
		}
		if ts.Dim {
			style = style.Dim()
		}
		if ts.Italic {
			style = style.Italic()
		}
		if ts.Underline {
			style = style.Underline()
		}
		t.TagStyles[tag] = style
	}

	t.ensureFoldInfo()
	return t, nil
}
