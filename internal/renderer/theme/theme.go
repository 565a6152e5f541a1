// Package theme maps style tags to concrete terminal styles.
// Tags are TextMate-style scope strings ("keyword.control", "comment.line");
// lookup falls back through parent scopes so a theme only needs to name the
// scopes it cares about.
package theme

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/foldview/internal/renderer/core"
	"github.com/dshills/foldview/internal/renderer/fold"
)

// Theme defines colors and styles for rendering styled chunks.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Background is the view background color.
	Background core.Color

	// Foreground is the default text color.
	Foreground core.Color

	// TagStyles maps scope strings to styles.
	TagStyles map[string]core.Style
}

// StyleFor returns the style for a tag. Scope prefixes are walked from the
// root, so "keyword.control" inherits from "keyword" and overrides whatever
// it defines itself. Unknown tags get the default foreground.
func (t *Theme) StyleFor(tag string) core.Style {
	style := core.NewStyle(t.Foreground)
	found := false
	for i := 0; i <= len(tag); i++ {
		if i < len(tag) && tag[i] != '.' {
			continue
		}
		s, ok := t.TagStyles[tag[:i]]
		if !ok {
			continue
		}
		if !found {
			style = s
			found = true
			continue
		}
		style = style.Merge(s)
	}
	return style
}

// Default returns a dark theme covering the common syntax scopes plus the
// fold-info tag.
func Default() *Theme {
	t := &Theme{
		Name:       "Default Dark",
		Background: core.ColorFromRGB(30, 30, 30),
		Foreground: core.ColorFromRGB(212, 212, 212),
		TagStyles: map[string]core.Style{
			"comment":  core.NewStyle(core.ColorFromRGB(106, 153, 85)).Italic(),
			"string":   core.NewStyle(core.ColorFromRGB(206, 145, 120)),
			"number":   core.NewStyle(core.ColorFromRGB(181, 206, 168)),
			"keyword":  core.NewStyle(core.ColorFromRGB(197, 134, 192)),
			"operator": core.NewStyle(core.ColorFromRGB(212, 212, 212)),
			"function": core.NewStyle(core.ColorFromRGB(220, 220, 170)),
			"type":     core.NewStyle(core.ColorFromRGB(78, 201, 176)),
			"variable": core.NewStyle(core.ColorFromRGB(156, 220, 254)),
			"constant": core.NewStyle(core.ColorFromRGB(100, 102, 149)),
			"invalid":  core.NewStyle(core.ColorFromRGB(244, 71, 71)),

			"statusline": core.DefaultStyle().Reverse(),
		},
	}
	t.ensureFoldInfo()
	return t
}

// ensureFoldInfo derives a style for the fold suffix when the theme does not
// define one: the comment color pulled halfway toward the background, so the
// marker reads as dimmed metadata next to real code.
func (t *Theme) ensureFoldInfo() {
	if _, ok := t.TagStyles[fold.TagFoldInfo]; ok {
		return
	}
	base := t.Foreground
	if s, ok := t.TagStyles["comment"]; ok && !s.Foreground.IsDefault() {
		base = s.Foreground
	}
	if t.TagStyles == nil {
		t.TagStyles = make(map[string]core.Style)
	}
	t.TagStyles[fold.TagFoldInfo] = core.NewStyle(blendHcl(base, t.Background, 0.5)).Italic()
}

// blendHcl blends two colors in HCL space, which keeps the midpoint
// perceptually between them. Indexed and default colors cannot be blended
// and fall back to a.
func blendHcl(a, b core.Color, amount float64) core.Color {
	if a.Indexed || a.Default || b.Indexed || b.Default {
		return a
	}
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	m := ca.BlendHcl(cb, amount).Clamped()
	return core.ColorFromRGB(uint8(m.R*255+0.5), uint8(m.G*255+0.5), uint8(m.B*255+0.5))
}
