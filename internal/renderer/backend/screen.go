// Package backend draws styled chunk rows on a terminal via tcell.
package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/dshills/foldview/internal/renderer/core"
	"github.com/dshills/foldview/internal/renderer/fold"
	"github.com/dshills/foldview/internal/renderer/theme"
)

// Screen owns the tcell terminal and resolves chunk tags to styles through
// the active theme.
type Screen struct {
	screen tcell.Screen
	theme  *theme.Theme
	mu     sync.Mutex
}

// NewScreen creates a terminal screen using the given theme.
func NewScreen(th *theme.Theme) (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Screen{screen: screen, theme: th}, nil
}

// NewScreenWith wraps an existing tcell.Screen. Used by tests with a
// simulation screen.
func NewScreenWith(ts tcell.Screen, th *theme.Theme) *Screen {
	return &Screen{screen: ts, theme: th}
}

// SetTheme swaps the active theme. Subsequent draws resolve tags against
// the new theme; the base terminal style keeps whatever Init applied.
func (s *Screen) SetTheme(th *theme.Theme) {
	if th == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = th
}

// Init initializes the terminal and applies the theme's base colors.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.screen.Init(); err != nil {
		return err
	}
	base := tcell.StyleDefault
	if !s.theme.Foreground.IsDefault() {
		base = base.Foreground(convertColor(s.theme.Foreground))
	}
	if !s.theme.Background.IsDefault() {
		base = base.Background(convertColor(s.theme.Background))
	}
	s.screen.SetStyle(base)
	s.screen.HideCursor()
	return nil
}

// Fini restores the terminal.
func (s *Screen) Fini() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Fini()
}

// Size returns the terminal dimensions in cells.
func (s *Screen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.screen.Size()
}

// Clear erases the screen.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Clear()
}

// Show flushes pending drawing to the terminal.
func (s *Screen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Show()
}

// Sync forces a full repaint, used after resize.
func (s *Screen) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Sync()
}

// PollEvent blocks for the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// PostEvent injects an event into the queue, waking PollEvent. Safe to call
// from other goroutines.
func (s *Screen) PostEvent(ev tcell.Event) error {
	return s.screen.PostEvent(ev)
}

// DrawRow draws chunks left to right on row y, expanding tabs to the given
// tab stop width and clipping at the right edge.
func (s *Screen) DrawRow(y int, chunks []fold.Chunk, tabWidth int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxX, _ := s.screen.Size()
	x := 0
	for _, c := range chunks {
		style := convertStyle(s.theme.StyleFor(c.Tag))
		for _, r := range c.Text {
			if x >= maxX {
				return
			}
			if r == '\t' {
				next := (x/tabWidth + 1) * tabWidth
				for ; x < next && x < maxX; x++ {
					s.screen.SetContent(x, y, ' ', nil, style)
				}
				continue
			}
			s.screen.SetContent(x, y, r, nil, style)
			x += runeCells(r)
		}
	}
}

// DrawText draws plain text on row y using the style for tag.
func (s *Screen) DrawText(y int, text, tag string) {
	s.DrawRow(y, []fold.Chunk{{Text: text, Tag: tag}}, fold.DefaultTabWidth)
}

// runeCells reports how many cells tcell will advance for r. tcell handles
// wide runes itself; zero-width runes occupy no cell.
func runeCells(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 0 {
		return 0
	}
	return w
}

// convertStyle maps a theme style onto tcell.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		style = style.Foreground(convertColor(s.Foreground))
	}
	if !s.Background.IsDefault() {
		style = style.Background(convertColor(s.Background))
	}

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}

	return style
}

func convertColor(c core.Color) tcell.Color {
	if c.Indexed {
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
