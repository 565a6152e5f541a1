// Package width measures display width in terminal columns and truncates
// strings at safe boundaries. Widths account for tabs, wide glyphs, and
// control characters. The same measurer must be used for measuring and
// truncation or width accounting breaks.
package width

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Measurer reports the display width of a string in terminal columns.
type Measurer interface {
	StringWidth(s string) int
}

// Terminal measures width the way a terminal renders: wide glyphs occupy
// two columns, control runes occupy none, tabs advance to the next tab stop.
type Terminal struct {
	tabWidth int
}

// NewTerminal creates a terminal measurer with the given tab width.
func NewTerminal(tabWidth int) *Terminal {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &Terminal{tabWidth: tabWidth}
}

// TabWidth returns the configured tab width.
func (t *Terminal) TabWidth() int {
	return t.tabWidth
}

// nextTabStop returns the column of the tab stop after col.
func (t *Terminal) nextTabStop(col int) int {
	return col + t.tabWidth - (col % t.tabWidth)
}

// StringWidth returns the display width of s starting at column 0.
func (t *Terminal) StringWidth(s string) int {
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		col += t.clusterWidth(g.Str(), col)
	}
	return col
}

// Truncate returns the longest prefix of s whose display width does not
// exceed max, along with the width actually used. A grapheme cluster that
// would straddle the limit is dropped whole, so a wide glyph is never split
// into a corrupted half-column remainder.
func (t *Terminal) Truncate(s string, max int) (string, int) {
	if max <= 0 {
		return "", 0
	}

	col := 0
	end := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := t.clusterWidth(g.Str(), col)
		if col+w > max {
			break
		}
		col += w
		_, to := g.Positions()
		end = to
	}
	return s[:end], col
}

// clusterWidth returns the width of one grapheme cluster at the given column.
func (t *Terminal) clusterWidth(cluster string, col int) int {
	if cluster == "\t" {
		return t.nextTabStop(col) - col
	}
	return runewidth.StringWidth(cluster)
}
