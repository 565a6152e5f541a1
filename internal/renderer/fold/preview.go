package fold

import (
	"fmt"
	"strings"

	"github.com/dshills/foldview/internal/renderer/width"
)

// Defaults for Options zero values.
const (
	DefaultFillRune rune = '·'
	DefaultTabWidth      = 4
)

// DefaultSuffix formats the informational suffix for a fold hiding the
// given number of lines.
func DefaultSuffix(hidden int) string {
	return fmt.Sprintf(" ... %d lines ... ", hidden)
}

// Measurer measures display width and truncates at safe glyph boundaries.
// Both operations must come from the same implementation; mixing two width
// functions breaks the budget invariant.
type Measurer interface {
	// StringWidth returns the display width of s in columns.
	StringWidth(s string) int

	// Truncate returns the longest prefix of s not exceeding max columns
	// and the width actually used. It never splits a multi-column glyph.
	Truncate(s string, max int) (prefix string, used int)
}

// Options configures a preview rendering.
type Options struct {
	// Budget is the available display width in columns. Zero renders
	// nothing beyond the degraded suffix-only case.
	Budget int

	// FillRune pads unused budget. Assumed single-column.
	// Zero means DefaultFillRune.
	FillRune rune

	// Suffix builds the informational suffix from the hidden line count.
	// Nil means DefaultSuffix.
	Suffix func(hidden int) string

	// Width measures and truncates. Nil means a terminal measurer with
	// DefaultTabWidth.
	Width Measurer
}

func (o Options) withDefaults() Options {
	if o.FillRune == 0 {
		o.FillRune = DefaultFillRune
	}
	if o.Suffix == nil {
		o.Suffix = DefaultSuffix
	}
	if o.Width == nil {
		o.Width = width.NewTerminal(DefaultTabWidth)
	}
	return o
}

// Render produces the preview line for a fold whose first line is line and
// which hides hidden lines. The result is an ordered chunk sequence:
// a possibly-truncated, highlight-styled prefix of line, the suffix, then
// padding if budget remains. Total display width never exceeds the budget,
// except when the suffix alone is wider than the budget: the suffix is
// emitted whole and the overflow is accepted rather than clamped.
//
// Suffix width is reserved first; the prefix then fills as much of the
// remaining space as it can, dropping a trailing partial wide glyph rather
// than rendering half of it.
func Render(line string, spans []Span, hidden int, opts Options) []Chunk {
	opts = opts.withDefaults()

	suffix := opts.Suffix(hidden)
	suffixWidth := opts.Width.StringWidth(suffix)
	if suffixWidth < 0 {
		panic(fmt.Sprintf("fold: negative suffix width %d", suffixWidth))
	}
	prefixBudget := opts.Budget - suffixWidth

	// Runs partition the line, so each run's width is measured against the
	// whole prefix ending at it. Measuring runs in isolation would restart
	// tab stops at column zero. Invariant: used == StringWidth(line[:off]).
	chunks := make([]Chunk, 0, 4)
	used := 0
	off := 0
	for _, run := range Runs(line, spans) {
		if used >= prefixBudget {
			break
		}
		end := off + len(run.Text)
		w := opts.Width.StringWidth(line[:end]) - used
		if w < 0 {
			panic(fmt.Sprintf("fold: negative run width %d for %q", w, run.Text))
		}
		if used+w <= prefixBudget {
			chunks = append(chunks, Chunk{Text: run.Text, Tag: run.Tag})
			used += w
			off = end
			continue
		}
		text, tw := opts.Width.Truncate(line[:end], prefixBudget)
		if len(text) > off {
			chunks = append(chunks, Chunk{Text: text[off:], Tag: run.Tag})
			used = tw
		}
		break
	}

	if suffix != "" {
		chunks = append(chunks, Chunk{Text: suffix, Tag: TagFoldInfo})
		used += suffixWidth
	}

	if pad := opts.Budget - used; pad > 0 {
		chunks = append(chunks, Chunk{
			Text: strings.Repeat(string(opts.FillRune), pad),
			Tag:  TagDefault,
		})
	}

	return coalesce(chunks)
}

// Clamp bounds an externally supplied chunk sequence to the budget and pads
// any remainder, so plugin-built previews honor the same width contract as
// Render. No suffix is reserved; the caller's chunks replace the whole line.
func Clamp(chunks []Chunk, opts Options) []Chunk {
	opts = opts.withDefaults()

	// As in Render, each chunk is measured against the concatenated text so
	// far, keeping tab stops aligned to the chunk's actual column.
	out := make([]Chunk, 0, len(chunks)+1)
	used := 0
	var prefix strings.Builder
	for _, c := range chunks {
		if used >= opts.Budget {
			break
		}
		total := opts.Width.StringWidth(prefix.String() + c.Text)
		if total <= opts.Budget {
			out = append(out, c)
			prefix.WriteString(c.Text)
			used = total
			continue
		}
		text, tw := opts.Width.Truncate(prefix.String()+c.Text, opts.Budget)
		if len(text) > prefix.Len() {
			out = append(out, Chunk{Text: text[prefix.Len():], Tag: c.Tag})
			used = tw
		}
		break
	}

	if pad := opts.Budget - used; pad > 0 {
		out = append(out, Chunk{
			Text: strings.Repeat(string(opts.FillRune), pad),
			Tag:  TagDefault,
		})
	}

	return coalesce(out)
}

// Passthrough wraps a caller-supplied fallback for an unreadable fold start
// line. The text is returned unchanged with no styling applied.
func Passthrough(fallback string) []Chunk {
	return []Chunk{{Text: fallback, Tag: TagDefault}}
}

// coalesce merges adjacent chunks sharing a tag. Runs arrive pre-merged;
// this guards the seams around the suffix and padding.
func coalesce(chunks []Chunk) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}
	out := chunks[:1]
	for _, c := range chunks[1:] {
		if last := &out[len(out)-1]; last.Tag == c.Tag {
			last.Text += c.Text
			continue
		}
		out = append(out, c)
	}
	return out
}
