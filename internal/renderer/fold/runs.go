// Package fold renders single-line, width-bounded previews for collapsed
// code regions. A preview is the first line of the region, styled per its
// highlight spans and truncated to fit, followed by an informational suffix
// and padding.
package fold

// Tags with meaning to the renderer. Any other tag string is passed through
// to the theme untouched.
const (
	// TagDefault marks unstyled text, the suffix padding, and columns no
	// highlight span covers.
	TagDefault = ""

	// TagFoldInfo marks the informational suffix chunk.
	TagFoldInfo = "editor.fold-info"
)

// Span is a half-open highlight range [StartCol, EndCol) over a source line,
// in rune columns, carrying a style tag. Spans come from an external
// highlighter and are not required to be sorted, disjoint, or in bounds.
type Span struct {
	StartCol uint32
	EndCol   uint32
	Tag      string
}

// Run is a maximal contiguous range of columns sharing one style tag.
type Run struct {
	Text string
	Tag  string
}

// Chunk is the output unit: literal text paired with a style tag.
type Chunk struct {
	Text string
	Tag  string
}

// Runs derives the style-run sequence for a line. Each column is assigned
// the tag of the span covering it, spans applied in input order so the last
// applied wins on overlap (matching how highlighters report nested captures:
// the innermost capture is reported last and overwrites outer ones).
// Uncovered columns get TagDefault. Adjacent equal-tag columns are merged,
// so runs are contiguous, non-overlapping, and cover the line exactly once.
//
// Malformed spans never cause an error: inverted spans are ignored and
// out-of-range columns are clamped to the line.
func Runs(line string, spans []Span) []Run {
	runes := []rune(line)
	if len(runes) == 0 {
		return nil
	}

	tags := make([]string, len(runes))
	for _, sp := range spans {
		if sp.EndCol <= sp.StartCol {
			continue
		}
		start := int(sp.StartCol)
		if start >= len(runes) {
			continue
		}
		end := int(sp.EndCol)
		if end > len(runes) {
			end = len(runes)
		}
		for col := start; col < end; col++ {
			tags[col] = sp.Tag
		}
	}

	runs := make([]Run, 0, 4)
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || tags[i] != tags[start] {
			runs = append(runs, Run{Text: string(runes[start:i]), Tag: tags[start]})
			start = i
		}
	}
	return runs
}
