package app

import (
	"github.com/dshills/foldview/internal/region"
	"github.com/dshills/foldview/internal/renderer/fold"
	"github.com/dshills/foldview/internal/renderer/width"
	"github.com/dshills/foldview/internal/source"
)

// foldedFallback stands in for a fold whose start line cannot be read,
// typically after the file shrank underneath the fold set.
const foldedFallback = "<fold line unavailable>"

// SpanProvider supplies highlight spans for a single source line.
type SpanProvider interface {
	SpansForLine(line string) []fold.Span
}

// FoldtextHook lets a plugin replace or reshape a fold preview.
type FoldtextHook interface {
	Foldtext(line string, hidden int) (suffix string, chunks []fold.Chunk, ok bool)
}

// Row is one display row: the source line it came from and its styled
// chunks. Folded rows carry the rendered preview instead of the line text.
type Row struct {
	Line   uint32
	Folded bool
	Chunks []fold.Chunk
}

// View maps a document plus its fold regions onto display rows.
type View struct {
	lines source.Lines
	regs  *region.Registry
	spans SpanProvider
	hook  FoldtextHook
	opts  fold.Options
	log   *Logger
}

// ViewConfig wires a View. Spans and Hook are optional; Logger defaults to
// NullLogger.
type ViewConfig struct {
	Lines    source.Lines
	Regions  *region.Registry
	Spans    SpanProvider
	Hook     FoldtextHook
	FillRune rune
	TabWidth int
	Suffix   func(hidden int) string
	Logger   *Logger
}

// NewView creates a View over the given document and region set.
func NewView(cfg ViewConfig) *View {
	if cfg.Logger == nil {
		cfg.Logger = NullLogger
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = fold.DefaultTabWidth
	}
	return &View{
		lines: cfg.Lines,
		regs:  cfg.Regions,
		spans: cfg.Spans,
		hook:  cfg.Hook,
		opts: fold.Options{
			FillRune: cfg.FillRune,
			Suffix:   cfg.Suffix,
			Width:    width.NewTerminal(cfg.TabWidth),
		},
		log: cfg.Logger.WithComponent("view"),
	}
}

// VisibleRows walks the document from top, skipping lines hidden inside
// closed regions, and returns up to height rows. Folded previews are
// rendered to the given width budget.
func (v *View) VisibleRows(top uint32, height, budget int) []Row {
	count := v.lines.LineCount()
	if count < 0 {
		count = 0
	}
	capHint := height
	if capHint > count {
		capHint = count
	}
	rows := make([]Row, 0, capHint)

	line := top
	for line < uint32(count) && len(rows) < height {
		if r, ok := v.regs.ClosedAt(line); ok {
			rows = append(rows, Row{
				Line:   line,
				Folded: true,
				Chunks: v.preview(r, budget),
			})
			line = r.EndLine + 1
			continue
		}
		if v.regs.Hidden(line) {
			// top can land inside a closed region when the fold set
			// changed after the last scroll.
			line++
			continue
		}
		text, ok := v.lines.Line(line)
		if !ok {
			break
		}
		rows = append(rows, Row{Line: line, Chunks: v.plain(text)})
		line++
	}
	return rows
}

// preview renders the one-row stand-in for a closed region.
func (v *View) preview(r region.Region, budget int) []fold.Chunk {
	opts := v.opts
	opts.Budget = budget

	text, ok := v.lines.Line(r.StartLine)
	if !ok {
		err := NewOperationError("render fold", "", ErrLineUnavailable)
		v.log.Warn("fold start line missing: %v (line %d)", err, r.StartLine)
		return fold.Passthrough(foldedFallback)
	}
	hidden := r.Hidden()

	if v.hook != nil {
		if suffix, chunks, ok := v.hook.Foldtext(text, hidden); ok {
			if chunks != nil {
				return fold.Clamp(chunks, opts)
			}
			opts.Suffix = func(int) string { return suffix }
		}
	}
	return fold.Render(text, v.spansFor(text), hidden, opts)
}

// plain converts an unfolded line into chunks without any width clamping;
// the terminal backend clips at the right edge.
func (v *View) plain(text string) []fold.Chunk {
	runs := fold.Runs(text, v.spansFor(text))
	chunks := make([]fold.Chunk, len(runs))
	for i, r := range runs {
		chunks[i] = fold.Chunk(r)
	}
	return chunks
}

func (v *View) spansFor(text string) []fold.Span {
	if v.spans == nil {
		return nil
	}
	return v.spans.SpansForLine(text)
}
