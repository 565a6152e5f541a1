// Package highlight produces highlight spans for single lines using regex
// rules and a keyword table. It is a deliberately small lexer; structurally
// accurate highlighting comes from a language server when one is configured.
package highlight

import (
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/dshills/foldview/internal/renderer/fold"
)

// Highlighter tokenizes lines independently. Rules are tried in the order
// added and never re-cover text an earlier rule claimed, so the resulting
// spans are non-overlapping.
type Highlighter struct {
	rules    []rule
	keywords map[string]string
}

type rule struct {
	pattern *regexp.Regexp
	tag     string
}

var identPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// New creates an empty highlighter.
func New() *Highlighter {
	return &Highlighter{keywords: make(map[string]string)}
}

// AddRule appends a regex rule tagging whole matches. The pattern must
// compile; rules are part of a language definition, not user input.
func (h *Highlighter) AddRule(pattern, tag string) *Highlighter {
	h.rules = append(h.rules, rule{pattern: regexp.MustCompile(pattern), tag: tag})
	return h
}

// AddKeywords registers identifiers to tag when they appear as whole words.
func (h *Highlighter) AddKeywords(tag string, words ...string) *Highlighter {
	for _, w := range words {
		h.keywords[w] = tag
	}
	return h
}

// SpansForLine tokenizes one line. Columns in the returned spans are
// rune-indexed and sorted by start column.
func (h *Highlighter) SpansForLine(line string) []fold.Span {
	if line == "" {
		return nil
	}

	type byteSpan struct {
		start, end int
		tag        string
	}

	covered := make([]bool, len(line))
	claim := func(start, end int) bool {
		for i := start; i < end; i++ {
			if covered[i] {
				return false
			}
		}
		for i := start; i < end; i++ {
			covered[i] = true
		}
		return true
	}

	var raw []byteSpan
	for _, r := range h.rules {
		for _, m := range r.pattern.FindAllStringIndex(line, -1) {
			if m[0] == m[1] || !claim(m[0], m[1]) {
				continue
			}
			raw = append(raw, byteSpan{m[0], m[1], r.tag})
		}
	}
	for _, m := range identPattern.FindAllStringIndex(line, -1) {
		tag, ok := h.keywords[line[m[0]:m[1]]]
		if !ok || !claim(m[0], m[1]) {
			continue
		}
		raw = append(raw, byteSpan{m[0], m[1], tag})
	}

	if len(raw) == 0 {
		return nil
	}
	sort.Slice(raw, func(i, j int) bool { return raw[i].start < raw[j].start })

	spans := make([]fold.Span, len(raw))
	for i, bs := range raw {
		spans[i] = fold.Span{
			StartCol: uint32(utf8.RuneCountInString(line[:bs.start])),
			EndCol:   uint32(utf8.RuneCountInString(line[:bs.end])),
			Tag:      bs.tag,
		}
	}
	return spans
}
