package fold

import (
	"reflect"
	"testing"
)

func TestRuns(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		spans    []Span
		expected []Run
	}{
		{
			name:     "empty line",
			line:     "",
			spans:    []Span{{StartCol: 0, EndCol: 5, Tag: "keyword"}},
			expected: nil,
		},
		{
			name:     "no spans",
			line:     "abc",
			spans:    nil,
			expected: []Run{{Text: "abc", Tag: TagDefault}},
		},
		{
			name:     "full coverage single tag",
			line:     "func",
			spans:    []Span{{StartCol: 0, EndCol: 4, Tag: "keyword"}},
			expected: []Run{{Text: "func", Tag: "keyword"}},
		},
		{
			name: "adjacent same tag merges into one run",
			line: "abcdef",
			spans: []Span{
				{StartCol: 0, EndCol: 3, Tag: "A"},
				{StartCol: 3, EndCol: 6, Tag: "A"},
			},
			expected: []Run{{Text: "abcdef", Tag: "A"}},
		},
		{
			name: "distinct tags split",
			line: "func Foo",
			spans: []Span{
				{StartCol: 0, EndCol: 4, Tag: "keyword"},
				{StartCol: 5, EndCol: 8, Tag: "function"},
			},
			expected: []Run{
				{Text: "func", Tag: "keyword"},
				{Text: " ", Tag: TagDefault},
				{Text: "Foo", Tag: "function"},
			},
		},
		{
			name: "overlap last applied wins",
			line: "abcdef",
			spans: []Span{
				{StartCol: 0, EndCol: 6, Tag: "outer"},
				{StartCol: 2, EndCol: 4, Tag: "inner"},
			},
			expected: []Run{
				{Text: "ab", Tag: "outer"},
				{Text: "cd", Tag: "inner"},
				{Text: "ef", Tag: "outer"},
			},
		},
		{
			name: "overlap order matters",
			line: "abcdef",
			spans: []Span{
				{StartCol: 2, EndCol: 4, Tag: "inner"},
				{StartCol: 0, EndCol: 6, Tag: "outer"},
			},
			expected: []Run{{Text: "abcdef", Tag: "outer"}},
		},
		{
			name: "span past line end clamped",
			line: "abc",
			spans: []Span{
				{StartCol: 1, EndCol: 99, Tag: "A"},
			},
			expected: []Run{
				{Text: "a", Tag: TagDefault},
				{Text: "bc", Tag: "A"},
			},
		},
		{
			name: "span entirely out of range ignored",
			line: "abc",
			spans: []Span{
				{StartCol: 10, EndCol: 20, Tag: "A"},
			},
			expected: []Run{{Text: "abc", Tag: TagDefault}},
		},
		{
			name: "inverted span ignored",
			line: "abc",
			spans: []Span{
				{StartCol: 2, EndCol: 1, Tag: "A"},
			},
			expected: []Run{{Text: "abc", Tag: TagDefault}},
		},
		{
			name: "rune columns not byte columns",
			line: "日本語abc",
			spans: []Span{
				{StartCol: 0, EndCol: 3, Tag: "cjk"},
			},
			expected: []Run{
				{Text: "日本語", Tag: "cjk"},
				{Text: "abc", Tag: TagDefault},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Runs(tt.line, tt.spans)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRunsCoverLineExactly(t *testing.T) {
	line := "func Foo() { return 日本 }"
	spans := []Span{
		{StartCol: 0, EndCol: 4, Tag: "keyword"},
		{StartCol: 5, EndCol: 8, Tag: "function"},
		{StartCol: 13, EndCol: 19, Tag: "keyword"},
		{StartCol: 6, EndCol: 7, Tag: "odd"},
	}

	runs := Runs(line, spans)
	var rebuilt string
	for i, r := range runs {
		rebuilt += r.Text
		if i > 0 && runs[i-1].Tag == r.Tag {
			t.Errorf("adjacent runs %d and %d share tag %q", i-1, i, r.Tag)
		}
	}
	if rebuilt != line {
		t.Errorf("runs do not cover line: expected %q, got %q", line, rebuilt)
	}
}
