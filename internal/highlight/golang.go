package highlight

// Go returns a highlighter configured for Go source. Line comments,
// strings, and character literals are matched before keywords so keyword
// text inside them stays untagged.
func Go() *Highlighter {
	h := New()
	h.AddRule(`//.*`, "comment.line")
	h.AddRule(`"(?:[^"\\]|\\.)*"`, "string")
	h.AddRule("`[^`]*`", "string")
	h.AddRule(`'(?:[^'\\]|\\.)*'`, "string")
	h.AddRule(`\b\d+(?:\.\d+)?\b`, "number")

	h.AddKeywords("keyword.control",
		"break", "case", "continue", "default", "defer", "else",
		"fallthrough", "for", "go", "goto", "if", "range", "return",
		"select", "switch")
	h.AddKeywords("keyword",
		"chan", "const", "func", "import", "interface", "map",
		"package", "struct", "type", "var")
	h.AddKeywords("type",
		"bool", "byte", "complex64", "complex128", "error", "float32",
		"float64", "int", "int8", "int16", "int32", "int64", "rune",
		"string", "uint", "uint8", "uint16", "uint32", "uint64",
		"uintptr", "any")
	h.AddKeywords("constant", "true", "false", "nil", "iota")

	return h
}
