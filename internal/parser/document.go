package parser

import "strings"

// ParseDocument reads a translation file of the form
//
//	return [
//	    "en" => [
//	        "key" => "value",
//	    ],
//	];
//
// into a Document. Anything outside the recognized shape is skipped. The
// boolean is false when no language block was found, in which case callers
// should start from an empty document.
func ParseDocument(text string) (*Document, bool) {
	doc := NewDocument()
	pos := 0

	for pos < len(text) {
		if end, ok := skipComment(text, pos); ok {
			pos = end
			continue
		}

		if !IsQuote(text[pos]) {
			pos++
			continue
		}

		lit, ok := ScanLiteral(text, pos, ValueEscapes)
		if !ok {
			pos++
			continue
		}

		open, isBlock := blockOpening(text, lit.End)
		if !isBlock || lit.Value == "" {
			pos = lit.End
			continue
		}

		table, end, closed := parseEntries(text, open)
		if !closed {
			pos = lit.End
			continue
		}

		doc.Set(lit.Value, table)
		pos = end
	}

	return doc, doc.Len() > 0
}

// blockOpening checks for `=> [` at pos and returns the offset just past the
// bracket.
func blockOpening(text string, pos int) (int, bool) {
	pos, ok := arrow(text, pos)
	if !ok {
		return 0, false
	}

	pos = skipSpace(text, pos)
	if pos >= len(text) || text[pos] != '[' {
		return 0, false
	}

	return pos + 1, true
}

// arrow checks for the association operator after optional whitespace and
// returns the offset just past it.
func arrow(text string, pos int) (int, bool) {
	pos = skipSpace(text, pos)
	if !strings.HasPrefix(text[pos:], "=>") {
		return 0, false
	}
	return pos + 2, true
}

// parseEntries collects "key" => "value" pairs until the bracket closing the
// language block. It reports false if the text ends before that bracket.
func parseEntries(text string, pos int) (LanguageTable, int, bool) {
	table := make(LanguageTable)

	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) {
			return nil, pos, false
		}

		if end, ok := skipComment(text, pos); ok {
			pos = end
			continue
		}

		switch text[pos] {
		case ']':
			return table, pos + 1, true
		case ',':
			pos++
			continue
		}

		key, value, next, ok := parseEntry(text, pos)
		if !ok {
			pos = skipEntry(text, pos)
			continue
		}

		table[key] = value
		pos = next
	}
}

func parseEntry(text string, pos int) (key, value string, next int, ok bool) {
	k, ok := ScanLiteral(text, pos, ValueEscapes)
	if !ok {
		return "", "", 0, false
	}

	pos, ok = arrow(text, k.End)
	if !ok {
		return "", "", 0, false
	}

	v, ok := ScanLiteral(text, pos, ValueEscapes)
	if !ok {
		return "", "", 0, false
	}

	next = skipSpace(text, v.End)
	if next < len(text) && text[next] == ',' {
		next++
	}

	return k.Value, v.Value, next, true
}

// skipEntry moves past an entry that is not a literal pair: to the end of
// its line, or further while brackets opened inside it stay unclosed. A
// closing bracket that belongs to the enclosing block is left in place.
func skipEntry(text string, pos int) int {
	depth := 0

	for pos < len(text) {
		c := text[pos]

		if IsQuote(c) {
			if lit, ok := ScanLiteral(text, pos, ValueEscapes); ok {
				pos = lit.End
				continue
			}
		}

		switch c {
		case '[', '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ']':
			if depth == 0 {
				return pos
			}
			depth--
		case '\n':
			if depth == 0 {
				return pos + 1
			}
		}
		pos++
	}

	return pos
}

// skipComment recognizes //, # and /* */ comments at pos and returns the
// offset after them.
func skipComment(text string, pos int) (int, bool) {
	rest := text[pos:]

	switch {
	case strings.HasPrefix(rest, "//"), strings.HasPrefix(rest, "#"):
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			return pos + i + 1, true
		}
		return len(text), true
	case strings.HasPrefix(rest, "/*"):
		if i := strings.Index(rest[2:], "*/"); i >= 0 {
			return pos + 2 + i + 2, true
		}
		return len(text), true
	}

	return pos, false
}
