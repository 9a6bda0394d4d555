package parser

import "strings"

// EscapeMode selects how backslash sequences inside a literal are decoded.
type EscapeMode int

const (
	// KeyEscapes honors only \\ and \<quote>. Any other backslash pair is
	// kept verbatim, since keys are identifiers rather than display text.
	KeyEscapes EscapeMode = iota
	// ValueEscapes additionally decodes \n, \t and \r. Any other escaped
	// character is kept without its backslash.
	ValueEscapes
)

// Literal is one quoted string read by ScanLiteral.
type Literal struct {
	// Value is the decoded content between the quotes.
	Value string
	// Quote is the delimiting quote character.
	Quote byte
	// End is the offset just past the closing quote.
	End int
}

// IsQuote reports whether c opens a string literal.
func IsQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`'
}

// ScanLiteral reads one quoted string literal at offset, after skipping
// whitespace. It returns false when no quote starts there or the literal
// is not closed before the end of text.
func ScanLiteral(text string, offset int, mode EscapeMode) (Literal, bool) {
	if offset < 0 {
		offset = 0
	}

	pos := skipSpace(text, offset)
	if pos >= len(text) || !IsQuote(text[pos]) {
		return Literal{}, false
	}

	quote := text[pos]
	pos++

	var b strings.Builder
	escaped := false

	for ; pos < len(text); pos++ {
		c := text[pos]

		if escaped {
			writeEscaped(&b, c, quote, mode)
			escaped = false
			continue
		}

		switch c {
		case '\\':
			escaped = true
		case quote:
			return Literal{Value: b.String(), Quote: quote, End: pos + 1}, true
		default:
			b.WriteByte(c)
		}
	}

	return Literal{}, false
}

func writeEscaped(b *strings.Builder, c, quote byte, mode EscapeMode) {
	if c == '\\' || c == quote {
		b.WriteByte(c)
		return
	}

	if mode == KeyEscapes {
		b.WriteByte('\\')
		b.WriteByte(c)
		return
	}

	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	default:
		b.WriteByte(c)
	}
}

// skipSpace returns the first offset at or after pos that is not ASCII whitespace.
func skipSpace(text string, pos int) int {
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
