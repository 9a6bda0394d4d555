package translation

import (
	"sort"
	"strings"

	"blade-trans-sync/internal/parser"
)

const indent = "    "

// quoteEscaper escapes the only two characters that need it inside a
// double-quoted literal.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Serialize renders doc as a PHP array file. Languages keep their stored
// order and keys are sorted, so the output is byte-identical for equal
// documents and parses back to the same document.
func Serialize(doc *parser.Document) string {
	var b strings.Builder

	b.WriteString("<?php\n\nreturn [\n")

	languages := doc.Languages()
	for i, lang := range languages {
		table, _ := doc.Table(lang)

		b.WriteString(indent + quote(lang) + " => [\n")

		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(indent + indent + quote(k) + " => " + quote(table[k]) + ",\n")
		}

		b.WriteString(indent + "]")
		if i < len(languages)-1 {
			b.WriteString(",\n\n")
		} else {
			b.WriteString("\n")
		}
	}

	b.WriteString("];\n")
	return b.String()
}

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}
