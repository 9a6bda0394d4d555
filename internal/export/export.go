package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"blade-trans-sync/internal/parser"

	"github.com/goccy/go-yaml"
)

// Format names an export encoding.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want tsv, json or yaml)", s)
	}
}

// Write encodes doc to w. Languages keep document order; keys are sorted.
func Write(w io.Writer, doc *parser.Document, format Format) error {
	switch format {
	case FormatTSV:
		return writeTSV(w, doc)
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeTSV(w io.Writer, doc *parser.Document) error {
	var b strings.Builder
	b.WriteString("language\tkey\tvalue\n")

	for _, lang := range doc.Languages() {
		table, _ := doc.Table(lang)
		for _, key := range sortedKeys(table) {
			fmt.Fprintf(&b, "%s\t%s\t%s\n", escapeTSV(lang), escapeTSV(key), escapeTSV(table[key]))
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write TSV: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, doc *parser.Document) error {
	var compact bytes.Buffer
	compact.WriteByte('{')

	for i, lang := range doc.Languages() {
		if i > 0 {
			compact.WriteByte(',')
		}
		table, _ := doc.Table(lang)

		for _, v := range []any{lang, table} {
			encoded, err := encodeJSON(v)
			if err != nil {
				return err
			}
			compact.Write(encoded)
			if _, isLang := v.(string); isLang {
				compact.WriteByte(':')
			}
		}
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("indent JSON: %w", err)
	}
	out.WriteByte('\n')

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// encodeJSON marshals v without HTML escaping, since values are markup text.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeYAML(w io.Writer, doc *parser.Document) error {
	var root yaml.MapSlice
	for _, lang := range doc.Languages() {
		table, _ := doc.Table(lang)

		entries := yaml.MapSlice{}
		for _, key := range sortedKeys(table) {
			entries = append(entries, yaml.MapItem{Key: key, Value: table[key]})
		}
		root = append(root, yaml.MapItem{Key: lang, Value: entries})
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write YAML: %w", err)
	}
	return nil
}

func sortedKeys(table parser.LanguageTable) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
