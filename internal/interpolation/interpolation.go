package interpolation

import (
	"regexp"
	"sort"
	"strings"

	"blade-trans-sync/internal/parser"
	"blade-trans-sync/internal/translation"
)

// placeholderPattern matches Laravel replacement parameters such as :name.
// :name, :Name and :NAME all refer to the same parameter.
var placeholderPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// IssueKind classifies a problem found by Check.
type IssueKind string

const (
	// IssueEmpty is an entry that has no translation yet.
	IssueEmpty IssueKind = "empty"
	// IssueMissingPlaceholder is a translation that drops a parameter.
	IssueMissingPlaceholder IssueKind = "missing-placeholder"
)

// Issue is one finding for one language entry.
type Issue struct {
	Language string
	Key      string
	Kind     IssueKind
	// Placeholders lists the parameters missing from the value.
	Placeholders []string
}

// Placeholders returns the distinct, lower-cased parameter names in text,
// sorted.
func Placeholders(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Missing returns the parameters of reference that text does not use.
func Missing(reference []string, text string) []string {
	have := make(map[string]struct{})
	for _, p := range Placeholders(text) {
		have[p] = struct{}{}
	}

	var out []string
	for _, p := range reference {
		if _, ok := have[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// Check reports untranslated entries and translations that lose a
// parameter. The expected parameters of a key are those in the key itself
// and in its values for the policy's identity languages. Issues are ordered
// by language (document order) then key.
func Check(doc *parser.Document, policy translation.Policy) []Issue {
	languages := doc.Languages()
	reference := make(map[string][]string)

	for _, lang := range languages {
		table, _ := doc.Table(lang)
		for key, value := range table {
			if _, ok := reference[key]; !ok {
				reference[key] = Placeholders(key)
			}
			if policy.IsIdentity(lang) {
				reference[key] = union(reference[key], Placeholders(value))
			}
		}
	}

	var issues []Issue
	for _, lang := range languages {
		table, _ := doc.Table(lang)

		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			value := table[key]
			if value == "" {
				issues = append(issues, Issue{Language: lang, Key: key, Kind: IssueEmpty})
				continue
			}
			if missing := Missing(reference[key], value); len(missing) > 0 {
				issues = append(issues, Issue{
					Language:     lang,
					Key:          key,
					Kind:         IssueMissingPlaceholder,
					Placeholders: missing,
				})
			}
		}
	}

	return issues
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
