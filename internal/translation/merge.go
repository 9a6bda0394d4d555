package translation

import (
	"sort"

	"blade-trans-sync/internal/parser"
)

// Merge builds a new document holding exactly keys for every language of
// existing, or for the policy's default language when existing has none.
// Values already present are carried over unchanged; missing ones get the
// policy's initial value. Keys absent from keys are dropped. existing is not
// modified and may be nil.
func Merge(existing *parser.Document, keys []string, policy Policy) *parser.Document {
	var languages []string
	if existing != nil {
		languages = existing.Languages()
	}
	if len(languages) == 0 {
		languages = []string{policy.fallbackLanguage()}
	}

	merged := parser.NewDocument()
	for _, lang := range languages {
		var old parser.LanguageTable
		if existing != nil {
			old, _ = existing.Table(lang)
		}

		table := make(parser.LanguageTable, len(keys))
		for _, key := range keys {
			if v, ok := old[key]; ok {
				table[key] = v
				continue
			}
			table[key] = policy.initialValue(lang, key)
		}
		merged.Set(lang, table)
	}

	return merged
}

// Diff compares the keys known to before (across all languages) with keys
// and returns the keys that a merge adds and removes, both sorted.
func Diff(before *parser.Document, keys []string) (added, removed []string) {
	known := make(map[string]struct{})
	if before != nil {
		for _, lang := range before.Languages() {
			table, _ := before.Table(lang)
			for k := range table {
				known[k] = struct{}{}
			}
		}
	}

	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
		if _, ok := known[k]; !ok {
			added = append(added, k)
		}
	}

	for k := range known {
		if _, ok := wanted[k]; !ok {
			removed = append(removed, k)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
