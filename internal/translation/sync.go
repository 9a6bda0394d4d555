package translation

import "blade-trans-sync/internal/parser"

// ExtractKeys returns the sorted, distinct translation keys used in markup.
func ExtractKeys(markup string) []string {
	return parser.ExtractKeys(markup)
}

// Synchronize regenerates the translation document text for markup. When
// markup references no keys it returns existing and false; otherwise the
// merged and serialized document and true.
func Synchronize(markup, existing string, policy Policy) (string, bool) {
	keys := ExtractKeys(markup)
	if len(keys) == 0 {
		return existing, false
	}
	return SynchronizeKeys(keys, existing, policy), true
}

// SynchronizeKeys merges already-extracted keys into the existing document
// text. An unparseable document is treated as empty.
func SynchronizeKeys(keys []string, existing string, policy Policy) string {
	doc, ok := parser.ParseDocument(existing)
	if !ok {
		doc = parser.NewDocument()
	}
	return Serialize(Merge(doc, keys, policy))
}
