package parser

import (
	"regexp"
	"sort"
)

// callPattern matches the opening of a translation call: the __() and
// trans() helpers, bare or inside {{ }} / {!! !!}, and the @lang directive.
// \b keeps the helpers from matching as the tail of a longer identifier.
var callPattern = regexp.MustCompile(`(?:@lang|\b__|\btrans)\s*\(`)

// ExtractKeys returns the distinct translation keys referenced in a Blade
// template, sorted ascending. Calls whose first argument is not a single
// quoted literal are skipped.
func ExtractKeys(markup string) []string {
	seen := make(map[string]struct{})
	var keys []string

	for _, loc := range callPattern.FindAllStringIndex(markup, -1) {
		key, ok := firstArgument(markup, loc[1])
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}

// firstArgument reads the literal key argument of a call whose opening
// parenthesis ends just before pos. The literal must be the whole argument,
// so it has to be followed by a comma or the closing parenthesis.
func firstArgument(markup string, pos int) (string, bool) {
	lit, ok := ScanLiteral(markup, pos, KeyEscapes)
	if !ok || lit.Value == "" {
		return "", false
	}

	next := skipSpace(markup, lit.End)
	if next >= len(markup) || (markup[next] != ',' && markup[next] != ')') {
		return "", false
	}

	return lit.Value, true
}
