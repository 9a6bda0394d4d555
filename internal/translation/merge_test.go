package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blade-trans-sync/internal/parser"
)

func TestMergeKeepsExistingTranslations(t *testing.T) {
	existing := parser.NewDocument()
	existing.Set("en", parser.LanguageTable{"welcome.title": "Hello"})

	merged := Merge(existing, []string{"welcome.title", "welcome.body"}, Policy{DefaultLanguage: "ar"})

	assert.Equal(t, []string{"en"}, merged.Languages())
	en, _ := merged.Table("en")
	assert.Equal(t, parser.LanguageTable{"welcome.title": "Hello", "welcome.body": ""}, en)
}

func TestMergeIdentityDefaults(t *testing.T) {
	existing := parser.NewDocument()
	existing.Set("fr", parser.LanguageTable{"kept": "gardé"})
	existing.Set("en", nil)
	existing.Set("ar", nil)

	merged := Merge(existing, []string{"kept", "new.key"}, DefaultPolicy())

	assert.Equal(t, []string{"fr", "en", "ar"}, merged.Languages())

	fr, _ := merged.Table("fr")
	assert.Equal(t, parser.LanguageTable{"kept": "gardé", "new.key": ""}, fr)

	en, _ := merged.Table("en")
	assert.Equal(t, parser.LanguageTable{"kept": "kept", "new.key": "new.key"}, en)

	ar, _ := merged.Table("ar")
	assert.Equal(t, parser.LanguageTable{"kept": "kept", "new.key": "new.key"}, ar)
}

func TestMergeDropsStaleKeys(t *testing.T) {
	existing := parser.NewDocument()
	existing.Set("en", parser.LanguageTable{"old": "Old", "still": "Still"})
	existing.Set("de", parser.LanguageTable{"old": "Alt"})

	keys := []string{"still"}
	merged := Merge(existing, keys, DefaultPolicy())

	for _, lang := range merged.Languages() {
		table, _ := merged.Table(lang)
		assert.Len(t, table, len(keys), "language %s", lang)
		assert.NotContains(t, table, "old")
	}

	// The input document is left alone.
	en, _ := existing.Table("en")
	assert.Contains(t, en, "old")
}

func TestMergeEmptyDocumentFallsBackToDefault(t *testing.T) {
	for name, existing := range map[string]*parser.Document{
		"nil":   nil,
		"empty": parser.NewDocument(),
	} {
		t.Run(name, func(t *testing.T) {
			merged := Merge(existing, []string{"a.b", "c"}, DefaultPolicy())

			require.Equal(t, []string{DefaultLanguage}, merged.Languages())
			table, _ := merged.Table(DefaultLanguage)
			assert.Equal(t, parser.LanguageTable{"a.b": "a.b", "c": "c"}, table)
		})
	}
}

func TestMergeNonIdentityDefaultLanguage(t *testing.T) {
	merged := Merge(nil, []string{"x"}, Policy{DefaultLanguage: "ja", IdentityLanguages: []string{"en"}})

	require.Equal(t, []string{"ja"}, merged.Languages())
	table, _ := merged.Table("ja")
	assert.Equal(t, parser.LanguageTable{"x": ""}, table)
}

func TestMergeUnsetDefaultLanguage(t *testing.T) {
	merged := Merge(nil, []string{"x"}, Policy{})
	assert.Equal(t, []string{DefaultLanguage}, merged.Languages())
}

func TestDiff(t *testing.T) {
	before := parser.NewDocument()
	before.Set("en", parser.LanguageTable{"a": "A", "b": "B"})
	before.Set("de", parser.LanguageTable{"c": "C"})

	added, removed := Diff(before, []string{"a", "d", "e"})
	assert.Equal(t, []string{"d", "e"}, added)
	assert.Equal(t, []string{"b", "c"}, removed)

	added, removed = Diff(nil, []string{"x"})
	assert.Equal(t, []string{"x"}, added)
	assert.Empty(t, removed)
}

func TestPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.IsIdentity("en"))
	assert.True(t, p.IsIdentity("ar"))
	assert.False(t, p.IsIdentity("fr"))

	// DefaultPolicy hands out its own slice.
	p.IdentityLanguages[0] = "zz"
	assert.Equal(t, "en", DefaultIdentityLanguages[0])
}
