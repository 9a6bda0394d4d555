package parser

// LanguageTable maps a translation key to its translated text for one language.
type LanguageTable map[string]string

// Document is the in-memory form of a translation file: one LanguageTable per
// language code, with languages kept in the order they were first added.
type Document struct {
	languages []string
	tables    map[string]LanguageTable
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{tables: make(map[string]LanguageTable)}
}

// Set stores the table for lang. A language seen for the first time is
// appended; an existing one keeps its position and gets the new table.
func (d *Document) Set(lang string, table LanguageTable) {
	if _, ok := d.tables[lang]; !ok {
		d.languages = append(d.languages, lang)
	}
	if table == nil {
		table = make(LanguageTable)
	}
	d.tables[lang] = table
}

// Table returns the table for lang.
func (d *Document) Table(lang string) (LanguageTable, bool) {
	t, ok := d.tables[lang]
	return t, ok
}

// Languages returns the language codes in stored order.
func (d *Document) Languages() []string {
	out := make([]string, len(d.languages))
	copy(out, d.languages)
	return out
}

// Len returns the number of languages.
func (d *Document) Len() int { return len(d.languages) }
