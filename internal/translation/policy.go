package translation

// DefaultLanguage is the language synthesized when a document has none.
const DefaultLanguage = "ar"

// DefaultIdentityLanguages are the languages whose untranslated entries
// start out as the key text itself.
var DefaultIdentityLanguages = []string{"en", "ar"}

// Policy holds the language defaults applied by Merge.
type Policy struct {
	// DefaultLanguage is used when the existing document has no language block.
	DefaultLanguage string
	// IdentityLanguages get the key as the value of a newly added entry;
	// every other language gets an empty string.
	IdentityLanguages []string
}

// DefaultPolicy returns the policy built from DefaultLanguage and
// DefaultIdentityLanguages.
func DefaultPolicy() Policy {
	identity := make([]string, len(DefaultIdentityLanguages))
	copy(identity, DefaultIdentityLanguages)

	return Policy{
		DefaultLanguage:   DefaultLanguage,
		IdentityLanguages: identity,
	}
}

// IsIdentity reports whether new entries for lang default to their key.
func (p Policy) IsIdentity(lang string) bool {
	for _, l := range p.IdentityLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// initialValue is the value a key gets in lang when it has no translation yet.
func (p Policy) initialValue(lang, key string) string {
	if p.IsIdentity(lang) {
		return key
	}
	return ""
}

// fallbackLanguage guards against an unset DefaultLanguage.
func (p Policy) fallbackLanguage() string {
	if p.DefaultLanguage == "" {
		return DefaultLanguage
	}
	return p.DefaultLanguage
}
