package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Hash computes a SHA-256 hex hash of a string.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Fingerprint hashes a key list together with a document body. The parts are
// NUL-separated so that different splits of the same bytes differ.
func Fingerprint(keys []string, document string) string {
	return Hash(strings.Join(keys, "\x00") + "\x00\x00" + document)
}

// Truncate shortens a string to at most maxLen bytes without splitting a
// rune, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := max(maxLen, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
