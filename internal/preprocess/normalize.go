package preprocess

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Decode reads raw as UTF-8, dropping any invalid bytes.
func Decode(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "")
}

// Normalize composes text to NFC, lowercases it and removes every
// whitespace rune, so that hash index i lines up with rune i of the result.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	// Casers keep state; one per call.
	text = cases.Lower(language.Und).String(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}
