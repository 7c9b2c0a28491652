package preprocess

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupportedLanguage is returned for languages without comment rules.
var ErrUnsupportedLanguage = errors.New("unsupported language")

type Language string

const (
	LanguageText   Language = "txt"
	LanguageC      Language = "c"
	LanguageCPP    Language = "cpp"
	LanguageJava   Language = "java"
	LanguagePython Language = "python"
	LanguageMatlab Language = "matlab"
)

var languageAliases = map[string]Language{
	"":       LanguageText,
	"txt":    LanguageText,
	"text":   LanguageText,
	"c":      LanguageC,
	"cpp":    LanguageCPP,
	"c++":    LanguageCPP,
	"java":   LanguageJava,
	"python": LanguagePython,
	"py":     LanguagePython,
	"matlab": LanguageMatlab,
	"m":      LanguageMatlab,
}

// ParseLanguage resolves a language name, case-insensitively. An empty name
// means plain text.
func ParseLanguage(name string) (Language, error) {
	lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
	}
	return lang, nil
}

var (
	blockComment   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	slashComment   = regexp.MustCompile(`//.*`)
	hashComment    = regexp.MustCompile(`#.*`)
	percentComment = regexp.MustCompile(`%.*`)
)

// StripComments removes the comments of lang from text. Block comments go
// first so a `//` inside one does not swallow the rest of its line.
// Comment markers inside string literals are not recognised.
func StripComments(text string, lang Language) string {
	switch lang {
	case LanguageC, LanguageCPP, LanguageJava:
		text = blockComment.ReplaceAllString(text, "")
		text = slashComment.ReplaceAllString(text, "")
	case LanguagePython:
		text = hashComment.ReplaceAllString(text, "")
	case LanguageMatlab:
		text = percentComment.ReplaceAllString(text, "")
	}
	return text
}
