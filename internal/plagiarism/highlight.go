package plagiarism

import (
	"html"
	"strings"
)

// Highlight HTML-escapes text and wraps every run of characters covered by
// a matched k-gram in <mark> tags. matched holds one-based start offsets,
// the same convention SimilarityScore uses.
func Highlight(text string, matched []int, k int) string {
	runes := []rune(text)
	mask := CoverageMask(matched, k, len(runes))

	var sb strings.Builder
	sb.Grow(len(text) + len(matched)*len("<mark></mark>"))

	open := false
	for i, r := range runes {
		if mask[i] && !open {
			sb.WriteString("<mark>")
			open = true
		} else if !mask[i] && open {
			sb.WriteString("</mark>")
			open = false
		}
		sb.WriteString(html.EscapeString(string(r)))
	}
	if open {
		sb.WriteString("</mark>")
	}
	return sb.String()
}
