package plagiarism

import "fmt"

// ExtractKGrams slices doc into overlapping substrings of k characters,
// one per start offset 0..len(doc)-k. When k exceeds the document length
// the whole document is the only k-gram.
func ExtractKGrams(doc string, k int) ([]string, error) {
	grams, err := ExtractKGramRunes([]rune(doc), k)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(grams))
	for i, g := range grams {
		out[i] = string(g)
	}
	return out, nil
}

// ExtractKGramRunes is ExtractKGrams over a rune slice. The returned
// k-grams share memory with doc.
func ExtractKGramRunes(doc []rune, k int) ([][]rune, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be a positive integer, got %d", ErrInvalidArgument, k)
	}

	if k > len(doc) {
		return [][]rune{doc}, nil
	}

	grams := make([][]rune, 0, len(doc)-k+1)
	for i := 0; i+k <= len(doc); i++ {
		grams = append(grams, doc[i:i+k])
	}
	return grams, nil
}
